package event

import (
	"testing"
	"time"
)

func TestBus_PublishReachesAllSubscribers(t *testing.T) {
	b := NewBus()
	a := b.Subscribe(4)
	c := b.Subscribe(4)

	b.Publish(NewEvent(EvBuyExecuted))

	for _, ch := range []<-chan Event{a, c} {
		select {
		case ev := <-ch:
			if ev.Type != EvBuyExecuted {
				t.Errorf("got type %s, want %s", ev.Type, EvBuyExecuted)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestBus_SlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(1)

	done := make(chan struct{})
	go func() {
		b.Publish(NewEvent(EvError))
		b.Publish(NewEvent(EvError)) // buffer full, must not block
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	// Exactly one event buffered.
	<-ch
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("second event should have been dropped")
		}
	default:
	}
}

func TestBus_Close(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe(1)
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}

	// Publishing after close must not panic.
	b.Publish(NewEvent(EvStopped))
}
