package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"daytrade_go/internal/event"
	"daytrade_go/internal/infra"
)

const webhookAttempts = 3

// WebhookNotifier pushes engine events to a Discord-compatible webhook.
// An empty URL disables it; every method becomes a no-op.
type WebhookNotifier struct {
	webhookURL string
	enabled    bool
	client     *http.Client
	backoff    func(retry int) time.Duration
}

func NewWebhookNotifier(webhookURL string) *WebhookNotifier {
	return &WebhookNotifier{
		webhookURL: webhookURL,
		enabled:    webhookURL != "",
		client:     &http.Client{Timeout: 10 * time.Second},
		backoff:    infra.CalculateBackoff,
	}
}

func (w *WebhookNotifier) Enabled() bool { return w.enabled }

// Notify sends one event as an embed. Transient HTTP failures are
// retried with exponential backoff; notification delivery never blocks
// trading, so the final error is only logged by the relay.
func (w *WebhookNotifier) Notify(ctx context.Context, ev event.Event) error {
	if !w.enabled {
		return nil
	}

	payload := map[string]any{
		"embeds": []map[string]any{
			{
				"title":       eventTitle(ev),
				"description": eventDescription(ev),
				"color":       eventColor(ev.Type),
				"footer": map[string]string{
					"text": "daytrade-go",
				},
				"timestamp": ev.Ts.Format(time.RFC3339),
			},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < webhookAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(w.backoff(attempt - 1)):
			}
		}
		lastErr = w.post(ctx, data)
		if lastErr == nil {
			return nil
		}
	}
	return lastErr
}

func (w *WebhookNotifier) post(ctx context.Context, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func eventTitle(ev event.Event) string {
	switch ev.Type {
	case event.EvStarted:
		return "Engine started"
	case event.EvStopped:
		return "Engine stopped"
	case event.EvBuySignalGenerated:
		return fmt.Sprintf("Buy signal: %s", ev.Symbol)
	case event.EvBuyExecuted:
		return fmt.Sprintf("Bought %s", ev.Symbol)
	case event.EvSellExecuted:
		return fmt.Sprintf("Sold %s", ev.Symbol)
	case event.EvSourceDisabled:
		return fmt.Sprintf("Signal source disabled: %s", ev.Source)
	case event.EvSourceEnabled:
		return fmt.Sprintf("Signal source re-enabled: %s", ev.Source)
	case event.EvError:
		return "Engine error"
	default:
		return string(ev.Type)
	}
}

func eventDescription(ev event.Event) string {
	switch {
	case ev.Trade != nil:
		t := ev.Trade
		if t.Action == "SELL" {
			return fmt.Sprintf("%s x%d @ %.2f (%+.2f%%, %+.0f) — %s",
				t.Symbol, t.Quantity, t.Price, t.ProfitRate*100, t.ProfitAmount, t.Reason)
		}
		return fmt.Sprintf("%s x%d @ %.2f — %s", t.Symbol, t.Quantity, t.Price, t.Reason)
	case ev.Signal != nil:
		s := ev.Signal
		return fmt.Sprintf("%d/%d sources voted BUY (%.0f%%)",
			s.BuySignals, s.TotalSources, s.BuyPercentage)
	case ev.Err != "":
		return fmt.Sprintf("%s: %s", ev.Detail, ev.Err)
	default:
		return ev.Detail
	}
}

func eventColor(t event.Type) int {
	switch t {
	case event.EvBuyExecuted, event.EvBuySignalGenerated:
		return 0x2ecc71 // green
	case event.EvSellExecuted:
		return 0x3498db // blue
	case event.EvError, event.EvSourceDisabled:
		return 0xe74c3c // red
	case event.EvSourceEnabled:
		return 0xf1c40f // yellow
	default:
		return 0x95a5a6 // grey
	}
}

// Relay subscribes to the bus and fans events out to the webhook and
// the websocket hub until ctx is cancelled. Run it in its own
// goroutine.
func Relay(ctx context.Context, bus *event.Bus, notifier *WebhookNotifier, hub *Hub) {
	events := bus.Subscribe(64)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if hub != nil {
				if data, err := json.Marshal(ev); err == nil {
					hub.Broadcast(data)
				}
			}
			if notifier != nil {
				if err := notifier.Notify(ctx, ev); err != nil {
					slog.Warn("webhook notification failed",
						slog.String("type", string(ev.Type)),
						slog.Any("error", err))
				}
			}
		}
	}
}
