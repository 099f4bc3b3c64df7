package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"daytrade_go/internal/domain"
	"daytrade_go/internal/event"
	"daytrade_go/internal/execution"
	"daytrade_go/internal/infra"
	"daytrade_go/internal/market"
	"daytrade_go/internal/signal"
)

// Consensus is the slice of the aggregator the scheduler depends on.
type Consensus interface {
	Aggregate(ctx context.Context, symbol string) (domain.AggregatedSignal, error)
	AggregateMany(ctx context.Context, symbols []string) []domain.AggregatedSignal
}

// TradeLog is the slice of the trade store the scheduler depends on.
type TradeLog interface {
	Append(ctx context.Context, rec domain.TradeHistoryRecord) error
	CountBuys(ctx context.Context, day time.Time) (int, error)
}

// Scheduler owns the single open position and drives the daily trading
// cycle. All collaborators are injected; there is no process-wide
// mutable state. The run loop is a single goroutine; phase logic
// between external calls is synchronous, so the position has no
// concurrent writers by construction.
type Scheduler struct {
	cfg       *infra.Config
	consensus Consensus
	provider  market.Provider
	gateway   execution.Gateway
	trades    TradeLog
	bus       *event.Bus

	loc          *time.Location
	buyTrigger   infra.DailyTrigger
	sellStart    infra.DailyTrigger
	closeTrigger infra.DailyTrigger

	now func() time.Time // injectable for date-dependent guards

	mu       sync.RWMutex
	state    TradingState
	position *domain.Position
}

// NewScheduler wires the state machine. Configuration faults surface
// here, not mid-session.
func NewScheduler(cfg *infra.Config, consensus Consensus, provider market.Provider,
	gateway execution.Gateway, trades TradeLog, bus *event.Bus) (*Scheduler, error) {

	loc := cfg.Location()
	buyTrigger, err := infra.NewDailyTrigger(cfg.Schedule.BuyTime, loc, true)
	if err != nil {
		return nil, fmt.Errorf("%w: buy_time: %v", infra.ErrInvalidConfig, err)
	}
	sellStart, err := infra.NewDailyTrigger(cfg.Schedule.SellCheckStart, loc, true)
	if err != nil {
		return nil, fmt.Errorf("%w: sell_check_start: %v", infra.ErrInvalidConfig, err)
	}
	closeTrigger, err := infra.NewDailyTrigger(cfg.Schedule.ForceCloseTime, loc, true)
	if err != nil {
		return nil, fmt.Errorf("%w: force_close_time: %v", infra.ErrInvalidConfig, err)
	}

	return &Scheduler{
		cfg:          cfg,
		consensus:    consensus,
		provider:     provider,
		gateway:      gateway,
		trades:       trades,
		bus:          bus,
		loc:          loc,
		buyTrigger:   buyTrigger,
		sellStart:    sellStart,
		closeTrigger: closeTrigger,
		now:          time.Now,
		state:        StateIdle,
	}, nil
}

// State returns the current phase (external read).
func (s *Scheduler) State() TradingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Position returns a copy of the open position, or nil.
func (s *Scheduler) Position() *domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.position == nil {
		return nil
	}
	cp := *s.position
	return &cp
}

func (s *Scheduler) setState(st TradingState) {
	s.mu.Lock()
	prev := s.state
	s.state = st
	s.mu.Unlock()
	if prev != st {
		slog.Debug("state transition",
			slog.String("from", prev.String()),
			slog.String("to", st.String()))
	}
}

func (s *Scheduler) setPosition(p *domain.Position) {
	s.mu.Lock()
	s.position = p
	s.mu.Unlock()
}

// fail logs a phase fault and surfaces it as an error event. The
// machine stays in whatever state preceded the failing call.
func (s *Scheduler) fail(phase string, err error) {
	slog.Error("phase failed",
		slog.String("phase", phase),
		slog.Any("error", err))
	ev := event.NewEvent(event.EvError)
	ev.Detail = phase
	ev.Err = err.Error()
	s.bus.Publish(ev)
}

// Run drives the scheduler until ctx is cancelled. Must be run in a
// single goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	s.bus.Publish(event.NewEvent(event.EvStarted))
	slog.Info("scheduler started",
		slog.String("buy_time", s.cfg.Schedule.BuyTime),
		slog.String("force_close", s.cfg.Schedule.ForceCloseTime),
		slog.String("timezone", s.cfg.Schedule.Timezone))

	buyTimer := time.NewTimer(time.Until(s.buyTrigger.Next(s.now())))
	defer buyTimer.Stop()
	closeTimer := time.NewTimer(time.Until(s.closeTrigger.Next(s.now())))
	defer closeTimer.Stop()

	var (
		monitor  *time.Ticker
		monitorC <-chan time.Time
		deferred *time.Timer
		deferC   <-chan time.Time
	)
	stopMonitor := func() {
		if monitor != nil {
			monitor.Stop()
			monitor = nil
			monitorC = nil
		}
		if deferred != nil {
			deferred.Stop()
			deferred = nil
			deferC = nil
		}
	}
	defer stopMonitor()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scheduler stopping")
			s.bus.Publish(event.NewEvent(event.EvStopped))
			return

		case <-buyTimer.C:
			s.RunTradingCycle(ctx)
			if s.Position() != nil {
				// Monitoring waits for the sell-check window when
				// the buy landed before it opens.
				now := s.now()
				start := s.sellStart.TodayAt(now)
				if wait := start.Sub(now.In(s.loc)); wait > 0 {
					slog.Info("monitoring deferred",
						slog.Time("until", start))
					deferred = time.NewTimer(wait)
					deferC = deferred.C
				} else {
					monitor = time.NewTicker(s.cfg.SellCheckInterval())
					monitorC = monitor.C
				}
			}
			buyTimer.Reset(time.Until(s.buyTrigger.Next(s.now())))

		case <-deferC:
			deferred = nil
			deferC = nil
			monitor = time.NewTicker(s.cfg.SellCheckInterval())
			monitorC = monitor.C

		case <-monitorC:
			s.CheckExit(ctx)
			if s.Position() == nil {
				stopMonitor()
			}

		case <-closeTimer.C:
			s.ForceClose(ctx)
			stopMonitor()
			closeTimer.Reset(time.Until(s.closeTrigger.Next(s.now())))
		}
	}
}

// RunTradingCycle performs Screening -> SignalCollection -> Buying once.
// Guards: trading disabled, an already open position, or a reached
// daily buy cap all skip the day without error.
func (s *Scheduler) RunTradingCycle(ctx context.Context) {
	if !s.cfg.Trading.Enabled {
		slog.Info("trading disabled, skipping cycle")
		return
	}
	if pos := s.Position(); pos != nil {
		slog.Info("position already open, skipping cycle",
			slog.String("symbol", pos.Symbol))
		return
	}

	today := s.now().In(s.loc)
	buys, err := s.trades.CountBuys(ctx, today)
	if err != nil {
		s.fail("screening", err)
		return
	}
	if buys >= s.cfg.RiskManagement.MaxDailyTrades {
		slog.Info("daily trade cap reached, skipping cycle",
			slog.Int("buys", buys),
			slog.Int("cap", s.cfg.RiskManagement.MaxDailyTrades))
		return
	}

	s.setState(StateScreening)
	candidates, err := s.screen(ctx)
	if err != nil {
		s.fail("screening", err)
		s.setState(StateIdle)
		return
	}
	if len(candidates) == 0 {
		slog.Info("no symbols passed screening")
		s.setState(StateIdle)
		return
	}

	s.setState(StateSignalCollection)
	aggs := s.consensus.AggregateMany(ctx, candidates)
	best := signal.SelectBestBuy(aggs)
	if best == nil {
		slog.Info("no candidate met buy quorum, skipping the day",
			slog.Int("aggregated", len(aggs)))
		s.setState(StateIdle)
		return
	}

	ev := event.NewEvent(event.EvBuySignalGenerated)
	ev.Symbol = best.Symbol
	ev.Signal = best
	s.bus.Publish(ev)

	if s.cfg.Trading.ConfirmBeforeTrade && !s.cfg.Trading.PaperTrading {
		slog.Info("manual confirmation required, not auto-buying",
			slog.String("symbol", best.Symbol))
		s.setState(StateIdle)
		return
	}

	s.setState(StateBuying)
	if err := s.buy(ctx, best); err != nil {
		// A failed buy never creates a position.
		s.fail("buy", err)
		s.setState(StateIdle)
		return
	}
	s.setState(StateMonitoring)
}

func (s *Scheduler) screen(ctx context.Context) ([]string, error) {
	symbols, err := s.provider.Screen(ctx, s.cfg.Screening.ScreenCriteria)
	if err != nil {
		return nil, err
	}
	if len(symbols) > s.cfg.Screening.CandidateCount {
		symbols = symbols[:s.cfg.Screening.CandidateCount]
	}
	slog.Info("screening complete", slog.Int("candidates", len(symbols)))
	return symbols, nil
}

func (s *Scheduler) buy(ctx context.Context, best *domain.AggregatedSignal) error {
	quote, err := s.provider.Quote(ctx, best.Symbol)
	if err != nil {
		return err
	}

	quantity := int64(math.Floor(s.cfg.RiskManagement.MaxPositionSize / quote.Price))
	if quantity <= 0 {
		slog.Info("position cap too small for one share, skipping",
			slog.String("symbol", best.Symbol),
			slog.Float64("price", quote.Price))
		return nil
	}

	order := execution.NewMarketOrder(best.Symbol, execution.SideBuy, quantity, quote.Price)
	fill, err := s.gateway.PlaceOrder(ctx, order)
	if err != nil {
		return err
	}

	pos := &domain.Position{
		Symbol:     fill.Symbol,
		Quantity:   fill.Quantity,
		EntryPrice: fill.Price,
		EntryTime:  fill.Ts,
	}
	pos.UpdatePrice(fill.Price)
	s.setPosition(pos)

	rec := domain.TradeHistoryRecord{
		Date:     s.now().In(s.loc),
		Symbol:   fill.Symbol,
		Action:   domain.ActionBuy,
		Quantity: fill.Quantity,
		Price:    fill.Price,
		Reason:   fmt.Sprintf("quorum buy (%.0f%% of %d sources)", best.BuyPercentage, best.TotalSources),
	}
	if err := s.trades.Append(ctx, rec); err != nil {
		// The order is already filled; losing the position over a
		// bookkeeping error would be worse than a gap in the log.
		s.fail("history", err)
	}

	ev := event.NewEvent(event.EvBuyExecuted)
	ev.Symbol = fill.Symbol
	ev.Trade = &rec
	s.bus.Publish(ev)

	slog.Info("buy executed",
		slog.String("symbol", fill.Symbol),
		slog.Int64("quantity", fill.Quantity),
		slog.Float64("price", fill.Price))
	return nil
}

// CheckExit performs one monitoring tick: refresh the mark, then apply
// the exit checks most severe first. Between stop loss and take profit
// the position is always held regardless of signal content.
func (s *Scheduler) CheckExit(ctx context.Context) {
	pos := s.Position()
	if pos == nil {
		return
	}

	quote, err := s.provider.Quote(ctx, pos.Symbol)
	if err != nil {
		s.fail("monitoring", err)
		return
	}

	s.mu.Lock()
	if s.position == nil {
		s.mu.Unlock()
		return
	}
	s.position.UpdatePrice(quote.Price)
	rate := s.position.ProfitRate
	s.mu.Unlock()

	risk := s.cfg.RiskManagement
	switch {
	case rate <= risk.EmergencyStopLoss:
		s.sell(ctx, quote.Price, "emergency stop loss")

	case rate <= risk.StopLoss:
		s.sell(ctx, quote.Price, "stop loss")

	case rate >= risk.TakeProfit:
		if rate >= s.cfg.Signals.HardTakeProfit {
			s.sell(ctx, quote.Price, "take profit (hard ceiling)")
			return
		}
		agg, err := s.consensus.Aggregate(ctx, pos.Symbol)
		if err != nil {
			// No consensus available: hold and retry next tick.
			slog.Warn("sell consensus unavailable, holding",
				slog.String("symbol", pos.Symbol),
				slog.Any("error", err))
			return
		}
		if agg.ShouldSell {
			s.sell(ctx, quote.Price, "take profit")
		} else {
			slog.Info("insufficient sell consensus, holding",
				slog.String("symbol", pos.Symbol),
				slog.Float64("profit_rate", rate))
		}
	}
}

// ForceClose liquidates any open position unconditionally. A no-op when
// no position exists; best-effort, no auto-retry — an unrecoverable
// failure here is escalated as an error event for a human.
func (s *Scheduler) ForceClose(ctx context.Context) {
	pos := s.Position()
	if pos == nil {
		return
	}

	price := pos.CurrentPrice
	if quote, err := s.provider.Quote(ctx, pos.Symbol); err == nil {
		price = quote.Price
	}
	s.sell(ctx, price, "forced close")
}

// sell liquidates the full position at the reference price. On failure
// the position is retained for the next tick.
func (s *Scheduler) sell(ctx context.Context, price float64, reason string) {
	pos := s.Position()
	if pos == nil {
		return
	}
	s.setState(StateSelling)

	order := execution.NewMarketOrder(pos.Symbol, execution.SideSell, pos.Quantity, price)
	fill, err := s.gateway.PlaceOrder(ctx, order)
	if err != nil {
		s.fail("sell", err)
		s.setState(StateMonitoring)
		return
	}

	profitRate := (fill.Price - pos.EntryPrice) / pos.EntryPrice
	profitAmount := (fill.Price - pos.EntryPrice) * float64(pos.Quantity)

	rec := domain.TradeHistoryRecord{
		Date:         s.now().In(s.loc),
		Symbol:       fill.Symbol,
		Action:       domain.ActionSell,
		Quantity:     fill.Quantity,
		Price:        fill.Price,
		ProfitRate:   profitRate,
		ProfitAmount: profitAmount,
		Reason:       reason,
	}
	if err := s.trades.Append(ctx, rec); err != nil {
		s.fail("history", err)
	}

	s.setPosition(nil)
	s.setState(StateIdle)

	ev := event.NewEvent(event.EvSellExecuted)
	ev.Symbol = fill.Symbol
	ev.Trade = &rec
	s.bus.Publish(ev)

	slog.Info("sell executed",
		slog.String("symbol", fill.Symbol),
		slog.String("reason", reason),
		slog.Float64("profit_rate", profitRate),
		slog.Float64("profit_amount", profitAmount))
}
