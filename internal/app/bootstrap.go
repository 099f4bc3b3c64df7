package app

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"daytrade_go/internal/engine"
	"daytrade_go/internal/event"
	"daytrade_go/internal/execution"
	"daytrade_go/internal/infra"
	"daytrade_go/internal/market"
	"daytrade_go/internal/signal"
	"daytrade_go/internal/storage"
	"daytrade_go/internal/telemetry"
)

// Bootstrap orchestrates the application startup sequence. Every
// collaborator is built here and passed down explicitly; nothing else
// in the tree reaches for globals.
type Bootstrap struct {
	Config    *infra.Config
	Bus       *event.Bus
	Store     *storage.TradeStore
	Provider  market.Provider
	Gateway   execution.Gateway
	Scheduler *engine.Scheduler
	Notifier  *telemetry.WebhookNotifier
	Hub       *telemetry.Hub
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration and wires the full engine.
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping daytrade-go...")

	// 1. Config
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err
	}
	b.Config = cfg

	// 2. Logger
	slog.SetDefault(infra.NewLogger(cfg))
	infra.PrintBanner(cfg)

	// 3. Trade history store, isolated per mode under the workspace.
	dbPath := cfg.Storage.DBPath
	if dbPath == "" {
		mode := strings.ToLower(cfg.Trading.Mode)
		if mode == "" {
			mode = "paper"
		}
		dataDir := filepath.Join(infra.GetWorkspaceDir(), "data", mode)
		if err := infra.EnsureDir(dataDir); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}
		dbPath = filepath.Join(dataDir, "trades.db")
	}
	store, err := storage.NewTradeStore(dbPath)
	if err != nil {
		return err
	}
	b.Store = store
	slog.Info("✅ Trade store initialized (WAL-mode)", slog.String("path", dbPath))

	// 4. Event bus
	b.Bus = event.NewBus()

	// 5. Market data + signal sources behind resilience wrappers
	universe := cfg.Screening.Universe
	if len(universe) == 0 {
		universe = []string{"7203", "6758", "9984", "8306", "6501"}
	}
	provider := market.NewSimProvider(universe, 1)
	b.Provider = provider

	resCfg := signal.ResilientConfig{
		CacheTTL: cfg.CacheTTL(),
		Spacing:  cfg.SourceSpacing(),
		Cooldown: cfg.BreakerCooldown(),
	}
	inners := []signal.Source{
		signal.NewRSISource(provider),
		signal.NewMACDSource(provider),
		signal.NewTrendSource(provider),
	}
	sources := make([]*signal.ResilientSource, 0, len(inners))
	for _, inner := range inners {
		src, err := signal.NewResilientSource(inner, resCfg, b.Bus)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}
	aggregator := signal.NewAggregator(sources, cfg.Signals.MinSources, cfg.AggregationTimeout())
	slog.Info("✅ Signal aggregator ready", slog.Int("sources", len(sources)))

	// 6. Execution gateway
	gateway, err := execution.NewGateway(cfg)
	if err != nil {
		return err
	}
	b.Gateway = gateway

	// 7. Scheduler (the trading state machine)
	sched, err := engine.NewScheduler(cfg, aggregator, provider, gateway, store, b.Bus)
	if err != nil {
		return err
	}
	b.Scheduler = sched

	// 8. Telemetry
	b.Notifier = telemetry.NewWebhookNotifier(cfg.Notifications.WebhookURL)
	if cfg.Notifications.ListenAddr != "" {
		b.Hub = telemetry.NewHub()
	}
	if b.Notifier.Enabled() {
		slog.Info("✅ Webhook notifications enabled")
	}

	return nil
}

// Close releases held resources.
func (b *Bootstrap) Close() {
	if b.Bus != nil {
		b.Bus.Close()
	}
	if b.Store != nil {
		b.Store.Close()
	}
}
