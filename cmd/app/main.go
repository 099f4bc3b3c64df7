package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"daytrade_go/internal/app"
	"daytrade_go/internal/telemetry"
)

func main() {
	// 1. System bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	// 2. Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Telemetry (websocket hub + webhook relay)
	if bootstrap.Hub != nil {
		go bootstrap.Hub.Run(ctx)
		srv := telemetry.StartServer(bootstrap.Hub, bootstrap.Config.Notifications.ListenAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}
	go telemetry.Relay(ctx, bootstrap.Bus, bootstrap.Notifier, bootstrap.Hub)

	// 4. Scheduler (the single-goroutine trading loop)
	go bootstrap.Scheduler.Run(ctx)
	slog.InfoContext(ctx, "✨ daytrade-go fully operational. Press Ctrl+C to exit.")

	<-ctx.Done()
	slog.Info("👋 Shutting down gracefully...")
}
