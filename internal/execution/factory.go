package execution

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"daytrade_go/internal/infra"
)

// Mode represents the trading execution mode.
type Mode string

const (
	ModePaper Mode = "PAPER"
	ModeLog   Mode = "LOG"
	ModeReal  Mode = "REAL"
)

// NewGateway returns the Gateway for the configured mode.
func NewGateway(cfg *infra.Config) (Gateway, error) {
	mode := Mode(strings.ToUpper(cfg.Trading.Mode))
	slog.Info("initializing execution gateway", slog.String("mode", string(mode)))

	switch mode {
	case ModePaper:
		// Enough cash for the position cap plus headroom.
		return NewPaperGateway(cfg.RiskManagement.MaxPositionSize * 2), nil

	case ModeLog:
		return NewLogGateway(), nil

	case ModeReal:
		// Safety latch first: refuse to even consider real money
		// without the explicit confirmation variable.
		if os.Getenv("DAYTRADE_CONFIRM_REAL") != "true" {
			return nil, fmt.Errorf("real trading requires DAYTRADE_CONFIRM_REAL=true")
		}
		return nil, fmt.Errorf("real broker gateway is not wired in this build")

	default:
		return nil, fmt.Errorf("unknown execution mode: %s", mode)
	}
}
