package domain

import "fmt"

// RiskThresholds holds the quantitative risk gates for the live engine
// and the backtest. Loaded from configuration, never mutated at runtime.
//
// StopLoss and EmergencyStopLoss are negative profit rates (e.g. -0.03),
// TakeProfit a positive one. MaxPositionSize is the notional cap in
// quote currency.
type RiskThresholds struct {
	StopLoss          float64 `yaml:"stop_loss" json:"stop_loss"`
	EmergencyStopLoss float64 `yaml:"emergency_stop_loss" json:"emergency_stop_loss"`
	TakeProfit        float64 `yaml:"take_profit" json:"take_profit"`
	MaxPositionSize   float64 `yaml:"max_position_size" json:"max_position_size"`
	MaxDailyTrades    int     `yaml:"max_daily_trades" json:"max_daily_trades"`
}

// Validate checks internal consistency. An invalid set of thresholds is
// a construction-time error, not something to discover mid-session.
func (r RiskThresholds) Validate() error {
	if r.StopLoss >= 0 {
		return fmt.Errorf("stop_loss must be negative, got %v", r.StopLoss)
	}
	if r.EmergencyStopLoss >= r.StopLoss {
		return fmt.Errorf("emergency_stop_loss (%v) must be below stop_loss (%v)",
			r.EmergencyStopLoss, r.StopLoss)
	}
	if r.TakeProfit <= 0 {
		return fmt.Errorf("take_profit must be positive, got %v", r.TakeProfit)
	}
	if r.MaxPositionSize <= 0 {
		return fmt.Errorf("max_position_size must be positive, got %v", r.MaxPositionSize)
	}
	if r.MaxDailyTrades < 1 {
		return fmt.Errorf("max_daily_trades must be at least 1, got %d", r.MaxDailyTrades)
	}
	return nil
}
