package domain

import "testing"

func validThresholds() RiskThresholds {
	return RiskThresholds{
		StopLoss:          -0.03,
		EmergencyStopLoss: -0.08,
		TakeProfit:        0.05,
		MaxPositionSize:   500000,
		MaxDailyTrades:    1,
	}
}

func TestRiskThresholds_Validate(t *testing.T) {
	if err := validThresholds().Validate(); err != nil {
		t.Fatalf("valid thresholds rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RiskThresholds)
	}{
		{"positive stop loss", func(r *RiskThresholds) { r.StopLoss = 0.03 }},
		{"emergency above stop", func(r *RiskThresholds) { r.EmergencyStopLoss = -0.01 }},
		{"zero take profit", func(r *RiskThresholds) { r.TakeProfit = 0 }},
		{"zero position size", func(r *RiskThresholds) { r.MaxPositionSize = 0 }},
		{"zero daily trades", func(r *RiskThresholds) { r.MaxDailyTrades = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validThresholds()
			tt.mutate(&r)
			if err := r.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestScreenCriteria_Matches(t *testing.T) {
	c := ScreenCriteria{MinPrice: 100, MaxPrice: 5000, MinVolume: 100000}

	ok := Quote{Price: 1500, Volume: 500000}
	if !c.Matches(ok) {
		t.Error("quote inside bounds should match")
	}
	if c.Matches(Quote{Price: 50, Volume: 500000}) {
		t.Error("price below minimum should not match")
	}
	if c.Matches(Quote{Price: 9000, Volume: 500000}) {
		t.Error("price above maximum should not match")
	}
	if c.Matches(Quote{Price: 1500, Volume: 10}) {
		t.Error("thin volume should not match")
	}
}
