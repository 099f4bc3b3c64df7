package quant

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMean(t *testing.T) {
	tests := []struct {
		input    []float64
		expected float64
	}{
		{nil, 0},
		{[]float64{5}, 5},
		{[]float64{1, 2, 3, 4}, 2.5},
		{[]float64{-1, 1}, 0},
	}
	for _, tt := range tests {
		if got := Mean(tt.input); !almostEqual(got, tt.expected) {
			t.Errorf("Mean(%v) = %v; want %v", tt.input, got, tt.expected)
		}
	}
}

func TestStdDev(t *testing.T) {
	if got := StdDev([]float64{5}); got != 0 {
		t.Errorf("StdDev of one sample = %v; want 0", got)
	}
	if got := StdDev([]float64{3, 3, 3}); got != 0 {
		t.Errorf("StdDev of constant series = %v; want 0", got)
	}
	// Population stddev of {2, 4} is 1.
	if got := StdDev([]float64{2, 4}); !almostEqual(got, 1) {
		t.Errorf("StdDev({2,4}) = %v; want 1", got)
	}
}

func TestDownsideDev(t *testing.T) {
	if got := DownsideDev([]float64{0.01, 0.02, 0.03}, 0); got != 0 {
		t.Errorf("all-positive downside dev = %v; want 0", got)
	}
	// Only -0.1 is below 0: sqrt(0.01/4) = 0.05.
	got := DownsideDev([]float64{-0.1, 0.1, 0.1, 0.1}, 0)
	if !almostEqual(got, 0.05) {
		t.Errorf("DownsideDev = %v; want 0.05", got)
	}
}

func TestQuantile(t *testing.T) {
	xs := []float64{4, 1, 3, 2}
	tests := []struct {
		q        float64
		expected float64
	}{
		{0, 1},
		{1, 4},
		{0.5, 2.5},
		{0.25, 1.75},
	}
	for _, tt := range tests {
		if got := Quantile(xs, tt.q); !almostEqual(got, tt.expected) {
			t.Errorf("Quantile(%v) = %v; want %v", tt.q, got, tt.expected)
		}
	}
	if xs[0] != 4 {
		t.Error("Quantile mutated its input")
	}
	if got := Quantile(nil, 0.5); got != 0 {
		t.Errorf("Quantile(nil) = %v; want 0", got)
	}
}

func TestMaxDrawdown(t *testing.T) {
	amount, pct := MaxDrawdown([]float64{100, 120, 90, 110, 80})
	if !almostEqual(amount, 40) {
		t.Errorf("drawdown amount = %v; want 40", amount)
	}
	if !almostEqual(pct, 40.0/120.0) {
		t.Errorf("drawdown pct = %v; want %v", pct, 40.0/120.0)
	}

	amount, pct = MaxDrawdown([]float64{100, 110, 120})
	if amount != 0 || pct != 0 {
		t.Errorf("rising curve drawdown = %v, %v; want 0, 0", amount, pct)
	}

	amount, pct = MaxDrawdown(nil)
	if amount != 0 || pct != 0 {
		t.Errorf("empty curve drawdown = %v, %v; want 0, 0", amount, pct)
	}
}
