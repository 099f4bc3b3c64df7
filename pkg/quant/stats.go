// Package quant provides the statistical primitives shared by the
// backtest report and the optimizer.
package quant

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation, or 0 when fewer
// than two samples exist.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// DownsideDev returns the standard deviation of returns below the
// threshold, counting every sample in the denominator. Used for the
// Sortino ratio.
func DownsideDev(xs []float64, threshold float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		if x < threshold {
			d := x - threshold
			sum += d * d
		}
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// Quantile returns the q-th quantile (0 <= q <= 1) using linear
// interpolation between order statistics. Returns 0 for an empty
// slice; the input is not modified.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// MaxDrawdown returns the largest peak-to-trough loss of an equity
// curve, as an absolute amount and as a fraction of the peak. Both are
// non-negative; a monotonically rising curve yields 0, 0.
func MaxDrawdown(equity []float64) (amount, pct float64) {
	if len(equity) == 0 {
		return 0, 0
	}
	peak := equity[0]
	for _, v := range equity {
		if v > peak {
			peak = v
		}
		dd := peak - v
		if dd > amount {
			amount = dd
			if peak > 0 {
				pct = dd / peak
			}
		}
	}
	return amount, pct
}
