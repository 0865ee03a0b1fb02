package montecarlo

import (
	"math"
	"sort"

	"github.com/seenimoa/investlab/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Percentiles
// ════════════════════════════════════════════════════════════════════

// Percentile returns the order statistic sorted[floor(n*q)], with the index
// clamped to [0, n-1]. No interpolation is done between neighbours.
// sorted must be in ascending order.
func Percentile(sorted []float64, q float64) float64 {
	return models.OrderStatistic(sorted, q)
}

// Percentiles evaluates Percentile for every quantile in qs.
func Percentiles(sorted []float64, qs []float64) map[float64]float64 {
	out := make(map[float64]float64, len(qs))
	for _, q := range qs {
		out[q] = Percentile(sorted, q)
	}
	return out
}

// ════════════════════════════════════════════════════════════════════
// Histogram
// ════════════════════════════════════════════════════════════════════

// Histogram buckets values into bins equal-width bins spanning [min, max].
// The maximum falls into the last bin. When every value is equal all counts
// land in the first bin and every center is that value.
func Histogram(values []float64, bins int) []models.HistogramBin {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	// Scaling before subtracting keeps the width finite when hi-lo overflows.
	binSize := hi/float64(bins) - lo/float64(bins)

	counts := make([]int, bins)
	for _, v := range values {
		idx := 0
		if binSize > 0 {
			idx = int(v/binSize - lo/binSize)
			idx = max(0, min(idx, bins-1))
		}
		counts[idx]++
	}

	out := make([]models.HistogramBin, bins)
	for i, c := range counts {
		out[i] = models.HistogramBin{
			Center: lo + (float64(i)+0.5)*binSize,
			Count:  c,
		}
	}
	return out
}

// ════════════════════════════════════════════════════════════════════
// Summary statistics
// ════════════════════════════════════════════════════════════════════

// Summarize computes descriptive statistics of sorted terminal values. The
// shortfall probability is the share of values strictly below initial.
func Summarize(sorted []float64, initial float64) models.Summary {
	n := len(sorted)
	if n == 0 {
		return models.Summary{}
	}
	below := sort.SearchFloat64s(sorted, initial)
	return models.Summary{
		Mean:          mean(sorted),
		StdDev:        stddev(sorted),
		Min:           sorted[0],
		Max:           sorted[n-1],
		ProbShortfall: float64(below) / float64(n),
	}
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)-1)) // sample stddev
}
