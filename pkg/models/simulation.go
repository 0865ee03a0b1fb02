package models

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// --- Monte Carlo Simulation ---

// ReturnDistribution is the normal distribution of annual returns for one
// simulated asset or strategy.
type ReturnDistribution struct {
	Name             string  `json:"name,omitempty"` // e.g., "concentrated", "diversified"
	MeanAnnualReturn float64 `json:"mean_annual_return"`
	AnnualStdDev     float64 `json:"annual_std_dev"`
}

// SimulationConfig holds the parameters shared by every distribution in a run.
type SimulationConfig struct {
	Trials         int       `json:"trials"`
	Years          int       `json:"years"`
	InitialValue   float64   `json:"initial_value"`
	PathsToCapture int       `json:"paths_to_capture"`
	HistogramBins  int       `json:"histogram_bins"`
	Percentiles    []float64 `json:"percentiles,omitempty"` // quantiles in [0,1]; nil uses DefaultPercentiles
}

// DefaultPercentiles are reported when SimulationConfig.Percentiles is empty.
var DefaultPercentiles = []float64{0.05, 0.25, 0.50, 0.75, 0.95}

// HistogramBin is one bucket of the terminal value histogram.
type HistogramBin struct {
	Center float64 `json:"center"`
	Count  int     `json:"count"`
}

// PathPoint is the simulated value at the end of a given year.
type PathPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Summary holds descriptive statistics of the terminal values.
type Summary struct {
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"std_dev"` // sample standard deviation
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	ProbShortfall float64 `json:"prob_shortfall"` // share of trials ending below the initial value
}

// SimulationResult is the outcome of simulating one ReturnDistribution.
type SimulationResult struct {
	Distribution   ReturnDistribution `json:"distribution"`
	TerminalValues []float64          `json:"terminal_values,omitempty"` // sorted ascending
	Percentiles    Quantiles          `json:"percentiles"`
	Histogram      []HistogramBin     `json:"histogram"`
	SamplePaths    [][]PathPoint      `json:"sample_paths"`
	Summary        Summary            `json:"summary"`
}

// Percentile returns the order statistic at floor(n*q) of the sorted
// terminal values. It returns 0 for an empty result.
func (r *SimulationResult) Percentile(q float64) float64 {
	return OrderStatistic(r.TerminalValues, q)
}

// OrderStatistic returns sorted[floor(n*q)], with the index clamped to
// [0, n-1]. No interpolation is done between neighbours. sorted must be in
// ascending order; an empty slice gives 0.
func OrderStatistic(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	idx := int(math.Floor(float64(n) * q))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return sorted[idx]
}

// Quantiles maps a requested quantile in [0,1] to its terminal value.
type Quantiles map[float64]float64

// Keys returns the quantiles in ascending order.
func (q Quantiles) Keys() []float64 {
	keys := make([]float64, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// MarshalJSON encodes the quantiles as decimal strings ("0.05"), since JSON
// object keys must be strings.
func (q Quantiles) MarshalJSON() ([]byte, error) {
	m := make(map[string]float64, len(q))
	for k, v := range q {
		m[strconv.FormatFloat(k, 'f', -1, 64)] = v
	}
	return json.Marshal(m)
}
