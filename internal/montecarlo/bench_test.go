package montecarlo

import (
	"context"
	"testing"

	"github.com/seenimoa/investlab/pkg/models"
)

func benchRun(b *testing.B, workers int) {
	cfg := models.SimulationConfig{
		Trials:         10000,
		Years:          10,
		InitialValue:   200000000,
		PathsToCapture: 20,
		HistogramBins:  40,
	}
	dists := []models.ReturnDistribution{
		{Name: "concentrated", MeanAnnualReturn: 0.07, AnnualStdDev: 0.35},
		{Name: "diversified", MeanAnnualReturn: 0.06, AnnualStdDev: 0.12},
	}
	e := NewEngine(Options{Seed: 42, Workers: workers})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Run(ctx, dists, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

// ── Engine Benchmarks ──

func BenchmarkRun10kx10_1Worker(b *testing.B) { benchRun(b, 1) }
func BenchmarkRun10kx10_4Workers(b *testing.B) { benchRun(b, 4) }
func BenchmarkRun10kx10_Default(b *testing.B) { benchRun(b, 0) }

func BenchmarkHistogram10k(b *testing.B) {
	values := make([]float64, 10000)
	for i := range values {
		values[i] = float64(i%977) * 1.5
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Histogram(values, 40)
	}
}
