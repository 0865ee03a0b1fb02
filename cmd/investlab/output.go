package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/investlab/internal/config"
	"github.com/seenimoa/investlab/pkg/models"
	"github.com/seenimoa/investlab/pkg/utils"
)

const (
	banner = "═══════════════════════════════════════"
	rule   = "───────────────────────────────────────"

	// riskDecimals is the display precision of durations and convexity.
	riskDecimals = 4
	barWidth     = 40
)

// printer renders command results as text or JSON.
type printer struct {
	w        io.Writer
	format   string
	decimals int32
}

func newPrinter(w io.Writer, out config.OutputConfig) *printer {
	return &printer{w: w, format: out.Format, decimals: out.Decimals}
}

func (p *printer) emit(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) header(title string) {
	fmt.Fprintln(p.w, banner)
	fmt.Fprintf(p.w, "  %s\n", title)
	fmt.Fprintln(p.w, banner)
}

// ════════════════════════════════════════════════════════════════════
// Bond
// ════════════════════════════════════════════════════════════════════

func (p *printer) bond(inst models.Instrument, m models.BondMetrics, flows []models.CashFlow) error {
	if p.format == "json" {
		return p.emit(struct {
			Instrument models.Instrument  `json:"instrument"`
			Metrics    models.BondMetrics `json:"metrics"`
			CashFlows  []models.CashFlow  `json:"cash_flows,omitempty"`
		}{inst, m, flows})
	}

	p.header("Bond Analytics — " + inst.Name)
	p.instrument(inst)
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "  %-22s %s\n", "Price (per 100):", utils.FormatAmount(m.Price, riskDecimals))
	fmt.Fprintf(p.w, "  %-22s %s years\n", "Macaulay duration:", utils.FormatAmount(m.MacaulayDuration, riskDecimals))
	fmt.Fprintf(p.w, "  %-22s %s\n", "Modified duration:", utils.FormatAmount(m.ModifiedDuration, riskDecimals))
	fmt.Fprintf(p.w, "  %-22s %s\n", "Convexity:", utils.FormatAmount(m.Convexity, riskDecimals))

	if len(flows) > 0 {
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "  %6s %8s %12s %12s\n", "Period", "Time", "Amount", "PV")
		fmt.Fprintf(p.w, "  %s\n", rule)
		for _, cf := range flows {
			fmt.Fprintf(p.w, "  %6d %8s %12s %12s\n",
				cf.Period,
				utils.FormatAmount(cf.Time, 2),
				utils.FormatAmount(cf.Amount, riskDecimals),
				utils.FormatAmount(cf.PresentValue, riskDecimals),
			)
		}
	}
	fmt.Fprintln(p.w, banner)
	return nil
}

func (p *printer) instrument(inst models.Instrument) {
	fmt.Fprintf(p.w, "  %-22s %s\n", "Coupon rate:", utils.FormatPct(inst.CouponRate, p.decimals))
	fmt.Fprintf(p.w, "  %-22s %s years\n", "Maturity:", decimal.NewFromFloat(inst.MaturityYears).String())
	fmt.Fprintf(p.w, "  %-22s %s\n", "Yield to maturity:", utils.FormatPct(inst.YieldToMaturity, p.decimals))
	fmt.Fprintf(p.w, "  %-22s %d\n", "Payments per year:", inst.PaymentsPerYear)
}

// shocks prints the price changes of rows in currency per 100 face. The
// exact change is also shown relative to price.
func (p *printer) shocks(inst models.Instrument, price float64, rows []models.YieldShock) error {
	if p.format == "json" {
		return p.emit(struct {
			Instrument models.Instrument   `json:"instrument"`
			Price      float64             `json:"price"`
			Shocks     []models.YieldShock `json:"shocks"`
		}{inst, price, rows})
	}

	p.header("Yield Shock Table — " + inst.Name)
	p.instrument(inst)
	fmt.Fprintf(p.w, "  %-22s %s\n", "Price (per 100):", utils.FormatAmount(price, riskDecimals))
	fmt.Fprintln(p.w)
	fmt.Fprintf(p.w, "  %8s %12s %12s %12s %10s %10s\n", "Shift", "Duration", "+Convexity", "Exact", "Exact %", "Error")
	fmt.Fprintf(p.w, "  %s\n", rule)
	for _, r := range rows {
		fmt.Fprintf(p.w, "  %8s %12s %12s %12s %10s %10s\n",
			utils.FormatBasisPoints(r.YieldChange),
			utils.FormatSignedAmount(r.DurationOnly, riskDecimals),
			utils.FormatSignedAmount(r.WithConvexity, riskDecimals),
			utils.FormatSignedAmount(r.Exact, riskDecimals),
			utils.FormatChange(r.Exact/price, p.decimals),
			utils.FormatSignedAmount(r.Error, riskDecimals),
		)
	}
	fmt.Fprintln(p.w, banner)
	return nil
}

// ════════════════════════════════════════════════════════════════════
// Simulation
// ════════════════════════════════════════════════════════════════════

func (p *printer) simulation(cfg models.SimulationConfig, results []models.SimulationResult) error {
	if p.format == "json" {
		return p.emit(struct {
			Config  models.SimulationConfig   `json:"config"`
			Results []models.SimulationResult `json:"results"`
		}{cfg, results})
	}

	p.header("Monte Carlo Simulation")
	fmt.Fprintf(p.w, "  %-18s %s\n", "Trials:", utils.FormatAmount(float64(cfg.Trials), 0))
	fmt.Fprintf(p.w, "  %-18s %d\n", "Years:", cfg.Years)
	fmt.Fprintf(p.w, "  %-18s %s\n", "Initial value:", utils.FormatAmount(cfg.InitialValue, p.decimals))

	for _, r := range results {
		fmt.Fprintln(p.w)
		fmt.Fprintf(p.w, "  ── %s (mean %s, stddev %s) ──\n",
			r.Distribution.Name,
			utils.FormatPct(r.Distribution.MeanAnnualReturn, p.decimals),
			utils.FormatPct(r.Distribution.AnnualStdDev, p.decimals),
		)

		fmt.Fprintln(p.w, "  Percentiles:")
		for _, q := range r.Percentiles.Keys() {
			label := "p" + decimal.NewFromFloat(q).Mul(decimal.NewFromInt(100)).String()
			fmt.Fprintf(p.w, "    %-8s %20s\n", label, utils.FormatAmount(r.Percentiles[q], p.decimals))
		}

		s := r.Summary
		fmt.Fprintln(p.w, "  Summary:")
		fmt.Fprintf(p.w, "    %-12s %20s\n", "Mean:", utils.FormatAmount(s.Mean, p.decimals))
		fmt.Fprintf(p.w, "    %-12s %20s\n", "Std dev:", utils.FormatAmount(s.StdDev, p.decimals))
		fmt.Fprintf(p.w, "    %-12s %20s\n", "Min:", utils.FormatAmount(s.Min, p.decimals))
		fmt.Fprintf(p.w, "    %-12s %20s\n", "Max:", utils.FormatAmount(s.Max, p.decimals))
		fmt.Fprintf(p.w, "    %-12s %20s\n", "Shortfall:", utils.FormatPct(s.ProbShortfall, p.decimals))

		p.histogram(r.Histogram)
		fmt.Fprintf(p.w, "  Sample paths: %d captured\n", len(r.SamplePaths))
	}
	fmt.Fprintln(p.w, banner)
	return nil
}

func (p *printer) histogram(bins []models.HistogramBin) {
	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Count)
	}
	if peak == 0 {
		return
	}

	fmt.Fprintln(p.w, "  Histogram:")
	for _, b := range bins {
		bar := strings.Repeat("█", b.Count*barWidth/peak)
		fmt.Fprintf(p.w, "    %10s │%-*s %d\n", utils.FormatCompact(b.Center, 1), barWidth, bar, b.Count)
	}
}

// ════════════════════════════════════════════════════════════════════
// Config
// ════════════════════════════════════════════════════════════════════

func (p *printer) settings(c *config.Config, overrides []config.OverrideStatus) error {
	if p.format == "json" {
		return p.emit(struct {
			Config    *config.Config          `json:"config"`
			Overrides []config.OverrideStatus `json:"overrides"`
		}{c, overrides})
	}

	p.header("investlab — Effective Configuration")
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		fmt.Fprintf(p.w, "  %s\n", line)
	}

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, "  Environment overrides:")
	for _, o := range overrides {
		status := string(o.Source)
		if o.Source == config.SourceEnv {
			status = "✓ " + o.EnvVar + "=" + o.Value
		}
		fmt.Fprintf(p.w, "    %-26s %s\n", o.Key+":", status)
	}
	fmt.Fprintln(p.w, banner)
	return nil
}
