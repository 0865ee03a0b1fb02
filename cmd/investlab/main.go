// investlab: quantitative engine behind the investment-analysis dashboard.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/seenimoa/investlab/internal/analysis/fixedincome"
	"github.com/seenimoa/investlab/internal/config"
	"github.com/seenimoa/investlab/internal/logger"
	"github.com/seenimoa/investlab/internal/montecarlo"
	"github.com/seenimoa/investlab/pkg/models"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger
var (
	cfg  *config.Config
	logr *zap.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if logr != nil {
		_ = logr.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "investlab",
	Short: "investlab — bond analytics and Monte Carlo return simulation",
	Long: `investlab computes fixed-income risk measures (price, Macaulay and
modified duration, convexity) and simulates the distribution of long-horizon
portfolio values under normally distributed annual returns.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.Logging.Level = level
		}
		if format, _ := cmd.Flags().GetString("output"); format != "" {
			cfg.Output.Format = format
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logr, err = logger.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format override (text, json)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(bondCmd)
	rootCmd.AddCommand(shockCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(configCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "investlab %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "  built:   %s\n", date)
	},
}

// --- Bond Command ---

var bondCmd = &cobra.Command{
	Use:   "bond",
	Short: "Compute price, duration and convexity of a fixed-coupon bond",
	Long: `Compute price (per 100 face), Macaulay duration, modified duration and
convexity. Instrument parameters default to the bond section of the config.

Examples:
  investlab bond
  investlab bond --coupon 0.03 --maturity 30 --yield 0.045 --freq 2
  investlab bond --cashflows -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := instrumentFromFlags(cmd)
		if err != nil {
			return err
		}

		m, err := fixedincome.ComputeBondMetrics(inst)
		if err != nil {
			return err
		}
		logr.Debug("bond metrics computed",
			zap.String("instrument", inst.Name),
			zap.Float64("price", m.Price),
			zap.Float64("modified_duration", m.ModifiedDuration),
		)

		var flows []models.CashFlow
		if withFlows, _ := cmd.Flags().GetBool("cashflows"); withFlows {
			if flows, err = fixedincome.CashFlows(inst); err != nil {
				return err
			}
		}
		return newPrinter(cmd.OutOrStdout(), cfg.Output).bond(inst, m, flows)
	},
}

// --- Shock Command ---

var shockCmd = &cobra.Command{
	Use:   "shock",
	Short: "Compare duration-convexity price estimates with exact repricing",
	Long: `Tabulate the estimated price change for parallel yield shifts using
duration only, duration plus convexity, and exact repricing.

Examples:
  investlab shock
  investlab shock --shocks -0.03,-0.01,0.01,0.03`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := instrumentFromFlags(cmd)
		if err != nil {
			return err
		}
		shocks := cfg.Bond.Shocks
		if cmd.Flags().Changed("shocks") {
			shocks, _ = cmd.Flags().GetFloat64Slice("shocks")
		}

		m, err := fixedincome.ComputeBondMetrics(inst)
		if err != nil {
			return err
		}
		rows, err := fixedincome.ShockTable(inst, shocks)
		if err != nil {
			return err
		}
		return newPrinter(cmd.OutOrStdout(), cfg.Output).shocks(inst, m.Price, rows)
	},
}

func init() {
	for _, c := range []*cobra.Command{bondCmd, shockCmd} {
		c.Flags().String("name", "", "instrument label")
		c.Flags().Float64("coupon", 0, "annual coupon rate as a fraction (e.g. 0.048)")
		c.Flags().Float64("maturity", 0, "years to maturity")
		c.Flags().Float64("yield", 0, "yield to maturity as a fraction (e.g. 0.0521)")
		c.Flags().Int("freq", 0, "coupon payments per year (1 or 2)")
	}
	bondCmd.Flags().Bool("cashflows", false, "include the discounted cash flow schedule")
	shockCmd.Flags().Float64Slice("shocks", nil, "yield shifts as fractions (default: bond.shocks)")
}

// instrumentFromFlags starts from the configured bond and applies any
// explicitly set flags.
func instrumentFromFlags(cmd *cobra.Command) (models.Instrument, error) {
	inst := cfg.Instrument()
	f := cmd.Flags()
	if f.Changed("name") {
		inst.Name, _ = f.GetString("name")
	}
	if f.Changed("coupon") {
		inst.CouponRate, _ = f.GetFloat64("coupon")
	}
	if f.Changed("maturity") {
		inst.MaturityYears, _ = f.GetFloat64("maturity")
	}
	if f.Changed("yield") {
		inst.YieldToMaturity, _ = f.GetFloat64("yield")
	}
	if f.Changed("freq") {
		inst.PaymentsPerYear, _ = f.GetInt("freq")
	}
	return inst, fixedincome.Validate(inst)
}

// --- Simulate Command ---

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a Monte Carlo simulation of terminal portfolio values",
	Long: `Simulate compounding of an initial value under normally distributed
annual returns for every configured distribution and report percentiles, a
histogram, summary statistics and sample paths.

Examples:
  investlab simulate
  investlab simulate --trials 50000 --years 20 --seed 42
  investlab simulate --dist fund:0.07:0.35 --dist portfolio:0.06:0.12 -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		simCfg, dists, err := simulationFromFlags(cmd)
		if err != nil {
			return err
		}

		seed := cfg.Simulation.Seed
		if cmd.Flags().Changed("seed") {
			seed, _ = cmd.Flags().GetUint64("seed")
		}
		workers := cfg.Simulation.Workers
		if cmd.Flags().Changed("workers") {
			workers, _ = cmd.Flags().GetInt("workers")
		}

		engine := montecarlo.NewEngine(montecarlo.Options{
			Workers:   workers,
			Seed:      seed,
			ChunkSize: cfg.Simulation.ChunkSize,
			Logger:    logr,
		})
		results, err := engine.Run(cmd.Context(), dists, simCfg)
		if err != nil {
			return err
		}

		full, _ := cmd.Flags().GetBool("full")
		if !full {
			for i := range results {
				results[i].TerminalValues = nil
			}
		}
		return newPrinter(cmd.OutOrStdout(), cfg.Output).simulation(simCfg, results)
	},
}

func init() {
	simulateCmd.Flags().Int("trials", 0, "number of trials (default: simulation.trials)")
	simulateCmd.Flags().Int("years", 0, "horizon in years (default: simulation.years)")
	simulateCmd.Flags().Float64("initial", 0, "initial value (default: simulation.initial_value)")
	simulateCmd.Flags().Int("paths", 0, "sample paths to capture (default: simulation.paths)")
	simulateCmd.Flags().Int("bins", 0, "histogram bins (default: simulation.bins)")
	simulateCmd.Flags().Float64Slice("percentiles", nil, "quantiles to report (default: simulation.percentiles)")
	simulateCmd.Flags().Uint64("seed", 0, "random seed, 0 for a random seed (default: simulation.seed)")
	simulateCmd.Flags().Int("workers", 0, "concurrent workers (default: simulation.workers)")
	simulateCmd.Flags().StringArray("dist", nil, "distribution as name:mean:stddev, repeatable (default: distributions)")
	simulateCmd.Flags().Bool("full", false, "include every sorted terminal value in the output")
}

// simulationFromFlags starts from the configured simulation and applies any
// explicitly set flags.
func simulationFromFlags(cmd *cobra.Command) (models.SimulationConfig, []models.ReturnDistribution, error) {
	sim := cfg.SimulationParams()
	f := cmd.Flags()
	if f.Changed("trials") {
		sim.Trials, _ = f.GetInt("trials")
	}
	if f.Changed("years") {
		sim.Years, _ = f.GetInt("years")
	}
	if f.Changed("initial") {
		sim.InitialValue, _ = f.GetFloat64("initial")
	}
	if f.Changed("paths") {
		sim.PathsToCapture, _ = f.GetInt("paths")
	}
	if f.Changed("bins") {
		sim.HistogramBins, _ = f.GetInt("bins")
	}
	if f.Changed("percentiles") {
		sim.Percentiles, _ = f.GetFloat64Slice("percentiles")
	}

	dists := cfg.ReturnDistributions()
	if f.Changed("dist") {
		raw, _ := f.GetStringArray("dist")
		dists = nil
		for _, s := range raw {
			d, err := parseDistribution(s)
			if err != nil {
				return sim, nil, err
			}
			dists = append(dists, d)
		}
	}
	return sim, dists, montecarlo.Validate(dists, sim)
}

// parseDistribution parses "name:mean:stddev".
func parseDistribution(s string) (models.ReturnDistribution, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return models.ReturnDistribution{}, fmt.Errorf("distribution %q: want name:mean:stddev", s)
	}
	mean, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return models.ReturnDistribution{}, fmt.Errorf("distribution %q: mean: %w", s, err)
	}
	sd, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return models.ReturnDistribution{}, fmt.Errorf("distribution %q: stddev: %w", s, err)
	}
	return models.ReturnDistribution{Name: parts[0], MeanAnnualReturn: mean, AnnualStdDev: sd}, nil
}

// --- Config Command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and environment overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		return newPrinter(cmd.OutOrStdout(), cfg.Output).settings(cfg, config.CheckOverrides())
	},
}
