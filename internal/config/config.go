// Package config handles configuration loading for investlab.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/seenimoa/investlab/pkg/models"
)

// EnvPrefix is prepended to every environment override, e.g.
// INVESTLAB_SIMULATION_TRIALS.
const EnvPrefix = "INVESTLAB"

// Config represents the complete application configuration.
type Config struct {
	Simulation    SimulationConfig     `mapstructure:"simulation"    yaml:"simulation"`
	Distributions []DistributionConfig `mapstructure:"distributions" yaml:"distributions"`
	Bond          BondConfig           `mapstructure:"bond"          yaml:"bond"`
	Logging       LoggingConfig        `mapstructure:"logging"       yaml:"logging"`
	Output        OutputConfig         `mapstructure:"output"        yaml:"output"`
}

// SimulationConfig holds Monte Carlo run parameters.
type SimulationConfig struct {
	Trials         int       `mapstructure:"trials"          yaml:"trials"`
	Years          int       `mapstructure:"years"           yaml:"years"`
	InitialValue   float64   `mapstructure:"initial_value"   yaml:"initial_value"`
	PathsToCapture int       `mapstructure:"paths"           yaml:"paths"`
	HistogramBins  int       `mapstructure:"bins"            yaml:"bins"`
	Percentiles    []float64 `mapstructure:"percentiles"     yaml:"percentiles"`
	Workers        int       `mapstructure:"workers"         yaml:"workers"`    // 0 = GOMAXPROCS
	Seed           uint64    `mapstructure:"seed"            yaml:"seed"`       // 0 = random per run
	ChunkSize      int       `mapstructure:"chunk_size"      yaml:"chunk_size"` // trials per worker task
}

// DistributionConfig describes one simulated strategy.
type DistributionConfig struct {
	Name   string  `mapstructure:"name"   yaml:"name"`
	Mean   float64 `mapstructure:"mean"   yaml:"mean"`   // annual, e.g. 0.07
	StdDev float64 `mapstructure:"stddev" yaml:"stddev"` // annual, e.g. 0.35
}

// BondConfig holds the default instrument and the yield shocks to tabulate.
type BondConfig struct {
	Name            string    `mapstructure:"name"              yaml:"name"`
	CouponRate      float64   `mapstructure:"coupon_rate"       yaml:"coupon_rate"`
	MaturityYears   float64   `mapstructure:"maturity_years"    yaml:"maturity_years"`
	Yield           float64   `mapstructure:"yield"             yaml:"yield"`
	PaymentsPerYear int       `mapstructure:"payments_per_year" yaml:"payments_per_year"`
	Shocks          []float64 `mapstructure:"shocks"            yaml:"shocks"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// OutputConfig controls how the CLI prints results.
type OutputConfig struct {
	Format   string `mapstructure:"format"   yaml:"format"`   // "text" or "json"
	Decimals int32  `mapstructure:"decimals" yaml:"decimals"` // rounding of displayed amounts
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.investlab/config.yaml (home directory)
//  3. /etc/investlab/config.yaml (system)
//
// Environment variables override config file values.
// Format: INVESTLAB_<SECTION>_<KEY>, e.g., INVESTLAB_SIMULATION_TRIALS
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".investlab"))
	v.AddConfigPath("/etc/investlab")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Simulation defaults
	v.SetDefault("simulation.trials", 10000)
	v.SetDefault("simulation.years", 10)
	v.SetDefault("simulation.initial_value", 200000000)
	v.SetDefault("simulation.paths", 20)
	v.SetDefault("simulation.bins", 40)
	v.SetDefault("simulation.percentiles", models.DefaultPercentiles)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.chunk_size", 1024)

	// Concentrated single holding vs diversified portfolio
	v.SetDefault("distributions", []map[string]any{
		{"name": "concentrated", "mean": 0.07, "stddev": 0.35},
		{"name": "diversified", "mean": 0.06, "stddev": 0.12},
	})

	// Bond defaults
	v.SetDefault("bond.name", "10Y Treasury")
	v.SetDefault("bond.coupon_rate", 0.048)
	v.SetDefault("bond.maturity_years", 10)
	v.SetDefault("bond.yield", 0.0521)
	v.SetDefault("bond.payments_per_year", 1)
	v.SetDefault("bond.shocks", []float64{-0.02, -0.01, 0.01, 0.02})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Output defaults
	v.SetDefault("output.format", "text")
	v.SetDefault("output.decimals", 2)
}

// Validate checks the enumerated settings. Numeric ranges of the simulation
// and the bond are checked by the engines themselves.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: must be text or json, got %q", c.Logging.Format)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format: must be text or json, got %q", c.Output.Format)
	}
	if c.Output.Decimals < 0 || c.Output.Decimals > 8 {
		return fmt.Errorf("output.decimals: must be between 0 and 8, got %d", c.Output.Decimals)
	}
	return nil
}

// SimulationParams converts the simulation section into engine input.
func (c *Config) SimulationParams() models.SimulationConfig {
	s := c.Simulation
	return models.SimulationConfig{
		Trials:         s.Trials,
		Years:          s.Years,
		InitialValue:   s.InitialValue,
		PathsToCapture: s.PathsToCapture,
		HistogramBins:  s.HistogramBins,
		Percentiles:    append([]float64(nil), s.Percentiles...),
	}
}

// ReturnDistributions converts the distributions section into engine input.
func (c *Config) ReturnDistributions() []models.ReturnDistribution {
	out := make([]models.ReturnDistribution, len(c.Distributions))
	for i, d := range c.Distributions {
		out[i] = models.ReturnDistribution{
			Name:             d.Name,
			MeanAnnualReturn: d.Mean,
			AnnualStdDev:     d.StdDev,
		}
	}
	return out
}

// Instrument converts the bond section into an instrument.
func (c *Config) Instrument() models.Instrument {
	return models.Instrument{
		Name:            c.Bond.Name,
		CouponRate:      c.Bond.CouponRate,
		MaturityYears:   c.Bond.MaturityYears,
		YieldToMaturity: c.Bond.Yield,
		PaymentsPerYear: c.Bond.PaymentsPerYear,
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
