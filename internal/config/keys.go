package config

import (
	"os"
	"strings"
)

// SettingSource represents where an effective setting comes from.
type SettingSource string

const (
	SourceEnv     SettingSource = "env"
	SourceDefault SettingSource = "default/config"
)

// OverrideStatus describes one environment override of a setting.
type OverrideStatus struct {
	Key    string        `json:"key"`     // dotted config key, e.g. simulation.trials
	EnvVar string        `json:"env_var"` // e.g. INVESTLAB_SIMULATION_TRIALS
	Source SettingSource `json:"source"`
	Value  string        `json:"value,omitempty"` // raw env value when set
}

// overridableKeys are the scalar settings that can be set from the
// environment.
var overridableKeys = []string{
	"simulation.trials",
	"simulation.years",
	"simulation.initial_value",
	"simulation.paths",
	"simulation.bins",
	"simulation.workers",
	"simulation.seed",
	"simulation.chunk_size",
	"bond.coupon_rate",
	"bond.maturity_years",
	"bond.yield",
	"bond.payments_per_year",
	"logging.level",
	"logging.format",
	"output.format",
	"output.decimals",
}

// CheckOverrides reports, for every overridable key, whether an environment
// variable currently overrides it.
func CheckOverrides() []OverrideStatus {
	out := make([]OverrideStatus, 0, len(overridableKeys))
	for _, key := range overridableKeys {
		out = append(out, checkOverride(key))
	}
	return out
}

func checkOverride(key string) OverrideStatus {
	env := envVar(key)
	s := OverrideStatus{Key: key, EnvVar: env, Source: SourceDefault}
	if val, ok := os.LookupEnv(env); ok {
		s.Source = SourceEnv
		s.Value = val
	}
	return s
}

// envVar maps a dotted key to its environment variable name.
func envVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
