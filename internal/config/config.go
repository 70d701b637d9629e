package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Defaults restore the original simulation setup: 1000 iterations over a
// market starting at price 200 with 100000 units in stock, and a mixed
// population of 100 agents.
const (
	defaultLogLevel     = "info"
	defaultInitialPrice = 200.0
	defaultIterations   = 1000
	defaultInitialStock = 100000
	defaultCapital      = 1000.0
	defaultStorePath    = "data/runs.db"
	defaultServerAddr   = ":9991"
)

func defaultDistribution() map[string]int {
	return map[string]int{
		"random":         51,
		"trend_follower": 24,
		"contrarian":     24,
		"custom":         1,
	}
}

// Load reads the YAML file at path, applies defaults for unset keys, and
// validates the result. An empty path loads pure defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	applyDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	// Viper merges map defaults key by key, which would mix the default
	// population into a user-supplied one; apply this default whole.
	if len(cfg.Sim.Agents.Distribution) == 0 {
		cfg.Sim.Agents.Distribution = defaultDistribution()
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.log_level", defaultLogLevel)
	v.SetDefault("sim.initial_price", defaultInitialPrice)
	v.SetDefault("sim.iterations", defaultIterations)
	v.SetDefault("sim.initial_stock", defaultInitialStock)
	v.SetDefault("sim.agents.capital", defaultCapital)
	v.SetDefault("sim.agents.units", 0)
	v.SetDefault("store.path", defaultStorePath)
	v.SetDefault("report.console", true)
	v.SetDefault("server.addr", defaultServerAddr)
}
