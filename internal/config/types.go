package config

// Config is the top-level configuration for one simulation binary.
type Config struct {
	App    AppConfig    `mapstructure:"app" yaml:"app"`
	Sim    SimConfig    `mapstructure:"sim" yaml:"sim"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Report ReportConfig `mapstructure:"report" yaml:"report"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogPath  string `mapstructure:"log_path" yaml:"log_path"`
}

// SimConfig carries the market construction parameters. Seed 0 means a
// time-seeded run; any other value makes the run reproducible.
type SimConfig struct {
	InitialPrice float64      `mapstructure:"initial_price" yaml:"initial_price"`
	Iterations   int          `mapstructure:"iterations" yaml:"iterations"`
	InitialStock int          `mapstructure:"initial_stock" yaml:"initial_stock"`
	Seed         int64        `mapstructure:"seed" yaml:"seed"`
	Agents       AgentsConfig `mapstructure:"agents" yaml:"agents"`
}

// AgentsConfig describes the population: every agent starts from the same
// capital and units; the distribution maps agent kind to count.
type AgentsConfig struct {
	Capital      float64        `mapstructure:"capital" yaml:"capital"`
	Units        int            `mapstructure:"units" yaml:"units"`
	Distribution map[string]int `mapstructure:"distribution" yaml:"distribution"`
}

type StoreConfig struct {
	// Path of the SQLite results database. Empty disables persistence.
	Path string `mapstructure:"path" yaml:"path"`
}

type ReportConfig struct {
	// Console mirrors every iteration to the log, one line per turn.
	Console bool `mapstructure:"console" yaml:"console"`
	// ChartPath, when set, receives a standalone HTML chart of the run.
	ChartPath string `mapstructure:"chart_path" yaml:"chart_path"`
	// RunConfigPath, when set, receives the resolved config as YAML so a
	// run can be replayed exactly.
	RunConfigPath string `mapstructure:"run_config_path" yaml:"run_config_path"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}
