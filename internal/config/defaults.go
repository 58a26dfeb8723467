package config

// Default values for configuration options. These are "layer 0" of the
// override chain and match the conventional chart labels.
const (
	defaultStartLabel   = "AAA"
	defaultGoalLabel    = "ZZZ"
	defaultStartSuffix  = "A"
	defaultAcceptSuffix = "Z"
	defaultWorkers      = 4
	defaultLogLevel     = "info"
	defaultLogFormat    = "auto"
)

// DefaultConfig returns a Config populated with all default values.
// This is used both as the starting point for TOML decoding (so unset
// fields retain defaults) and as the fallback when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		SelectorsConfig: defaultSelectorsConfig(),
		SolverConfig:    SolverConfig{Workers: defaultWorkers},
		HistoryConfig:   HistoryConfig{History: true},
		LoggingConfig:   defaultLoggingConfig(),
	}
}

func defaultSelectorsConfig() SelectorsConfig {
	return SelectorsConfig{
		StartLabel:   defaultStartLabel,
		GoalLabel:    defaultGoalLabel,
		StartSuffix:  defaultStartSuffix,
		AcceptSuffix: defaultAcceptSuffix,
	}
}

func defaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}
}
