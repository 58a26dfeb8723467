// Package config implements TOML configuration loading, validation, and
// platform-specific path resolution for cyclesync. It supports a four-layer
// override chain (defaults -> config file -> environment -> CLI flags).
// All keys are flat top-level keys; the sub-structs below only group them.
package config

// Config is the top-level configuration structure parsed from a TOML file.
type Config struct {
	SelectorsConfig
	SolverConfig
	HistoryConfig
	LoggingConfig
}

// SelectorsConfig chooses the start, goal, and accepting states by label.
// Path mode walks StartLabel -> GoalLabel; sync mode starts from every label
// ending in StartSuffix and accepts labels ending in AcceptSuffix.
type SelectorsConfig struct {
	StartLabel   string `toml:"start_label"`
	GoalLabel    string `toml:"goal_label"`
	StartSuffix  string `toml:"start_suffix"`
	AcceptSuffix string `toml:"accept_suffix"`
}

// SolverConfig controls solver concurrency.
type SolverConfig struct {
	Workers int `toml:"workers"`
}

// HistoryConfig controls the run ledger. An empty HistoryDB means the
// platform default under DefaultDataDir.
type HistoryConfig struct {
	History   bool   `toml:"history"`
	HistoryDB string `toml:"history_db"`
}

// LoggingConfig controls log output: level and format.
type LoggingConfig struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// CLIOverrides holds values from CLI flags that override config file and
// environment settings. Pointer fields distinguish "not specified" (nil)
// from "explicitly set to the zero value".
type CLIOverrides struct {
	ConfigPath   string // --config flag (empty = use default)
	StartLabel   *string
	GoalLabel    *string
	StartSuffix  *string
	AcceptSuffix *string
	Workers      *int
	NoHistory    bool // --no-history
}

// Resolved is the effective configuration after all four layers have been
// applied. HistoryDB is always a concrete path.
type Resolved struct {
	Config

	// ConfigPath is the file that was consulted, whether or not it existed.
	ConfigPath string
}
