package config

import "os"

// Environment variable names for overrides.
const (
	EnvConfig    = "CYCLESYNC_CONFIG"
	EnvHistoryDB = "CYCLESYNC_HISTORY_DB"
	EnvLogLevel  = "CYCLESYNC_LOG_LEVEL"
)

// EnvOverrides holds values derived from environment variables.
type EnvOverrides struct {
	ConfigPath string // CYCLESYNC_CONFIG: override config file path
	HistoryDB  string // CYCLESYNC_HISTORY_DB: ledger database path
	LogLevel   string // CYCLESYNC_LOG_LEVEL: log level
}

// ReadEnvOverrides reads environment variables and returns any overrides found.
// This does not modify the Config; Resolve applies the relevant fields.
func ReadEnvOverrides() EnvOverrides {
	return EnvOverrides{
		ConfigPath: os.Getenv(EnvConfig),
		HistoryDB:  os.Getenv(EnvHistoryDB),
		LogLevel:   os.Getenv(EnvLogLevel),
	}
}
