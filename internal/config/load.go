package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file, validates it, and returns the
// resulting Config. Unknown keys are fatal errors with "did you mean?"
// suggestions, so a typo never silently falls back to a default.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns
// a Config populated with all default values.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// Resolve loads configuration and applies the four-layer override chain:
// defaults -> config file -> environment variables -> CLI flags.
func Resolve(env EnvOverrides, cli CLIOverrides) (*Resolved, error) {
	// 1. Resolve config path: CLI > env > default
	cfgPath := DefaultConfigPath()
	if env.ConfigPath != "" {
		cfgPath = env.ConfigPath
	}

	if cli.ConfigPath != "" {
		cfgPath = cli.ConfigPath
	}

	// 2. Load config file (returns defaults if no file exists)
	cfg, err := LoadOrDefault(cfgPath)
	if err != nil {
		return nil, err
	}

	resolved := &Resolved{Config: *cfg, ConfigPath: cfgPath}

	// 3. Apply env overrides
	if env.HistoryDB != "" {
		resolved.HistoryDB = env.HistoryDB
	}

	if env.LogLevel != "" {
		resolved.LogLevel = env.LogLevel
	}

	// 4. Apply CLI overrides (pointer fields: nil = not specified)
	applyCLIOverrides(resolved, cli)

	if resolved.HistoryDB == "" {
		resolved.HistoryDB = DefaultHistoryPath()
	}

	// 5. Validate the final merged result
	if err := Validate(&resolved.Config); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return resolved, nil
}

func applyCLIOverrides(r *Resolved, cli CLIOverrides) {
	if cli.StartLabel != nil {
		r.StartLabel = *cli.StartLabel
	}

	if cli.GoalLabel != nil {
		r.GoalLabel = *cli.GoalLabel
	}

	if cli.StartSuffix != nil {
		r.StartSuffix = *cli.StartSuffix
	}

	if cli.AcceptSuffix != nil {
		r.AcceptSuffix = *cli.AcceptSuffix
	}

	if cli.Workers != nil {
		r.Workers = *cli.Workers
	}

	if cli.NoHistory {
		r.History = false
	}
}
