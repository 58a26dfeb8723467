package config

import (
	"errors"
	"fmt"

	"github.com/tonimelisma/cyclesync/internal/chart"
)

// Validation range constants.
const (
	minWorkers = 1
	maxWorkers = 64
)

// Validate checks all configuration values and returns all errors found.
// It accumulates every error rather than stopping at the first, so users
// see a complete report and can fix all issues in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateSelectors(&cfg.SelectorsConfig)...)
	errs = append(errs, validateSolver(&cfg.SolverConfig)...)
	errs = append(errs, validateLogging(&cfg.LoggingConfig)...)

	return errors.Join(errs...)
}

func validateSelectors(s *SelectorsConfig) []error {
	var errs []error

	for _, f := range []struct{ field, value string }{
		{"start_label", s.StartLabel},
		{"goal_label", s.GoalLabel},
	} {
		if _, err := chart.ParseSelector("=" + f.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid label %q", f.field, f.value))
		}
	}

	for _, f := range []struct{ field, value string }{
		{"start_suffix", s.StartSuffix},
		{"accept_suffix", s.AcceptSuffix},
	} {
		if _, err := chart.ParseSelector("*" + f.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: must not be empty", f.field))
		}
	}

	return errs
}

func validateSolver(s *SolverConfig) []error {
	if s.Workers < minWorkers || s.Workers > maxWorkers {
		return []error{fmt.Errorf("workers: must be between %d and %d, got %d",
			minWorkers, maxWorkers, s.Workers)}
	}

	return nil
}

func validateLogging(l *LoggingConfig) []error {
	var errs []error

	errs = append(errs, validateLogLevel(l.LogLevel)...)
	errs = append(errs, validateLogFormat(l.LogFormat)...)

	return errs
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func validateLogLevel(level string) []error {
	if !validLogLevels[level] {
		return []error{fmt.Errorf("log_level: must be one of debug, info, warn, error; got %q", level)}
	}

	return nil
}

var validLogFormats = map[string]bool{
	"auto": true,
	"text": true,
	"json": true,
}

func validateLogFormat(format string) []error {
	if !validLogFormats[format] {
		return []error{fmt.Errorf("log_format: must be one of auto, text, json; got %q", format)}
	}

	return nil
}
