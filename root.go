package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/cyclesync/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
	flagNoHistory  bool
)

// skipConfigCommands lists commands that run without the four-layer config
// resolution, so a broken config file never hides the help text.
// Uses CommandPath() so nested commands never collide.
var skipConfigCommands = map[string]bool{
	"cyclesync help": true,
}

// CLIFlags are the persistent flag values a command may consult.
type CLIFlags struct {
	JSON    bool
	Verbose bool
	Quiet   bool
}

// CLIContext carries everything a subcommand needs after the root pre-run
// phase: the resolved config, a logger, and the output streams.
type CLIContext struct {
	Flags  CLIFlags
	Cfg    *config.Resolved
	Logger *slog.Logger
	Out    io.Writer
	Err    io.Writer
}

type cliContextKey struct{}

// withCLIContext returns a child context carrying cc.
func withCLIContext(ctx context.Context, cc *CLIContext) context.Context {
	return context.WithValue(ctx, cliContextKey{}, cc)
}

// cliContextFrom returns the CLIContext stored by the root pre-run, or nil.
func cliContextFrom(ctx context.Context) *CLIContext {
	cc, _ := ctx.Value(cliContextKey{}).(*CLIContext)
	return cc
}

// mustCLIContext is cliContextFrom for commands that cannot run without
// configuration. A missing context is a programming error.
func mustCLIContext(ctx context.Context) *CLIContext {
	cc := cliContextFrom(ctx)
	if cc == nil {
		panic("cyclesync: command ran without CLIContext")
	}

	return cc
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cyclesync",
		Short: "Step counter for label charts driven by a cyclic instruction sequence",
		Long: `cyclesync walks a chart of labelled states under a repeating L/R
instruction sequence. It counts the steps from one label to another, and
finds the first step at which a whole set of simultaneous walkers stand on
accepting labels together.`,
		Version: version,
		// Silence Cobra's default error/usage printing; main prints errors.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfigCommands[cmd.CommandPath()] {
				return nil
			}

			return loadConfig(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "only log errors")
	cmd.PersistentFlags().BoolVar(&flagNoHistory, "no-history", false, "do not read or write the run ledger")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(newPathCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newCyclesCmd())
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// loadConfig resolves the effective configuration from the four-layer
// override chain and attaches a CLIContext to the command's context.
func loadConfig(cmd *cobra.Command) error {
	cli := config.CLIOverrides{
		ConfigPath:   flagConfigPath,
		NoHistory:    flagNoHistory,
		StartLabel:   changedString(cmd, "start"),
		GoalLabel:    changedString(cmd, "goal"),
		StartSuffix:  changedString(cmd, "start-suffix"),
		AcceptSuffix: changedString(cmd, "accept-suffix"),
	}

	if cmd.Flags().Changed("workers") {
		workers, err := cmd.Flags().GetInt("workers")
		if err != nil {
			return fmt.Errorf("reading --workers: %w", err)
		}

		cli.Workers = &workers
	}

	resolved, err := config.Resolve(config.ReadEnvOverrides(), cli)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cc := &CLIContext{
		Flags:  CLIFlags{JSON: flagJSON, Verbose: flagVerbose, Quiet: flagQuiet},
		Cfg:    resolved,
		Logger: buildLogger(resolved, cmd.ErrOrStderr()),
		Out:    cmd.OutOrStdout(),
		Err:    cmd.ErrOrStderr(),
	}

	cc.Logger.Debug("config resolved",
		slog.String("config_path", resolved.ConfigPath),
		slog.Int("workers", resolved.Workers),
		slog.Bool("history", resolved.History),
	)

	cmd.SetContext(withCLIContext(cmd.Context(), cc))

	return nil
}

// changedString returns the value of a command-local string flag when the
// user set it explicitly, and nil otherwise (including when the command
// has no such flag).
func changedString(cmd *cobra.Command, name string) *string {
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return nil
	}

	v := f.Value.String()

	return &v
}

// buildLogger creates an slog.Logger configured by the resolved config and
// CLI flags. Config-file log level provides the baseline; --verbose and
// --quiet override it because CLI flags always win.
func buildLogger(cfg *config.Resolved, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	format := "auto"

	// Config-based log level (lower priority than CLI flags).
	if cfg != nil {
		switch cfg.LogLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}

		format = cfg.LogFormat
	}

	// CLI flags override config (highest priority).
	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if useJSONLogs(format, w) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}

// useJSONLogs resolves log_format. "auto" picks text for an interactive
// terminal and JSON for everything else (pipes, files, log collectors).
func useJSONLogs(format string, w io.Writer) bool {
	switch format {
	case "json":
		return true
	case "text":
		return false
	}

	f, ok := w.(*os.File)
	if !ok {
		return true
	}

	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
