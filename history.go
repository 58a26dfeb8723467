package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/cyclesync/internal/chart"
	"github.com/tonimelisma/cyclesync/internal/ledger"
)

const defaultHistoryLimit = 20

// openHistory opens the run ledger, or returns nil when history is
// disabled by config or --no-history.
func openHistory(ctx context.Context, cc *CLIContext) (*ledger.Store, error) {
	if !cc.Cfg.History {
		return nil, nil
	}

	store, err := ledger.Open(ctx, cc.Cfg.HistoryDB, cc.Logger)
	if err != nil {
		return nil, fmt.Errorf("opening run history: %w", err)
	}

	return store, nil
}

// closeHistory closes store if it is open, logging any failure.
func closeHistory(store *ledger.Store, logger *slog.Logger) {
	if store == nil {
		return
	}

	if err := store.Close(); err != nil {
		logger.Warn("closing run history", slog.String("error", err.Error()))
	}
}

// recordRun stores the outcome of a solve. A nil store is a no-op. Runs
// interrupted by shutdown are not recorded; ledger write failures are
// logged and never fail the command that produced the answer.
func recordRun(ctx context.Context, store *ledger.Store, logger *slog.Logger, run ledger.Run, solveErr error) {
	if store == nil {
		return
	}

	if errors.Is(solveErr, context.Canceled) {
		return
	}

	if solveErr != nil {
		run.Outcome = ledger.OutcomeFailed
		run.Failure = solveErr.Error()
	} else {
		run.Outcome = ledger.OutcomeSolved
	}

	// The caller's context may already be canceled by the time a long
	// solve finishes; the record itself is quick and should still land.
	if _, err := store.Record(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("recording run", slog.String("error", err.Error()))
	}
}

// selectorKey names the selectors of a run in the ledger, e.g. "*A *Z".
func selectorKey(from, to chart.Selector) string {
	return from.String() + " " + to.String()
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs from the run ledger",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", defaultHistoryLimit, "maximum number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return fmt.Errorf("reading --limit: %w", err)
	}

	store, err := ledger.Open(cmd.Context(), cc.Cfg.HistoryDB, cc.Logger)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	defer closeHistory(store, cc.Logger)

	runs, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if cc.Flags.JSON {
		if runs == nil {
			runs = []ledger.Run{}
		}

		return writeJSON(cc.Out, runs)
	}

	if len(runs) == 0 {
		cc.Statusf("No runs recorded in %s\n", cc.Cfg.HistoryDB)
		return nil
	}

	printHistoryTable(cc, runs, time.Now())

	return nil
}

func printHistoryTable(cc *CLIContext, runs []ledger.Run, now time.Time) {
	headers := []string{"WHEN", "MODE", "SELECTOR", "OUTCOME", "ANSWER", "ELAPSED", "CHART"}
	rows := make([][]string, 0, len(runs))

	for i := range runs {
		r := &runs[i]

		answer := formatSteps(r.Answer)
		if !r.Solved() {
			answer = r.Failure
		}

		rows = append(rows, []string{
			formatWhen(r.StartedAt, now),
			r.Mode,
			r.Selector,
			r.Outcome,
			answer,
			formatElapsed(r.Duration),
			shortDigest(r.Digest),
		})
	}

	printTable(cc.Out, headers, rows)
}
