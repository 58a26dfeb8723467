package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/cyclesync/internal/chart"
	"github.com/tonimelisma/cyclesync/internal/ledger"
	"github.com/tonimelisma/cyclesync/internal/walk"
)

func newPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path FILE",
		Short: "Count the steps from the start label to the goal label",
		Long: `Walk the chart in FILE from the start label, following the instruction
sequence, and print the number of steps until the goal label is first
reached. FILE may be "-" for standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: runPath,
	}

	cmd.Flags().String("start", "", "start label (default from config: start_label)")
	cmd.Flags().String("goal", "", "goal label (default from config: goal_label)")

	return cmd
}

// pathResult is the JSON shape of a path answer.
type pathResult struct {
	File    string        `json:"file"`
	Digest  string        `json:"digest"`
	Start   string        `json:"start"`
	Goal    string        `json:"goal"`
	Steps   uint64        `json:"steps"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

func runPath(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	ch, err := loadChart(cmd, args[0])
	if err != nil {
		return err
	}

	start, ok := ch.Lookup(cc.Cfg.StartLabel)
	if !ok {
		return fmt.Errorf("start label %q is not defined in %s", cc.Cfg.StartLabel, args[0])
	}

	goal, ok := ch.Lookup(cc.Cfg.GoalLabel)
	if !ok {
		return fmt.Errorf("goal label %q is not defined in %s", cc.Cfg.GoalLabel, args[0])
	}

	// Acceptance plays no part in a single-path walk.
	g, err := ch.Graph(chart.Selector{})
	if err != nil {
		return err
	}

	store, err := openHistory(ctx, cc)
	if err != nil {
		return err
	}
	defer closeHistory(store, cc.Logger)

	solver := walk.NewSolver(walk.SolverConfig{Workers: cc.Cfg.Workers, Logger: cc.Logger})

	began := time.Now()
	steps, solveErr := solver.Path(g, start, goal)
	elapsed := time.Since(began)

	recordRun(ctx, store, cc.Logger, ledger.Run{
		Digest:    ch.Digest(),
		Mode:      ledger.ModePath,
		Selector:  selectorKey(chart.Exact(cc.Cfg.StartLabel), chart.Exact(cc.Cfg.GoalLabel)),
		Answer:    steps,
		Starts:    1,
		StartedAt: began,
		Duration:  elapsed,
	}, solveErr)

	if solveErr != nil {
		return fmt.Errorf("walking %s -> %s: %w", cc.Cfg.StartLabel, cc.Cfg.GoalLabel, solveErr)
	}

	if cc.Flags.JSON {
		return writeJSON(cc.Out, pathResult{
			File:    args[0],
			Digest:  ch.Digest(),
			Start:   ch.Label(start),
			Goal:    ch.Label(goal),
			Steps:   steps,
			Elapsed: elapsed,
		})
	}

	fmt.Fprintf(cc.Out, "%s -> %s: %s steps\n", ch.Label(start), ch.Label(goal), formatSteps(steps))

	return nil
}

// loadChart parses the chart named on the command line, reading the
// command's input stream for "-".
func loadChart(cmd *cobra.Command, path string) (*chart.Chart, error) {
	if path == chart.StdinPath {
		ch, err := chart.Read(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}

		return ch, nil
	}

	return chart.Load(path)
}
