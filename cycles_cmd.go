package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/cyclesync/internal/chart"
	"github.com/tonimelisma/cyclesync/internal/walk"
)

// maxHitsShown caps the HITS column; JSON output always carries all hits.
const maxHitsShown = 4

func newCyclesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycles FILE",
		Short: "Describe the eventual cycle of every start label",
		Long: `Detect, for every label ending in the start suffix, where its walk enters
a loop, the loop's period, and the offsets within the loop at which it
stands on an accepting label.`,
		Args: cobra.ExactArgs(1),
		RunE: runCycles,
	}

	cmd.Flags().String("start-suffix", "", "suffix selecting start labels (default from config: start_suffix)")
	cmd.Flags().String("accept-suffix", "", "suffix selecting accepting labels (default from config: accept_suffix)")
	cmd.Flags().Int("workers", 0, "concurrent cycle detectors (default from config: workers)")

	return cmd
}

// cycleView is one row of cycles output.
type cycleView struct {
	Label string `json:"label"`
	walk.Cycle
}

func runCycles(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	ch, err := loadChart(cmd, args[0])
	if err != nil {
		return err
	}

	g, err := ch.Graph(chart.Suffix(cc.Cfg.AcceptSuffix))
	if err != nil {
		return err
	}

	solver := walk.NewSolver(walk.SolverConfig{Workers: cc.Cfg.Workers, Logger: cc.Logger})

	cycles, err := solver.Cycles(cmd.Context(), g, ch.Select(chart.Suffix(cc.Cfg.StartSuffix)))
	if err != nil {
		return err
	}

	views := make([]cycleView, len(cycles))
	for i, c := range cycles {
		views[i] = cycleView{Label: ch.Label(c.Origin), Cycle: c}
	}

	if cc.Flags.JSON {
		return writeJSON(cc.Out, views)
	}

	headers := []string{"LABEL", "ENTERS", "PERIOD", "HITS", "FIRST"}
	rows := make([][]string, 0, len(views))

	for i := range views {
		v := &views[i]
		rows = append(rows, []string{
			v.Label,
			strconv.Itoa(v.Start),
			strconv.Itoa(v.Period),
			formatHits(v.Hits),
			firstHit(v.Cycle),
		})
	}

	printTable(cc.Out, headers, rows)

	return nil
}

// formatHits renders cycle offsets, eliding all but the first few.
func formatHits(hits []int) string {
	if len(hits) == 0 {
		return "-"
	}

	shown := hits[:min(len(hits), maxHitsShown)]
	parts := make([]string, len(shown))

	for i, h := range shown {
		parts[i] = strconv.Itoa(h)
	}

	out := strings.Join(parts, ",")
	if len(hits) > maxHitsShown {
		out += fmt.Sprintf(",... (%d)", len(hits))
	}

	return out
}

// firstHit is the first absolute step at which the walker accepts within
// its cycle.
func firstHit(c walk.Cycle) string {
	if len(c.Hits) == 0 {
		return "never"
	}

	return formatSteps(uint64(c.Start + c.Hits[0]))
}
