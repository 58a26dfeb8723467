package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/cyclesync/internal/chart"
	"github.com/tonimelisma/cyclesync/internal/ledger"
	"github.com/tonimelisma/cyclesync/internal/walk"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync FILE",
		Short: "Find the first step at which every walker is accepting",
		Long: `Start one walker on every label ending in the start suffix and advance
them together. Print the first step at which every walker stands on a label
ending in the accept suffix.

Answers are cached in the run ledger by chart content; --fresh re-solves.
With --watch, FILE is re-solved each time it changes until interrupted; a
watcher also re-solves on SIGHUP, which --notify sends to the watcher of FILE.`,
		Args: cobra.ExactArgs(1),
		RunE: runSync,
	}

	cmd.Flags().String("start-suffix", "", "suffix selecting start labels (default from config: start_suffix)")
	cmd.Flags().String("accept-suffix", "", "suffix selecting accepting labels (default from config: accept_suffix)")
	cmd.Flags().Int("workers", 0, "concurrent cycle detectors (default from config: workers)")
	cmd.Flags().Bool("fresh", false, "ignore cached answers in the run ledger")
	cmd.Flags().Bool("watch", false, "re-solve whenever FILE changes")
	cmd.Flags().Bool("notify", false, "ask the running watcher of FILE to re-solve now")
	cmd.MarkFlagsMutuallyExclusive("watch", "notify")

	return cmd
}

// syncResult is the outcome of one sync solve, fresh or cached.
type syncResult struct {
	File    string        `json:"file"`
	Digest  string        `json:"digest"`
	Answer  uint64        `json:"answer"`
	Starts  int           `json:"starts"`
	Cached  bool          `json:"cached"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// notifyWatcher signals the running watcher of path to re-solve.
func notifyWatcher(cc *CLIContext, path string) error {
	pidPath, err := watchPIDPath(cc.Cfg.HistoryDB, path)
	if err != nil {
		return err
	}

	pid, err := sendSIGHUP(pidPath)
	if err != nil {
		return err
	}

	cc.Statusf("Asked watcher (PID %d) to re-solve %s\n", pid, path)

	return nil
}

// syncJob holds everything needed to solve one chart file repeatedly.
type syncJob struct {
	cc     *CLIContext
	cmd    *cobra.Command
	store  *ledger.Store
	solver *walk.Solver
	path   string
	fresh  bool
}

func runSync(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	fresh, err := cmd.Flags().GetBool("fresh")
	if err != nil {
		return fmt.Errorf("reading --fresh: %w", err)
	}

	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("reading --watch: %w", err)
	}

	notify, err := cmd.Flags().GetBool("notify")
	if err != nil {
		return fmt.Errorf("reading --notify: %w", err)
	}

	if (watch || notify) && args[0] == chart.StdinPath {
		return errors.New("--watch and --notify need a file, not standard input")
	}

	if notify {
		return notifyWatcher(cc, args[0])
	}

	// Canceling the parent on return releases the signal handler.
	parent, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	ctx := shutdownContext(parent, cc.Logger)

	store, err := openHistory(ctx, cc)
	if err != nil {
		return err
	}
	defer closeHistory(store, cc.Logger)

	job := &syncJob{
		cc:     cc,
		cmd:    cmd,
		store:  store,
		solver: walk.NewSolver(walk.SolverConfig{Workers: cc.Cfg.Workers, Logger: cc.Logger}),
		path:   args[0],
		fresh:  fresh,
	}

	if !watch {
		res, err := job.solve(ctx)
		if err != nil {
			return err
		}

		return job.print(res)
	}

	pidPath, err := watchPIDPath(cc.Cfg.HistoryDB, job.path)
	if err != nil {
		return err
	}

	cleanup, err := writePIDFile(pidPath)
	if err != nil {
		return err
	}
	defer cleanup()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	cc.Statusf("Watching %s (Ctrl-C to stop)\n", job.path)

	return watchFile(ctx, job.path, cc.Logger, hup, func(ctx context.Context) error {
		res, err := job.solve(ctx)
		if err != nil {
			return err
		}

		return job.print(res)
	})
}

// solve answers the sync question for the job's file, consulting the
// ledger first unless the job is fresh.
func (j *syncJob) solve(ctx context.Context) (*syncResult, error) {
	cfg := j.cc.Cfg

	ch, err := loadChart(j.cmd, j.path)
	if err != nil {
		return nil, err
	}

	startSel := chart.Suffix(cfg.StartSuffix)
	acceptSel := chart.Suffix(cfg.AcceptSuffix)
	key := selectorKey(startSel, acceptSel)
	starts := ch.Select(startSel)

	if cached := j.lookup(ctx, ch.Digest(), key); cached != nil {
		return &syncResult{
			File:    j.path,
			Digest:  ch.Digest(),
			Answer:  cached.Answer,
			Starts:  len(starts),
			Cached:  true,
			Elapsed: cached.Duration,
		}, nil
	}

	g, err := ch.Graph(acceptSel)
	if err != nil {
		return nil, err
	}

	began := time.Now()
	report, solveErr := j.solver.Sync(ctx, g, starts)

	run := ledger.Run{
		Digest:    ch.Digest(),
		Mode:      ledger.ModeSync,
		Selector:  key,
		Starts:    len(starts),
		StartedAt: began,
		Duration:  time.Since(began),
	}

	if report != nil {
		run.Answer = report.Answer
		run.Duration = report.Elapsed
	}

	recordRun(ctx, j.store, j.cc.Logger, run, solveErr)

	if solveErr != nil {
		return nil, fmt.Errorf("synchronizing %d walkers from %s: %w", len(starts), startSel, solveErr)
	}

	return &syncResult{
		File:    j.path,
		Digest:  ch.Digest(),
		Answer:  report.Answer,
		Starts:  len(starts),
		Elapsed: report.Elapsed,
	}, nil
}

// lookup returns a cached solved run, or nil when the job is fresh, history
// is off, or the ledger has no answer.
func (j *syncJob) lookup(ctx context.Context, digest, key string) *ledger.Run {
	if j.fresh || j.store == nil {
		return nil
	}

	run, err := j.store.Lookup(ctx, digest, ledger.ModeSync, key)
	if err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			j.cc.Logger.Warn("reading run history", slog.String("error", err.Error()))
		}

		return nil
	}

	j.cc.Logger.Debug("answer served from run history",
		slog.String("run_id", run.ID),
		slog.String("digest", digest),
	)

	return run
}

func (j *syncJob) print(res *syncResult) error {
	if j.cc.Flags.JSON {
		return writeJSON(j.cc.Out, res)
	}

	source := "solved in " + formatElapsed(res.Elapsed)
	if res.Cached {
		source = "cached"
	}

	fmt.Fprintf(j.cc.Out, "%d walkers synchronized after %s steps (%s)\n",
		res.Starts, formatSteps(res.Answer), source)

	return nil
}
