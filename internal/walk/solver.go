package walk

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// defaultWorkers is used when SolverConfig.Workers is unset.
const defaultWorkers = 4

// SolverConfig holds the options for a Solver.
type SolverConfig struct {
	Workers int          // concurrent cycle detectors; <= 0 means defaultWorkers
	Logger  *slog.Logger // nil means slog.Default()
}

// Solver runs the walk operations with logging and bounded concurrency.
type Solver struct {
	workers int
	logger  *slog.Logger
	nowFunc func() time.Time // injectable for deterministic tests
}

// Report is the outcome of a synchronized solve.
type Report struct {
	Answer  uint64        `json:"answer"`
	Cycles  []Cycle       `json:"cycles"`
	Elapsed time.Duration `json:"elapsed_ns"`
}

// NewSolver creates a Solver from cfg.
func NewSolver(cfg SolverConfig) *Solver {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Solver{
		workers: workers,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Path returns the number of steps from start to goal.
func (s *Solver) Path(g *Graph, start, goal State) (uint64, error) {
	steps, err := StepsToGoal(g, start, goal)
	if err != nil {
		return 0, err
	}

	s.logger.Debug("path walked",
		slog.Int("start", int(start)),
		slog.Int("goal", int(goal)),
		slog.Uint64("steps", steps),
	)

	return steps, nil
}

// Cycles detects the cycle of every start concurrently.
func (s *Solver) Cycles(ctx context.Context, g *Graph, starts []State) ([]Cycle, error) {
	if len(starts) == 0 {
		return nil, ErrNoCycles
	}

	s.logger.Debug("detecting cycles",
		slog.Int("starts", len(starts)),
		slog.Int("workers", s.workers),
		slog.Int("step_bound", g.stepBound()),
	)

	cycles, err := DetectAll(ctx, g, starts, s.workers)
	if err != nil {
		return nil, fmt.Errorf("walk: detecting cycles: %w", err)
	}

	for i := range cycles {
		c := &cycles[i]
		s.logger.Debug("cycle detected",
			slog.Int("origin", int(c.Origin)),
			slog.Int("start", c.Start),
			slog.Int("period", c.Period),
			slog.Int("hits", len(c.Hits)),
		)
	}

	return cycles, nil
}

// Sync detects the cycle of every start and returns the first step at
// which all of them are on an accepting state together.
func (s *Solver) Sync(ctx context.Context, g *Graph, starts []State) (*Report, error) {
	began := s.nowFunc()

	cycles, err := s.Cycles(ctx, g, starts)
	if err != nil {
		return nil, err
	}

	answer, err := Synchronize(cycles)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Answer:  answer,
		Cycles:  cycles,
		Elapsed: s.nowFunc().Sub(began),
	}

	s.logger.Info("synchronized",
		slog.Int("cycles", len(cycles)),
		slog.Uint64("answer", answer),
		slog.Duration("elapsed", report.Elapsed),
	)

	return report, nil
}
