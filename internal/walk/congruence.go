package walk

import (
	"fmt"
	"math"
	"math/bits"
	"slices"
)

// Synchronize returns the smallest step S, no earlier than any cycle's
// Start, at which every cycle is on an accepting phase.
func Synchronize(cycles []Cycle) (uint64, error) {
	merged, err := Combine(cycles)
	if err != nil {
		return 0, err
	}

	first := merged.Hits[0]
	if first > math.MaxInt64-merged.Start {
		return 0, fmt.Errorf("%w: answer exceeds int64", ErrOverflow)
	}

	return uint64(merged.Start + first), nil
}

// Combine folds cycles into one whose Hits are exactly the phases accepted
// by all of them. All cycles are first rebased to the latest Start.
func Combine(cycles []Cycle) (Cycle, error) {
	if len(cycles) == 0 {
		return Cycle{}, ErrNoCycles
	}

	global := 0

	for i := range cycles {
		c := &cycles[i]
		if c.Period <= 0 {
			return Cycle{}, fmt.Errorf("%w: cycle from state %d has period %d", ErrInvalidGraph, c.Origin, c.Period)
		}

		if len(c.Hits) == 0 {
			return Cycle{}, fmt.Errorf("%w: walk from state %d never reaches an accepting state in its cycle",
				ErrNoSolution, c.Origin)
		}

		global = max(global, c.Start)
	}

	merged, err := Rebase(cycles[0], global)
	if err != nil {
		return Cycle{}, err
	}

	for _, c := range cycles[1:] {
		rebased, err := Rebase(c, global)
		if err != nil {
			return Cycle{}, err
		}

		merged, err = Merge(merged, rebased)
		if err != nil {
			return Cycle{}, err
		}
	}

	return merged, nil
}

// Rebase re-expresses c relative to a later start step without changing
// which global steps it accepts. start must not precede c.Start because the
// tail before c.Start is not described by the cycle.
func Rebase(c Cycle, start int) (Cycle, error) {
	if c.Period <= 0 {
		return Cycle{}, fmt.Errorf("%w: cycle from state %d has period %d", ErrInvalidGraph, c.Origin, c.Period)
	}

	if start < c.Start {
		return Cycle{}, fmt.Errorf("walk: cannot rebase cycle starting at %d to earlier step %d", c.Start, start)
	}

	delta := (start - c.Start) % c.Period
	hits := make([]int, len(c.Hits))

	for i, h := range c.Hits {
		hits[i] = (h - delta + c.Period) % c.Period
	}

	slices.Sort(hits)

	c.Start = start
	c.Hits = hits

	return c, nil
}

// Merge intersects two cycles sharing the same Start. The result has period
// lcm(a.Period, b.Period) and accepts a phase iff both inputs accept it.
// An empty intersection is ErrNoSolution. The result keeps a's Origin.
func Merge(a, b Cycle) (Cycle, error) {
	if a.Start != b.Start {
		return Cycle{}, fmt.Errorf("walk: merging cycles with different starts %d and %d", a.Start, b.Start)
	}

	period, err := lcm(a.Period, b.Period)
	if err != nil {
		return Cycle{}, err
	}

	// Enumerate candidates from whichever side produces fewer of them.
	drive, probe := a, b
	if len(b.Hits)*(period/b.Period) < len(a.Hits)*(period/a.Period) {
		drive, probe = b, a
	}

	var hits []int

	for base := 0; base < period; base += drive.Period {
		for _, h := range drive.Hits {
			o := base + h
			if _, ok := slices.BinarySearch(probe.Hits, o%probe.Period); ok {
				hits = append(hits, o)
			}
		}
	}

	if len(hits) == 0 {
		return Cycle{}, fmt.Errorf("%w: accepting phases of states %d and %d never coincide",
			ErrNoSolution, a.Origin, b.Origin)
	}

	return Cycle{
		Origin:   a.Origin,
		Start:    a.Start,
		Period:   period,
		Hits:     hits,
		Explored: max(a.Explored, b.Explored),
	}, nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// lcm returns the least common multiple of two positive ints, or
// ErrOverflow if it does not fit in int64.
func lcm(a, b int) (int, error) {
	q := a / gcd(a, b)

	hi, lo := bits.Mul64(uint64(q), uint64(b))
	if hi != 0 || lo > math.MaxInt64 {
		return 0, fmt.Errorf("%w: lcm(%d, %d)", ErrOverflow, a, b)
	}

	return int(lo), nil
}
