package walk

import (
	"fmt"
	"slices"
)

// Cycle describes the periodic pattern a walk from Origin settles into.
// From step Start onward the walk repeats every Period steps, and it is on
// an accepting state exactly at steps Start + k*Period + h for h in Hits.
// Accepting steps before Start belong to the tail and are not recorded.
type Cycle struct {
	Origin   State `json:"origin"`
	Start    int   `json:"start"`
	Period   int   `json:"period"`
	Hits     []int `json:"hits"`
	Explored int   `json:"explored"`
}

// Accepts reports whether the walk is on an accepting state at step.
func (c Cycle) Accepts(step int) bool {
	if step < c.Start || c.Period <= 0 {
		return false
	}

	_, found := slices.BinarySearch(c.Hits, (step-c.Start)%c.Period)

	return found
}

// visitKey identifies a walk configuration. The rest of the walk is a pure
// function of it.
type visitKey struct {
	state State
	phase int
}

// DetectCycle walks from start until a (state, phase) configuration
// repeats and returns the resulting Cycle. A Cycle with no Hits is not an
// error here; Synchronize rejects it.
func DetectCycle(g *Graph, start State) (Cycle, error) {
	if !g.contains(start) {
		return Cycle{}, fmt.Errorf("%w: start state %d out of range", ErrInvalidGraph, start)
	}

	bound := g.stepBound()
	visited := make(map[visitKey]int, min(bound, 1<<16))

	var ends []int
	if g.Accepting(start) {
		ends = append(ends, 0)
	}

	current := start

	for steps := 0; ; {
		key := visitKey{state: current, phase: steps % len(g.sequence)}
		if first, seen := visited[key]; seen {
			return newCycle(start, first, steps, ends), nil
		}

		if len(visited) == bound {
			return Cycle{}, fmt.Errorf("%w: start %d after %d steps", ErrStepBound, start, steps)
		}

		visited[key] = steps

		current = g.table[current][g.sequence[key.phase]]
		steps++

		if g.accept[current] {
			ends = append(ends, steps)
		}
	}
}

// newCycle builds the descriptor for a walk whose configuration at step
// `steps` equals the one first seen at step `first`. Tail hits (before
// first) are dropped and the rest rebased modulo the period.
func newCycle(origin State, first, steps int, ends []int) Cycle {
	period := steps - first

	hits := make([]int, 0, len(ends))
	for _, e := range ends {
		if e >= first {
			hits = append(hits, (e-first)%period)
		}
	}

	slices.Sort(hits)

	return Cycle{
		Origin:   origin,
		Start:    first,
		Period:   period,
		Hits:     slices.Compact(hits),
		Explored: steps,
	}
}
