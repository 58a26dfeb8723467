package walk

import "fmt"

// StepsToGoal counts the steps a walk from start needs to land on goal.
// start == goal is zero steps. Once every (state, phase) configuration
// could have been seen without reaching goal, the walk is looping and
// ErrUnreachable is returned.
func StepsToGoal(g *Graph, start, goal State) (uint64, error) {
	if !g.contains(start) {
		return 0, fmt.Errorf("%w: start state %d out of range", ErrInvalidGraph, start)
	}

	if !g.contains(goal) {
		return 0, fmt.Errorf("%w: goal state %d out of range", ErrInvalidGraph, goal)
	}

	bound := g.stepBound()
	current := start
	steps := 0

	for current != goal {
		if steps == bound {
			return 0, fmt.Errorf("%w: %d to %d after %d steps", ErrUnreachable, start, goal, steps)
		}

		current = g.Next(current, steps)
		steps++
	}

	return uint64(steps), nil
}
