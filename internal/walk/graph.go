package walk

import (
	"fmt"
	"strings"
)

// State is a dense index into a TransitionTable.
type State int

// Branch selects one of the two outgoing edges of a state.
type Branch uint8

// Branch values. First is the left edge, Second the right edge.
const (
	First Branch = iota
	Second
)

// ParseBranch maps an instruction rune ('L' or 'R') to a Branch.
func ParseBranch(r rune) (Branch, error) {
	switch r {
	case 'L':
		return First, nil
	case 'R':
		return Second, nil
	default:
		return 0, fmt.Errorf("walk: invalid branch %q: expected L or R", r)
	}
}

// String returns the instruction letter for b.
func (b Branch) String() string {
	if b == Second {
		return "R"
	}

	return "L"
}

// Edges holds the successor of a state for each Branch.
type Edges [2]State

// TransitionTable maps each State to its Edges.
type TransitionTable []Edges

// DrivingSequence is a finite instruction list, repeated forever. Step s
// uses index s mod len.
type DrivingSequence []Branch

// String renders the sequence as instruction letters (e.g. "LLR").
func (d DrivingSequence) String() string {
	var sb strings.Builder
	sb.Grow(len(d))

	for _, b := range d {
		sb.WriteString(b.String())
	}

	return sb.String()
}

// Acceptance marks accepting states, one entry per state.
type Acceptance []bool

// Graph bundles the immutable inputs of a walk. Construct with NewGraph.
type Graph struct {
	table    TransitionTable
	sequence DrivingSequence
	accept   Acceptance
}

// NewGraph validates and wraps the walk inputs. The slices are owned by
// the Graph afterwards; callers must not mutate them. A nil accept is
// treated as "no accepting states".
func NewGraph(table TransitionTable, sequence DrivingSequence, accept Acceptance) (*Graph, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("%w: empty transition table", ErrInvalidGraph)
	}

	if len(sequence) == 0 {
		return nil, fmt.Errorf("%w: empty driving sequence", ErrInvalidGraph)
	}

	for i, b := range sequence {
		if b != First && b != Second {
			return nil, fmt.Errorf("%w: sequence[%d]: unknown branch %d", ErrInvalidGraph, i, b)
		}
	}

	n := State(len(table))
	for from, e := range table {
		for _, to := range e {
			if to < 0 || to >= n {
				return nil, fmt.Errorf("%w: state %d: edge target %d out of range [0, %d)",
					ErrInvalidGraph, from, to, n)
			}
		}
	}

	if accept == nil {
		accept = make(Acceptance, len(table))
	}

	if len(accept) != len(table) {
		return nil, fmt.Errorf("%w: acceptance table has %d entries for %d states",
			ErrInvalidGraph, len(accept), len(table))
	}

	return &Graph{table: table, sequence: sequence, accept: accept}, nil
}

// Len returns the number of states.
func (g *Graph) Len() int {
	return len(g.table)
}

// Period returns the length of the driving sequence.
func (g *Graph) Period() int {
	return len(g.sequence)
}

// Sequence returns the driving sequence.
func (g *Graph) Sequence() DrivingSequence {
	return g.sequence
}

// Accepting reports whether s is an accepting state.
func (g *Graph) Accepting(s State) bool {
	return g.accept[s]
}

// Next returns the state reached from s at the given step.
func (g *Graph) Next(s State, step int) State {
	return g.table[s][g.sequence[step%len(g.sequence)]]
}

// WithAcceptance returns a Graph sharing g's table and sequence but using
// a different acceptance table.
func (g *Graph) WithAcceptance(accept Acceptance) (*Graph, error) {
	return NewGraph(g.table, g.sequence, accept)
}

// contains reports whether s is a valid state of g.
func (g *Graph) contains(s State) bool {
	return s >= 0 && int(s) < len(g.table)
}

// stepBound is the number of distinct (state, phase) configurations. A
// deterministic walk must revisit one of them within this many steps.
func (g *Graph) stepBound() int {
	return len(g.table) * len(g.sequence)
}
