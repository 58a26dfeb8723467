package walk

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// node is one "FROM = (LEFT, RIGHT)" line of a test chart.
type node struct {
	from, left, right string
}

// buildGraph resolves labelled nodes into a Graph. Accepting states are the
// labels ending in acceptSuffix.
func buildGraph(t *testing.T, seq string, nodes []node, acceptSuffix string) (*Graph, map[string]State) {
	t.Helper()

	ids := make(map[string]State, len(nodes))
	for i, n := range nodes {
		ids[n.from] = State(i)
	}

	table := make(TransitionTable, len(nodes))
	accept := make(Acceptance, len(nodes))

	for i, n := range nodes {
		left, ok := ids[n.left]
		require.True(t, ok, "undefined label %q", n.left)

		right, ok := ids[n.right]
		require.True(t, ok, "undefined label %q", n.right)

		table[i] = Edges{left, right}
		accept[i] = acceptSuffix != "" && strings.HasSuffix(n.from, acceptSuffix)
	}

	g, err := NewGraph(table, mustSequence(t, seq), accept)
	require.NoError(t, err)

	return g, ids
}

func mustSequence(t *testing.T, s string) DrivingSequence {
	t.Helper()

	seq := make(DrivingSequence, 0, len(s))

	for _, r := range s {
		b, err := ParseBranch(r)
		require.NoError(t, err)

		seq = append(seq, b)
	}

	return seq
}

// Graphs from the worked examples.
var (
	scenarioA = []node{
		{"AAA", "BBB", "CCC"},
		{"BBB", "DDD", "EEE"},
		{"CCC", "ZZZ", "GGG"},
		{"DDD", "DDD", "DDD"},
		{"EEE", "EEE", "EEE"},
		{"GGG", "GGG", "GGG"},
		{"ZZZ", "ZZZ", "ZZZ"},
	}

	scenarioB = []node{
		{"AAA", "BBB", "BBB"},
		{"BBB", "AAA", "ZZZ"},
		{"ZZZ", "ZZZ", "ZZZ"},
	}

	scenarioC = []node{
		{"11A", "11B", "XXX"},
		{"11B", "XXX", "11Z"},
		{"11Z", "11B", "XXX"},
		{"22A", "22B", "XXX"},
		{"22B", "22C", "22C"},
		{"22C", "22Z", "22Z"},
		{"22Z", "22B", "22B"},
		{"XXX", "XXX", "XXX"},
	}
)

// randomGraph builds a small random graph with roughly a third of the
// states accepting.
func randomGraph(t *testing.T, rng *rand.Rand) *Graph {
	t.Helper()

	n := 2 + rng.IntN(7)
	table := make(TransitionTable, n)
	accept := make(Acceptance, n)

	for i := range table {
		table[i] = Edges{State(rng.IntN(n)), State(rng.IntN(n))}
		accept[i] = rng.IntN(3) == 0
	}

	seq := make(DrivingSequence, 1+rng.IntN(4))
	for i := range seq {
		seq[i] = Branch(rng.IntN(2))
	}

	g, err := NewGraph(table, seq, accept)
	require.NoError(t, err)

	return g
}

// trace returns, for steps 0..steps-1, whether a walk from start is on an
// accepting state.
func trace(g *Graph, start State, steps int) []bool {
	out := make([]bool, steps)
	current := start

	for s := range steps {
		out[s] = g.Accepting(current)
		current = g.Next(current, s)
	}

	return out
}

// newTestRand returns a deterministic generator so property failures
// reproduce.
func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
