package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCycle_Example(t *testing.T) {
	g, ids := buildGraph(t, "LR", scenarioC, "Z")

	c1, err := DetectCycle(g, ids["11A"])
	require.NoError(t, err)
	assert.Equal(t, Cycle{Origin: ids["11A"], Start: 1, Period: 2, Hits: []int{1}, Explored: 3}, c1)

	c2, err := DetectCycle(g, ids["22A"])
	require.NoError(t, err)
	assert.Equal(t, Cycle{Origin: ids["22A"], Start: 1, Period: 6, Hits: []int{2, 5}, Explored: 7}, c2)
}

func TestDetectCycle_TailHitsDropped(t *testing.T) {
	// B1Z is only visited once, before the walk enters the CCC/DDD loop.
	nodes := []node{
		{"AAA", "B1Z", "B1Z"},
		{"B1Z", "CCC", "CCC"},
		{"CCC", "DDD", "DDD"},
		{"DDD", "CCC", "CCC"},
	}
	g, ids := buildGraph(t, "L", nodes, "Z")

	c, err := DetectCycle(g, ids["AAA"])
	require.NoError(t, err)

	assert.Equal(t, 2, c.Start)
	assert.Equal(t, 2, c.Period)
	assert.Empty(t, c.Hits)
}

func TestDetectCycle_AcceptingStart(t *testing.T) {
	nodes := []node{
		{"AAZ", "BBB", "BBB"},
		{"BBB", "AAZ", "AAZ"},
	}
	g, ids := buildGraph(t, "L", nodes, "Z")

	c, err := DetectCycle(g, ids["AAZ"])
	require.NoError(t, err)

	assert.Equal(t, 0, c.Start)
	assert.Equal(t, 2, c.Period)
	assert.Equal(t, []int{0}, c.Hits)
	assert.True(t, c.Accepts(0))
	assert.False(t, c.Accepts(1))
	assert.True(t, c.Accepts(4))
}

func TestDetectCycle_OutOfRange(t *testing.T) {
	g, _ := buildGraph(t, "LR", scenarioC, "Z")

	_, err := DetectCycle(g, State(g.Len()))
	assert.ErrorIs(t, err, ErrInvalidGraph)
}

func TestCycle_AcceptsBeforeStart(t *testing.T) {
	c := Cycle{Start: 5, Period: 3, Hits: []int{0}}

	assert.False(t, c.Accepts(2), "tail steps are never accepted")
	assert.True(t, c.Accepts(5))
	assert.True(t, c.Accepts(8))
	assert.False(t, c.Accepts(9))
}

// Every detected cycle stays within the configuration bound and predicts
// the simulated acceptance pattern from its Start onward.
func TestDetectCycle_MatchesSimulation(t *testing.T) {
	rng := newTestRand(7)

	for range 300 {
		g := randomGraph(t, rng)
		start := State(rng.IntN(g.Len()))

		c, err := DetectCycle(g, start)
		require.NoError(t, err)

		assert.Equal(t, c.Start+c.Period, c.Explored)
		assert.LessOrEqual(t, c.Explored, g.stepBound())
		assert.Positive(t, c.Period)
		assert.Equal(t, 0, c.Period%g.Period(), "period is a multiple of the sequence length")

		for _, h := range c.Hits {
			assert.GreaterOrEqual(t, h, 0)
			assert.Less(t, h, c.Period)
		}

		steps := c.Start + 3*c.Period
		accepted := trace(g, start, steps)

		for s := c.Start; s < steps; s++ {
			assert.Equal(t, accepted[s], c.Accepts(s), "step %d", s)
		}
	}
}
