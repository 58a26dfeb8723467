// Package chart parses instruction charts: a line of L/R instructions
// followed by "FROM = (LEFT, RIGHT)" node lines. It resolves labels to
// dense walk.State ids in definition order and builds walk.Graph values
// for the walk package. Labels are normalized to Unicode NFC so that
// visually identical labels resolve to the same state.
package chart

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/tonimelisma/cyclesync/internal/walk"
)

// Chart is a parsed, fully resolved instruction chart. Immutable.
type Chart struct {
	labels   []string
	ids      map[string]walk.State
	table    walk.TransitionTable
	sequence walk.DrivingSequence
	digest   string
}

// Len returns the number of states.
func (c *Chart) Len() int {
	return len(c.labels)
}

// Sequence returns the driving sequence.
func (c *Chart) Sequence() walk.DrivingSequence {
	return c.sequence
}

// Label returns the label of s, or "" if s is out of range.
func (c *Chart) Label(s walk.State) string {
	if s < 0 || int(s) >= len(c.labels) {
		return ""
	}

	return c.labels[s]
}

// Lookup resolves a label to its state.
func (c *Chart) Lookup(label string) (walk.State, bool) {
	s, ok := c.ids[normalizeLabel(label)]
	return s, ok
}

// Select returns the states matched by sel, in definition order.
func (c *Chart) Select(sel Selector) []walk.State {
	var out []walk.State

	for i, label := range c.labels {
		if sel.Match(label) {
			out = append(out, walk.State(i))
		}
	}

	return out
}

// Graph builds a walk.Graph whose accepting states are those matched by
// accept.
func (c *Chart) Graph(accept Selector) (*walk.Graph, error) {
	marks := make(walk.Acceptance, len(c.labels))
	for i, label := range c.labels {
		marks[i] = accept.Match(label)
	}

	g, err := walk.NewGraph(c.table, c.sequence, marks)
	if err != nil {
		return nil, fmt.Errorf("chart: building graph: %w", err)
	}

	return g, nil
}

// Digest returns the hex SHA-256 of the chart's canonical form. Charts that
// differ only in whitespace or label normalization share a digest.
func (c *Chart) Digest() string {
	return c.digest
}

// canonicalDigest hashes the resolved chart in a fixed textual layout.
func canonicalDigest(seq walk.DrivingSequence, labels []string, table walk.TransitionTable) string {
	h := sha256.New()

	fmt.Fprintf(h, "%s\n", seq)

	for i, label := range labels {
		fmt.Fprintf(h, "%s=%s,%s\n", label, labels[table[i][walk.First]], labels[table[i][walk.Second]])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// String renders the chart back into its input format.
func (c *Chart) String() string {
	var sb strings.Builder

	sb.WriteString(c.sequence.String())
	sb.WriteString("\n\n")

	for i, label := range c.labels {
		fmt.Fprintf(&sb, "%s = (%s, %s)\n", label,
			c.labels[c.table[i][walk.First]], c.labels[c.table[i][walk.Second]])
	}

	return sb.String()
}
