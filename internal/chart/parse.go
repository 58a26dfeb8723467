package chart

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/cyclesync/internal/walk"
)

// ErrMalformed is wrapped by every parse failure.
var ErrMalformed = errors.New("chart: malformed input")

// StdinPath is the path argument that makes Load read standard input.
const StdinPath = "-"

// maxLineBytes bounds a single input line. Instruction lines of real
// charts run to a few hundred runes.
const maxLineBytes = 1 << 20

// ParseError reports a malformed line. Line is 1-based; 0 means the error
// is not tied to one line.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("chart: %s", e.Reason)
	}

	return fmt.Sprintf("chart: line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformed
}

// rawNode is a node line before label resolution.
type rawNode struct {
	line              int
	from, left, right string
}

// Load parses the chart at path, or standard input when path is "-".
func Load(path string) (*Chart, error) {
	if path == StdinPath {
		return Read(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("chart: opening %s: %w", path, err)
	}
	defer f.Close()

	c, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// Parse parses a chart held in a string.
func Parse(s string) (*Chart, error) {
	return Read(strings.NewReader(s))
}

// Read parses a chart from r.
func Read(r io.Reader) (*Chart, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)

	var (
		sequence walk.DrivingSequence
		nodes    []rawNode
		lineNo   int
	)

	for sc.Scan() {
		lineNo++

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if sequence == nil {
			seq, err := parseInstructions(line, lineNo)
			if err != nil {
				return nil, err
			}

			sequence = seq

			continue
		}

		n, err := parseNode(line, lineNo)
		if err != nil {
			return nil, err
		}

		nodes = append(nodes, n)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("chart: reading input: %w", err)
	}

	if sequence == nil {
		return nil, &ParseError{Reason: "missing instruction line"}
	}

	if len(nodes) == 0 {
		return nil, &ParseError{Reason: "no node lines"}
	}

	return resolve(sequence, nodes)
}

func parseInstructions(line string, lineNo int) (walk.DrivingSequence, error) {
	seq := make(walk.DrivingSequence, 0, len(line))

	for i, r := range line {
		b, err := walk.ParseBranch(r)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Reason: fmt.Sprintf("instruction at column %d: %q is not L or R", i+1, r)}
		}

		seq = append(seq, b)
	}

	return seq, nil
}

// parseNode parses "FROM = (LEFT, RIGHT)".
func parseNode(line string, lineNo int) (rawNode, error) {
	from, rest, ok := strings.Cut(line, "=")
	if !ok {
		return rawNode{}, &ParseError{Line: lineNo, Reason: "expected \"FROM = (LEFT, RIGHT)\""}
	}

	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return rawNode{}, &ParseError{Line: lineNo, Reason: "edges must be parenthesized"}
	}

	left, right, ok := strings.Cut(rest[1:len(rest)-1], ",")
	if !ok {
		return rawNode{}, &ParseError{Line: lineNo, Reason: "expected two comma-separated edges"}
	}

	n := rawNode{
		line:  lineNo,
		from:  normalizeLabel(from),
		left:  normalizeLabel(left),
		right: normalizeLabel(right),
	}

	for _, label := range []string{n.from, n.left, n.right} {
		if err := validateLabel(label); err != nil {
			return rawNode{}, &ParseError{Line: lineNo, Reason: err.Error()}
		}
	}

	return n, nil
}

// resolve assigns states in definition order and wires every edge.
func resolve(sequence walk.DrivingSequence, nodes []rawNode) (*Chart, error) {
	ids := make(map[string]walk.State, len(nodes))
	labels := make([]string, 0, len(nodes))

	for _, n := range nodes {
		if prev, dup := ids[n.from]; dup {
			return nil, &ParseError{Line: n.line, Reason: fmt.Sprintf(
				"label %q already defined (state %d)", n.from, prev)}
		}

		ids[n.from] = walk.State(len(labels))
		labels = append(labels, n.from)
	}

	table := make(walk.TransitionTable, len(nodes))

	for i, n := range nodes {
		left, ok := ids[n.left]
		if !ok {
			return nil, &ParseError{Line: n.line, Reason: fmt.Sprintf("undefined label %q", n.left)}
		}

		right, ok := ids[n.right]
		if !ok {
			return nil, &ParseError{Line: n.line, Reason: fmt.Sprintf("undefined label %q", n.right)}
		}

		table[i] = walk.Edges{left, right}
	}

	return &Chart{
		labels:   labels,
		ids:      ids,
		table:    table,
		sequence: sequence,
		digest:   canonicalDigest(sequence, labels, table),
	}, nil
}

func normalizeLabel(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func validateLabel(label string) error {
	if label == "" {
		return errors.New("empty label")
	}

	for _, r := range label {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("label %q: %q is not alphanumeric", label, r)
		}
	}

	return nil
}
