package chart

import (
	"fmt"
	"strings"
)

// selectorKind distinguishes exact-label from suffix selectors.
type selectorKind uint8

const (
	selectExact selectorKind = iota
	selectSuffix
)

// Selector matches state labels, either one label exactly or every label
// ending in a suffix. The zero value matches nothing.
type Selector struct {
	kind  selectorKind
	value string
}

// Exact returns a Selector matching only label.
func Exact(label string) Selector {
	return Selector{kind: selectExact, value: normalizeLabel(label)}
}

// Suffix returns a Selector matching labels that end in suffix.
func Suffix(suffix string) Selector {
	return Selector{kind: selectSuffix, value: normalizeLabel(suffix)}
}

// ParseSelector parses the textual selector forms: "*A" is a suffix
// selector; "=AAA" and plain "AAA" are exact selectors.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "*"):
		if len(s) == 1 {
			return Selector{}, fmt.Errorf("chart: selector %q: empty suffix", s)
		}

		return Suffix(s[1:]), nil
	case strings.HasPrefix(s, "="):
		s = s[1:]
	}

	if err := validateLabel(normalizeLabel(s)); err != nil {
		return Selector{}, fmt.Errorf("chart: selector: %w", err)
	}

	return Exact(s), nil
}

// Match reports whether label is selected.
func (s Selector) Match(label string) bool {
	if s.value == "" {
		return false
	}

	if s.kind == selectSuffix {
		return strings.HasSuffix(label, s.value)
	}

	return label == s.value
}

// String returns the textual form accepted by ParseSelector.
func (s Selector) String() string {
	if s.kind == selectSuffix {
		return "*" + s.value
	}

	return "=" + s.value
}
