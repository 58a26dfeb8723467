package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_UnknownKey_Typo(t *testing.T) {
	path := writeTestConfig(t, `log_levl = "debug"`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "log_levl"`)
	assert.Contains(t, err.Error(), `did you mean "log_level"?`)
}

func TestLoad_UnknownKey_Section(t *testing.T) {
	path := writeTestConfig(t, "[solver]\nworkers = 2\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestLoad_UnknownKey_NoSuggestion(t *testing.T) {
	path := writeTestConfig(t, `completely_unrelated = 1`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown config key "completely_unrelated"`)
	assert.NotContains(t, err.Error(), "did you mean")
}

func TestLoad_UnknownKey_ReportsAll(t *testing.T) {
	path := writeTestConfig(t, "wrokers = 2\nhistroy = false\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"workers"`)
	assert.Contains(t, err.Error(), `"history"`)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"workers", "wrokers", 2},
		{"history", "history_db", 3},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, levenshtein(tt.b, tt.a))
		})
	}
}

func TestClosestMatch_Found(t *testing.T) {
	assert.Equal(t, "accept_suffix", closestMatch("accept_sufix", knownKeysList))
}

func TestClosestMatch_NotFound(t *testing.T) {
	assert.Empty(t, closestMatch("zzzzzzzzzzzz", knownKeysList))
}

func TestKnownKeysList_Sorted(t *testing.T) {
	assert.Len(t, knownKeysList, len(knownKeys))
	assert.IsNonDecreasing(t, knownKeysList)
}
