package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/cyclesync/internal/config"
	"github.com/tonimelisma/cyclesync/internal/walk"
)

const (
	chartScenarioA = `RL

AAA = (BBB, CCC)
BBB = (DDD, EEE)
CCC = (ZZZ, GGG)
DDD = (DDD, DDD)
EEE = (EEE, EEE)
GGG = (GGG, GGG)
ZZZ = (ZZZ, ZZZ)
`

	chartScenarioB = `LLR

AAA = (BBB, BBB)
BBB = (AAA, ZZZ)
ZZZ = (ZZZ, ZZZ)
`

	chartScenarioC = `LR

11A = (11B, XXX)
11B = (XXX, 11Z)
11Z = (11B, XXX)
22A = (22B, XXX)
22B = (22C, 22C)
22C = (22Z, 22Z)
22Z = (22B, 22B)
XXX = (XXX, XXX)
`

	// 11A alternates between two non-accepting labels forever.
	chartNoSolution = `LR

11A = (11B, 11B)
11B = (11A, 11A)
22A = (22Z, 22Z)
22Z = (22A, 22A)
`
)

// cliEnv isolates a test from the user's config and history by pointing
// CYCLESYNC_CONFIG at a fresh config file whose ledger lives in t.TempDir().
type cliEnv struct {
	dir       string
	historyDB string
}

func newCLIEnv(t *testing.T, extraConfig string) *cliEnv {
	t.Helper()

	dir := t.TempDir()
	env := &cliEnv{dir: dir, historyDB: filepath.Join(dir, "history.db")}

	content := "history_db = " + strconvQuote(env.historyDB) + "\nlog_level = \"error\"\n" + extraConfig
	cfgPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))

	t.Setenv(config.EnvConfig, cfgPath)
	t.Setenv(config.EnvHistoryDB, "")
	t.Setenv(config.EnvLogLevel, "")

	return env
}

func strconvQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func (e *cliEnv) writeChart(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// executeCLI runs the root command with args and returns captured stdout
// and stderr.
func executeCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return stdout.String(), stderr.String(), err
}

func TestPathCmd_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		chart string
		want  string
	}{
		{"scenario A", chartScenarioA, "AAA -> ZZZ: 2 steps\n"},
		{"scenario B", chartScenarioB, "AAA -> ZZZ: 6 steps\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newCLIEnv(t, "")
			path := env.writeChart(t, "chart.txt", tt.chart)

			out, _, err := executeCLI(t, "", "path", path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestPathCmd_Stdin(t *testing.T) {
	newCLIEnv(t, "")

	out, _, err := executeCLI(t, chartScenarioB, "--no-history", "path", "-")
	require.NoError(t, err)
	assert.Equal(t, "AAA -> ZZZ: 6 steps\n", out)
}

func TestPathCmd_FlagOverrides(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioB)

	out, _, err := executeCLI(t, "", "path", path, "--start", "BBB", "--goal", "AAA")
	require.NoError(t, err)
	assert.Equal(t, "BBB -> AAA: 1 steps\n", out)
}

func TestPathCmd_JSON(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioA)

	out, _, err := executeCLI(t, "", "--json", "path", path)
	require.NoError(t, err)

	var res pathResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, uint64(2), res.Steps)
	assert.Equal(t, "AAA", res.Start)
	assert.Equal(t, "ZZZ", res.Goal)
	assert.Len(t, res.Digest, 64)
}

func TestPathCmd_Errors(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioA)

	_, _, err := executeCLI(t, "", "path", path, "--goal", "QQQ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `goal label "QQQ" is not defined`)

	_, _, err = executeCLI(t, "", "path", path, "--goal", "DDD", "--start", "EEE")
	require.ErrorIs(t, err, walk.ErrUnreachable)

	_, _, err = executeCLI(t, "", "path", filepath.Join(env.dir, "missing.txt"))
	require.Error(t, err)
}

func TestSyncCmd_ScenarioC(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioC)

	out, _, err := executeCLI(t, "", "sync", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 walkers synchronized after 6 steps (solved in")
}

func TestSyncCmd_CachedAndFresh(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioC)

	_, _, err := executeCLI(t, "", "sync", path)
	require.NoError(t, err)

	out, _, err := executeCLI(t, "", "--json", "sync", path)
	require.NoError(t, err)

	var cached syncResult
	require.NoError(t, json.Unmarshal([]byte(out), &cached))
	assert.True(t, cached.Cached)
	assert.Equal(t, uint64(6), cached.Answer)
	assert.Equal(t, 2, cached.Starts)

	out, _, err = executeCLI(t, "", "--json", "sync", path, "--fresh")
	require.NoError(t, err)

	var fresh syncResult
	require.NoError(t, json.Unmarshal([]byte(out), &fresh))
	assert.False(t, fresh.Cached)
	assert.Equal(t, uint64(6), fresh.Answer)
}

func TestSyncCmd_NoHistoryLeavesNoLedger(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioC)

	_, _, err := executeCLI(t, "", "--no-history", "sync", path)
	require.NoError(t, err)

	_, statErr := os.Stat(env.historyDB)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSyncCmd_Suffixes(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioB)

	// Single walker from AAA accepting on *Z is the path question.
	out, _, err := executeCLI(t, "", "sync", path, "--start-suffix", "AA", "--accept-suffix", "ZZ", "--workers", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "1 walkers synchronized after 6 steps")
}

func TestSyncCmd_NoSolutionIsRecorded(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartNoSolution)

	_, _, err := executeCLI(t, "", "sync", path)
	require.ErrorIs(t, err, walk.ErrNoSolution)

	out, _, err := executeCLI(t, "", "--json", "history")
	require.NoError(t, err)

	var runs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0]["outcome"])
	assert.Contains(t, runs[0]["failure"], "no simultaneous solution")
}

func TestSyncCmd_NoStarts(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioC)

	_, _, err := executeCLI(t, "", "sync", path, "--start-suffix", "Q")
	require.ErrorIs(t, err, walk.ErrNoCycles)
}

func TestSyncCmd_WatchRejectsStdin(t *testing.T) {
	newCLIEnv(t, "")

	_, _, err := executeCLI(t, chartScenarioC, "sync", "-", "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--watch")
}

func TestSyncCmd_NotifyWithoutWatcher(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioC)

	_, _, err := executeCLI(t, "", "sync", path, "--notify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no running watcher")
}

func TestSyncCmd_WatchAndNotifyExclusive(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioC)

	_, _, err := executeCLI(t, "", "sync", path, "--notify", "--watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestCyclesCmd_Table(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioC)

	out, _, err := executeCLI(t, "", "cycles", path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"LABEL", "ENTERS", "PERIOD", "HITS", "FIRST"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"11A", "1", "2", "1", "2"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"22A", "1", "6", "2,5", "3"}, strings.Fields(lines[2]))
}

func TestCyclesCmd_JSON(t *testing.T) {
	env := newCLIEnv(t, "")
	path := env.writeChart(t, "chart.txt", chartScenarioC)

	out, _, err := executeCLI(t, "", "--json", "cycles", path)
	require.NoError(t, err)

	var views []cycleView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "22A", views[1].Label)
	assert.Equal(t, []int{2, 5}, views[1].Hits)
	assert.Equal(t, 6, views[1].Period)
}

func TestHistoryCmd(t *testing.T) {
	env := newCLIEnv(t, "")
	pathB := env.writeChart(t, "b.txt", chartScenarioB)
	pathC := env.writeChart(t, "c.txt", chartScenarioC)

	out, _, err := executeCLI(t, "", "history")
	require.NoError(t, err)
	assert.Empty(t, out)

	_, _, err = executeCLI(t, "", "path", pathB)
	require.NoError(t, err)

	_, _, err = executeCLI(t, "", "sync", pathC)
	require.NoError(t, err)

	out, _, err = executeCLI(t, "", "history")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "WHEN"))
	assert.Contains(t, lines[1], "sync")
	assert.Contains(t, lines[1], "*A *Z")
	assert.Contains(t, lines[2], "path")
	assert.Contains(t, lines[2], "=AAA =ZZZ")

	out, _, err = executeCLI(t, "", "history", "--limit", "1")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)
}

func TestConfigShowCmd(t *testing.T) {
	newCLIEnv(t, "workers = 7\n")

	out, _, err := executeCLI(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "workers = 7")
	assert.Contains(t, out, `log_level = "error"`)
}

func TestConfigShowCmd_NoHistoryFlag(t *testing.T) {
	newCLIEnv(t, "")

	out, _, err := executeCLI(t, "", "--no-history", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "history = false")
}

func TestRootCmd_BadConfig(t *testing.T) {
	env := newCLIEnv(t, "")
	bad := env.writeChart(t, "bad.toml", "workrs = 2\n")
	path := env.writeChart(t, "chart.txt", chartScenarioA)

	_, _, err := executeCLI(t, "", "--config", bad, "path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
	assert.Contains(t, err.Error(), `did you mean "workers"?`)
}
