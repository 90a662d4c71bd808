package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	configFlag = ""
	noColorFlag = false
	verboseFlag = false
	watchFlag = false
	statsFlag = false
	statsFileFlag = ""
	outputRootFlag = ""
	consoleFlag = ""
	fileFlag = ""
	compactFlag = -1
	forceInit = false
}

func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeConfig(t *testing.T, dir string, cfg map[string]any) string {
	t.Helper()
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	return writeFile(t, dir, "termreport.json", string(data))
}

const failingStream = `{"event":"suite:start","spec":"cypress/integration/a.spec.js"}
{"event":"test:start","title":"passes"}
{"event":"log","type":"cy:command","message":"visit\t/"}
{"event":"test:end","state":"passed"}
{"event":"test:start","title":"fails"}
{"event":"log","type":"cy:command","message":"get\t.missing","status":"error"}
{"event":"test:end","state":"failed"}
{"event":"suite:end"}
`

func TestRender_WritesReports(t *testing.T) {
	dir := t.TempDir()
	logs := filepath.Join(dir, "logs")
	cfg := writeConfig(t, dir, map[string]any{
		"outputRoot":      logs,
		"printLogsToFile": "always",
		"outputTarget":    map[string]string{"out.txt": "txt"},
	})
	events := writeFile(t, dir, "events.jsonl", failingStream)

	out, err := executeCommand(t, "", "render", "--no-color", "--config", cfg, events)
	require.ErrorIs(t, err, errTestsFailed)

	assert.Contains(t, out, "cypress/integration/a.spec.js\n    fails\n")
	assert.NotContains(t, out, "    passes\n")
	assert.Contains(t, out, "[termreport] Wrote txt logs to "+filepath.Join(logs, "out.txt"))

	data, err := os.ReadFile(filepath.Join(logs, "out.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "    passes\n")
	assert.Contains(t, string(data), "    fails\n")
}

func TestRender_Stdin(t *testing.T) {
	stream := `{"event":"test:start","title":"ok"}
{"event":"log","type":"cy:log","message":"hello"}
{"event":"test:end","state":"passed"}
`
	out, err := executeCommand(t, stream, "render", "--no-color", "--console", "always", "--file", "never", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")
}

func TestRender_Stats(t *testing.T) {
	dir := t.TempDir()
	events := writeFile(t, dir, "events.jsonl", failingStream)

	out, err := executeCommand(t, "", "render", "--no-color", "--file", "never", "--stats", events)
	require.ErrorIs(t, err, errTestsFailed)
	assert.Contains(t, out, "Suite statistics")
	assert.Contains(t, out, "2 (1 passed, 1 failed)")
}

func TestRender_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir, map[string]any{"outputRoot": 5})
	events := writeFile(t, dir, "events.jsonl", failingStream)

	_, err := executeCommand(t, "", "render", "--config", cfg, events)
	require.Error(t, err)

	var report bytes.Buffer
	assert.Equal(t, ExitConfigError, exitCode(&report, err))
	assert.Equal(t,
		"[termreport] Invalid plugin install options:\n=> .outputRoot: Invalid type: number (expected string)\n",
		report.String())
}

func TestRender_BadStream(t *testing.T) {
	dir := t.TempDir()
	events := writeFile(t, dir, "events.jsonl", "{\"event\":\"party\"}\n")

	_, err := executeCommand(t, "", "render", events)
	require.Error(t, err)
	assert.Equal(t, ExitParseError, exitCode(&bytes.Buffer{}, err))
}

func TestRender_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad policy", []string{"render", "--console", "sometimes", "-"}},
		{"watch stdin", []string{"render", "--watch", "-"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, "", tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitUsageError, exitCode(&bytes.Buffer{}, err))
		})
	}
}

func TestRender_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "", "render", filepath.Join(t.TempDir(), "missing.jsonl"))
	require.Error(t, err)
	assert.Equal(t, ExitTestFailure, exitCode(&bytes.Buffer{}, err))
}

func TestInitThenValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := executeCommand(t, "", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created:")

	_, err = executeCommand(t, "", "init")
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, exitCode(&bytes.Buffer{}, err))

	out, err = executeCommand(t, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Valid: .termreport.yaml")
}

func TestValidate_NoConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	out, err := executeCommand(t, "", "validate")
	require.NoError(t, err)
	assert.Equal(t, "No config file found, defaults apply\n", out)
}

func TestValidate_ReportsEveryIssue(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "bad.yaml", "compactLogs: true\nxhr:\n  printRequestData: 1\n")

	_, err := executeCommand(t, "", "validate", cfg)
	require.Error(t, err)

	var report bytes.Buffer
	assert.Equal(t, ExitConfigError, exitCode(&report, err))
	lines := strings.Split(strings.TrimSpace(report.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "=> .compactLogs: Invalid type: boolean (expected integer)", lines[1])
	assert.Equal(t, "=> .xhr/printRequestData: Invalid type: number (expected boolean)", lines[2])
}

func TestList(t *testing.T) {
	out, err := executeCommand(t, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "  - cy:xhr\n")
	assert.Contains(t, out, "  - html\n")
	assert.Contains(t, out, "always, never, onFail")
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "termreport version dev")
}

func TestRender_StatsFile(t *testing.T) {
	dir := t.TempDir()
	events := writeFile(t, dir, "events.jsonl", failingStream)
	statsPath := filepath.Join(dir, "stats.json")

	_, err := executeCommand(t, "", "render", "--console", "never", "--file", "never", "--stats-file", statsPath, events)
	require.ErrorIs(t, err, errTestsFailed)

	data, err := os.ReadFile(statsPath)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, 2, doc["tests"])
	assert.EqualValues(t, 1, doc["failed"])
}

func TestCompletion(t *testing.T) {
	out, err := executeCommand(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "termreport")
}
