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

func TestVersionPrintsBuildVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", stdout)
}

func TestSettingsSetThenGet(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "settings", "set", "breakChargeCooldown", "2")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "settings", "get", "breakChargeCooldown")
	require.NoError(t, err)
	assert.Equal(t, "2\n", stdout)

	stdout, _, err = executeCLI(t, home, "settings", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "breakChargeCooldown = 2")
	assert.Contains(t, stdout, "notifsFocus = all")
}

func TestSettingsRejectsBadInput(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "settings", "set", "breakChargingEnabled", "maybe")
	require.Error(t, err)

	_, _, err = executeCLI(t, home, "settings", "get", "volume")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown setting")
}

func TestPresetsAddSelectAndRemove(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "presets", "add", "--name", "Focus Block", "--work", "50", "--break", "10")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Focus Block")

	id := customPresetID(t, home)

	_, _, err = executeCLI(t, home, "presets", "select", id)
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "presets", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "* "+id)
	assert.Contains(t, stdout, "Custom")

	stdout, _, err = executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "preset: Focus Block (50m work / 10m break)")

	_, _, err = executeCLI(t, home, "presets", "remove", id)
	require.NoError(t, err)

	stdout, _, err = executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "preset: Classic Pomodoro (25m work / 5m break)")
}

func TestPresetsBuiltInsAreReadOnly(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "presets", "remove", "classic")
	require.Error(t, err)
}

func TestStatusJSONOutput(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "status", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var report struct {
		Preset struct {
			ID string `json:"id"`
		} `json:"preset"`
		Snapshot map[string]any `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "classic", report.Preset.ID)
	assert.Equal(t, "none", report.Snapshot["session"])
	assert.Equal(t, "stopped", report.Snapshot["status"])
	assert.EqualValues(t, 0, report.Snapshot["chargesLeft"])
	assert.EqualValues(t, 3600, report.Snapshot["timeLeftTillNextCharge"])
}

func TestStatusWithChargingDisabled(t *testing.T) {
	home := t.TempDir()
	_, _, err := executeCLI(t, home, "settings", "set", "breakChargingEnabled", "false")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "status")
	require.NoError(t, err)
	assert.Contains(t, stdout, "break charging: off")
}

func TestStatsRejectsBadDate(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "stats", "--date", "18/10/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestStatsEmptyHistory(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "stats", "--date", "2026-01-02")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2026-01-02")
	assert.Contains(t, stdout, "recent:\n  none")
}

func TestLedgerResetRequiresConfirmation(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "ledger", "reset")
	require.Error(t, err)

	stdout, _, err := executeCLI(t, home, "ledger", "reset", "--yes")
	require.NoError(t, err)
	assert.Equal(t, "Ledger reset\n", stdout)
	assert.FileExists(t, filepath.Join(home, "bCharge.enc"))
}

func TestRunQuitsOnCommand(t *testing.T) {
	home := t.TempDir()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader("h\nq\n"))
	root.SetArgs([]string{"--home", home, "run", "--preset", "deep"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "Deep Work: 90m work / 20m break")
	assert.Contains(t, stdout.String(), "q quit")
}

func TestInvalidLogLevelFails(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "--log-level", "loud", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(append([]string{"--home", home}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func customPresetID(t *testing.T, home string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(home, "presets.toml"))
	require.NoError(t, err)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "id = ") {
			return strings.Trim(strings.TrimPrefix(line, "id = "), `"'`)
		}
	}
	t.Fatalf("no custom preset in %s", data)
	return ""
}
