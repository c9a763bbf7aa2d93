// internal/cli/options_test.go
package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recgroup/internal/engine"
	"recgroup/internal/pipeline"
)

func parse(t *testing.T, args ...string) (Options, bool, string, error) {
	t.Helper()
	var out, errb bytes.Buffer
	o, ok, err := Parse(args, &out, &errb)
	return o, ok, out.String(), err
}

func mustParse(t *testing.T, args ...string) Options {
	t.Helper()
	o, ok, _, err := parse(t, args...)
	require.NoError(t, err)
	require.True(t, ok)
	return o
}

func TestDefaults(t *testing.T) {
	o := mustParse(t, "in.txt")
	assert.Equal(t, Options{
		Input:        "in.txt",
		Output:       "output.txt",
		Format:       "text",
		BatchSize:    pipeline.DefaultBatchSize,
		WindowFactor: pipeline.DefaultWindowFactor,
		GracePeriod:  30 * time.Second,
		Engine:       engine.UnionFind,
		FaultPolicy:  pipeline.Abort,
		LogLevel:     "info",
		LogFormat:    "text",
	}, o)
}

func TestFlags(t *testing.T) {
	o := mustParse(t, "-o", "-", "--format", "yaml", "-t", "4", "--batch-size", "10",
		"--window-factor", "3", "--engine", "split-lock", "--fault-policy", "best-effort",
		"--grace-period", "2s", "--metrics-file", "m.prom", "--log-level", "debug", "--log-format", "json", "-")
	assert.Equal(t, "-", o.Input)
	assert.Equal(t, "-", o.Output)
	assert.Equal(t, "yaml", o.Format)
	assert.Equal(t, 4, o.Workers)
	assert.Equal(t, 10, o.BatchSize)
	assert.Equal(t, 3, o.WindowFactor)
	assert.Equal(t, engine.SplitLock, o.Engine)
	assert.Equal(t, pipeline.BestEffort, o.FaultPolicy)
	assert.Equal(t, 2*time.Second, o.GracePeriod)
	assert.Equal(t, "m.prom", o.MetricsFile)
	assert.Equal(t, "json", o.LogFormat)
}

func TestPositionalCountPrintsUsage(t *testing.T) {
	for _, args := range [][]string{{}, {"a", "b"}} {
		_, ok, out, err := parse(t, args...)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Contains(t, out, "recgroup [flags] <input-file>")
	}
}

func TestHelpAndVersion(t *testing.T) {
	_, ok, out, err := parse(t, "-h")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out, "--batch-size")

	_, ok, out, err = parse(t, "--version")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, out, "recgroup version")
}

func TestValidation(t *testing.T) {
	bad := [][]string{
		{"--format", "xml", "in"},
		{"--batch-size", "0", "in"},
		{"-t", "-1", "in"},
		{"--window-factor", "0", "in"},
		{"--engine", "sharded", "in"},
		{"--fault-policy", "ignore", "in"},
		{"--grace-period", "0s", "in"},
		{"--log-level", "loud", "in"},
		{"--log-format", "xml", "in"},
		{"-o", "", "in"},
		{"--no-such-flag", "in"},
		{"--batch-size", "many", "in"},
	}
	for _, args := range bad {
		_, ok, _, err := parse(t, args...)
		assert.Error(t, err, "%v", args)
		assert.False(t, ok)
	}
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("RECGROUP_BATCH_SIZE", "42")
	t.Setenv("RECGROUP_ENGINE", "split-lock")
	o := mustParse(t, "in")
	assert.Equal(t, 42, o.BatchSize)
	assert.Equal(t, engine.SplitLock, o.Engine)

	o = mustParse(t, "--batch-size", "7", "in")
	assert.Equal(t, 7, o.BatchSize, "flag beats environment")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recgroup.toml")
	require.NoError(t, os.WriteFile(path, []byte("workers = 3\nformat = \"json\"\ngrace-period = \"5s\"\n"), 0o644))

	o := mustParse(t, "--config", path, "in")
	assert.Equal(t, 3, o.Workers)
	assert.Equal(t, "json", o.Format)
	assert.Equal(t, 5*time.Second, o.GracePeriod)

	t.Setenv("RECGROUP_WORKERS", "9")
	o = mustParse(t, "--config", path, "in")
	assert.Equal(t, 9, o.Workers, "environment beats file")
}

func TestConfigFileRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recgroup.toml")
	require.NoError(t, os.WriteFile(path, []byte("threads = 3\n"), 0o644))
	_, _, _, err := parse(t, "--config", path, "in")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid option in configuration file: threads")

	_, _, _, err = parse(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "in")
	assert.Error(t, err)
}
