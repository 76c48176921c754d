package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeTest(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := execute(t.Context(), args, stdout, stderr)

	return stdout.String(), stderr.String(), err
}

func Test_version(t *testing.T) {
	assert := assert.New(t)

	stdout, _, err := executeTest(t, "version")
	assert.NoError(err)
	assert.Contains(stdout, appName+" "+version)
}

func Test_run(t *testing.T) {
	assert := assert.New(t)

	_, stderr, err := executeTest(t, "run",
		"--capacity", "32", "--max-line", "30", "--lines", "300", "--chunk", "5", "--concurrent",
	)
	assert.NoError(err)
	assert.Contains(stderr, "report")
	assert.Contains(stderr, "received_lines=300")
}

func Test_run_configFile(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "bench.yaml")
	content := "capacity: 16\nmax-line: 14\nlines: 120\ndrop-control: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, stderr, err := executeTest(t, "run", "--config", path)
	assert.NoError(err)
	assert.Contains(stderr, "received_lines=120")
}

func Test_run_env(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("RINGO_LINES", "42")
	t.Setenv("RINGO_LOG_LEVEL", "warn")

	// The report is logged at info level
	_, stderr, err := executeTest(t, "run")
	assert.NoError(err)
	assert.NotContains(stderr, "report")
}

func Test_run_invalidConfig(t *testing.T) {
	assert := assert.New(t)

	// The anomalies are logged and replaced by their fallback
	_, stderr, err := executeTest(t, "run", "--capacity", "100", "--lines", "10")
	assert.NoError(err)
	assert.Contains(stderr, "config anomaly")
	assert.Contains(stderr, "received_lines=10")
}

func Test_invalidLogLevel(t *testing.T) {
	_, _, err := executeTest(t, "run", "--log-level", "loud")
	assert.Error(t, err)
}
