package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{
		"-f", "tasks/", "--parallel", "--concurrency", "3",
		"--skip", "lint,test", "--log-level", "DEBUG", "--log-format", "json",
		"build", "docs:api",
	}, &out)
	require.NoError(t, err)
	assert.False(t, shouldExit)

	assert.Equal(t, "tasks/", cfg.TaskfilePath)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, []string{"lint", "test"}, cfg.Skip)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"build", "docs:api"}, cfg.Targets)
	assert.False(t, cfg.List)
}

func TestParse_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, shouldExit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "Taskfile.hcl", cfg.TaskfilePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.Targets)
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer
	cfg, shouldExit, err := Parse([]string{"--help"}, &out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "--parallel")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"--nope"}, wantMsg: "unknown flag: --nope"},
		{name: "bad log level", args: []string{"--log-level", "loud"}, wantMsg: `invalid log level "loud"`},
		{name: "bad concurrency", args: []string{"--concurrency", "-1"}, wantMsg: "must not be negative"},
		{name: "missing config file", args: []string{"--config", "/nonexistent/.taskgrid.yaml"}, wantMsg: "nonexistent"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)

			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestParse_EnvAndConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".taskgrid.yaml"), []byte("file: from-config.hcl\nconcurrency: 4\n"), 0o644))
	t.Setenv("TASKGRID_LOG_LEVEL", "warn")

	cfg, _, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "from-config.hcl", cfg.TaskfilePath)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg, _, err = Parse([]string{"--file", "flag.hcl"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "flag.hcl", cfg.TaskfilePath, "flags win over the config file")
}
