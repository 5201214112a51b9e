package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	cfg := DefaultConfig()
	assert.Equal(t, 45*time.Minute, cfg.DefaultDuration)
	assert.Equal(t, time.Second, cfg.DebounceDelay)
	assert.Equal(t, 64, cfg.SchedulerBuffer)
	assert.Equal(t, "/tmp/xdg/taskline/taskline.db", cfg.DatabasePath)
	assert.True(t, cfg.ShowGaps)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := strings.Join([]string{
		`database = "` + filepath.Join(dir, "plan.db") + `"`,
		`timezone = "UTC"`,
		`default_duration = "30m"`,
		`show_gaps = false`,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("TASKLINE_LOG_LEVEL", "debug")
	t.Setenv("TASKLINE_SCHEDULER_BUFFER", "128")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plan.db"), cfg.DatabasePath)
	assert.Equal(t, 30*time.Minute, cfg.DefaultDuration)
	assert.False(t, cfg.ShowGaps)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 128, cfg.SchedulerBuffer)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("timezone = \"Mars/Olympus\"\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown timezone")

	require.NoError(t, os.WriteFile(path, []byte("default_duration = \"0s\"\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "default_duration")
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	require.NoError(t, WriteDefault(path))
	assert.Error(t, WriteDefault(path), "second write must not clobber")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
