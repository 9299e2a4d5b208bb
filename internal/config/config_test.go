package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, "127.0.0.1:7777", cfg.ListenAddr())
	assert.Equal(t, 1000, cfg.MaxEvents)
	assert.Equal(t, time.Minute, cfg.InstanceSweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.InstanceStaleAfter)
	assert.Equal(t, time.Hour, cfg.InstanceEvictAfter)
	assert.Equal(t, time.Hour, cfg.ProcessedRetention)
	assert.NotContains(t, cfg.DataDir, "~") // home expanded
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("MISSION_CONTROL_PORT", "8888")
	t.Setenv("MISSION_CONTROL_HOST", "0.0.0.0")
	t.Setenv("MISSION_CONTROL_DATA_DIR", "/tmp/mc-data")
	t.Setenv("INSTANCE_STALE_AFTER", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8888", cfg.ListenAddr())
	assert.Equal(t, "/tmp/mc-data", cfg.DataDir)
	assert.Equal(t, 30*time.Second, cfg.InstanceStaleAfter)
}

func TestDerivedPaths(t *testing.T) {
	t.Setenv("MISSION_CONTROL_DATA_DIR", "/data")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data", "events.jsonl"), cfg.EventLogPath())
	assert.Equal(t, filepath.Join("/data", "codebases"), cfg.CodebasesDir())
	assert.Equal(t, filepath.Join("/data", "inbox"), cfg.InboxDir())
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("INSTANCE_SWEEP_INTERVAL", "not-a-duration")

	_, err := Load()
	assert.Error(t, err)
}
