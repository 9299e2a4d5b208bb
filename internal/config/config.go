package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all server configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	// Listener. Host defaults to loopback; set MISSION_CONTROL_HOST=0.0.0.0
	// to expose the dashboard on the local network.
	Port int    `envconfig:"MISSION_CONTROL_PORT" default:"7777"`
	Host string `envconfig:"MISSION_CONTROL_HOST" default:"127.0.0.1"`

	// DataDir owns all persisted state: the event log, per-codebase JSON
	// files, and the command inbox. Exactly one server process may own it.
	DataDir string `envconfig:"MISSION_CONTROL_DATA_DIR" default:"~/.shipkit-mission-control/data"`

	// DashboardDir holds the built dashboard bundle. When index.html is
	// missing the server falls back to an embedded page.
	DashboardDir string `envconfig:"MISSION_CONTROL_DASHBOARD_DIR" default:"~/.shipkit-mission-control/dashboard"`

	// KnowledgeFile optionally overrides the built-in skill knowledge table.
	KnowledgeFile string `envconfig:"MISSION_CONTROL_KNOWLEDGE_FILE"`

	// Request handling
	MaxBodyBytes int    `envconfig:"MISSION_CONTROL_MAX_BODY_BYTES" default:"1048576"`
	CORSOrigins  string `envconfig:"MISSION_CONTROL_CORS_ORIGINS" default:"*"`

	// Instance registry thresholds
	InstanceSweepInterval time.Duration `envconfig:"INSTANCE_SWEEP_INTERVAL" default:"1m"`
	InstanceStaleAfter    time.Duration `envconfig:"INSTANCE_STALE_AFTER" default:"5m"`
	InstanceEvictAfter    time.Duration `envconfig:"INSTANCE_EVICT_AFTER" default:"1h"`

	// Event store
	MaxEvents int `envconfig:"MISSION_CONTROL_MAX_EVENTS" default:"1000"`

	// Command inbox
	InboxSweepInterval time.Duration `envconfig:"INBOX_SWEEP_INTERVAL" default:"10m"`
	ProcessedRetention time.Duration `envconfig:"INBOX_PROCESSED_RETENTION" default:"1h"`
}

// EventLogPath returns the path of the append-only event log.
func (c *Config) EventLogPath() string {
	return filepath.Join(c.DataDir, "events.jsonl")
}

// CodebasesDir returns the directory holding per-codebase JSON files.
func (c *Config) CodebasesDir() string {
	return filepath.Join(c.DataDir, "codebases")
}

// InboxDir returns the root of the per-session command inbox.
func (c *Config) InboxDir() string {
	return filepath.Join(c.DataDir, "inbox")
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from environment variables and expands any
// leading ~ in directory paths.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var err error
	if cfg.DataDir, err = expandHome(cfg.DataDir); err != nil {
		return nil, err
	}
	if cfg.DashboardDir, err = expandHome(cfg.DashboardDir); err != nil {
		return nil, err
	}
	if cfg.KnowledgeFile != "" {
		if cfg.KnowledgeFile, err = expandHome(cfg.KnowledgeFile); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

func expandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expanding %q: %w", path, err)
	}
	return filepath.Join(home, path[1:]), nil
}
