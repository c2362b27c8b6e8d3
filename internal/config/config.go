package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root of the settings file.
type Config struct {
	Hub      HubConfig         `yaml:"hub"`
	Source   SourceConfig      `yaml:"source"`
	Entities EntitiesConfig    `yaml:"entities"`
	Labels   map[string]string `yaml:"labels"`
	Icons    map[string]string `yaml:"icons"`
	Debug    DebugConfig       `yaml:"debug"`
}

// HubConfig describes the home-automation hub endpoint.
type HubConfig struct {
	URL       string `yaml:"url"`
	Token     string `yaml:"token"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// SourceConfig describes where the presence application writes its logs.
type SourceConfig struct {
	LogDir         string `yaml:"log_dir"`
	FilePrefix     string `yaml:"file_prefix"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
}

// EntityConfig identifies one hub entity and its display name.
type EntityConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// EntitiesConfig holds the two entities the watcher keeps in sync.
type EntitiesConfig struct {
	Status   EntityConfig `yaml:"status"`
	Activity EntityConfig `yaml:"activity"`
}

// DebugConfig controls the rotating debug log. An explicit max_size_mb of 0
// selects interval-based rotation instead of size-based.
type DebugConfig struct {
	Enabled             bool   `yaml:"enabled"`
	LogFile             string `yaml:"log_file"`
	MaxSizeMB           *int   `yaml:"max_size_mb"`
	BackupCount         int    `yaml:"backup_count"`
	RotateIntervalHours int    `yaml:"rotate_interval_hours"`
}

// MaxBytes returns the size-rotation threshold, 0 when rotating by interval.
func (d DebugConfig) MaxBytes() int64 {
	if d.MaxSizeMB == nil {
		return 0
	}
	return int64(*d.MaxSizeMB) * 1024 * 1024
}

// RotateInterval returns the time-rotation period.
func (d DebugConfig) RotateInterval() time.Duration {
	return time.Duration(d.RotateIntervalHours) * time.Hour
}

const (
	defaultFilePrefix     = "MSTeams"
	defaultPollIntervalMs = 3000
	defaultHubTimeoutMs   = 10000
	defaultLogFile        = "debug.log"
	defaultMaxSizeMB      = 5
	defaultBackupCount    = 3
	defaultRotateHours    = 24
)

// Load reads, normalizes, and validates the settings file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize applies defaults, expands environment references in paths, and
// lower-cases mapping keys so lookups are case-insensitive.
func (c *Config) normalize() {
	if c.Source.FilePrefix == "" {
		c.Source.FilePrefix = defaultFilePrefix
	}
	if c.Source.PollIntervalMs <= 0 {
		c.Source.PollIntervalMs = defaultPollIntervalMs
	}
	if c.Hub.TimeoutMs <= 0 {
		c.Hub.TimeoutMs = defaultHubTimeoutMs
	}
	if c.Debug.LogFile == "" {
		c.Debug.LogFile = defaultLogFile
	}
	if c.Debug.MaxSizeMB == nil {
		v := defaultMaxSizeMB
		c.Debug.MaxSizeMB = &v
	}
	if c.Debug.BackupCount <= 0 {
		c.Debug.BackupCount = defaultBackupCount
	}
	if c.Debug.RotateIntervalHours <= 0 {
		c.Debug.RotateIntervalHours = defaultRotateHours
	}

	c.Source.LogDir = os.ExpandEnv(c.Source.LogDir)
	c.Labels = lowerKeys(c.Labels)
	c.Icons = lowerKeys(c.Icons)
}

func lowerKeys(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// HubTimeout returns the bounded timeout for outbound hub calls.
func (c *Config) HubTimeout() time.Duration {
	return time.Duration(c.Hub.TimeoutMs) * time.Millisecond
}

// PollInterval returns the tailing poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Source.PollIntervalMs) * time.Millisecond
}
