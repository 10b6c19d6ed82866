package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	ToolURL          string `toml:"tool_url"`
	Name             string `toml:"name"`
	InstanceID       string `toml:"instance_id"`
	InitialPath      string `toml:"initial_path"`
	SessionDir       string `toml:"session_dir"`
	MetricsAddr      string `toml:"metrics_addr"`
	LogLevel         string `toml:"log_level"`
	DialAttempts     int    `toml:"dial_attempts"`
	QueueSize        int    `toml:"queue_size"`
	BackoffInitial   string `toml:"backoff_initial"`
	BackoffMax       string `toml:"backoff_max"`
	HandshakeTimeout string `toml:"handshake_timeout"`
	PingInterval     string `toml:"ping_interval"`
	Debounce         string `toml:"debounce"`
	Offline          *bool  `toml:"offline"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.devsync/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".devsync", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("tool-url", fc.ToolURL, &cfg.ToolURL)
	s.setString("name", fc.Name, &cfg.Name)
	s.setString("instance-id", fc.InstanceID, &cfg.InstanceID)
	s.setString("initial-path", fc.InitialPath, &cfg.InitialPath)
	s.setString("session-dir", fc.SessionDir, &cfg.SessionDir)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setInt("dial-attempts", fc.DialAttempts, &cfg.DialAttempts)
	s.setInt("queue-size", fc.QueueSize, &cfg.QueueSize)

	if err := s.setDuration("backoff-initial", fc.BackoffInitial, &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", fc.BackoffMax, &cfg.BackoffMax); err != nil {
		return err
	}
	if err := s.setDuration("handshake-timeout", fc.HandshakeTimeout, &cfg.HandshakeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("ping-interval", fc.PingInterval, &cfg.PingInterval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", fc.Debounce, &cfg.Debounce); err != nil {
		return err
	}

	s.setBool("offline", fc.Offline, &cfg.Offline)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
