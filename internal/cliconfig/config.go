package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultToolURL is the default websocket endpoint of the debugging tool.
const DefaultToolURL = "ws://127.0.0.1:8000/devtools"

// Config holds CLI configuration for devsync.
type Config struct {
	ToolURL    string
	Name       string
	InstanceID string

	InitialPath string
	SessionDir  string
	MetricsAddr string
	LogLevel    string

	DialAttempts     int
	QueueSize        int
	BackoffInitial   time.Duration
	BackoffMax       time.Duration
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	Debounce         time.Duration

	Offline bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ToolURL:          DefaultToolURL,
		Name:             "devsync",
		InitialPath:      "/",
		LogLevel:         "info",
		DialAttempts:     3,
		QueueSize:        64,
		BackoffInitial:   250 * time.Millisecond,
		BackoffMax:       5 * time.Second,
		HandshakeTimeout: 5 * time.Second,
		PingInterval:     30 * time.Second,
		Debounce:         500 * time.Millisecond,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}

	if !c.Offline {
		if c.ToolURL == "" {
			c.ToolURL = DefaultToolURL
		}
		u, err := url.Parse(c.ToolURL)
		if err != nil {
			return fmt.Errorf("parse tool-url: %w", err)
		}
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return fmt.Errorf("tool-url must use ws:// or wss://, got %q", c.ToolURL)
		}
	}

	if c.InitialPath == "" {
		c.InitialPath = "/"
	}
	if !strings.HasPrefix(c.InitialPath, "/") {
		c.InitialPath = "/" + c.InitialPath
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}

	if c.DialAttempts <= 0 {
		return fmt.Errorf("dial attempts must be positive")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive")
	}
	if c.BackoffInitial <= 0 {
		return fmt.Errorf("backoff initial must be positive")
	}
	if c.BackoffMax < c.BackoffInitial {
		c.BackoffMax = c.BackoffInitial
	}
	if c.PingInterval <= 0 {
		return fmt.Errorf("ping interval must be positive")
	}
	if c.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative")
	}

	return nil
}

// Level returns the parsed log level. Call after Validate.
func (c Config) Level() zerolog.Level {
	l, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return l
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
