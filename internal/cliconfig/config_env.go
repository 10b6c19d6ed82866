package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (DEVSYNC_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("tool-url", os.Getenv("DEVSYNC_TOOL_URL"), &cfg.ToolURL)
	s.setString("name", os.Getenv("DEVSYNC_NAME"), &cfg.Name)
	s.setString("instance-id", os.Getenv("DEVSYNC_INSTANCE_ID"), &cfg.InstanceID)
	s.setString("initial-path", os.Getenv("DEVSYNC_INITIAL_PATH"), &cfg.InitialPath)
	s.setString("session-dir", os.Getenv("DEVSYNC_SESSION_DIR"), &cfg.SessionDir)
	s.setString("metrics-addr", os.Getenv("DEVSYNC_METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", os.Getenv("DEVSYNC_LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("dial-attempts", os.Getenv("DEVSYNC_DIAL_ATTEMPTS"), &cfg.DialAttempts); err != nil {
		return err
	}
	if err := s.setIntFromString("queue-size", os.Getenv("DEVSYNC_QUEUE_SIZE"), &cfg.QueueSize); err != nil {
		return err
	}

	if err := s.setDuration("backoff-initial", os.Getenv("DEVSYNC_BACKOFF_INITIAL"), &cfg.BackoffInitial); err != nil {
		return err
	}
	if err := s.setDuration("backoff-max", os.Getenv("DEVSYNC_BACKOFF_MAX"), &cfg.BackoffMax); err != nil {
		return err
	}
	if err := s.setDuration("handshake-timeout", os.Getenv("DEVSYNC_HANDSHAKE_TIMEOUT"), &cfg.HandshakeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("ping-interval", os.Getenv("DEVSYNC_PING_INTERVAL"), &cfg.PingInterval); err != nil {
		return err
	}
	if err := s.setDuration("debounce", os.Getenv("DEVSYNC_DEBOUNCE"), &cfg.Debounce); err != nil {
		return err
	}

	s.setBoolFromString("offline", os.Getenv("DEVSYNC_OFFLINE"), &cfg.Offline)

	return nil
}
