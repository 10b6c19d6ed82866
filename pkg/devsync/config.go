package devsync

import (
	"fmt"
	"time"

	"github.com/bft-labs/devsync/internal/domain"
)

// Config configures a Devsync instance.
type Config struct {
	// Name labels this application in the debugging tool.
	Name string

	// InstanceID identifies this instance across reconnects.
	// Empty means the transport picks one.
	InstanceID string

	// QueueSize bounds the number of tool commands waiting to be applied.
	QueueSize int

	// DialAttempts is how many times the tool is dialed before it is
	// considered absent.
	DialAttempts int

	// BackoffInitial and BackoffMax bound the wait between dial attempts.
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.Name == "" {
		c.Name = "devsync"
	}
	if c.QueueSize == 0 {
		c.QueueSize = 64
	}
	if c.DialAttempts == 0 {
		c.DialAttempts = 1
	}
	if c.BackoffInitial == 0 {
		c.BackoffInitial = 250 * time.Millisecond
	}
	if c.BackoffMax == 0 {
		c.BackoffMax = 5 * time.Second
	}
}

// Validate reports configuration errors wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue size must be positive", domain.ErrInvalidConfig)
	}
	if c.DialAttempts < 1 {
		return fmt.Errorf("%w: dial attempts must be positive", domain.ErrInvalidConfig)
	}
	if c.BackoffInitial < 0 || c.BackoffMax < 0 {
		return fmt.Errorf("%w: backoff must not be negative", domain.ErrInvalidConfig)
	}
	if c.BackoffMax < c.BackoffInitial {
		return fmt.Errorf("%w: backoff max %v is below initial %v", domain.ErrInvalidConfig, c.BackoffMax, c.BackoffInitial)
	}
	return nil
}
