package tdlchar

import "github.com/charmbracelet/log"

// DefaultCapacity is the message buffer size of the classic device: 256
// bytes, of which at most 255 hold message payload.
const DefaultCapacity = 256

// Config holds the configuration for a character device
type Config struct {
	// Capacity is the size of the message buffer in bytes. The largest
	// accepted message is Capacity-1 bytes.
	Capacity int

	// Logger receives best-effort diagnostics for open/close/read/write
	// events. A nil logger disables diagnostics entirely; logging never
	// affects operation results.
	Logger *log.Logger
}

// Option is a functional option for configuring a character device
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() Config {
	return Config{
		Capacity: DefaultCapacity,
		Logger:   nil,
	}
}

// WithCapacity sets the message buffer size in bytes (minimum 2, so at least
// one payload byte fits)
func WithCapacity(capacity int) Option {
	return func(c *Config) error {
		if capacity < 2 {
			return ErrInvalidConfig
		}
		c.Capacity = capacity
		return nil
	}
}

// WithLogger sets the diagnostics logger
func WithLogger(logger *log.Logger) Option {
	return func(c *Config) error {
		c.Logger = logger
		return nil
	}
}
