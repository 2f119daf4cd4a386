package process

import "time"

// Config holds the limits applied to every spawned process.
type Config struct {
	// Timeout is the wall-clock limit for a single process (not for a whole request).
	Timeout time.Duration
	// WaitDelay bounds how long Run waits for output pipes to close after the process exits or is killed.
	WaitDelay time.Duration
}

// DefaultConfig returns a 10 second timeout.
func DefaultConfig() Config {
	return Config{
		Timeout:   10 * time.Second,
		WaitDelay: 2 * time.Second,
	}
}
