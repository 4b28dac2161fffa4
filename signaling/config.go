package signaling

import "time"

// Default values for the signaling channel. If the values are not set,
// these values are used.
const (
	DefaultMaxPublishRetries = 3
	DefaultRetryInterval     = 200 * time.Millisecond
)

// Config contains the configuration for the signaling channel.
type Config struct {
	// MaxPublishRetries is how many times a failed append is retried.
	// A lost offer or answer stalls the affected link indefinitely, so
	// those are always retried up to this bound.
	MaxPublishRetries int

	// RetryInterval is the base backoff interval, doubled per attempt.
	RetryInterval time.Duration
}

// withDefaults fills zero values with the package defaults.
func (c Config) withDefaults() Config {
	if c.MaxPublishRetries == 0 {
		c.MaxPublishRetries = DefaultMaxPublishRetries
	}
	if c.RetryInterval == 0 {
		c.RetryInterval = DefaultRetryInterval
	}
	return c
}
