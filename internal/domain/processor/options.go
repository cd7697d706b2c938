package processor

import "github.com/okian/torus/pkg/logger"

// Option applies a configuration option to a Processor.
type Option func(*config)

type config struct {
	log logger.Logger
}

// WithLogger sets the logger. The default drops everything.
func WithLogger(l logger.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}
