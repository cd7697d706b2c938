package repository

// Option applies a configuration option to the MapStore.
type Option func(*storeConfig)

type storeConfig struct {
	sizeHint int
}

// WithSizeHint preallocates room for n identifiers.
func WithSizeHint(n int) Option {
	return func(c *storeConfig) {
		if n > 0 {
			c.sizeHint = n
		}
	}
}
