package queue

// options collects queue construction settings.
type options struct {
	capacity int
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*options)

// WithCapacity bounds the number of pending tokens.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}
