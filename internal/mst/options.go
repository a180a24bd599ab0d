package mst

// Options configures ComputeWith
type Options struct {
	// RequireConnected makes a disconnected graph an error instead of
	// producing a spanning forest.
	RequireConnected bool
}

// Option modifies Options
type Option func(*Options)

// WithRequireConnected returns ErrDisconnected when the result would be a forest
func WithRequireConnected() Option {
	return func(o *Options) {
		o.RequireConnected = true
	}
}

// DefaultOptions returns the options used by Compute
func DefaultOptions() Options {
	return Options{}
}
