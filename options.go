package ilist

// Option configures a single call to a composite operation. The only
// thing there currently is to configure is the back-off curve used if
// the operation has to retry; tests want a near-zero cap so contention
// tests run fast, production code wants a millisecond-range cap.
type Option func(*opConfig)

type opConfig struct {
	policy BackoffPolicy
}

// WithBackoffPolicy overrides the back-off curve for one call.
func WithBackoffPolicy(p BackoffPolicy) Option {
	return func(c *opConfig) { c.policy = p }
}

func newOpConfig(opts ...Option) opConfig {
	c := opConfig{policy: defaultBackoffPolicy}
	for _, o := range opts {
		o(&c)
	}
	return c
}
