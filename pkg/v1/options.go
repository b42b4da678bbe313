package v1

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	root     string
	provider string
	workers  int
}

// WithRoot anchors the client at an explicit workspace root instead of
// searching upward from the working directory.
func WithRoot(root string) Option {
	return func(c *clientConfig) {
		c.root = root
	}
}

// WithProvider overrides the configured LLM provider.
func WithProvider(provider string) Option {
	return func(c *clientConfig) {
		c.provider = provider
	}
}

// WithWorkers overrides the configured file concurrency.
func WithWorkers(workers int) Option {
	return func(c *clientConfig) {
		c.workers = workers
	}
}
