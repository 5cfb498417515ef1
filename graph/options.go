package graph

import "github.com/kamilmandziuk/needlepoint/graph/provider"

// ExecutorOption configures an Executor at construction time.
type ExecutorOption func(*executorConfig)

// ProviderFactory builds the provider.Provider adapter a node's LLMConfig
// names. NewProvider is the production implementation; tests substitute
// one that returns a graph/provider/mock.Provider instead of reaching a
// real network endpoint.
type ProviderFactory func(cfg LLMConfig, keys ApiKeys) provider.Provider

type executorConfig struct {
	maxConcurrent   int
	retryPolicy     *RetryPolicy
	metrics         *PrometheusMetrics
	costTracker     *CostTracker
	providerFactory ProviderFactory
}

func defaultExecutorConfig() executorConfig {
	return executorConfig{maxConcurrent: 8, providerFactory: NewProvider}
}

// WithProviderFactory overrides how the Executor constructs a node's
// provider, in place of the default NewProvider dispatch. Tests use this
// to substitute a mock.Provider without making network calls.
func WithProviderFactory(factory ProviderFactory) ExecutorOption {
	return func(cfg *executorConfig) {
		if factory != nil {
			cfg.providerFactory = factory
		}
	}
}

// WithMaxConcurrent caps how many nodes within a single wave are
// generated concurrently. Nodes in the same wave have no dependency
// relationship to each other, so this is purely a resource-limiting
// knob, not a correctness one.
//
// Default: 8. Values <= 0 are ignored (the default is kept).
func WithMaxConcurrent(n int) ExecutorOption {
	return func(cfg *executorConfig) {
		if n > 0 {
			cfg.maxConcurrent = n
		}
	}
}

// WithRetryPolicy enables automatic retry of a node's provider call when
// it fails with a retryable provider.Error (rate limiting or a network
// error). Without this option the executor makes exactly one attempt per
// node per run.
func WithRetryPolicy(policy RetryPolicy) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.retryPolicy = &policy
	}
}

// WithMetrics attaches a PrometheusMetrics instance that the executor
// updates as nodes transition through the generation lifecycle.
func WithMetrics(metrics *PrometheusMetrics) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.metrics = metrics
	}
}

// WithCostTracker attaches a CostTracker that records token usage and
// estimated cost for every successful provider call.
func WithCostTracker(tracker *CostTracker) ExecutorOption {
	return func(cfg *executorConfig) {
		cfg.costTracker = tracker
	}
}
