package flowrt

// stageConfig holds the ambient collaborators a stage is built with.
// Unless overridden, a composed stage inherits its upstream's config, so
// an executor or observer set at Channel creation propagates down an
// entire pipeline by default.
type stageConfig struct {
	executor Executor
	observer *StepObserver
}

// Option configures a stage at Channel or Pipe/PipeFunc/PipeCtx
// construction time.
type Option func(*stageConfig)

// WithExecutor overrides the executor a stage (and, by inheritance, its
// downstream stages) schedules steps on.
func WithExecutor(e Executor) Option {
	return func(c *stageConfig) { c.executor = e }
}

// WithObserver attaches a [StepObserver] to a stage for ambient
// logging/metrics/testing instrumentation.
func WithObserver(o *StepObserver) Option {
	return func(c *stageConfig) { c.observer = o }
}

func newStageConfig(opts []Option, inherit *stageConfig) stageConfig {
	cfg := stageConfig{executor: defaultExecutor}
	if inherit != nil {
		cfg = *inherit
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
