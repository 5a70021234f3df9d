package palcalc

import (
	"math/rand"
	"runtime"

	"github.com/hupe1980/palcalc/progress"
)

// Defaults used when the corresponding option is not given.
const (
	DefaultColors   = 16
	DefaultAttempts = 5
	DefaultSteps    = 1000
)

type options struct {
	colors           int
	attempts         int
	steps            int
	workers          int
	seed             int64
	hasSeed          bool
	rand             *rand.Rand
	weightedSeeding  bool
	sink             progress.Sink
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Calculator.
type Option func(*options)

// WithColors sets the requested palette size. 0 and values above 256 are
// clamped to [1, 256]; negative values are rejected by New.
func WithColors(n int) Option {
	return func(o *options) {
		o.colors = n
	}
}

// WithAttempts sets how many independently seeded runs are made. The run with
// the lowest error wins.
func WithAttempts(n int) Option {
	return func(o *options) {
		o.attempts = n
	}
}

// WithSteps sets the per-attempt step budget. An attempt stops earlier once no
// color changes cluster.
func WithSteps(n int) Option {
	return func(o *options) {
		o.steps = n
	}
}

// WithWorkers sets the number of goroutines used for the assignment step.
// 0 uses runtime.GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSeed makes every Calculate call start from the same pseudorandom
// sequence, so identical inputs produce identical palettes.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
		o.hasSeed = true
	}
}

// WithRand supplies the random source directly. It takes precedence over
// WithSeed. Calls sharing r are serialized.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		o.rand = r
	}
}

// WithWeightedSeeding picks the first seed with probability proportional to
// color frequency instead of uniformly over distinct colors.
func WithWeightedSeeding(enabled bool) Option {
	return func(o *options) {
		o.weightedSeeding = enabled
	}
}

// WithProgress configures the sink that receives step and attempt reports.
// Pass nil to disable reporting.
//
// Example with throttled log output:
//
//	sink := progress.Throttle(progress.NewLogSink(logger.Logger), 500*time.Millisecond)
//	calc, _ := palcalc.New(palcalc.WithProgress(sink))
func WithProgress(sink progress.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithMetricsCollector configures a metrics collector for monitoring runs.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &palcalc.BasicMetricsCollector{}
//	calc, _ := palcalc.New(palcalc.WithMetricsCollector(metrics))
//	// ... use calc ...
//	stats := metrics.GetStats()
//	fmt.Printf("Attempts: %d, Avg steps: %d\n", stats.AttemptCount, stats.AttemptAvgSteps)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := palcalc.NewJSONLogger(slog.LevelInfo)
//	calc, _ := palcalc.New(palcalc.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		colors:   DefaultColors,
		attempts: DefaultAttempts,
		steps:    DefaultSteps,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.sink == nil {
		o.sink = progress.Nop{}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

func (o options) validate() error {
	switch {
	case o.colors < 0:
		return &ErrInvalidOption{Name: "colors", Value: o.colors, cause: ErrInvalidColors}
	case o.attempts < 1:
		return &ErrInvalidOption{Name: "attempts", Value: o.attempts, cause: ErrInvalidAttempts}
	case o.steps < 1:
		return &ErrInvalidOption{Name: "steps", Value: o.steps, cause: ErrInvalidSteps}
	case o.workers < 0:
		return &ErrInvalidOption{Name: "workers", Value: o.workers, cause: ErrInvalidWorkers}
	}
	return nil
}

func (o options) effectiveWorkers() int {
	if o.workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.workers
}
