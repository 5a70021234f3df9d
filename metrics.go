package palcalc

import (
	"math"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAttempt is called after each clustering attempt.
	RecordAttempt(attempt, steps int, converged bool, score float64, duration time.Duration)

	// RecordRun is called once per Calculate call. colors is the effective
	// palette size, best the winning score; err is nil if successful.
	RecordRun(colors, attempts int, best float64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAttempt(int, int, bool, float64, time.Duration) {}
func (NoopMetricsCollector) RecordRun(int, int, float64, time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AttemptCount      atomic.Int64
	AttemptConverged  atomic.Int64
	AttemptSteps      atomic.Int64
	AttemptTotalNanos atomic.Int64
	RunCount          atomic.Int64
	RunErrors         atomic.Int64
	RunTotalNanos     atomic.Int64
	lastScore         atomic.Uint64
}

// RecordAttempt implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAttempt(_, steps int, converged bool, _ float64, duration time.Duration) {
	b.AttemptCount.Add(1)
	b.AttemptSteps.Add(int64(steps))
	b.AttemptTotalNanos.Add(duration.Nanoseconds())
	if converged {
		b.AttemptConverged.Add(1)
	}
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_, _ int, best float64, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
		return
	}
	b.lastScore.Store(math.Float64bits(best))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AttemptCount:     b.AttemptCount.Load(),
		AttemptConverged: b.AttemptConverged.Load(),
		AttemptAvgSteps:  avg(b.AttemptSteps.Load(), b.AttemptCount.Load()),
		AttemptAvgNanos:  avg(b.AttemptTotalNanos.Load(), b.AttemptCount.Load()),
		RunCount:         b.RunCount.Load(),
		RunErrors:        b.RunErrors.Load(),
		RunAvgNanos:      avg(b.RunTotalNanos.Load(), b.RunCount.Load()),
		LastScore:        math.Float64frombits(b.lastScore.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AttemptCount     int64
	AttemptConverged int64
	AttemptAvgSteps  int64
	AttemptAvgNanos  int64
	RunCount         int64
	RunErrors        int64
	RunAvgNanos      int64
	LastScore        float64
}
