package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// LogSink renders reports as structured log lines. It implements both Sink
// and LoadSink.
type LogSink struct {
	log   *slog.Logger
	level slog.Level
	now   func() time.Time

	mu    sync.Mutex
	start time.Time
}

// NewLogSink returns a sink that logs through l at Info level.
func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = slog.Default()
	}
	return &LogSink{log: l, level: slog.LevelInfo, now: time.Now}
}

// elapsed returns the time since the first report.
func (s *LogSink) elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.start.IsZero() {
		s.start = now
	}
	return now.Sub(s.start)
}

func (s *LogSink) Step(r Report) {
	elapsed := s.elapsed()
	s.log.Log(context.Background(), s.level, "calculating",
		slog.String("attempt", fmt.Sprintf("%d/%d", r.Attempt, r.Attempts)),
		slog.String("step", fmt.Sprintf("%d/%d", r.Step, r.Steps)),
		slog.String("moved", humanize.Comma(int64(r.Changed))),
		slog.String("distance", fmt.Sprintf("%.4f", r.Movement)),
		slog.String("progress", fmt.Sprintf("%.0f%%", r.Fraction()*100)),
		slog.Duration("elapsed", elapsed.Round(time.Second)),
		slog.Duration("remaining", Remaining(elapsed, r.Progress, r.Total).Round(time.Second)),
	)
}

func (s *LogSink) AttemptDone(r AttemptReport) {
	s.log.Log(context.Background(), s.level, "attempt finished",
		slog.Int("attempt", r.Attempt),
		slog.Int("steps", r.Steps),
		slog.Bool("converged", r.Converged),
		slog.Float64("score", r.Score),
		slog.Bool("best", r.Best),
		slog.Duration("elapsed", r.Elapsed),
	)
}

func (s *LogSink) FileLoaded(name string, index, total int, size int64) {
	elapsed := s.elapsed()
	s.log.Log(context.Background(), s.level, "loaded image",
		slog.String("file", name),
		slog.String("progress", fmt.Sprintf("%d/%d", index, total)),
		slog.String("size", humanize.IBytes(uint64(max(size, 0)))),
		slog.Duration("remaining", Remaining(elapsed, index, total).Round(time.Second)),
	)
}

// Remaining extrapolates the time left from the time spent on done of total
// units. It returns zero before any unit has completed.
func Remaining(elapsed time.Duration, done, total int) time.Duration {
	if done <= 0 || total <= done {
		return 0
	}
	return time.Duration(float64(elapsed) * float64(total-done) / float64(done))
}
