package progress

import (
	"sync"
	"time"
)

// Report describes one k-means step.
type Report struct {
	// Attempt is 1-based, out of Attempts.
	Attempt  int
	Attempts int
	// Step is 1-based, out of Steps (the per-attempt budget).
	Step  int
	Steps int
	// Changed is the number of distinct colors that moved to another cluster.
	Changed int
	// Movement is the summed centroid displacement, in unit RGB.
	Movement float64
	// Converged is set when no assignment changed.
	Converged bool
	// Final is set on the last report of an attempt.
	Final bool
	// Progress and Total are global step counters across all attempts.
	// Total shrinks when an attempt converges early.
	Progress int
	Total    int
}

// Fraction returns Progress/Total in [0, 1].
func (r Report) Fraction() float64 {
	if r.Total <= 0 {
		return 0
	}
	return min(1, float64(r.Progress)/float64(r.Total))
}

// AttemptReport summarizes a finished attempt.
type AttemptReport struct {
	Attempt   int
	Steps     int
	Converged bool
	Score     float64
	// Best is set when this attempt replaced the best result so far.
	Best    bool
	Elapsed time.Duration
}

// Sink receives calculation progress. Implementations must not block for
// long; they run on the calculating goroutine.
type Sink interface {
	Step(Report)
	AttemptDone(AttemptReport)
}

// LoadSink receives per-file progress while images are decoded.
// index counts completed files starting at 1.
type LoadSink interface {
	FileLoaded(name string, index, total int, size int64)
}

// Nop discards all reports.
type Nop struct{}

func (Nop) Step(Report)                        {}
func (Nop) AttemptDone(AttemptReport)          {}
func (Nop) FileLoaded(string, int, int, int64) {}

// Funcs adapts plain functions to Sink. Nil fields are skipped.
type Funcs struct {
	OnStep    func(Report)
	OnAttempt func(AttemptReport)
}

func (f Funcs) Step(r Report) {
	if f.OnStep != nil {
		f.OnStep(r)
	}
}

func (f Funcs) AttemptDone(r AttemptReport) {
	if f.OnAttempt != nil {
		f.OnAttempt(r)
	}
}

// LoadFunc adapts a function to LoadSink.
type LoadFunc func(name string, index, total int, size int64)

func (f LoadFunc) FileLoaded(name string, index, total int, size int64) {
	f(name, index, total, size)
}

// Recorder keeps every report it receives. Safe for concurrent use.
type Recorder struct {
	mu       sync.Mutex
	steps    []Report
	attempts []AttemptReport
	files    []string
}

func (r *Recorder) Step(rep Report) {
	r.mu.Lock()
	r.steps = append(r.steps, rep)
	r.mu.Unlock()
}

func (r *Recorder) AttemptDone(rep AttemptReport) {
	r.mu.Lock()
	r.attempts = append(r.attempts, rep)
	r.mu.Unlock()
}

func (r *Recorder) FileLoaded(name string, _, _ int, _ int64) {
	r.mu.Lock()
	r.files = append(r.files, name)
	r.mu.Unlock()
}

// Steps returns a copy of the recorded step reports.
func (r *Recorder) Steps() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Report(nil), r.steps...)
}

// Attempts returns a copy of the recorded attempt reports.
func (r *Recorder) Attempts() []AttemptReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AttemptReport(nil), r.attempts...)
}

// Files returns the loaded file names in completion order.
func (r *Recorder) Files() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.files...)
}
