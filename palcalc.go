package palcalc

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/hupe1980/palcalc/histogram"
	"github.com/hupe1980/palcalc/internal/kmeans"
	"github.com/hupe1980/palcalc/palette"
	"github.com/hupe1980/palcalc/progress"
	"github.com/hupe1980/palcalc/rgb"
)

// Calculator turns color histograms into palettes.
//
// A Calculator is safe for concurrent use. Calls that share a random source
// given with WithRand run one at a time.
type Calculator struct {
	opts options

	// randMu serializes use of opts.rand.
	randMu sync.Mutex
}

// AttemptResult describes one clustering attempt.
type AttemptResult struct {
	// Score is Σ sqrt(distance · weight) over all distinct colors, with
	// distance measured in unit RGB. Lower is better.
	Score float64
	// Inertia is the weighted sum of squared distances.
	Inertia   float64
	Steps     int
	Converged bool
	Elapsed   time.Duration
}

// Result is a palette together with the attempts that produced it.
type Result struct {
	Palette palette.Palette
	// Colors is the effective palette size after clamping.
	Colors int
	// Distinct is the number of distinct colors in the input.
	Distinct int
	// Pixels is the total histogram weight.
	Pixels   uint64
	Attempts []AttemptResult
	// Best indexes Attempts.
	Best int
}

// Score returns the winning attempt's score.
func (r *Result) Score() float64 {
	return r.Attempts[r.Best].Score
}

// New returns a Calculator configured by opts.
func New(opts ...Option) (*Calculator, error) {
	o := applyOptions(opts)
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &Calculator{opts: o}, nil
}

// Calculate returns the palette for h, sorted by ascending luminance.
//
// It returns ErrNoData if h holds no pixels, and ctx.Err() if ctx is
// canceled; cancellation is noticed between steps.
func (c *Calculator) Calculate(ctx context.Context, h *histogram.Histogram) (palette.Palette, error) {
	res, err := c.CalculateDetailed(ctx, h)
	if err != nil {
		return nil, err
	}
	return res.Palette, nil
}

// CalculateDetailed is Calculate plus per-attempt statistics.
func (c *Calculator) CalculateDetailed(ctx context.Context, h *histogram.Histogram) (*Result, error) {
	start := time.Now()

	res, err := c.calculate(ctx, h)

	var (
		colors, distinct int
		pixels           uint64
		best             float64
	)
	if res != nil {
		colors, distinct, pixels, best = res.Colors, res.Distinct, res.Pixels, res.Score()
	}
	elapsed := time.Since(start)
	c.opts.metricsCollector.RecordRun(colors, c.opts.attempts, best, elapsed, err)
	c.opts.logger.WithColors(colors).LogRun(ctx, distinct, pixels, c.opts.attempts, best, elapsed, err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Calculator) calculate(ctx context.Context, h *histogram.Histogram) (*Result, error) {
	if h == nil || h.Empty() {
		return nil, ErrNoData
	}

	points, pixels := kmeans.FromHistogram(h)
	k := kmeans.ClampK(c.opts.colors, len(points))

	rng, release := c.random()
	defer release()

	engine := kmeans.NewEngine(points, rng, c.opts.effectiveWorkers(), c.opts.weightedSeeding)

	attempts, steps := c.opts.attempts, c.opts.steps
	res := &Result{
		Colors:   k,
		Distinct: len(points),
		Pixels:   pixels,
		Attempts: make([]AttemptResult, 0, attempts),
	}

	var (
		bestCentroids []rgb.Float
		done          int
		total         = attempts * steps
	)

	for attempt := 1; attempt <= attempts; attempt++ {
		attemptStart := time.Now()

		run, err := engine.Run(ctx, k, steps, func(s kmeans.Step) {
			done++
			if s.Converged {
				total -= steps - s.Step
			}
			c.opts.sink.Step(progress.Report{
				Attempt:   attempt,
				Attempts:  attempts,
				Step:      s.Step,
				Steps:     steps,
				Changed:   s.Changed,
				Movement:  s.Movement,
				Converged: s.Converged,
				Final:     s.Final,
				Progress:  done,
				Total:     total,
			})
		})
		if err != nil {
			return nil, err
		}

		ar := AttemptResult{
			Score:     run.Score,
			Inertia:   run.Inertia,
			Steps:     run.Steps,
			Converged: run.Converged,
			Elapsed:   time.Since(attemptStart),
		}
		res.Attempts = append(res.Attempts, ar)

		improved := attempt == 1 || ar.Score < res.Attempts[res.Best].Score
		if improved {
			res.Best = attempt - 1
			bestCentroids = run.Centroids
		}

		c.opts.metricsCollector.RecordAttempt(attempt, ar.Steps, ar.Converged, ar.Score, ar.Elapsed)
		c.opts.logger.WithAttempt(attempt).LogAttempt(ctx, ar.Steps, ar.Converged, ar.Score, improved, ar.Elapsed)
		c.opts.sink.AttemptDone(progress.AttemptReport{
			Attempt:   attempt,
			Steps:     ar.Steps,
			Converged: ar.Converged,
			Score:     ar.Score,
			Best:      improved,
			Elapsed:   ar.Elapsed,
		})
	}

	res.Palette = palette.FromCentroids(bestCentroids)
	return res, nil
}

// random returns the source for one calculation and a func that must be
// called once it is no longer used.
func (c *Calculator) random() (*rand.Rand, func()) {
	switch {
	case c.opts.rand != nil:
		c.randMu.Lock()
		return c.opts.rand, c.randMu.Unlock
	case c.opts.hasSeed:
		return rand.New(rand.NewSource(c.opts.seed)), func() {}
	default:
		return rand.New(rand.NewSource(time.Now().UnixNano())), func() {}
	}
}
