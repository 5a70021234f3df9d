package kmeans

import (
	"context"
	"errors"
	"math/rand"

	"github.com/hupe1980/palcalc/rgb"
)

// ErrNoPoints is returned when an attempt is started without any points.
var ErrNoPoints = errors.New("kmeans: no points")

// Step describes one finished assignment/update cycle.
type Step struct {
	// Step is 1-based.
	Step int
	// Changed is the number of points that switched cluster.
	Changed int
	// Movement is the total centroid displacement of the update. It is zero
	// when the step converged, since no update ran.
	Movement float64
	// Converged is set when no point changed cluster.
	Converged bool
	// Final is set on the last step of the attempt.
	Final bool
}

// Result is the outcome of one attempt.
type Result struct {
	Centroids []rgb.Float
	Score     float64
	Inertia   float64
	Steps     int
	Converged bool
}

// Engine runs clustering attempts over a fixed point set.
// An Engine is not safe for concurrent use.
type Engine struct {
	points   []Point
	seeder   *Seeder
	assigner *Assigner
	updater  Updater
}

// NewEngine returns an Engine over points. The Engine owns points from now on:
// cluster assignments and seeding scratch state are rewritten by every run.
func NewEngine(points []Point, rng *rand.Rand, workers int, weighted bool) *Engine {
	return &Engine{
		points:   points,
		seeder:   NewSeeder(rng, weighted),
		assigner: NewAssigner(workers),
	}
}

// Points returns the engine's point set.
func (e *Engine) Points() []Point {
	return e.points
}

// Run performs one attempt with k centroids and at most maxSteps steps.
// onStep, if non-nil, is called after every step; it cannot influence the run.
//
// Every point starts the attempt Unassigned rather than in cluster 0, so the
// first step always reassigns all points and runs an update. With k == 1 the
// single centroid therefore ends at the weighted mean of all points, not at
// the seed color.
//
// The context is checked between steps only.
func (e *Engine) Run(ctx context.Context, k, maxSteps int, onStep func(Step)) (Result, error) {
	if len(e.points) == 0 {
		return Result{}, ErrNoPoints
	}
	k = ClampK(k, len(e.points))

	centroids := e.seeder.Seed(e.points, k)
	for i := range e.points {
		e.points[i].Cluster = Unassigned
	}

	res := Result{}
	for step := 1; step <= maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		res.Steps = step

		changed := e.assigner.Assign(e.points, centroids)
		if changed == 0 {
			res.Converged = true
			if onStep != nil {
				onStep(Step{Step: step, Converged: true, Final: true})
			}
			break
		}

		movement := e.updater.Update(e.points, centroids)
		if onStep != nil {
			onStep(Step{Step: step, Changed: changed, Movement: movement, Final: step == maxSteps})
		}
	}

	// Bring assignments in line with the last update before scoring.
	e.assigner.Assign(e.points, centroids)

	res.Centroids = centroids
	res.Score = Score(e.points, centroids)
	res.Inertia = Inertia(e.points, centroids)
	return res, nil
}
