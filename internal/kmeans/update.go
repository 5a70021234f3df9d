package kmeans

import (
	"math"

	"github.com/hupe1980/palcalc/rgb"
)

type accumulator struct {
	r, g, b float64
	weight  float64
}

// Updater recomputes centroids as the weighted mean of their points.
// The zero value is ready to use.
type Updater struct {
	acc []accumulator
}

// Update moves every non-empty centroid to the weighted mean of the points
// assigned to it and returns the summed Euclidean distance moved.
//
// A centroid with no assigned weight keeps its previous position and
// contributes nothing to the movement.
func (u *Updater) Update(points []Point, centroids []rgb.Float) float64 {
	if cap(u.acc) < len(centroids) {
		u.acc = make([]accumulator, len(centroids))
	}
	acc := u.acc[:len(centroids)]
	clear(acc)

	for i := range points {
		p := &points[i]
		if p.Cluster < 0 {
			continue
		}
		w := float64(p.Weight)
		a := &acc[p.Cluster]
		a.r += p.Color.R * w
		a.g += p.Color.G * w
		a.b += p.Color.B * w
		a.weight += w
	}

	var movement float64
	for j := range centroids {
		a := acc[j]
		if a.weight == 0 {
			continue
		}
		next := rgb.Float{R: a.r / a.weight, G: a.g / a.weight, B: a.b / a.weight}
		movement += centroids[j].Distance(next)
		centroids[j] = next
	}
	return movement
}

// Score returns Σ sqrt(d·w) where d is the Euclidean distance from each point
// to its assigned centroid and w its weight. Lower is better.
func Score(points []Point, centroids []rgb.Float) float64 {
	var score float64
	for i := range points {
		p := &points[i]
		score += math.Sqrt(p.Color.Distance(centroids[p.Cluster]) * float64(p.Weight))
	}
	return score
}

// Inertia returns the weighted within-cluster sum of squared distances,
// the quantity Lloyd's algorithm never increases.
func Inertia(points []Point, centroids []rgb.Float) float64 {
	var sum float64
	for i := range points {
		p := &points[i]
		sum += p.Color.SquaredDistance(centroids[p.Cluster]) * float64(p.Weight)
	}
	return sum
}
