package kmeans

import (
	"math"

	"github.com/hupe1980/palcalc/histogram"
	"github.com/hupe1980/palcalc/rgb"
)

// MaxColors is the largest palette size the quantizer produces.
const MaxColors = 256

// Unassigned marks a point that has not been assigned in the current attempt.
const Unassigned = -1

// Point is one distinct observed color weighted by its occurrence count.
type Point struct {
	Color  rgb.Float
	Weight uint64
	// Cluster is the index of the centroid the point is assigned to.
	Cluster int

	// nearest caches the squared distance to the closest seed chosen so far.
	// It is only meaningful while seeding.
	nearest float64
}

// NewPoint returns a point for the given color and weight.
func NewPoint(c rgb.Float, weight uint64) Point {
	return Point{Color: c, Weight: weight, nearest: math.MaxFloat64}
}

// FromHistogram returns one point per non-zero histogram cell in increasing
// r, g, b order, and the total weight.
func FromHistogram(h *histogram.Histogram) ([]Point, uint64) {
	points := make([]Point, 0, h.Distinct())
	var total uint64
	h.Each(func(c rgb.Int, count uint64) bool {
		points = append(points, NewPoint(rgb.FromInt(c), count))
		total += count
		return true
	})
	return points, total
}

// ClampK clamps a requested palette size to [1, MaxColors] and then to the
// number of distinct colors available.
func ClampK(requested, distinct int) int {
	k := min(max(requested, 1), MaxColors)
	if distinct > 0 && k > distinct {
		k = distinct
	}
	return k
}
