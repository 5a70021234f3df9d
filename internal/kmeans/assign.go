package kmeans

import (
	"runtime"

	"github.com/hupe1980/palcalc/rgb"
	"golang.org/x/sync/errgroup"
)

// minPartition is the smallest number of points handed to one goroutine.
const minPartition = 2048

// Assigner moves every point to its nearest centroid.
//
// Points are split into contiguous partitions processed concurrently. Each
// goroutine writes only the Cluster field of its own points and its own slot
// of the per-partition change counts, which are summed after the fan-out.
type Assigner struct {
	workers int
	changed []int
}

// NewAssigner returns an Assigner using up to workers goroutines.
// workers <= 0 means runtime.GOMAXPROCS(0).
func NewAssigner(workers int) *Assigner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Assigner{workers: workers}
}

// Assign updates each point's cluster and returns how many points changed.
// centroids must not be modified while Assign runs.
func (a *Assigner) Assign(points []Point, centroids []rgb.Float) int {
	parts := min(a.workers, (len(points)+minPartition-1)/minPartition)
	if parts <= 1 {
		return assignRange(points, centroids)
	}

	if cap(a.changed) < parts {
		a.changed = make([]int, parts)
	}
	changed := a.changed[:parts]

	size := (len(points) + parts - 1) / parts
	var g errgroup.Group
	for i := range parts {
		lo := i * size
		hi := min(lo+size, len(points))
		g.Go(func() error {
			changed[i] = assignRange(points[lo:hi], centroids)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, c := range changed {
		total += c
	}
	return total
}

func assignRange(points []Point, centroids []rgb.Float) int {
	changed := 0
	for i := range points {
		p := &points[i]
		if best := Nearest(p.Color, p.Cluster, centroids); best != p.Cluster {
			p.Cluster = best
			changed++
		}
	}
	return changed
}

// Nearest returns the index of the centroid closest to c.
//
// The search starts from current, so the incumbent wins ties. Pass Unassigned
// to start from centroid 0.
func Nearest(c rgb.Float, current int, centroids []rgb.Float) int {
	best := current
	if best < 0 || best >= len(centroids) {
		best = 0
	}
	bestDist := c.SquaredDistance(centroids[best])
	for j := range centroids {
		if j == best {
			continue
		}
		if d := c.SquaredDistance(centroids[j]); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}
