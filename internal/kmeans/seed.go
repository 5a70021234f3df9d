package kmeans

import (
	"math"
	"math/rand"

	"github.com/hupe1980/palcalc/rgb"
)

// Seeder chooses initial centroids with distance-proportional sampling.
//
// It keeps a permutation of point indices split by a partition index:
// order[:chosen] are the source points of finalized seeds, order[chosen:] are
// the remaining candidates. Points themselves are never reordered.
type Seeder struct {
	rng      *rand.Rand
	weighted bool
	order    []int
	chosen   int
}

// NewSeeder returns a Seeder drawing from rng.
//
// With weighted set, the first seed is drawn proportionally to occurrence
// count and later seeds proportionally to count times squared distance.
// Otherwise every distinct color is equally likely as the first seed and later
// seeds are drawn proportionally to squared distance alone.
func NewSeeder(rng *rand.Rand, weighted bool) *Seeder {
	return &Seeder{rng: rng, weighted: weighted}
}

// Chosen returns the point indices of the seeds picked by the last Seed call,
// in pick order.
func (s *Seeder) Chosen() []int {
	return s.order[:s.chosen]
}

// Seed picks k centroids from points. k must be in [1, len(points)].
func (s *Seeder) Seed(points []Point, k int) []rgb.Float {
	n := len(points)
	if cap(s.order) < n {
		s.order = make([]int, n)
	}
	s.order = s.order[:n]
	for i := range s.order {
		s.order[i] = i
		points[i].nearest = math.MaxFloat64
	}
	s.chosen = 0

	centroids := make([]rgb.Float, 0, k)
	s.take(s.first(points))
	centroids = append(centroids, points[s.order[0]].Color)

	for s.chosen < k {
		last := centroids[len(centroids)-1]
		remaining := s.order[s.chosen:]

		var sum float64
		for _, idx := range remaining {
			p := &points[idx]
			if d := p.Color.SquaredDistance(last); d < p.nearest {
				p.nearest = d
			}
			sum += s.mass(p)
		}

		pick := s.chosen + s.proportional(points, remaining, sum)
		s.take(pick)
		centroids = append(centroids, points[s.order[s.chosen-1]].Color)
	}
	return centroids
}

// first returns the position in order of the first seed.
func (s *Seeder) first(points []Point) int {
	if !s.weighted {
		return s.rng.Intn(len(points))
	}
	var total uint64
	for i := range points {
		total += points[i].Weight
	}
	if total == 0 {
		return s.rng.Intn(len(points))
	}
	draw := uint64(s.rng.Int63n(int64(total)))
	var acc uint64
	for i := range points {
		acc += points[i].Weight
		if acc > draw {
			return i
		}
	}
	return len(points) - 1
}

// proportional returns an offset into remaining drawn proportionally to mass.
func (s *Seeder) proportional(points []Point, remaining []int, sum float64) int {
	if sum <= 0 {
		return 0
	}
	draw := s.rng.Float64() * sum
	var acc float64
	for j, idx := range remaining {
		acc += s.mass(&points[idx])
		if acc > draw {
			return j
		}
	}
	// Rounding can leave acc just short of draw.
	return len(remaining) - 1
}

func (s *Seeder) mass(p *Point) float64 {
	if s.weighted {
		return p.nearest * float64(p.Weight)
	}
	return p.nearest
}

// take moves order[pos] to the partition boundary and advances it.
func (s *Seeder) take(pos int) {
	s.order[s.chosen], s.order[pos] = s.order[pos], s.order[s.chosen]
	s.chosen++
}
