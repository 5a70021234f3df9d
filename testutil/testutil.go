package testutil

import (
	"image"
	"image/color"
	"math/rand"
	"sync"

	"github.com/hupe1980/palcalc/histogram"
	"github.com/hupe1980/palcalc/rgb"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Colors returns n colors drawn uniformly from the RGB cube.
func (r *RNG) Colors(n int) []rgb.Int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]rgb.Int, n)
	for i := range out {
		out[i] = rgb.FromID(uint32(r.rand.Intn(1 << 24)))
	}
	return out
}

// ClusteredColors returns n colors scattered around `clusters` random centers.
// Each channel deviates from its center by at most spread levels.
func (r *RNG) ClusteredColors(n, clusters, spread int) []rgb.Int {
	centers := r.Colors(clusters)

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]rgb.Int, n)
	for i := range out {
		c := centers[i%clusters]
		out[i] = rgb.Int{
			R: jitter(r.rand, c.R, spread),
			G: jitter(r.rand, c.G, spread),
			B: jitter(r.rand, c.B, spread),
		}
	}
	return out
}

func jitter(rnd *rand.Rand, v uint8, spread int) uint8 {
	x := int(v) + rnd.Intn(2*spread+1) - spread
	return uint8(min(max(x, 0), 255))
}

// Image returns a w×h opaque image with uniformly random pixels.
func (r *RNG) Image(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	colors := r.Colors(w * h)
	for i, c := range colors {
		img.SetNRGBA(i%w, i/w, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
	}
	return img
}

// Histogram returns a histogram holding one occurrence of every color in
// colors, duplicates included.
func Histogram(colors []rgb.Int) *histogram.Histogram {
	h := histogram.New()
	for _, c := range colors {
		h.AddColor(c, 1)
	}
	return h
}

// HistogramOf returns a histogram with the given per-color counts.
func HistogramOf(counts map[rgb.Int]uint64) *histogram.Histogram {
	h := histogram.New()
	for c, n := range counts {
		h.AddColor(c, n)
	}
	return h
}

// SolidImage returns a w×h image filled with c.
func SolidImage(w, h int, c rgb.Int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, 0xff
	}
	return img
}
