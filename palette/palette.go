package palette

import (
	"cmp"
	"slices"

	"github.com/hupe1980/palcalc/rgb"
)

// MaxColors is the largest palette the binary format accepts.
const MaxColors = 256

// Palette is an ordered list of 8-bit colors. Indices are stable once the
// palette is built; consumers store them per pixel.
type Palette []rgb.Int

// New returns a palette holding colors in the given order.
func New(colors ...rgb.Int) Palette {
	return slices.Clone(Palette(colors))
}

// FromCentroids quantizes centroids to 8-bit channels and sorts the result by
// luminance.
func FromCentroids(centroids []rgb.Float) Palette {
	p := make(Palette, len(centroids))
	for i, c := range centroids {
		p[i] = c.Int()
	}
	p.SortByLuminance()
	return p
}

// SortByLuminance orders the palette darkest first. Equal luminances keep
// their relative order.
func (p Palette) SortByLuminance() {
	slices.SortStableFunc(p, func(a, b rgb.Int) int {
		return cmp.Compare(a.Luminance(), b.Luminance())
	})
}

// Find returns the index of the palette color nearest to c by squared
// Euclidean distance. Ties resolve to the lowest index. Find returns -1 for
// an empty palette.
func (p Palette) Find(c rgb.Int) int {
	best, bestDist := -1, 0
	for i, pc := range p {
		d := c.SquaredDistance(pc)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Floats returns the palette as floating-point colors.
func (p Palette) Floats() []rgb.Float {
	out := make([]rgb.Float, len(p))
	for i, c := range p {
		out[i] = rgb.FromInt(c)
	}
	return out
}
