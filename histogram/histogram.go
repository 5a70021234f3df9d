// Package histogram accumulates pixel color occurrence counts.
//
// A Histogram is dense over the full 256×256×256 RGB cube: every representable
// color has its own counter, so memory is bounded independently of how many
// pixels are added. Red planes are allocated on first use, which keeps small
// test histograms cheap without changing the dense addressing.
//
// Non-zero cells are tracked in a roaring bitmap keyed by rgb.Int.ID, which
// yields the distinct colors in increasing r, g, b order without scanning the
// whole cube.
package histogram

import (
	"image"
	"image/color"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/palcalc/rgb"
)

const (
	// Side is the number of levels per channel.
	Side = 256

	planeSize = Side * Side
)

type plane [planeSize]uint64

// Histogram is a dense count table over all 8-bit RGB colors.
//
// A Histogram is not safe for concurrent mutation. Accumulate every image
// before handing it to a consumer.
type Histogram struct {
	planes   [Side]*plane
	occupied *roaring.Bitmap
	total    uint64
}

// New returns an empty histogram.
func New() *Histogram {
	return &Histogram{occupied: roaring.New()}
}

// Add increments the count of every pixel's exact color in img.
// Alpha is ignored.
func (h *Histogram) Add(img image.Image) {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):]
			for i := 0; i < b.Dx()*4; i += 4 {
				h.AddColor(rgb.Int{R: row[i], G: row[i+1], B: row[i+2]}, 1)
			}
		}
	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):]
			for i := 0; i < b.Dx()*4; i += 4 {
				c := color.RGBA{R: row[i], G: row[i+1], B: row[i+2], A: row[i+3]}
				if c.A == 0xff {
					h.AddColor(rgb.Int{R: c.R, G: c.G, B: c.B}, 1)
					continue
				}
				h.AddColor(rgb.FromColor(c), 1)
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				h.AddColor(rgb.FromColor(img.At(x, y)), 1)
			}
		}
	}
}

// AddColor adds n occurrences of c.
func (h *Histogram) AddColor(c rgb.Int, n uint64) {
	if n == 0 {
		return
	}
	p := h.planes[c.R]
	if p == nil {
		p = new(plane)
		h.planes[c.R] = p
	}
	i := int(c.G)<<8 | int(c.B)
	if p[i] == 0 {
		h.occupied.Add(c.ID())
	}
	p[i] += n
	h.total += n
}

// Count returns the number of occurrences recorded for c.
func (h *Histogram) Count(c rgb.Int) uint64 {
	p := h.planes[c.R]
	if p == nil {
		return 0
	}
	return p[int(c.G)<<8|int(c.B)]
}

// Total returns the number of pixels added so far.
func (h *Histogram) Total() uint64 {
	return h.total
}

// Distinct returns the number of colors with a non-zero count.
func (h *Histogram) Distinct() int {
	return int(h.occupied.GetCardinality())
}

// Empty reports whether no pixel has been added.
func (h *Histogram) Empty() bool {
	return h.occupied.IsEmpty()
}

// Each calls fn for every non-zero cell in increasing r, then g, then b order.
// Iteration stops early when fn returns false.
func (h *Histogram) Each(fn func(c rgb.Int, count uint64) bool) {
	it := h.occupied.Iterator()
	for it.HasNext() {
		c := rgb.FromID(it.Next())
		if !fn(c, h.Count(c)) {
			return
		}
	}
}

// Merge adds every count from o into h.
func (h *Histogram) Merge(o *Histogram) {
	o.Each(func(c rgb.Int, count uint64) bool {
		h.AddColor(c, count)
		return true
	})
}
