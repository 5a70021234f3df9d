// Package rgb provides the two color representations used by palcalc.
//
// Float is a position in the normalized [0,1]³ RGB cube where all clustering
// math happens. Int is an 8-bit-per-channel color as it appears in images and
// in the final palette.
package rgb

import (
	"fmt"
	"image/color"
	"math"
)

// Float is a color with channels normalized to [0,1].
type Float struct {
	R, G, B float64
}

// Black is the origin of the color cube.
var Black = Float{}

// FromInt converts an 8-bit color to normalized space (channel / 255).
func FromInt(c Int) Float {
	return Float{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// New returns the normalized color for the given 8-bit channels.
func New(r, g, b uint8) Float {
	return FromInt(Int{R: r, G: g, B: b})
}

// SquaredDistance returns the squared Euclidean distance between f and o.
func (f Float) SquaredDistance(o Float) float64 {
	dr := f.R - o.R
	dg := f.G - o.G
	db := f.B - o.B
	return dr*dr + dg*dg + db*db
}

// Distance returns the Euclidean distance between f and o.
func (f Float) Distance(o Float) float64 {
	return math.Sqrt(f.SquaredDistance(o))
}

// Int quantizes f to 8 bits per channel using min(255, floor(c*256)).
//
// The mapping is the exact inverse of FromInt for every 8-bit value, so a
// centroid that sits on an observed color maps back to that color.
func (f Float) Int() Int {
	return Int{R: quantize(f.R), G: quantize(f.G), B: quantize(f.B)}
}

func quantize(c float64) uint8 {
	v := math.Floor(c * 256)
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// Int is an 8-bit-per-channel color.
type Int struct {
	R, G, B uint8
}

// FromColor converts any color.Color to Int, dropping alpha.
//
// Premultiplied colors are un-premultiplied first so a half transparent red
// still counts as red.
func FromColor(c color.Color) Int {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Int{R: n.R, G: n.G, B: n.B}
}

// Luminance returns 0.299r + 0.587g + 0.114b over the 8-bit channels.
func (c Int) Luminance() float64 {
	return 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
}

// SquaredDistance returns the squared Euclidean distance in 8-bit units.
func (c Int) SquaredDistance(o Int) int {
	dr := int(c.R) - int(o.R)
	dg := int(c.G) - int(o.G)
	db := int(c.B) - int(o.B)
	return dr*dr + dg*dg + db*db
}

// ID packs c into a 24-bit identifier (r<<16 | g<<8 | b).
//
// Ordering by ID is ordering by increasing r, then g, then b.
func (c Int) ID() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// FromID is the inverse of Int.ID.
func FromID(id uint32) Int {
	return Int{R: uint8(id >> 16), G: uint8(id >> 8), B: uint8(id)}
}

// RGBA implements color.Color with full opacity.
func (c Int) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

func (c Int) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
