package rgb

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatInt_RoundTrip(t *testing.T) {
	for v := 0; v < 256; v++ {
		c := Int{R: uint8(v), G: uint8(255 - v), B: uint8(v / 2)}
		assert.Equal(t, c, FromInt(c).Int(), "value %d", v)
	}
}

func TestFloat_IntClamps(t *testing.T) {
	assert.Equal(t, Int{R: 0, G: 255, B: 255}, Float{R: -0.5, G: 1, B: 3}.Int())
}

func TestFloat_Distance(t *testing.T) {
	a := Float{R: 0, G: 0, B: 0}
	b := Float{R: 1, G: 1, B: 1}

	assert.InDelta(t, 3.0, a.SquaredDistance(b), 1e-12)
	assert.InDelta(t, 1.7320508075688772, a.Distance(b), 1e-12)
	assert.Zero(t, b.Distance(b))
}

func TestInt_Luminance(t *testing.T) {
	assert.Zero(t, Int{}.Luminance())
	assert.InDelta(t, 255.0, Int{R: 255, G: 255, B: 255}.Luminance(), 1e-9)
	assert.Less(t, Int{B: 255}.Luminance(), Int{R: 255}.Luminance())
	assert.Less(t, Int{R: 255}.Luminance(), Int{G: 255}.Luminance())
}

func TestInt_ID(t *testing.T) {
	c := Int{R: 0x12, G: 0x34, B: 0x56}
	assert.Equal(t, uint32(0x123456), c.ID())
	assert.Equal(t, c, FromID(c.ID()))
	assert.Less(t, Int{R: 1}.ID(), Int{R: 1, B: 1}.ID())
	assert.Less(t, Int{G: 255, B: 255}.ID(), Int{R: 1}.ID())
}

func TestFromColor(t *testing.T) {
	tests := []struct {
		name string
		in   color.Color
		want Int
	}{
		{"opaque rgba", color.RGBA{R: 10, G: 20, B: 30, A: 255}, Int{R: 10, G: 20, B: 30}},
		{"nrgba keeps channels", color.NRGBA{R: 200, G: 100, B: 50, A: 0x80}, Int{R: 200, G: 100, B: 50}},
		{"gray", color.Gray{Y: 77}, Int{R: 77, G: 77, B: 77}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromColor(tt.in))
		})
	}
}

func TestInt_String(t *testing.T) {
	assert.Equal(t, "#ff0080", Int{R: 255, G: 0, B: 128}.String())
}
