package histogram

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"github.com/hupe1980/palcalc/rgb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogram_AddImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 9, A: 255})
		}
	}
	img.Set(0, 0, color.NRGBA{R: 1, G: 0, B: 9, A: 255})

	h := New()
	h.Add(img)

	assert.Equal(t, uint64(12), h.Total())
	assert.Equal(t, 11, h.Distinct())
	assert.Equal(t, uint64(2), h.Count(rgb.Int{R: 1, G: 0, B: 9}))
	assert.Zero(t, h.Count(rgb.Int{R: 0, G: 0, B: 9}))
}

func TestHistogram_AddMergesImages(t *testing.T) {
	a := image.NewRGBA(image.Rect(0, 0, 5, 5))
	b := image.NewGray(image.Rect(0, 0, 2, 3))
	for i := range a.Pix {
		a.Pix[i] = 0xff
	}

	h := New()
	h.Add(a)
	h.Add(b)

	assert.Equal(t, uint64(31), h.Total())
	assert.Equal(t, uint64(25), h.Count(rgb.Int{R: 255, G: 255, B: 255}))
	assert.Equal(t, uint64(6), h.Count(rgb.Int{}))
	assert.Equal(t, 2, h.Distinct())
}

func TestHistogram_SubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(3, 3, color.NRGBA{R: 200, A: 255})

	h := New()
	h.Add(img.SubImage(image.Rect(2, 2, 4, 4)))

	assert.Equal(t, uint64(4), h.Total())
	assert.Equal(t, uint64(1), h.Count(rgb.Int{R: 200}))
	assert.Equal(t, uint64(3), h.Count(rgb.Int{}))
}

func TestHistogram_EachOrder(t *testing.T) {
	h := New()
	h.AddColor(rgb.Int{R: 2}, 1)
	h.AddColor(rgb.Int{R: 1, G: 5}, 3)
	h.AddColor(rgb.Int{R: 1, G: 5, B: 1}, 2)
	h.AddColor(rgb.Int{B: 255}, 7)
	h.AddColor(rgb.Int{B: 7}, 0)

	var got []rgb.Int
	var total uint64
	h.Each(func(c rgb.Int, n uint64) bool {
		got = append(got, c)
		total += n
		return true
	})

	assert.Equal(t, []rgb.Int{{B: 255}, {R: 1, G: 5}, {R: 1, G: 5, B: 1}, {R: 2}}, got)
	assert.Equal(t, h.Total(), total)
}

func TestHistogram_EachStops(t *testing.T) {
	h := New()
	for i := 0; i < 10; i++ {
		h.AddColor(rgb.Int{G: uint8(i)}, 1)
	}
	seen := 0
	h.Each(func(rgb.Int, uint64) bool {
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)
}

func TestHistogram_Merge(t *testing.T) {
	a, b := New(), New()
	a.AddColor(rgb.Int{R: 1}, 2)
	b.AddColor(rgb.Int{R: 1}, 3)
	b.AddColor(rgb.Int{G: 1}, 1)

	a.Merge(b)
	assert.Equal(t, uint64(5), a.Count(rgb.Int{R: 1}))
	assert.Equal(t, uint64(6), a.Total())
	assert.Equal(t, 2, a.Distinct())
}

func TestHistogram_Empty(t *testing.T) {
	h := New()
	assert.True(t, h.Empty())
	assert.Zero(t, h.Distinct())
	h.AddColor(rgb.Int{}, 1)
	assert.False(t, h.Empty())
}

func TestSnapshot_RoundTrip(t *testing.T) {
	src := New()
	for i := 0; i < 5000; i++ {
		src.AddColor(rgb.Int{R: uint8(i % 7), G: uint8(i % 251), B: uint8(i % 13)}, uint64(i%5+1))
	}
	src.AddColor(rgb.Int{R: 255, G: 255, B: 255}, 1<<40)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, src.WriteSnapshot(&buf, c, 0xC0FFEE))

			got, source, err := ReadSnapshot(&buf)
			require.NoError(t, err)
			assert.Equal(t, uint32(0xC0FFEE), source)
			assert.Equal(t, src.Total(), got.Total())
			assert.Equal(t, src.Distinct(), got.Distinct())
			src.Each(func(col rgb.Int, n uint64) bool {
				assert.Equal(t, n, got.Count(col), "color %s", col)
				return true
			})
		})
	}
}

func TestSnapshot_EmptyHistogram(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New().WriteSnapshot(&buf, CompressionZSTD, 0))

	got, source, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.True(t, got.Empty())
	assert.Zero(t, source)
}

func TestSnapshot_Corrupt(t *testing.T) {
	h := New()
	h.AddColor(rgb.Int{R: 3}, 4)
	var buf bytes.Buffer
	require.NoError(t, h.WriteSnapshot(&buf, CompressionNone, 1))
	good := buf.Bytes()
	trailer := len(good) - checksumSize

	// Extra bytes between the block and the checksum.
	padded := append(append(append([]byte{}, good[:trailer]...), 0), good[trailer:]...)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XXXX"), good[4:]...)},
		{"bad version", append(append([]byte{}, good[:4]...), append([]byte{9}, good[5:]...)...)},
		{"truncated", good[:len(good)-1]},
		{"flipped bit", flip(good, len(good)-6)},
		{"bad checksum", flip(good, len(good)-1)},
		{"bytes after block", padded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadSnapshot(bytes.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestDecompressBlock_ExactLength(t *testing.T) {
	payload := bytes.Repeat([]byte("palette"), 200)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			block, err := compressBlock(payload, c)
			require.NoError(t, err)

			got, err := decompressBlock(block, c)
			require.NoError(t, err)
			assert.Equal(t, payload, got)

			_, err = decompressBlock(append(block, 0xAA), c)
			assert.Error(t, err)
			_, err = decompressBlock(block[:len(block)-1], c)
			assert.Error(t, err)
		})
	}
}

func TestDecompressBlock_SizeLimit(t *testing.T) {
	block := make([]byte, blockHeaderSize)
	binary.LittleEndian.PutUint32(block[0:], maxBlockSize+1)
	binary.LittleEndian.PutUint32(block[4:], 1)

	_, err := decompressBlock(append(block, 0), CompressionZSTD)
	assert.ErrorContains(t, err, "exceeds limit")
}

func flip(data []byte, i int) []byte {
	out := append([]byte{}, data...)
	out[i] ^= 0x01
	return out
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("brotli")
	assert.Error(t, err)
}
