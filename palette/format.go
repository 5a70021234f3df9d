package palette

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/hupe1980/palcalc/blobstore"
	"github.com/hupe1980/palcalc/codec"
)

// ErrInvalidFormat is returned when palette bytes cannot be decoded.
var ErrInvalidFormat = errors.New("palette: invalid format")

var magic = [4]byte{'P', 'A', 'L', '1'}

// MarshalBinary encodes the palette as the magic "PAL1", a uvarint color
// count and one R, G, B byte triple per color.
func (p Palette) MarshalBinary() ([]byte, error) {
	if len(p) > MaxColors {
		return nil, fmt.Errorf("%w: %d colors exceeds %d", ErrInvalidFormat, len(p), MaxColors)
	}
	buf := make([]byte, 0, len(magic)+binary.MaxVarintLen64+3*len(p))
	buf = append(buf, magic[:]...)
	buf = binary.AppendUvarint(buf, uint64(len(p)))
	for _, c := range p {
		buf = append(buf, c.R, c.G, c.B)
	}
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary, replacing p.
func (p *Palette) UnmarshalBinary(data []byte) error {
	if len(data) < len(magic) || [4]byte(data[:4]) != magic {
		return fmt.Errorf("%w: bad magic", ErrInvalidFormat)
	}
	data = data[len(magic):]

	n, sz := binary.Uvarint(data)
	if sz <= 0 {
		return fmt.Errorf("%w: bad color count", ErrInvalidFormat)
	}
	if n > MaxColors {
		return fmt.Errorf("%w: %d colors exceeds %d", ErrInvalidFormat, n, MaxColors)
	}
	data = data[sz:]
	if uint64(len(data)) != 3*n {
		return fmt.Errorf("%w: want %d color bytes, have %d", ErrInvalidFormat, 3*n, len(data))
	}

	out := make(Palette, n)
	for i := range out {
		out[i].R, out[i].G, out[i].B = data[3*i], data[3*i+1], data[3*i+2]
	}
	*p = out
	return nil
}

// Save writes the binary encoding of p to store under name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, p Palette) error {
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	if err := store.Put(ctx, name, data); err != nil {
		return fmt.Errorf("palette: save %s: %w", name, err)
	}
	return nil
}

// Load reads a palette previously written by Save.
func Load(ctx context.Context, store blobstore.BlobStore, name string) (Palette, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("palette: load %s: %w", name, err)
	}
	var p Palette
	if err := p.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("palette: load %s: %w", name, err)
	}
	return p, nil
}

// Swatch is one palette entry in exported documents.
type Swatch struct {
	Index     int     `json:"index"`
	Hex       string  `json:"hex"`
	R         uint8   `json:"r"`
	G         uint8   `json:"g"`
	B         uint8   `json:"b"`
	Luminance float64 `json:"luminance"`
}

// Document is the exported form of a palette.
type Document struct {
	Colors []Swatch `json:"colors"`
}

// Document describes p for export.
func (p Palette) Document() Document {
	doc := Document{Colors: make([]Swatch, len(p))}
	for i, c := range p {
		doc.Colors[i] = Swatch{
			Index:     i,
			Hex:       c.String(),
			R:         c.R,
			G:         c.G,
			B:         c.B,
			Luminance: c.Luminance(),
		}
	}
	return doc
}

// Export encodes p as a Document with c, or codec.Default when c is nil.
func Export(p Palette, c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	return c.Marshal(p.Document())
}

// Import decodes a Document produced by Export. Only the channel values are
// read; order is preserved.
func Import(data []byte, c codec.Codec) (Palette, error) {
	if c == nil {
		c = codec.Default
	}
	var doc Document
	if err := c.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(doc.Colors) > MaxColors {
		return nil, fmt.Errorf("%w: %d colors exceeds %d", ErrInvalidFormat, len(doc.Colors), MaxColors)
	}
	p := make(Palette, len(doc.Colors))
	for i, s := range doc.Colors {
		p[i].R, p[i].G, p[i].B = s.R, s.G, s.B
	}
	return p, nil
}
