// Package palette holds the ordered color list a calculation produces.
//
// Palettes are sorted by ascending luminance, persist in a small binary format
// (see MarshalBinary) and export to JSON through package codec. Find gives the
// nearest-color lookup downstream index and dither tools build on.
package palette
