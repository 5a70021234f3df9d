package histogram

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/palcalc/internal/hash"
	"github.com/hupe1980/palcalc/rgb"
)

// ErrCorruptSnapshot is returned when a snapshot cannot be decoded.
var ErrCorruptSnapshot = errors.New("histogram: corrupt snapshot")

var snapshotMagic = [4]byte{'P', 'H', 'S', 'T'}

const snapshotVersion = 2

const (
	// headerSize covers magic, version, compression and source.
	headerSize = len(snapshotMagic) + 2 + 4
	// checksumSize is the CRC32C trailer guarding the uncompressed payload.
	checksumSize = 4
)

// WriteSnapshot serialises the non-zero cells of h to w. source is an
// opaque fingerprint of the inputs h was built from, returned again by
// ReadSnapshot so callers can detect a stale snapshot. Use 0 if unknown.
//
// Format: magic "PHST", version byte, compression byte, little-endian
// uint32 source, then one compressed block holding uvarint(distinct) followed by (uvarint(id delta),
// uvarint(count)) pairs in increasing color id order, then the little-endian
// CRC32C of the uncompressed payload.
func (h *Histogram) WriteSnapshot(w io.Writer, c Compression, source uint32) error {
	payload := make([]byte, 0, binary.MaxVarintLen64+4*h.Distinct())
	payload = binary.AppendUvarint(payload, uint64(h.Distinct()))

	var prev uint32
	h.Each(func(col rgb.Int, count uint64) bool {
		id := col.ID()
		payload = binary.AppendUvarint(payload, uint64(id-prev))
		payload = binary.AppendUvarint(payload, count)
		prev = id
		return true
	})

	block, err := compressBlock(payload, c)
	if err != nil {
		return fmt.Errorf("histogram: compress snapshot: %w", err)
	}

	header := make([]byte, 0, headerSize)
	header = append(header, snapshotMagic[:]...)
	header = append(header, snapshotVersion, byte(c))
	header = binary.LittleEndian.AppendUint32(header, source)
	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(block); err != nil {
		return err
	}
	_, err = w.Write(binary.LittleEndian.AppendUint32(nil, hash.CRC32C(payload)))
	return err
}

// ReadSnapshot decodes a histogram previously written by WriteSnapshot and
// returns it with the source fingerprint it was written with.
func ReadSnapshot(r io.Reader) (*Histogram, uint32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	if len(data) < headerSize+checksumSize || !bytes.Equal(data[:4], snapshotMagic[:]) {
		return nil, 0, fmt.Errorf("%w: bad magic", ErrCorruptSnapshot)
	}
	if data[4] != snapshotVersion {
		return nil, 0, fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, data[4])
	}
	source := binary.LittleEndian.Uint32(data[6:headerSize])

	trailer := len(data) - checksumSize
	payload, err := decompressBlock(data[headerSize:trailer], Compression(data[5]))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}
	if hash.CRC32C(payload) != binary.LittleEndian.Uint32(data[trailer:]) {
		return nil, 0, fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}
	h, err := decodeCells(payload)
	if err != nil {
		return nil, 0, err
	}
	return h, source, nil
}

func decodeCells(payload []byte) (*Histogram, error) {

	br := bytes.NewReader(payload)
	distinct, err := binary.ReadUvarint(br)
	if err != nil || distinct > Side*Side*Side {
		return nil, fmt.Errorf("%w: bad cell count", ErrCorruptSnapshot)
	}

	h := New()
	var id uint64
	for i := uint64(0); i < distinct; i++ {
		delta, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrCorruptSnapshot, i, err)
		}
		count, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, fmt.Errorf("%w: cell %d: %w", ErrCorruptSnapshot, i, err)
		}
		id += delta
		if id >= Side*Side*Side || count == 0 || (i > 0 && delta == 0) {
			return nil, fmt.Errorf("%w: cell %d out of order", ErrCorruptSnapshot, i)
		}
		h.AddColor(rgb.FromID(uint32(id)), count)
	}
	if br.Len() != 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrCorruptSnapshot)
	}
	return h, nil
}
