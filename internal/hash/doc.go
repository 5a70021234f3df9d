// Package hash provides the checksum used by on-disk formats.
//
// Histogram snapshots carry a CRC32-Castagnoli trailer over their
// uncompressed payload. Go's crc32 package uses SSE4.2 or the ARM CRC
// extension when available.
package hash
