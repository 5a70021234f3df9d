// Package cache keeps copies of remote image blobs on local disk.
//
// Photo sets are usually decoded more than once while a palette is tuned.
// Store wraps a remote blobstore.BlobStore and serves repeated whole-blob
// reads from a DiskCache instead of the network:
//   - Entries are keyed by blob name and size, so a replaced object misses
//   - Writes happen in the background and never block a read
//   - LRU eviction keeps the directory under its size limit
//   - The index is rebuilt from disk on startup
package cache
