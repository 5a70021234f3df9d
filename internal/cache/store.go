package cache

import (
	"bytes"
	"context"
	"io"

	"github.com/hupe1980/palcalc/blobstore"
)

// Store is a blobstore.BlobStore that keeps whole-blob reads of a backend
// in a BlobCache. Partial reads go straight to the backend.
type Store struct {
	backend blobstore.BlobStore
	cache   BlobCache
}

var _ blobstore.BlobStore = (*Store)(nil)

// NewStore wraps backend with cache.
func NewStore(backend blobstore.BlobStore, cache BlobCache) *Store {
	return &Store{backend: backend, cache: cache}
}

// Open opens name in the backend and serves it from the cache when an entry
// with the same size exists.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.backend.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	key := Key{Name: name, Size: b.Size()}
	if data, ok := s.cache.Get(ctx, key); ok {
		_ = b.Close()
		return &cachedBlob{data: data}, nil
	}
	return &fillingBlob{Blob: b, cache: s.cache, key: key}, nil
}

// Put writes through to the backend and drops any cached copy of name.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.backend.Put(ctx, name, data)
}

// Delete removes name from the backend and the cache.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.backend.Delete(ctx, name)
}

// List lists the backend.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	return s.backend.List(ctx, prefix)
}

// Close waits for pending cache writes.
func (s *Store) Close() error {
	return s.cache.Close()
}

func (s *Store) invalidate(name string) {
	name = cleanName(name)
	s.cache.Invalidate(func(k Key) bool { return k.Name == name })
}

// fillingBlob caches its content the first time it is read in full.
type fillingBlob struct {
	blobstore.Blob
	cache BlobCache
	key   Key
}

func (b *fillingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if off != 0 || length < b.Size() {
		return b.Blob.ReadRange(ctx, off, length)
	}

	rc, err := b.Blob.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) == b.key.Size {
		b.cache.Set(ctx, b.key, data)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type cachedBlob struct {
	data []byte
}

func (b *cachedBlob) Close() error {
	return nil
}

func (b *cachedBlob) Size() int64 {
	return int64(len(b.data))
}

func (b *cachedBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	if off >= int64(len(b.data)) || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+length, int64(len(b.data)))
	return io.NopCloser(bytes.NewReader(b.data[off:end])), nil
}
