package cache

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

const blobExt = ".blob"

// DiskCacheConfig holds configuration for the disk cache.
type DiskCacheConfig struct {
	// RootDir is the directory where cache files are stored.
	RootDir string
	// MaxSizeBytes is the maximum size of the cache in bytes.
	MaxSizeBytes int64
	// MaxConcurrentWrites limits background disk writes.
	// Defaults to 16 if <= 0.
	MaxConcurrentWrites int64
}

// DiskCache implements BlobCache backed by the local filesystem.
// It maintains an in-memory LRU index of the files on disk.
type DiskCache struct {
	mu          sync.Mutex
	rootDir     string
	maxSize     int64
	currentSize int64

	// writeSem bounds the number of background writes.
	writeSem *semaphore.Weighted

	// Index
	items   map[Key]*lruEntry
	lruHead *lruEntry
	lruTail *lruEntry
	wg      sync.WaitGroup

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
}

var _ BlobCache = (*DiskCache)(nil)

type lruEntry struct {
	key        Key
	size       int64
	filePath   string
	next, prev *lruEntry
}

// NewDiskCache creates a disk-backed blob cache and indexes the files
// already present under config.RootDir.
func NewDiskCache(config DiskCacheConfig) (*DiskCache, error) {
	if err := os.MkdirAll(config.RootDir, 0o755); err != nil {
		return nil, err
	}

	maxWrites := config.MaxConcurrentWrites
	if maxWrites <= 0 {
		maxWrites = 16
	}

	c := &DiskCache{
		rootDir:  config.RootDir,
		maxSize:  config.MaxSizeBytes,
		items:    make(map[Key]*lruEntry),
		writeSem: semaphore.NewWeighted(maxWrites),
	}
	c.scanExistingFiles()

	// A smaller limit than the previous run's trims the oldest files now.
	c.mu.Lock()
	c.evictFor(0)
	c.mu.Unlock()

	return c, nil
}

func (c *DiskCache) scanExistingFiles() {
	_ = filepath.Walk(c.rootDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // keep scanning past unreadable entries
		}
		if info.IsDir() {
			return nil
		}
		key, ok := c.parsePathToKey(p)
		if !ok {
			return nil
		}
		c.addToLRU(key, p, info.Size())
		return nil
	})
}

// cleanName turns a blob name into a relative slash path that cannot
// escape the cache root.
func cleanName(name string) string {
	return strings.TrimPrefix(path.Clean("/"+name), "/")
}

// encodeKeyToPath maps a key to <root>/<name>.<size>.blob, keeping the
// directory structure of the blob name.
func (c *DiskCache) encodeKeyToPath(key Key) string {
	rel := cleanName(key.Name) + "." + strconv.FormatInt(key.Size, 10) + blobExt
	return filepath.Join(c.rootDir, filepath.FromSlash(rel))
}

func (c *DiskCache) parsePathToKey(absPath string) (Key, bool) {
	rel, err := filepath.Rel(c.rootDir, absPath)
	if err != nil {
		return Key{}, false
	}
	rel = filepath.ToSlash(rel)

	base, ok := strings.CutSuffix(rel, blobExt)
	if !ok {
		return Key{}, false
	}
	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return Key{}, false
	}
	size, err := strconv.ParseInt(base[dot+1:], 10, 64)
	if err != nil || size < 0 {
		return Key{}, false
	}
	return Key{Name: base[:dot], Size: size}, true
}

// Get returns the cached content of key.
func (c *DiskCache) Get(_ context.Context, key Key) ([]byte, bool) {
	key.Name = cleanName(key.Name)

	c.mu.Lock()
	ent, ok := c.items[key]
	if ok {
		c.moveToFront(ent)
	}
	c.mu.Unlock()

	if !ok {
		c.misses.Add(1)
		return nil, false
	}

	data, err := os.ReadFile(ent.filePath)
	if err != nil || int64(len(data)) != key.Size {
		// Removed or truncated behind our back.
		c.mu.Lock()
		if cur, ok := c.items[key]; ok && cur == ent {
			c.removeEntry(ent)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	return data, true
}

// Set writes b to disk in the background. Blobs larger than the cache, and
// blobs arriving while all write slots are busy, are not cached.
func (c *DiskCache) Set(_ context.Context, key Key, b []byte) {
	key.Name = cleanName(key.Name)
	size := int64(len(b))
	if key.Name == "" || size != key.Size || size > c.maxSize {
		return
	}

	c.mu.Lock()
	if ent, ok := c.items[key]; ok {
		c.moveToFront(ent)
		c.mu.Unlock()
		return
	}
	c.evictFor(size)
	c.mu.Unlock()

	if !c.writeSem.TryAcquire(1) {
		return
	}

	absPath := c.encodeKeyToPath(key)

	// The index is updated only once the file is in place. Concurrent Gets
	// miss until then.
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.writeSem.Release(1)

		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return
		}

		tmpFile, err := os.CreateTemp(filepath.Dir(absPath), "tmp-blob-*")
		if err != nil {
			return
		}
		tmpName := tmpFile.Name()

		defer func() {
			if _, err := os.Stat(tmpName); err == nil {
				_ = os.Remove(tmpName)
			}
		}()

		if _, err := tmpFile.Write(b); err != nil {
			_ = tmpFile.Close()
			return
		}
		if err := tmpFile.Close(); err != nil {
			return
		}
		if err := os.Rename(tmpName, absPath); err != nil {
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if _, ok := c.items[key]; ok {
			return
		}
		// Recheck capacity in case other writes happened.
		c.evictFor(size)
		c.addToLRU(key, absPath, size)
	}()
}

// Invalidate removes the entries matching predicate and their files.
func (c *DiskCache) Invalidate(predicate func(key Key) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*lruEntry
	for k, ent := range c.items {
		if predicate(k) {
			toRemove = append(toRemove, ent)
		}
	}
	for _, ent := range toRemove {
		_ = os.Remove(ent.filePath)
		c.removeEntry(ent)
	}
}

// Wait blocks until all background writes have finished.
func (c *DiskCache) Wait() {
	c.wg.Wait()
}

// Close waits for all background writes to complete.
func (c *DiskCache) Close() error {
	c.Wait()
	return nil
}

// Stats returns the hit and miss counts.
func (c *DiskCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Size returns the bytes currently indexed.
func (c *DiskCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSize
}

// Internal LRU helpers (must hold lock)

func (c *DiskCache) evictFor(size int64) {
	for c.currentSize+size > c.maxSize && c.lruTail != nil {
		c.evictOne()
	}
}

func (c *DiskCache) addToLRU(key Key, path string, size int64) {
	ent := &lruEntry{
		key:      key,
		filePath: path,
		size:     size,
	}
	c.items[key] = ent
	c.currentSize += size

	if c.lruHead == nil {
		c.lruHead = ent
		c.lruTail = ent
	} else {
		ent.next = c.lruHead
		c.lruHead.prev = ent
		c.lruHead = ent
	}
}

func (c *DiskCache) moveToFront(ent *lruEntry) {
	if c.lruHead == ent {
		return
	}

	// Detach
	if ent.prev != nil {
		ent.prev.next = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	}
	if c.lruTail == ent {
		c.lruTail = ent.prev
	}

	// Attach front
	ent.next = c.lruHead
	ent.prev = nil
	if c.lruHead != nil {
		c.lruHead.prev = ent
	}
	c.lruHead = ent
	if c.lruTail == nil {
		c.lruTail = ent
	}
}

func (c *DiskCache) removeEntry(ent *lruEntry) {
	if ent.prev != nil {
		ent.prev.next = ent.next
	} else {
		c.lruHead = ent.next
	}
	if ent.next != nil {
		ent.next.prev = ent.prev
	} else {
		c.lruTail = ent.prev
	}
	ent.next, ent.prev = nil, nil

	delete(c.items, ent.key)
	c.currentSize -= ent.size
}

func (c *DiskCache) evictOne() {
	if c.lruTail == nil {
		return
	}
	_ = os.Remove(c.lruTail.filePath)
	c.removeEntry(c.lruTail)
}
