package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hupe1980/palcalc/blobstore"
	"github.com/hupe1980/palcalc/histogram"
	"github.com/hupe1980/palcalc/internal/resource"
	"golang.org/x/sync/errgroup"
)

// bytesPerPixel is the decoded-size estimate used against the memory limit.
const bytesPerPixel = 4

// Stats summarizes a load.
type Stats struct {
	Files  int
	Bytes  int64
	Pixels uint64
	// PeakMemory is the largest estimated decoded size held at once.
	PeakMemory int64
	Elapsed    time.Duration
}

// Loader reads images from a blob store.
type Loader struct {
	store blobstore.BlobStore
	opts  options
}

// New returns a Loader reading from store.
func New(store blobstore.BlobStore, opts ...Option) *Loader {
	return &Loader{
		store: store,
		opts:  applyOptions(opts),
	}
}

// Load decodes names into a new histogram.
func (l *Loader) Load(ctx context.Context, names []string) (*histogram.Histogram, Stats, error) {
	h := histogram.New()
	stats, err := l.LoadInto(ctx, h, names)
	if err != nil {
		return nil, stats, err
	}
	return h, stats, nil
}

// LoadInto decodes names and adds their pixels to h. On error h may hold
// the pixels of files that finished before the failure.
func (l *Loader) LoadInto(ctx context.Context, h *histogram.Histogram, names []string) (Stats, error) {
	start := time.Now()
	rc := resource.NewController(l.opts.resources)

	var (
		mu    sync.Mutex
		stats Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		if err := rc.AcquireDecoder(gctx); err != nil {
			break
		}
		g.Go(func() error {
			defer rc.ReleaseDecoder()

			img, size, reserved, err := l.decode(gctx, rc, name)
			if err != nil {
				return fmt.Errorf("loader: %s: %w", name, err)
			}
			defer rc.ReleaseMemory(reserved)

			mu.Lock()
			defer mu.Unlock()

			stats.PeakMemory = max(stats.PeakMemory, rc.MemoryUsage())

			before := h.Total()
			h.Add(img)
			stats.Files++
			stats.Bytes += size
			stats.Pixels += h.Total() - before

			l.opts.logger.DebugContext(gctx, "decoded image",
				slog.String("file", name),
				slog.Int("width", img.Bounds().Dx()),
				slog.Int("height", img.Bounds().Dy()),
				slog.Int64("bytes", size),
			)
			l.opts.sink.FileLoaded(name, stats.Files, len(names), size)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	stats.Elapsed = time.Since(start)
	return stats, err
}

// decode reads and decodes one blob. reserved is the memory reservation the
// caller must release once the image is no longer needed.
func (l *Loader) decode(ctx context.Context, rc *resource.Controller, name string) (image.Image, int64, int64, error) {
	data, err := l.read(ctx, rc, name)
	if err != nil {
		return nil, 0, 0, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}

	reserved, err := rc.AcquireMemory(ctx, int64(cfg.Width)*int64(cfg.Height)*bytesPerPixel)
	if err != nil {
		return nil, 0, 0, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		rc.ReleaseMemory(reserved)
		return nil, 0, 0, fmt.Errorf("decode %s: %w", format, err)
	}
	return img, int64(len(data)), reserved, nil
}

func (l *Loader) read(ctx context.Context, rc *resource.Controller, name string) ([]byte, error) {
	blob, err := l.store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	r, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	buf := bytes.NewBuffer(make([]byte, 0, blob.Size()))
	if _, err := io.Copy(buf, resource.NewRateLimitedReader(ctx, r, rc)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
