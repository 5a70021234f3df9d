package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes caps the estimated size of decoded images held at once.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxDecoders is the maximum number of images decoded concurrently.
	// If 0, defaults to 1.
	MaxDecoders int64

	// IOLimitBytesPerSec is the maximum read throughput from the blob store.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller hands out memory, decoder slots and read bandwidth.
// A nil *Controller imposes no limits.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	decodeSem *semaphore.Weighted

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxDecoders <= 0 {
		cfg.MaxDecoders = 1
	}

	c := &Controller{
		cfg:       cfg,
		decodeSem: semaphore.NewWeighted(cfg.MaxDecoders),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// clamp keeps a single reservation satisfiable: a request larger than the
// whole budget would otherwise block forever.
func (c *Controller) clamp(bytes int64) int64 {
	if c.memSem != nil && bytes > c.cfg.MemoryLimitBytes {
		return c.cfg.MemoryLimitBytes
	}
	return bytes
}

// AcquireMemory reserves bytes of decode memory and returns the amount
// actually reserved, which must be passed to ReleaseMemory. If a hard limit is
// configured this blocks until memory is available or ctx is canceled.
func (c *Controller) AcquireMemory(ctx context.Context, bytes int64) (int64, error) {
	if c == nil || bytes <= 0 {
		return 0, nil
	}
	bytes = c.clamp(bytes)

	if c.memSem != nil {
		if err := c.memSem.Acquire(ctx, bytes); err != nil {
			return 0, err
		}
	}

	c.memUsed.Add(bytes)
	return bytes, nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// AcquireDecoder reserves a decoder slot, blocking while all are busy.
func (c *Controller) AcquireDecoder(ctx context.Context) error {
	if c == nil {
		return ctx.Err()
	}
	return c.decodeSem.Acquire(ctx, 1)
}

// ReleaseDecoder releases a decoder slot.
func (c *Controller) ReleaseDecoder() {
	if c == nil {
		return
	}
	c.decodeSem.Release(1)
}

// AcquireIO waits until the IO limit allows the specified number of bytes.
func (c *Controller) AcquireIO(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	return c.ioLimiter.WaitN(ctx, bytes)
}

// ioBurst is the largest single AcquireIO request the limiter accepts.
func (c *Controller) ioBurst() int {
	if c == nil || c.ioLimiter == nil {
		return 0
	}
	return c.ioLimiter.Burst()
}
