// Package resource bounds the memory, concurrency and read bandwidth the
// image loader may use.
//
// The Controller manages three resource types:
//
//   - Memory: estimated decoded-image bytes held at once (blocking semaphore)
//   - Concurrency: number of images decoded in parallel
//   - IO: token-bucket limit on bytes read from the blob store
//
// # Memory Management
//
// A decoded image costs roughly four bytes per pixel until its colors are
// folded into the histogram. AcquireMemory blocks until the estimate fits the
// budget and returns the amount reserved; oversized requests are clamped to
// the whole budget so a single huge image still makes progress:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	n, err := rc.AcquireMemory(ctx, w*h*4)
//	if err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(n)
//
// # Decoder Limits
//
//	if err := rc.AcquireDecoder(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseDecoder()
//
// # IO Rate Limiting
//
//	reader := resource.NewRateLimitedReader(ctx, blobReader, rc)
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully; they become no-ops.
package resource
