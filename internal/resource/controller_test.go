package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	got, err := c.AcquireMemory(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got)
	assert.Equal(t, int64(50), c.MemoryUsage())

	_, err = c.AcquireMemory(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should block/timeout)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.AcquireMemory(ctx, 20)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	_, err = c.AcquireMemory(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_OversizedRequestIsClamped(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	got, err := c.AcquireMemory(context.Background(), 1<<30)
	require.NoError(t, err)
	assert.Equal(t, int64(100), got)

	c.ReleaseMemory(got)
	assert.Equal(t, int64(0), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 0})

	got, err := c.AcquireMemory(context.Background(), 1000)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got)

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Decoders(t *testing.T) {
	c := NewController(Config{MaxDecoders: 2})

	require.NoError(t, c.AcquireDecoder(context.Background()))
	require.NoError(t, c.AcquireDecoder(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireDecoder(ctx), context.DeadlineExceeded)

	c.ReleaseDecoder()
	require.NoError(t, c.AcquireDecoder(context.Background()))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	got, err := c.AcquireMemory(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, got)
	assert.Zero(t, c.MemoryUsage())
	require.NoError(t, c.AcquireDecoder(context.Background()))
	c.ReleaseDecoder()
	require.NoError(t, c.AcquireIO(context.Background(), 1<<20))
}

func TestRateLimitedReader_SplitsLargeReads(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	data := bytes.Repeat([]byte{7}, 1<<19)

	r := NewRateLimitedReader(context.Background(), bytes.NewReader(data), c)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestRateLimitedReader_Cancelled(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRateLimitedReader(ctx, bytes.NewReader([]byte("abc")), c)
	_, err := r.Read(make([]byte, 1))
	assert.Error(t, err)
}
