package loader

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/palcalc/internal/resource"
	"github.com/hupe1980/palcalc/progress"
)

type options struct {
	sink      progress.LoadSink
	logger    *slog.Logger
	resources resource.Config
}

// Option configures a Loader.
type Option func(*options)

// WithProgress reports every decoded file to sink.
func WithProgress(sink progress.LoadSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithLogger logs per-file details at Debug level.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDecoders sets how many images are decoded concurrently.
// Values below 1 use runtime.GOMAXPROCS.
func WithDecoders(n int) Option {
	return func(o *options) {
		o.resources.MaxDecoders = int64(n)
	}
}

// WithMemoryLimit caps the estimated decoded size (4 bytes per pixel) of the
// images held at once. 0 disables the limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.resources.MemoryLimitBytes = bytes
	}
}

// WithReadLimit caps read throughput from the store. 0 disables the limit.
func WithReadLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.resources.IOLimitBytesPerSec = bytesPerSec
	}
}

func applyOptions(optFns []Option) options {
	o := options{}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.sink == nil {
		o.sink = progress.Nop{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.resources.MaxDecoders < 1 {
		o.resources.MaxDecoders = int64(runtime.GOMAXPROCS(0))
	}
	return o
}
