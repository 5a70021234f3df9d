// Command palcalc computes a palette from a set of images.
//
// Usage:
//
//	palcalc -colors 16 -out sunset.pal photos/*.png
//	palcalc -backend minio -endpoint localhost:9000 -root artwork -json -out pal.json a.png b.png
//	palcalc -snapshot cache.phst -colors 32 -out big.pal *.jpg
//	palcalc -backend s3 -root photos/2024 -cache-dir ~/.cache/palcalc -out pal.pal a.jpg b.jpg
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hupe1980/palcalc"
	"github.com/hupe1980/palcalc/blobstore"
	minioblob "github.com/hupe1980/palcalc/blobstore/minio"
	s3blob "github.com/hupe1980/palcalc/blobstore/s3"
	"github.com/hupe1980/palcalc/codec"
	"github.com/hupe1980/palcalc/histogram"
	"github.com/hupe1980/palcalc/internal/cache"
	"github.com/hupe1980/palcalc/loader"
	"github.com/hupe1980/palcalc/palette"
	"github.com/hupe1980/palcalc/progress"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type config struct {
	colors   int
	attempts int
	steps    int
	seed     int64
	hasSeed  bool
	workers  int
	weighted bool

	out       string
	json      bool
	codecName string

	snapshot    string
	compression string

	backend   string
	root      string
	endpoint  string
	accessKey string
	secretKey string
	secure    bool

	cacheDir  string
	cacheSize int64

	decoders  int
	memLimit  int64
	readLimit int64

	logFormat string
	verbose   bool
	interval  time.Duration

	files []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "palcalc:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*config, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("palcalc", flag.ContinueOnError)

	fs.IntVar(&cfg.colors, "colors", palcalc.DefaultColors, "palette size (1-256)")
	fs.IntVar(&cfg.attempts, "attempts", palcalc.DefaultAttempts, "independent k-means runs; the best is kept")
	fs.IntVar(&cfg.steps, "steps", palcalc.DefaultSteps, "maximum steps per attempt")
	fs.Int64Var(&cfg.seed, "seed", 0, "random seed (default: time based)")
	fs.IntVar(&cfg.workers, "workers", 0, "assignment goroutines (0 = GOMAXPROCS)")
	fs.BoolVar(&cfg.weighted, "weighted", false, "pick the first seed by color frequency")

	fs.StringVar(&cfg.out, "out", "palette.pal", "output blob name, - for stdout")
	fs.BoolVar(&cfg.json, "json", false, "write a JSON document instead of the binary palette")
	fs.StringVar(&cfg.codecName, "codec", "go-json-indent", "JSON codec: json, go-json, go-json-indent")

	fs.StringVar(&cfg.snapshot, "snapshot", "", "histogram snapshot blob; read if present, written otherwise")
	fs.StringVar(&cfg.compression, "compression", "zstd", "snapshot compression: none, lz4, zstd")

	fs.StringVar(&cfg.backend, "backend", "local", "blob store: local, minio, s3")
	fs.StringVar(&cfg.root, "root", ".", "local directory or bucket[/prefix]")
	fs.StringVar(&cfg.endpoint, "endpoint", "", "minio/s3 endpoint")
	fs.StringVar(&cfg.accessKey, "access-key", os.Getenv("MINIO_ACCESS_KEY"), "minio access key")
	fs.StringVar(&cfg.secretKey, "secret-key", os.Getenv("MINIO_SECRET_KEY"), "minio secret key")
	fs.BoolVar(&cfg.secure, "secure", true, "use TLS for minio")
	fs.StringVar(&cfg.cacheDir, "cache-dir", "", "keep downloaded images in this directory")
	fs.Int64Var(&cfg.cacheSize, "cache-size", 1<<30, "image cache limit in bytes")

	fs.IntVar(&cfg.decoders, "decoders", 0, "concurrent image decoders (0 = GOMAXPROCS)")
	fs.Int64Var(&cfg.memLimit, "mem-limit", 0, "decoded image memory budget in bytes (0 = unlimited)")
	fs.Int64Var(&cfg.readLimit, "read-limit", 0, "read throughput limit in bytes/s (0 = unlimited)")

	fs.StringVar(&cfg.logFormat, "log", "console", "log format: console, text, json")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.DurationVar(&cfg.interval, "interval", 500*time.Millisecond, "minimum time between progress lines")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.hasSeed = true
		}
	})
	cfg.files = fs.Args()

	if len(cfg.files) == 0 && cfg.snapshot == "" {
		return nil, errors.New("no input files")
	}
	return cfg, nil
}

func newLogger(cfg *config) *palcalc.Logger {
	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	switch cfg.logFormat {
	case "json":
		return palcalc.NewJSONLogger(level)
	case "text":
		return palcalc.NewTextLogger(level)
	default:
		return palcalc.NewConsoleLogger(level)
	}
}

func openStore(ctx context.Context, cfg *config) (blobstore.BlobStore, error) {
	switch cfg.backend {
	case "local":
		return blobstore.NewLocalStore(cfg.root), nil
	case "minio":
		bucket, prefix := splitBucket(cfg.root)
		client, err := minio.New(cfg.endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretKey, ""),
			Secure: cfg.secure,
		})
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		return minioblob.NewStore(client, bucket, prefix), nil
	case "s3":
		bucket, prefix := splitBucket(cfg.root)
		return s3blob.Open(ctx, bucket, prefix, cfg.endpoint)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.backend)
	}
}

// splitBucket splits "bucket/some/prefix" into its bucket and key prefix.
func splitBucket(root string) (string, string) {
	bucket, prefix, _ := strings.Cut(root, "/")
	return bucket, prefix
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	if cfg.cacheDir != "" {
		dc, err := cache.NewDiskCache(cache.DiskCacheConfig{
			RootDir:      cfg.cacheDir,
			MaxSizeBytes: cfg.cacheSize,
		})
		if err != nil {
			return fmt.Errorf("image cache: %w", err)
		}
		cs := cache.NewStore(store, dc)
		defer func() {
			_ = cs.Close()
			hits, misses := dc.Stats()
			logger.DebugContext(ctx, "image cache", slog.Int64("hits", hits), slog.Int64("misses", misses))
		}()
		store = cs
	}

	h, err := histogramFor(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	opts := []palcalc.Option{
		palcalc.WithColors(cfg.colors),
		palcalc.WithAttempts(cfg.attempts),
		palcalc.WithSteps(cfg.steps),
		palcalc.WithWorkers(cfg.workers),
		palcalc.WithWeightedSeeding(cfg.weighted),
		palcalc.WithLogger(logger),
		palcalc.WithProgress(progress.Throttle(progress.NewLogSink(logger.Logger), cfg.interval)),
	}
	if cfg.hasSeed {
		opts = append(opts, palcalc.WithSeed(cfg.seed))
	}

	calc, err := palcalc.New(opts...)
	if err != nil {
		return err
	}
	pal, err := calc.Calculate(ctx, h)
	if err != nil {
		return err
	}

	if err := writePalette(ctx, cfg, store, pal, stdout); err != nil {
		return err
	}
	if cfg.out != "-" {
		for i, c := range pal {
			fmt.Fprintf(stdout, "%3d %s\n", i, c)
		}
	}
	return nil
}

// histogramFor reads the snapshot if one is configured and present, and
// decodes the input files otherwise. When files are given, the snapshot is
// reused only if it was built from the same files; a stale snapshot is
// rebuilt.
func histogramFor(ctx context.Context, cfg *config, store blobstore.BlobStore, logger *palcalc.Logger) (*histogram.Histogram, error) {
	var source uint32
	if cfg.snapshot != "" {
		if len(cfg.files) > 0 {
			var err error
			if source, err = loader.Fingerprint(ctx, store, cfg.files); err != nil {
				return nil, err
			}
		}

		h, snapSource, err := readSnapshot(ctx, store, cfg.snapshot)
		switch {
		case err == nil && (len(cfg.files) == 0 || snapSource == source):
			logger.LogSnapshot(ctx, cfg.snapshot, "read", nil)
			return h, nil
		case err == nil:
			logger.WarnContext(ctx, "snapshot does not match input files, rebuilding",
				"name", cfg.snapshot,
				"files", len(cfg.files),
			)
		case !errors.Is(err, blobstore.ErrNotFound):
			logger.LogSnapshot(ctx, cfg.snapshot, "read", err)
			return nil, err
		case len(cfg.files) == 0:
			return nil, fmt.Errorf("snapshot %s not found and no input files", cfg.snapshot)
		}
	}

	l := loader.New(store,
		loader.WithProgress(progress.NewLogSink(logger.Logger)),
		loader.WithLogger(logger.Logger),
		loader.WithDecoders(cfg.decoders),
		loader.WithMemoryLimit(cfg.memLimit),
		loader.WithReadLimit(cfg.readLimit),
	)
	h, stats, err := l.Load(ctx, cfg.files)
	logger.LogLoad(ctx, stats.Files, stats.Bytes, stats.PeakMemory, distinct(h), stats.Elapsed, err)
	if err != nil {
		return nil, err
	}

	if cfg.snapshot != "" {
		err := writeSnapshot(ctx, store, cfg.snapshot, cfg.compression, source, h)
		logger.LogSnapshot(ctx, cfg.snapshot, "written", err)
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

func distinct(h *histogram.Histogram) int {
	if h == nil {
		return 0
	}
	return h.Distinct()
}

func readSnapshot(ctx context.Context, store blobstore.BlobStore, name string) (*histogram.Histogram, uint32, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer blob.Close()

	r, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, 0, err
	}
	defer r.Close()

	return histogram.ReadSnapshot(r)
}

func writeSnapshot(ctx context.Context, store blobstore.BlobStore, name, compression string, source uint32, h *histogram.Histogram) error {
	c, err := histogram.ParseCompression(compression)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := h.WriteSnapshot(&buf, c, source); err != nil {
		return err
	}
	return store.Put(ctx, name, buf.Bytes())
}

func writePalette(ctx context.Context, cfg *config, store blobstore.BlobStore, pal palette.Palette, stdout io.Writer) error {
	if !cfg.json && cfg.out != "-" {
		return palette.Save(ctx, store, cfg.out, pal)
	}

	var (
		data []byte
		err  error
	)
	if cfg.json {
		c, ok := codec.ByName(cfg.codecName)
		if !ok {
			return fmt.Errorf("unknown codec %q", cfg.codecName)
		}
		data, err = palette.Export(pal, c)
	} else {
		data, err = pal.MarshalBinary()
	}
	if err != nil {
		return err
	}

	if cfg.out == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return store.Put(ctx, cfg.out, data)
}
