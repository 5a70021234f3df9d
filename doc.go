// Package palcalc computes a small palette that best represents the colors of
// a set of images.
//
// Pixels are counted into a 24-bit histogram; every distinct color becomes a
// point weighted by its count. A weighted k-means (Lloyd's algorithm with
// k-means++ seeding) runs several times from different seeds and the run with
// the lowest error wins. The resulting centroids are quantized to 8-bit
// channels and sorted darkest first.
//
// # Quick Start
//
//	h := histogram.New()
//	h.Add(img)
//
//	calc, _ := palcalc.New(palcalc.WithColors(16), palcalc.WithSeed(42))
//	pal, _ := calc.Calculate(ctx, h)
//	for i, c := range pal {
//	    fmt.Println(i, c)
//	}
//
// # Loading Images
//
// Package loader decodes PNG, JPEG, GIF, BMP, TIFF, WebP and AVIF images from
// any blobstore.BlobStore (local disk, MinIO, S3) into a histogram:
//
//	h, _ := loader.New(blobstore.NewLocalStore(".")).Load(ctx, names)
//
// # Progress
//
// The calculator reports every step to a progress.Sink. Reports are
// side-channel only; a sink cannot change the outcome. Wrap sinks with
// progress.Throttle to limit output:
//
//	sink := progress.Throttle(progress.NewLogSink(slog.Default()), time.Second)
//	calc, _ := palcalc.New(palcalc.WithProgress(sink))
//
// # Persistence
//
// Palettes are saved in a compact binary format with palette.Save and
// exported as JSON with palette.Export. Histograms can be snapshotted with
// (*histogram.Histogram).WriteSnapshot to skip decoding on later runs.
package palcalc
