// Package testutil provides testing utilities for palcalc.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded, thread-safe RNG and helpers for generating
// synthetic colors, clustered color sets, images and histograms.
//
// # Random Colors
//
//	rng := testutil.NewRNG(seed)
//	colors := rng.Colors(1000)                  // uniform over the cube
//	colors = rng.ClusteredColors(1000, 4, 12)   // 4 blobs, ±12 levels
//
// # Fixtures
//
//	img := rng.Image(64, 64)
//	h := testutil.HistogramOf(map[rgb.Int]uint64{{}: 100, {R: 255, G: 255, B: 255}: 50})
package testutil
