// Package loader decodes images from a blob store into a color histogram.
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF, WebP and AVIF. Images are
// decoded concurrently under a resource budget (decoder slots, decoded-pixel
// memory, read bandwidth) and folded into one histogram. Any failure aborts
// the whole load with an error naming the file.
package loader
