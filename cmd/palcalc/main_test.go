package main

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/palcalc/blobstore"
	"github.com/hupe1980/palcalc/codec"
	"github.com/hupe1980/palcalc/palette"
	"github.com/hupe1980/palcalc/rgb"
	"github.com/hupe1980/palcalc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	black = rgb.Int{}
	white = rgb.Int{R: 255, G: 255, B: 255}
)

func writePNG(t *testing.T, dir, name string, c rgb.Int, size int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testutil.SolidImage(size, size, c)))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0o644))
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, dir, "dark.png", black, 4)
	writePNG(t, dir, "light.png", white, 2)
	return dir
}

func TestRun_BinaryPalette(t *testing.T) {
	dir := fixtureDir(t)
	var stdout bytes.Buffer

	err := run(context.Background(), []string{
		"-root", dir, "-log", "text", "-colors", "2", "-seed", "1", "-out", "out.pal",
		"dark.png", "light.png",
	}, &stdout)
	require.NoError(t, err)

	pal, err := palette.Load(context.Background(), blobstore.NewLocalStore(dir), "out.pal")
	require.NoError(t, err)
	assert.Equal(t, palette.Palette{black, white}, pal)
	assert.Contains(t, stdout.String(), "#000000")
	assert.Contains(t, stdout.String(), "#ffffff")
}

func TestRun_JSONToStdout(t *testing.T) {
	dir := fixtureDir(t)
	var stdout bytes.Buffer

	err := run(context.Background(), []string{
		"-root", dir, "-log", "json", "-colors", "2", "-seed", "1", "-json", "-codec", "json", "-out", "-",
		"dark.png", "light.png",
	}, &stdout)
	require.NoError(t, err)

	pal, err := palette.Import(stdout.Bytes(), codec.JSON{})
	require.NoError(t, err)
	assert.Equal(t, palette.Palette{black, white}, pal)
}

func TestRun_Snapshot(t *testing.T) {
	dir := fixtureDir(t)
	args := []string{"-root", dir, "-log", "text", "-colors", "2", "-seed", "1", "-snapshot", "cache.phst", "-compression", "lz4"}

	require.NoError(t, run(context.Background(), append(args, "-out", "first.pal", "dark.png", "light.png"), &bytes.Buffer{}))
	_, err := os.Stat(filepath.Join(dir, "cache.phst"))
	require.NoError(t, err)

	// The input images are no longer needed.
	require.NoError(t, os.Remove(filepath.Join(dir, "dark.png")))
	require.NoError(t, os.Remove(filepath.Join(dir, "light.png")))

	require.NoError(t, run(context.Background(), append(args, "-out", "second.pal"), &bytes.Buffer{}))

	store := blobstore.NewLocalStore(dir)
	first, err := palette.Load(context.Background(), store, "first.pal")
	require.NoError(t, err)
	second, err := palette.Load(context.Background(), store, "second.pal")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRun_SnapshotStale(t *testing.T) {
	dir := fixtureDir(t)
	red := rgb.Int{R: 255}
	writePNG(t, dir, "red.png", red, 3)
	args := []string{"-root", dir, "-log", "text", "-seed", "1", "-snapshot", "h.phst"}

	require.NoError(t, run(context.Background(), append(args, "-colors", "4", "-out", "first.pal", "dark.png"), &bytes.Buffer{}))

	require.NoError(t, run(context.Background(),
		append(args, "-colors", "4", "-out", "second.pal", "dark.png", "light.png", "red.png"), &bytes.Buffer{}))

	store := blobstore.NewLocalStore(dir)
	pal, err := palette.Load(context.Background(), store, "second.pal")
	require.NoError(t, err)
	assert.ElementsMatch(t, []rgb.Int{black, red, white}, []rgb.Int(pal))

	// The rebuilt snapshot now matches all three files and is reused even
	// after the images are gone.
	for _, name := range []string{"dark.png", "light.png", "red.png"} {
		require.NoError(t, os.Remove(filepath.Join(dir, name)))
	}
	require.NoError(t, run(context.Background(), append(args, "-colors", "4", "-out", "third.pal"), &bytes.Buffer{}))
	third, err := palette.Load(context.Background(), store, "third.pal")
	require.NoError(t, err)
	assert.Equal(t, pal, third)
}

func TestRun_ImageCache(t *testing.T) {
	dir := fixtureDir(t)
	cacheDir := t.TempDir()

	err := run(context.Background(), []string{
		"-root", dir, "-log", "text", "-colors", "2", "-seed", "1", "-cache-dir", cacheDir, "-out", "-",
		"dark.png", "light.png",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	for _, name := range []string{"dark.png", "light.png"} {
		fi, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(cacheDir, fmt.Sprintf("%s.%d.blob", name, fi.Size())))
	}
}

func TestRun_Errors(t *testing.T) {
	dir := fixtureDir(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"-root", dir}},
		{"unknown backend", []string{"-backend", "ftp", "a.png"}},
		{"missing file", []string{"-root", dir, "-log", "text", "missing.png"}},
		{"missing snapshot", []string{"-root", dir, "-log", "text", "-snapshot", "none.phst"}},
		{"bad codec", []string{"-root", dir, "-log", "text", "-json", "-codec", "xml", "dark.png"}},
		{"bad compression", []string{"-root", dir, "-log", "text", "-snapshot", "x.phst", "-compression", "brotli", "dark.png"}},
		{"negative colors", []string{"-root", dir, "-log", "text", "-colors", "-1", "dark.png"}},
		{"unknown flag", []string{"-nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(ctx, tt.args, &bytes.Buffer{}))
		})
	}
}

func TestSplitBucket(t *testing.T) {
	b, p := splitBucket("artwork/sprites/2024")
	assert.Equal(t, "artwork", b)
	assert.Equal(t, "sprites/2024", p)

	b, p = splitBucket("artwork")
	assert.Equal(t, "artwork", b)
	assert.Empty(t, p)
}
