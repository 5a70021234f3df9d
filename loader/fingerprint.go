package loader

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/hupe1980/palcalc/blobstore"
	"github.com/hupe1980/palcalc/internal/hash"
)

// Fingerprint identifies an input set by the CRC32C of its sorted names and
// blob sizes. It changes when a file is added, removed or replaced with
// content of a different size, and does not depend on the order of names.
// Only blob metadata is read.
func Fingerprint(ctx context.Context, store blobstore.BlobStore, names []string) (uint32, error) {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	var buf []byte
	for _, name := range sorted {
		blob, err := store.Open(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("loader: %s: %w", name, err)
		}
		size := blob.Size()
		_ = blob.Close()

		buf = append(buf, name...)
		buf = append(buf, 0)
		buf = strconv.AppendInt(buf, size, 10)
		buf = append(buf, '\n')
	}
	return hash.CRC32C(buf), nil
}
