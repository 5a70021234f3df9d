package loader

import (
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "github.com/gen2brain/avif" // Register AVIF decoder
	_ "golang.org/x/image/bmp"    // Register BMP decoder
	_ "golang.org/x/image/tiff"   // Register TIFF decoder
	_ "golang.org/x/image/webp"   // Register WebP decoder
)
