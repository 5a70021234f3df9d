// Package codec selects the text encoding used for palette exports and
// run reports.
//
// The binary palette format lives in package palette; codecs cover the
// human-readable side (JSON documents consumed by design tools and scripts).
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default is the codec used when none is configured.
var Default Codec = GoJSON{}

// ByName returns a built-in codec by its stable name.
// The CLI resolves its -codec flag through this.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json", "":
		return GoJSON{}, true
	case "go-json-indent":
		return GoJSON{Indent: "  "}, true
	default:
		return nil, false
	}
}

// MustMarshal panics if c cannot encode v. Intended for tests and fixed
// literals.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
