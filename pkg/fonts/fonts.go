// Package fonts provides the built-in typeface used when a requested font
// cannot be found.
//
// The Go Regular font ships with golang.org/x/image, so it is compiled into
// the binary and always available.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// FamilyName is the family name of the built-in font.
const FamilyName = "Go Regular"

// RegularTTF returns the TTF data of the built-in font.
func RegularTTF() []byte {
	return goregular.TTF
}

// Parsed font (computed once on first access).
var (
	regular     *truetype.Font
	regularErr  error
	regularOnce sync.Once
)

// Regular returns the parsed built-in font.
// The result is cached after first computation.
func Regular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Face returns a face of f at size pixels. Faces hold glyph caches and are
// not safe for concurrent use; create one per render.
func Face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
