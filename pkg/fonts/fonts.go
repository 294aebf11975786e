// Package fonts provides the font faces used for raster rendering.
//
// The Go font family is embedded via golang.org/x/image/font/gofont, so
// rendering works without any system fonts installed.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Weight selects a font variant.
type Weight int

const (
	Regular Weight = iota
	Bold
)

// Parsed fonts (computed once on first access).
var (
	regular, bold *truetype.Font
	parseOnce     sync.Once
	parseErr      error
)

func parse() {
	regular, parseErr = truetype.Parse(goregular.TTF)
	if parseErr != nil {
		return
	}
	bold, parseErr = truetype.Parse(gobold.TTF)
}

// Font returns the parsed font for w.
func Font(w Weight) (*truetype.Font, error) {
	parseOnce.Do(parse)
	if parseErr != nil {
		return nil, parseErr
	}
	if w == Bold {
		return bold, nil
	}
	return regular, nil
}

// NewFace returns a face for weight at the given point size.
// Faces keep a glyph cache and are not safe for concurrent use; give each
// renderer its own.
func NewFace(w Weight, size float64) (font.Face, error) {
	ft, err := Font(w)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(ft, &truetype.Options{Size: size, Hinting: font.HintingFull}), nil
}
