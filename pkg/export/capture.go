package export

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// DefaultFilename is the file name used for raster exports.
const DefaultFilename = "graph.png"

// MaxRasterPixels bounds the area of any rasterized image. Larger requests
// are rejected before memory is allocated.
const MaxRasterPixels = 40_000_000

// CheckRasterSize reports an INVALID_INPUT error when a w x h raster would
// exceed MaxRasterPixels or is not a finite positive size.
func CheckRasterSize(w, h float64) error {
	if math.IsNaN(w) || math.IsNaN(h) || w <= 0 || h <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid raster size %gx%g", w, h)
	}
	if !(math.Ceil(w)*math.Ceil(h) <= MaxRasterPixels) {
		return errors.New(errors.ErrCodeInvalidInput, "raster %.0fx%.0f exceeds %d pixels; lower the scale or padding", math.Ceil(w), math.Ceil(h), MaxRasterPixels)
	}
	return nil
}

// Options configures a capture.
type Options struct {
	Padding    float64     // margin around the bounding box; 0 means DefaultPadding
	Background color.Color // forced opaque; nil means white
	Scale      float64     // output pixels per canvas unit; 0 means 1
}

func (o Options) withDefaults() Options {
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.Background == nil {
		o.Background = color.White
	}
	if o.Scale <= 0 {
		o.Scale = 1
	}
	return o
}

// Opaque returns c with full alpha.
func Opaque(c color.Color) color.Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xff
	return n
}

// Capture rasterizes the whole diagram without clipping.
//
// The surface is put into export mode for the duration of the call and
// restored before Capture returns, including when the rasterizer fails or
// panics. A panic is returned as an INTERNAL_ERROR. Frames larger than
// MaxRasterPixels at opts.Scale are rejected without touching the surface.
func Capture(s Surface, nodes []graph.Node, opts Options) (img image.Image, f Frame, err error) {
	opts = opts.withDefaults()
	f = Compute(nodes, opts.Padding)
	if err := CheckRasterSize(f.Width*opts.Scale, f.Height*opts.Scale); err != nil {
		return nil, f, err
	}

	m := Acquire(s, f)
	defer m.Release()
	defer func() {
		if r := recover(); r != nil {
			m.Release()
			img = nil
			err = errors.New(errors.ErrCodeInternal, "rasterize: %v", r)
		}
	}()

	w, h := f.PixelSize(opts.Scale)
	img, err = s.Rasterize(w, h, Opaque(opts.Background))
	if err != nil {
		return nil, f, fmt.Errorf("rasterize: %w", err)
	}
	return img, f, nil
}

// WritePNG encodes img as PNG.
func WritePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to path as PNG.
func SavePNG(path string, img image.Image) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
