package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/imagedata"
)

// Default viewport size of an interactive canvas.
const (
	DefaultWidth  = 1280.0
	DefaultHeight = 800.0
)

// Canvas is a raster rendering surface for a diagram snapshot.
//
// It keeps the same state an interactive view has (surface size, viewport
// pan/zoom, content and edge layer transforms), so it can serve both as the
// live view and as the target of an export. Canvas implements
// [export.Surface].
//
// Canvas is not safe for concurrent use.
type Canvas struct {
	snap  graph.Snapshot
	style Style

	w, h      float64
	viewport  export.Transform
	content   export.Transform
	edgeLayer export.Transform

	thumbs map[string]image.Image // decoded node images by data URI
}

var _ export.Surface = (*Canvas)(nil)

// NewCanvas creates a canvas showing snap with the default style and size.
func NewCanvas(snap graph.Snapshot) *Canvas {
	return &Canvas{
		snap:      snap,
		style:     DefaultStyle(),
		w:         DefaultWidth,
		h:         DefaultHeight,
		viewport:  export.Identity,
		content:   export.Identity,
		edgeLayer: export.Identity,
		thumbs:    make(map[string]image.Image),
	}
}

// SetSnapshot replaces the diagram being drawn.
func (c *Canvas) SetSnapshot(snap graph.Snapshot) { c.snap = snap }

// SetStyle replaces the drawing style.
func (c *Canvas) SetStyle(s Style) { c.style = s }

func (c *Canvas) Size() (float64, float64)                 { return c.w, c.h }
func (c *Canvas) SetSize(w, h float64)                     { c.w, c.h = w, h }
func (c *Canvas) ViewportTransform() export.Transform      { return c.viewport }
func (c *Canvas) SetViewportTransform(t export.Transform)  { c.viewport = t }
func (c *Canvas) ContentTransform() export.Transform       { return c.content }
func (c *Canvas) SetContentTransform(t export.Transform)   { c.content = t }
func (c *Canvas) EdgeLayerTransform() export.Transform     { return c.edgeLayer }
func (c *Canvas) SetEdgeLayerTransform(t export.Transform) { c.edgeLayer = t }

// FitView sets the viewport so every node is visible with the given margin,
// the way an editor does on first open.
func (c *Canvas) FitView(margin float64) {
	f := export.Compute(c.snap.Nodes, margin)
	k := min(c.w/f.Width, c.h/f.Height, 1)
	c.viewport = export.Transform{
		X:     (c.w-f.Width*k)/2 + f.Translate.X*k,
		Y:     (c.h-f.Height*k)/2 + f.Translate.Y*k,
		Scale: k,
	}
	c.content = export.Identity
	c.edgeLayer = export.Identity
}

// Rasterize renders the current view into a w x h image filled with
// background. When w differs from the surface width the drawing is scaled
// uniformly, which is how high-density exports are produced.
func (c *Canvas) Rasterize(w, h int, background color.Color) (image.Image, error) {
	if err := export.CheckRasterSize(float64(w), float64(h)); err != nil {
		return nil, err
	}
	ratio := 1.0
	if c.w > 0 {
		ratio = float64(w) / c.w
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(background)
	dc.Clear()

	r := &renderer{
		dc:    dc,
		style: c.style,
		nodeT: compose(c.viewport, c.content, ratio),
		edgeT: compose(c.viewport, compose(c.content, c.edgeLayer, 1), ratio),
		faces: make(map[faceKey]font.Face),
		thumb: c.thumbnail,
	}
	if err := r.draw(c.snap); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// thumbnail decodes and caches a node image. Undecodable images are skipped.
func (c *Canvas) thumbnail(uri string, w, h int) image.Image {
	key := fmt.Sprintf("%dx%d:%s", w, h, uri)
	if img, ok := c.thumbs[key]; ok {
		return img
	}
	img, err := imagedata.Thumbnail(uri, w, h)
	if err != nil {
		img = nil
	}
	c.thumbs[key] = img
	return img
}

// compose returns the transform applying inner first, then outer, then a
// uniform pixel ratio.
func compose(outer, inner export.Transform, ratio float64) export.Transform {
	so, si := scaleOf(outer), scaleOf(inner)
	return export.Transform{
		X:     (inner.X*so + outer.X) * ratio,
		Y:     (inner.Y*so + outer.Y) * ratio,
		Scale: si * so * ratio,
	}
}

func scaleOf(t export.Transform) float64 {
	if t.Scale == 0 {
		return 1
	}
	return t.Scale
}

// Render draws snap in export geometry and returns the image.
// It is the one-shot path used by the CLI and the pipeline.
func Render(snap graph.Snapshot, opts export.Options) (image.Image, export.Frame, error) {
	return export.Capture(NewCanvas(snap), snap.Nodes, opts)
}
