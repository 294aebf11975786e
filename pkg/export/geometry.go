package export

import (
	"math"

	"github.com/matzehuels/costgraph/pkg/graph"
)

// DefaultPadding is the margin added on every side of the bounding box.
const DefaultPadding = 64.0

// Rect is an axis-aligned rectangle in canvas coordinates.
type Rect struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent of r.
func (r Rect) Height() float64 { return r.MaxY - r.MinY }

// Bounds returns the smallest rectangle covering every node's
// position-to-position+size box. Nodes without a measured size use the
// default card size. ok is false for an empty node list.
func Bounds(nodes []graph.Node) (r Rect, ok bool) {
	if len(nodes) == 0 {
		return Rect{}, false
	}
	r = Rect{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, n := range nodes {
		size := n.EffectiveSize()
		r.MinX = min(r.MinX, n.Position.X)
		r.MinY = min(r.MinY, n.Position.Y)
		r.MaxX = max(r.MaxX, n.Position.X+size.Width)
		r.MaxY = max(r.MaxY, n.Position.Y+size.Height)
	}
	return r, true
}

// Frame is the capture geometry for one export: the padded surface size and
// the translation that moves the bounding box's top-left corner to
// (padding, padding).
type Frame struct {
	Width, Height float64
	Translate     Transform
	Bounds        Rect
	Padding       float64
}

// Compute derives the export frame for nodes with the given padding.
// An empty graph yields a 2p x 2p frame with the translation at (p, p).
func Compute(nodes []graph.Node, padding float64) Frame {
	b, _ := Bounds(nodes)
	return Frame{
		Width:     b.Width() + 2*padding,
		Height:    b.Height() + 2*padding,
		Translate: Transform{X: -b.MinX + padding, Y: -b.MinY + padding, Scale: 1},
		Bounds:    b,
		Padding:   padding,
	}
}

// PixelSize returns the raster dimensions for the frame at scale,
// rounded up so no content is clipped.
func (f Frame) PixelSize(scale float64) (w, h int) {
	if scale <= 0 {
		scale = 1
	}
	return int(math.Ceil(f.Width * scale)), int(math.Ceil(f.Height * scale))
}
