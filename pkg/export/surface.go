package export

import (
	"image"
	"image/color"
)

// Transform is a pan/zoom transform: points map to (p*Scale + (X, Y)).
type Transform struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

// Identity is the neutral transform.
var Identity = Transform{Scale: 1}

// Apply maps a point through t.
func (t Transform) Apply(x, y float64) (float64, float64) {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return x*s + t.X, y*s + t.Y
}

// Surface is the rendering surface an export temporarily takes over.
//
// Nodes are drawn through the viewport and content transforms; edges are
// drawn through those plus the edge layer transform. Rasterize renders the
// current state into a w x h image.
type Surface interface {
	Size() (w, h float64)
	SetSize(w, h float64)

	ViewportTransform() Transform
	SetViewportTransform(Transform)

	ContentTransform() Transform
	SetContentTransform(Transform)

	EdgeLayerTransform() Transform
	SetEdgeLayerTransform(Transform)

	Rasterize(w, h int, background color.Color) (image.Image, error)
}

// surfaceState is everything an export mode mutates.
type surfaceState struct {
	w, h      float64
	viewport  Transform
	content   Transform
	edgeLayer Transform
}

func captureState(s Surface) surfaceState {
	w, h := s.Size()
	return surfaceState{
		w:         w,
		h:         h,
		viewport:  s.ViewportTransform(),
		content:   s.ContentTransform(),
		edgeLayer: s.EdgeLayerTransform(),
	}
}

func (st surfaceState) restore(s Surface) {
	s.SetSize(st.w, st.h)
	s.SetViewportTransform(st.viewport)
	s.SetContentTransform(st.content)
	s.SetEdgeLayerTransform(st.edgeLayer)
}
