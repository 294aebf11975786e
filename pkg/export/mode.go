package export

// Mode is a scoped takeover of a surface for export.
//
// Acquire records the surface's size and transforms and switches it into
// export geometry; Release puts every recorded value back. Always pair them
// with defer:
//
//	m := export.Acquire(surface, frame)
//	defer m.Release()
type Mode struct {
	surface  Surface
	prior    surfaceState
	frame    Frame
	released bool
}

// Acquire switches s into export geometry for f:
//
//  1. the surface is resized to the frame
//  2. the viewport pan/zoom is reset to identity
//  3. the content layer is translated by the frame translation at unit scale
//  4. the edge layer transform is reset to identity
func Acquire(s Surface, f Frame) *Mode {
	m := &Mode{surface: s, prior: captureState(s), frame: f}
	s.SetSize(f.Width, f.Height)
	s.SetViewportTransform(Identity)
	s.SetContentTransform(Transform{X: f.Translate.X, Y: f.Translate.Y, Scale: 1})
	s.SetEdgeLayerTransform(Identity)
	return m
}

// Frame returns the geometry the mode was acquired with.
func (m *Mode) Frame() Frame { return m.frame }

// Release restores the surface to its state before Acquire.
// Calling Release more than once has no further effect.
func (m *Mode) Release() {
	if m == nil || m.released {
		return
	}
	m.released = true
	m.prior.restore(m.surface)
}
