package export

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	cgerrors "github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/graph"
)

type fakeSurface struct {
	w, h                         float64
	viewport, content, edgeLayer Transform

	rasterErr   error
	rasterPanic bool
	seen        surfaceState // state observed during Rasterize
	calls       int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		w: 1280, h: 800,
		viewport:  Transform{X: -40, Y: 25, Scale: 0.75},
		content:   Transform{X: 3, Y: 4, Scale: 1},
		edgeLayer: Transform{X: 1, Y: 1, Scale: 1},
	}
}

func (s *fakeSurface) Size() (float64, float64)          { return s.w, s.h }
func (s *fakeSurface) SetSize(w, h float64)              { s.w, s.h = w, h }
func (s *fakeSurface) ViewportTransform() Transform      { return s.viewport }
func (s *fakeSurface) SetViewportTransform(t Transform)  { s.viewport = t }
func (s *fakeSurface) ContentTransform() Transform       { return s.content }
func (s *fakeSurface) SetContentTransform(t Transform)   { s.content = t }
func (s *fakeSurface) EdgeLayerTransform() Transform     { return s.edgeLayer }
func (s *fakeSurface) SetEdgeLayerTransform(t Transform) { s.edgeLayer = t }

func (s *fakeSurface) Rasterize(w, h int, bg color.Color) (image.Image, error) {
	s.calls++
	s.seen = captureState(s)
	if s.rasterPanic {
		panic("canvas exploded")
	}
	if s.rasterErr != nil {
		return nil, s.rasterErr
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, bg)
		}
	}
	return img, nil
}

func sized(id string, x, y, w, h float64) graph.Node {
	return graph.Node{ID: id, Position: graph.Position{X: x, Y: y}, Size: &graph.Size{Width: w, Height: h}}
}

func TestComputeTwoNodes(t *testing.T) {
	nodes := []graph.Node{
		sized("1", 0, 0, 220, 150),
		sized("2", 0, 300, 220, 150),
	}
	f := Compute(nodes, 64)
	if f.Width != 348 || f.Height != 578 {
		t.Errorf("frame = %vx%v, want 348x578", f.Width, f.Height)
	}
	if f.Translate != (Transform{X: 64, Y: 64, Scale: 1}) {
		t.Errorf("translate = %+v", f.Translate)
	}
}

func TestComputeDefaultsAndNegativePositions(t *testing.T) {
	nodes := []graph.Node{
		{ID: "1", Position: graph.Position{X: -100, Y: -50}}, // default 220x150
		sized("2", 400, 200, 100, 40),
	}
	f := Compute(nodes, 10)

	want := Rect{MinX: -100, MinY: -50, MaxX: 500, MaxY: 240}
	if f.Bounds != want {
		t.Errorf("bounds = %+v, want %+v", f.Bounds, want)
	}
	if f.Width != 620 || f.Height != 310 {
		t.Errorf("frame = %vx%v, want 620x310", f.Width, f.Height)
	}
	if f.Translate.X != 110 || f.Translate.Y != 60 {
		t.Errorf("translate = %+v, want (110,60)", f.Translate)
	}
}

func TestComputeEmpty(t *testing.T) {
	f := Compute(nil, 64)
	if f.Width != 128 || f.Height != 128 {
		t.Errorf("empty frame = %vx%v, want 128x128", f.Width, f.Height)
	}
	if _, ok := Bounds(nil); ok {
		t.Error("Bounds(nil) ok = true")
	}
}

func TestComputeIdempotent(t *testing.T) {
	nodes := []graph.Node{sized("1", 13, 7, 220, 150), {ID: "2", Position: graph.Position{X: 500, Y: 900}}}
	a := Compute(nodes, DefaultPadding)
	b := Compute(nodes, DefaultPadding)
	if a != b {
		t.Errorf("Compute not idempotent: %+v vs %+v", a, b)
	}
}

func TestAcquireRelease(t *testing.T) {
	s := newFakeSurface()
	before := captureState(s)
	f := Compute([]graph.Node{sized("1", 50, 60, 100, 100)}, 20)

	m := Acquire(s, f)
	if s.w != 140 || s.h != 140 {
		t.Errorf("size = %vx%v", s.w, s.h)
	}
	if s.viewport != Identity || s.edgeLayer != Identity {
		t.Errorf("viewport/edge layer not neutralized: %+v %+v", s.viewport, s.edgeLayer)
	}
	if s.content != (Transform{X: -30, Y: -40, Scale: 1}) {
		t.Errorf("content = %+v", s.content)
	}

	m.Release()
	if got := captureState(s); got != before {
		t.Errorf("state after release = %+v, want %+v", got, before)
	}

	// A second release must not clobber later changes.
	s.SetViewportTransform(Transform{X: 9, Scale: 2})
	m.Release()
	if s.viewport.X != 9 {
		t.Error("second Release restored state again")
	}
}

func TestCapture(t *testing.T) {
	s := newFakeSurface()
	before := captureState(s)
	nodes := []graph.Node{sized("1", 0, 0, 220, 150), sized("2", 0, 300, 220, 150)}

	img, f, err := Capture(s, nodes, Options{Padding: 64, Background: color.NRGBA{R: 10, G: 20, B: 30, A: 0}})
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 348 || b.Dy() != 578 {
		t.Errorf("image = %dx%d, want 348x578", b.Dx(), b.Dy())
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0xffff {
		t.Errorf("background alpha = %#x, want opaque", a)
	}
	if s.seen.w != f.Width || s.seen.viewport != Identity {
		t.Errorf("rasterized in wrong state: %+v", s.seen)
	}
	if got := captureState(s); got != before {
		t.Errorf("state not restored: %+v", got)
	}
}

func TestCaptureScale(t *testing.T) {
	s := newFakeSurface()
	img, _, err := Capture(s, []graph.Node{sized("1", 0, 0, 100, 50)}, Options{Padding: 10, Scale: 2})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 240 || b.Dy() != 140 {
		t.Errorf("image = %dx%d, want 240x140", b.Dx(), b.Dy())
	}
}

func TestCaptureRestoresOnError(t *testing.T) {
	s := newFakeSurface()
	before := captureState(s)
	s.rasterErr = errors.New("out of memory")

	_, _, err := Capture(s, []graph.Node{sized("1", 0, 0, 10, 10)}, Options{})
	if err == nil || !errors.Is(err, s.rasterErr) {
		t.Fatalf("err = %v, want wrapped raster error", err)
	}
	if got := captureState(s); got != before {
		t.Errorf("state not restored after error: %+v", got)
	}
}

func TestCaptureRestoresOnPanic(t *testing.T) {
	s := newFakeSurface()
	before := captureState(s)
	s.rasterPanic = true

	img, _, err := Capture(s, []graph.Node{sized("1", 0, 0, 10, 10)}, Options{})
	if img != nil {
		t.Error("image returned after panic")
	}
	if !cgerrors.Is(err, cgerrors.ErrCodeInternal) {
		t.Fatalf("err = %v, want INTERNAL_ERROR", err)
	}
	if got := captureState(s); got != before {
		t.Errorf("state not restored after panic: %+v", got)
	}
}

func TestCaptureRejectsOversizedRaster(t *testing.T) {
	tests := []struct {
		name  string
		nodes []graph.Node
		opts  Options
	}{
		{"scale", []graph.Node{sized("1", 0, 0, 220, 150), sized("2", 0, 300, 220, 150)}, Options{Scale: 50}},
		{"far node", []graph.Node{sized("1", 0, 0, 220, 150), sized("2", 1e6, 1e6, 220, 150)}, Options{}},
		{"nan scale", []graph.Node{sized("1", 0, 0, 10, 10)}, Options{Scale: math.NaN()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFakeSurface()
			before := captureState(s)

			_, _, err := Capture(s, tt.nodes, tt.opts)
			if !cgerrors.Is(err, cgerrors.ErrCodeInvalidInput) {
				t.Fatalf("err = %v, want INVALID_INPUT", err)
			}
			if s.calls != 0 {
				t.Error("surface rasterized an oversized frame")
			}
			if got := captureState(s); got != before {
				t.Errorf("state changed: %+v", got)
			}
		})
	}
}

func TestCheckRasterSize(t *testing.T) {
	tests := []struct {
		w, h float64
		ok   bool
	}{
		{348, 578, true},
		{8000, 5000, true},
		{17400, 28900, false},
		{0, 10, false},
		{math.Inf(1), 10, false},
	}
	for _, tt := range tests {
		if err := CheckRasterSize(tt.w, tt.h); (err == nil) != tt.ok {
			t.Errorf("CheckRasterSize(%v, %v) = %v, want ok=%v", tt.w, tt.h, err, tt.ok)
		}
	}
}

func TestCaptureTwiceSameFrame(t *testing.T) {
	s := newFakeSurface()
	nodes := []graph.Node{sized("1", 5, 5, 220, 150), sized("2", 300, -20, 220, 150)}

	_, f1, err := Capture(s, nodes, Options{})
	if err != nil {
		t.Fatal(err)
	}
	_, f2, err := Capture(s, nodes, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if f1.Width != f2.Width || f1.Height != f2.Height {
		t.Errorf("frames differ: %vx%v vs %vx%v", f1.Width, f1.Height, f2.Width, f2.Height)
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	var buf bytes.Buffer
	if err := WritePNG(&buf, img); err != nil {
		t.Fatal(err)
	}
	cfg, err := png.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 3 || cfg.Height != 2 {
		t.Errorf("png = %dx%d", cfg.Width, cfg.Height)
	}
}
