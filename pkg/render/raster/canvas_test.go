package raster

import (
	"image/color"
	"testing"

	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/imagedata"
)

var bg = color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

func twoNodes() graph.Snapshot {
	s := graph.New()
	_, _ = s.AddNode("1", "2")
	s.ApplyChanges([]graph.Change{graph.MoveNode("2", 0, 300)})
	s.SetEdgeComment("e1-2", "handoff")
	return s.Snapshot()
}

func TestRender(t *testing.T) {
	img, frame, err := Render(twoNodes(), export.Options{Padding: 64, Background: bg})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 348 || b.Dy() != 578 {
		t.Fatalf("image = %dx%d, want 348x578", b.Dx(), b.Dy())
	}
	if frame.Width != 348 || frame.Height != 578 {
		t.Errorf("frame = %vx%v", frame.Width, frame.Height)
	}

	if !sameColor(img.At(2, 2), bg) {
		t.Errorf("corner = %v, want background", img.At(2, 2))
	}
	// Lower right interior of the first card is plain card fill.
	if !sameColor(img.At(270, 200), color.White) {
		t.Errorf("card interior = %v, want white", img.At(270, 200))
	}
	// The edge runs down the middle between the two cards.
	if sameColor(img.At(174, 250), bg) {
		t.Error("no edge drawn between cards")
	}
}

func TestCanvasRestoredAfterCapture(t *testing.T) {
	c := NewCanvas(twoNodes())
	c.SetSize(800, 600)
	c.SetViewportTransform(export.Transform{X: 12, Y: -30, Scale: 0.5})

	if _, _, err := export.Capture(c, twoNodes().Nodes, export.Options{}); err != nil {
		t.Fatal(err)
	}
	if w, h := c.Size(); w != 800 || h != 600 {
		t.Errorf("size = %vx%v, want 800x600", w, h)
	}
	if c.ViewportTransform() != (export.Transform{X: 12, Y: -30, Scale: 0.5}) {
		t.Errorf("viewport = %+v", c.ViewportTransform())
	}
}

func TestRasterizeScaled(t *testing.T) {
	img, _, err := Render(twoNodes(), export.Options{Padding: 64, Scale: 2})
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 696 || b.Dy() != 1156 {
		t.Errorf("image = %dx%d, want 696x1156", b.Dx(), b.Dy())
	}
	if !sameColor(img.At(540, 400), color.White) {
		t.Errorf("scaled card interior = %v, want white", img.At(540, 400))
	}
}

func TestFitView(t *testing.T) {
	c := NewCanvas(twoNodes())
	c.SetSize(400, 300)
	c.FitView(20)

	v := c.ViewportTransform()
	if v.Scale <= 0 || v.Scale > 1 {
		t.Fatalf("scale = %v", v.Scale)
	}
	// Bounding box is 220x450 plus margins: height limits the zoom.
	if want := 300.0 / 490.0; v.Scale != want {
		t.Errorf("scale = %v, want %v", v.Scale, want)
	}
	x, y := v.Apply(0, 0)
	if x < 0 || y < 0 || x > 400 || y > 300 {
		t.Errorf("origin maps to (%v,%v), outside the view", x, y)
	}
}

func TestRasterizeInvalidSize(t *testing.T) {
	c := NewCanvas(graph.Snapshot{})
	if _, err := c.Rasterize(0, 10, bg); err == nil {
		t.Error("Rasterize(0, 10) should fail")
	}
}

func TestRenderWithImageAndBadImage(t *testing.T) {
	snap := twoNodes()
	snap.Nodes[0].Data.Image = imagedata.Encode("image/png", []byte("not a png"))
	snap.Nodes[0].Data.Uploading = graph.UploadingYes
	snap.Nodes[0].Data.Comment = "a long comment that will certainly need to wrap across more than one line of the card"

	if _, _, err := Render(snap, export.Options{}); err != nil {
		t.Fatalf("Render with undecodable image: %v", err)
	}
}
