package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/costgraph/pkg/graph"
)

func sample() graph.Snapshot {
	s := graph.New()
	_, _ = s.AddChild("1")
	s.SetEdgeComment("e1-2", "api")
	data := graph.DefaultNodeData("2")
	data.Label = "Checkout \"v2\""
	data.Uploading = graph.UploadingYes
	data.Comment = "needs PSP"
	s.UpdateNodeData("2", data)
	return s.Snapshot()
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		`"1" [label="Node 1"];`,
		`"2" [label="Checkout \"v2\"", peripheries=2];`,
		`"1" -> "2" [label="api"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %s\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "pos=") {
		t.Error("unpinned DOT should not carry positions")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true})
	for _, want := range []string{`design: new/simple`, `coding: new/simple`, `uploading`, `needs PSP`} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed DOT missing %q", want)
		}
	}
}

func TestToDOTPinned(t *testing.T) {
	dot := ToDOT(sample(), Options{Pinned: true})
	// Node 2 sits at (0,150) with the default 220x150 card: center (110, 225).
	if !strings.Contains(dot, `pos="110,-225!"`) {
		t.Errorf("pinned DOT missing node position:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sample(), Options{}), Options{})
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("svg header not normalized: %.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox = %s", got)
	}

	noBox := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(noBox)) != string(noBox) {
		t.Error("svg without viewBox should pass through")
	}
}
