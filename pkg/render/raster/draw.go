package raster

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/fonts"
	"github.com/matzehuels/costgraph/pkg/graph"
)

type faceKey struct {
	weight fonts.Weight
	size   float64
}

// renderer draws one frame in device coordinates. Transforms are applied
// here rather than through the gg matrix so glyphs scale with the zoom.
type renderer struct {
	dc           *gg.Context
	style        Style
	nodeT, edgeT export.Transform
	faces        map[faceKey]font.Face
	thumb        func(uri string, w, h int) image.Image
}

func (r *renderer) draw(snap graph.Snapshot) error {
	boxes := make(map[string]box, len(snap.Nodes))
	for _, n := range snap.Nodes {
		boxes[n.ID] = nodeBox(n)
	}
	for _, e := range snap.Edges {
		src, ok1 := boxes[e.Source]
		tgt, ok2 := boxes[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		if err := r.edge(e, src, tgt); err != nil {
			return err
		}
	}
	for _, n := range snap.Nodes {
		if err := r.card(n, boxes[n.ID]); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Geometry
// =============================================================================

type box struct{ x, y, w, h float64 }

func nodeBox(n graph.Node) box {
	s := n.EffectiveSize()
	return box{n.Position.X, n.Position.Y, s.Width, s.Height}
}

func (r *renderer) toScreen(t export.Transform, b box) box {
	x, y := t.Apply(b.x, b.y)
	k := scaleOf(t)
	return box{x, y, b.w * k, b.h * k}
}

func (r *renderer) face(w fonts.Weight, size float64) (font.Face, error) {
	// Half-point buckets keep the cache small while zooming.
	key := faceKey{w, math.Max(1, math.Round(size*2)/2)}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	f, err := fonts.NewFace(key.weight, key.size)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	r.faces[key] = f
	return f, nil
}

// =============================================================================
// Edges
// =============================================================================

func (r *renderer) edge(e graph.Edge, src, tgt box) error {
	t := r.edgeT
	k := scaleOf(t)
	x0, y0 := t.Apply(src.x+src.w/2, src.y+src.h)
	x3, y3 := t.Apply(tgt.x+tgt.w/2, tgt.y)

	dy := math.Max(math.Abs(y3-y0)/2, 40*k)
	x1, y1 := x0, y0+dy
	x2, y2 := x3, y3-dy

	dc := r.dc
	dc.SetHexColor(r.style.Edge)
	dc.SetLineWidth(r.style.EdgeWidth * k)
	if e.Selected {
		dc.SetHexColor(r.style.SelectedBorder)
	}
	dc.MoveTo(x0, y0)
	dc.CubicTo(x1, y1, x2, y2, x3, y3)
	dc.Stroke()

	// Arrowhead pointing into the target along the final tangent.
	a := 6 * k
	ang := math.Atan2(y3-y2, x3-x2)
	dc.MoveTo(x3, y3)
	dc.LineTo(x3-a*math.Cos(ang-math.Pi/6), y3-a*math.Sin(ang-math.Pi/6))
	dc.LineTo(x3-a*math.Cos(ang+math.Pi/6), y3-a*math.Sin(ang+math.Pi/6))
	dc.ClosePath()
	dc.Fill()

	if e.Label == "" {
		return nil
	}
	mx := (x0 + 3*x1 + 3*x2 + x3) / 8
	my := (y0 + 3*y1 + 3*y2 + y3) / 8
	return r.edgeLabel(firstLine(e.Label), mx, my, k)
}

func (r *renderer) edgeLabel(text string, x, y, k float64) error {
	f, err := r.face(fonts.Regular, r.style.FontSize*k)
	if err != nil {
		return err
	}
	dc := r.dc
	dc.SetFontFace(f)
	w, h := dc.MeasureString(text)
	pad := 3 * k
	dc.SetHexColor(r.style.EdgeLabelFill)
	dc.DrawRoundedRectangle(x-w/2-pad, y-h/2-pad, w+2*pad, h+2*pad, 2*k)
	dc.Fill()
	dc.SetHexColor(r.style.Text)
	dc.DrawStringAnchored(text, x, y, 0.5, 0.35)
	return nil
}

// =============================================================================
// Cards
// =============================================================================

func (r *renderer) card(n graph.Node, b box) error {
	s := r.toScreen(r.nodeT, b)
	k := scaleOf(r.nodeT)
	st := r.style
	dc := r.dc

	radius := st.CornerRadius * k
	dc.DrawRoundedRectangle(s.x, s.y, s.w, s.h, radius)
	dc.SetHexColor(st.CardFill)
	dc.FillPreserve()
	if n.Selected {
		dc.SetHexColor(st.SelectedBorder)
		dc.SetLineWidth(2 * st.BorderWidth * k)
	} else {
		dc.SetHexColor(st.CardBorder)
		dc.SetLineWidth(st.BorderWidth * k)
	}
	dc.Stroke()

	dc.DrawRoundedRectangle(s.x, s.y, s.w, s.h, radius)
	dc.Clip()
	defer dc.ResetClip()

	pad := st.Padding * k
	inner := s.w - 2*pad
	y := s.y + pad

	title, err := r.face(fonts.Bold, st.TitleSize*k)
	if err != nil {
		return err
	}
	body, err := r.face(fonts.Regular, st.FontSize*k)
	if err != nil {
		return err
	}

	dc.SetFontFace(title)
	dc.SetHexColor(st.Text)
	dc.DrawStringAnchored(n.DisplayLabel(), s.x+pad, y, 0, 1)
	y += float64(title.Metrics().Height.Ceil()) + pad/2

	if n.Data.Uploading == graph.UploadingYes {
		r.badge("uploading", s.x+s.w-pad, s.y+pad, k)
	}

	dc.SetFontFace(body)
	dc.SetHexColor(st.Muted)
	lineH := float64(body.Metrics().Height.Ceil())
	for _, line := range []string{
		"Design  " + classText(n.Data.Design),
		"Coding  " + classText(n.Data.Coding),
	} {
		dc.DrawStringAnchored(line, s.x+pad, y, 0, 1)
		y += lineH
	}
	y += pad / 2

	if n.Data.Image != "" {
		th := int(math.Min((s.y+s.h-pad-y)/2, inner))
		if th > 0 {
			if img := r.thumb(n.Data.Image, int(inner), th); img != nil {
				dc.DrawImage(img, int(s.x+pad), int(y))
				y += float64(img.Bounds().Dy()) + pad/2
			}
		}
	}

	if n.Data.Comment != "" {
		dc.SetHexColor(st.Text)
		for _, line := range wrap(dc, n.Data.Comment, inner) {
			if y+lineH > s.y+s.h-pad {
				break
			}
			dc.DrawStringAnchored(line, s.x+pad, y, 0, 1)
			y += lineH
		}
	}
	return nil
}

func (r *renderer) badge(text string, right, top, k float64) {
	dc := r.dc
	w, h := dc.MeasureString(text)
	pad := 3 * k
	dc.SetHexColor(r.style.UploadingBadge)
	dc.DrawRoundedRectangle(right-w-2*pad, top, w+2*pad, h+2*pad, 3*k)
	dc.Fill()
	dc.SetHexColor("#ffffff")
	dc.DrawStringAnchored(text, right-pad, top+pad, 1, 1)
}

func classText(c graph.Classification) string {
	return string(c.Type) + " / " + string(c.Difficulty)
}

func wrap(dc *gg.Context, text string, width float64) []string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		if para == "" {
			out = append(out, "")
			continue
		}
		out = append(out, dc.WordWrap(para, width)...)
	}
	return out
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
