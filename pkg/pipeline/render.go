package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/graph"
	cgio "github.com/matzehuels/costgraph/pkg/io"
	"github.com/matzehuels/costgraph/pkg/render/nodelink"
	"github.com/matzehuels/costgraph/pkg/render/raster"
)

// RenderFormat renders one format from a snapshot. Options must have been
// validated.
func RenderFormat(ctx context.Context, snap graph.Snapshot, rates estimate.Rates, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatPNG:
		return renderPNG(snap, opts)
	case FormatSVG:
		nl := nodelinkOptions(opts)
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(snap, nl), nl)
	case FormatDOT:
		return []byte(nodelink.ToDOT(snap, nodelinkOptions(opts))), nil
	case FormatJSON:
		return encodeDocument(snap, rates, cgio.FormatJSON)
	case FormatYAML:
		return encodeDocument(snap, rates, cgio.FormatYAML)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
}

func renderPNG(snap graph.Snapshot, opts Options) ([]byte, error) {
	img, _, err := raster.Render(snap, opts.ExportOptions())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WritePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func nodelinkOptions(opts Options) nodelink.Options {
	return nodelink.Options{Detailed: opts.Detailed, Pinned: opts.Pinned}
}

func encodeDocument(snap graph.Snapshot, rates estimate.Rates, f cgio.Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := cgio.Write(&buf, snap, rates, f); err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// DocumentHash returns the SHA-256 of the canonical JSON document for snap
// and rates. Selection and measured sizes are not part of the document.
func DocumentHash(snap graph.Snapshot, rates estimate.Rates) (string, error) {
	data, err := cgio.Marshal(snap, rates)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// viewState is the part of a snapshot that changes rendered output but is
// not persisted.
type viewState struct {
	Sizes    map[string]graph.Size `json:"sizes,omitempty"`
	Selected []string              `json:"selected,omitempty"`
}

// ArtifactHash extends docHash with measured sizes and selection, so a
// resize or a click invalidates cached renders.
func ArtifactHash(docHash string, snap graph.Snapshot) string {
	var v viewState
	for _, n := range snap.Nodes {
		if n.Size != nil {
			if v.Sizes == nil {
				v.Sizes = make(map[string]graph.Size)
			}
			v.Sizes[n.ID] = *n.Size
		}
		if n.Selected {
			v.Selected = append(v.Selected, "n:"+n.ID)
		}
	}
	for _, e := range snap.Edges {
		if e.Selected {
			v.Selected = append(v.Selected, "e:"+e.ID)
		}
	}
	data, _ := json.Marshal(v)
	return cache.Hash(append([]byte(docHash+"\n"), data...))
}
