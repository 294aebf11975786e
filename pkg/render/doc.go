// Package render turns work-item diagrams into pictures.
//
// # Overview
//
// Two renderers are provided:
//
//   - [raster]: draws the diagram as it sits on the canvas, card by card,
//     into an image. Its Canvas is the rendering surface raster exports go
//     through.
//   - [nodelink]: converts the diagram to Graphviz DOT and renders SVG or
//     PNG in-process, either with dot's layered layout or pinned to canvas
//     positions.
//
//	img, frame, err := raster.Render(snap, export.Options{})
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(snap, opts), opts)
//
// [raster]: github.com/matzehuels/costgraph/pkg/render/raster
// [nodelink]: github.com/matzehuels/costgraph/pkg/render/nodelink
package render
