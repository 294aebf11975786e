// Package nodelink renders work-item diagrams as Graphviz node-link drawings.
//
// # Overview
//
// The raster package draws a diagram exactly as it sits on the canvas. This
// package instead hands it to Graphviz, which is useful for documentation:
// the DOT source can be diffed and post-processed, and dot's layered layout
// tidies up a hand-arranged diagram.
//
// # Usage
//
//	dot := nodelink.ToDOT(store.Snapshot(), nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot, nodelink.Options{})
//	png, err := nodelink.RenderPNG(ctx, dot, nodelink.Options{})
//
// # Options
//
//   - Detailed: node labels include both classifications, the uploading
//     flag and the comment
//   - Pinned: nodes keep their canvas positions (rendered with neato)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering;
// no Graphviz installation is required.
package nodelink
