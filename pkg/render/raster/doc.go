// Package raster draws work-item diagrams into images.
//
// [Canvas] is an in-memory rendering surface built on github.com/fogleman/gg.
// It holds a graph snapshot plus the view state an interactive editor has
// (surface size, pan/zoom and layer transforms) and implements
// export.Surface, so exports go through the same scoped export mode as any
// other surface:
//
//	c := raster.NewCanvas(store.Snapshot())
//	c.FitView(32)
//	view, _ := c.Rasterize(1280, 800, color.White)   // what the user sees
//	img, frame, _ := export.Capture(c, snap.Nodes, export.Options{})
//
// Cards show the label, both classifications, an uploading badge, an image
// thumbnail and the wrapped comment. Edges are drawn as vertical cubic
// curves from the bottom of the source card to the top of the target card.
package raster
