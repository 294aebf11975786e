// Package export computes the geometry for rasterizing a whole diagram.
//
// Nodes can sit anywhere on an unbounded canvas, and the interactive view is
// usually panned and zoomed. To export every node without clipping, the
// rendering [Surface] is temporarily switched into export geometry:
//
//  1. [Bounds] finds the smallest rectangle covering all node boxes
//  2. [Compute] pads it on every side and derives the translation that
//     moves the rectangle's top-left corner to (padding, padding)
//  3. [Acquire] resizes the surface, neutralizes viewport and edge-layer
//     transforms and applies the translation to the content layer
//  4. the surface is rasterized with an opaque background
//  5. [Mode.Release] restores every value captured in step 3
//
// [Capture] performs all five steps and guarantees step 5 even when the
// rasterizer returns an error or panics.
//
// Two nodes at (0,0) and (0,300), both 220x150, with padding 64 give a
// 348 x 578 frame.
package export
