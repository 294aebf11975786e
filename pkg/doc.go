// Package pkg provides the core libraries for costgraph project estimation.
//
// # Overview
//
// Costgraph keeps a diagram of work items (nodes) joined by directed
// connections (edges). Every work item classifies its design and its coding
// work by type (new or adapt) and difficulty (simple, medium or complex). A
// rate table prices each difficulty, and the summary engine turns the
// diagram into cost tables.
//
// The pkg directory is organized by concern:
//
//  1. [graph] - the node and edge store, identifier allocation, change sets
//  2. [estimate] - rate tables and the three summary tables
//  3. [io] - JSON and YAML documents, with repair of damaged input
//  4. [controller] - the single owner of a diagram: selection, edit
//     dialogs, image decoding, save, load and export
//  5. [export] - viewport geometry for fitting a diagram into a picture
//  6. [render] - raster and Graphviz renderers
//  7. [pipeline] - cached multi-format export
//
// Supporting packages: [cache], [errors], [imagedata], [fonts],
// [httputil], [observability] and [buildinfo].
//
// # Data Flow
//
//	JSON/YAML document
//	         ↓
//	    [io] (decode + repair)
//	         ↓
//	    [controller] → [graph] store
//	         ↓
//	    [estimate] (summary)     [pipeline] → [render] → PNG/SVG/DOT
//
// # Quick Start
//
//	ctrl := controller.New(logger)
//	if _, err := ctrl.Load(ctx, f, io.FormatJSON); err != nil {
//	    return err
//	}
//	n, _ := ctrl.AddChild()
//	est := ctrl.Summary()
//	fmt.Println(est.New.Total + est.Adapt.Total)
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/graph
// [estimate]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/estimate
// [io]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/io
// [controller]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/controller
// [export]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/export
// [render]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/errors
// [imagedata]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/imagedata
// [fonts]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/fonts
// [httputil]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/costgraph/pkg/buildinfo
package pkg
