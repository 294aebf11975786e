// Package graph provides the in-memory model of a work-item diagram.
//
// A diagram is a list of [Node] work items connected by directed [Edge]s.
// Each node carries a [NodeData] record: a label, a free-text comment, an
// optional embedded image, an uploading flag and two [Classification]s (one
// for design work, one for coding work) that the estimate package prices.
//
// # Store
//
// [Store] is the sole owner of the node and edge collections. Consumers get
// deep copies through [Store.Snapshot], [Store.Node] and friends, so nothing
// outside the store can break its invariants:
//
//   - node ids are unique
//   - every edge endpoint references an existing node
//   - list order is stable and significant
//
// New identifiers come from the store's [IDAllocator], which is seeded from
// the largest numeric id ever observed rather than from the node count:
//
//	s := graph.New()                 // root "1" at (0,0)
//	child, _ := s.AddChild("1")      // "2" at (0,150), edge "e1-2"
//	s.RemoveNode("2")
//	next := s.NextID()               // still "3"
//
// # Changes
//
// The rendering surface reports drags, resizes, selection and deletions as
// generic [Change] values. [Store.ApplyChanges] applies a batch in order and
// never cascades; [Store.RemoveNode] builds the full change set for a node
// and its incident edges.
//
// # Constants
//
// This package is the single source of truth for model constants:
//
//	graph.NodeKind          // "workItem"
//	graph.EdgeKindSmooth    // "smoothstep"
//	graph.ChildOffsetY      // 150
//	graph.DefaultNodeWidth  // 220
//	graph.DefaultNodeHeight // 150
package graph
