package graph

import "fmt"

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// NodeKind is the kind marker the rendering surface uses to pick the work-item
// card component. Every node in a store carries it.
const NodeKind = "workItem"

// EdgeKindSmooth is the default edge kind: a smooth curved connector.
// Edge kinds are rendering hints only.
const EdgeKindSmooth = "smoothstep"

// ChildOffsetY is the vertical distance between a parent and a newly added child.
const ChildOffsetY = 150.0

// Default rendered node dimensions, used until the surface reports real ones.
const (
	DefaultNodeWidth  = 220.0
	DefaultNodeHeight = 150.0
)

// RootID is the identifier of the node a fresh store is seeded with.
const RootID = "1"

// WorkType classifies whether a piece of work is built from scratch or adapted.
type WorkType string

const (
	WorkNew   WorkType = "new"
	WorkAdapt WorkType = "adapt"
)

// WorkTypes lists the valid work types in declaration order.
var WorkTypes = []WorkType{WorkNew, WorkAdapt}

// Valid reports whether t is one of the declared work types.
func (t WorkType) Valid() bool { return t == WorkNew || t == WorkAdapt }

// Difficulty grades a piece of work.
type Difficulty string

const (
	Simple  Difficulty = "simple"
	Medium  Difficulty = "medium"
	Complex Difficulty = "complex"
)

// Difficulties lists the valid difficulties in declaration order.
var Difficulties = []Difficulty{Simple, Medium, Complex}

// Valid reports whether d is one of the declared difficulties.
func (d Difficulty) Valid() bool { return d == Simple || d == Medium || d == Complex }

// Uploading is a yes/no flag marking nodes whose work includes uploading content.
type Uploading string

const (
	UploadingYes Uploading = "yes"
	UploadingNo  Uploading = "no"
)

// Valid reports whether u is "yes" or "no".
func (u Uploading) Valid() bool { return u == UploadingYes || u == UploadingNo }

// =============================================================================
// Node - Work Item
// =============================================================================

// Position is a point on the diagram canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is the rendered size of a node as reported by the rendering surface.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Classification pairs a work type with a difficulty.
type Classification struct {
	Type       WorkType   `json:"type" yaml:"type"`
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`
}

// DefaultClassification is {new, simple}.
func DefaultClassification() Classification {
	return Classification{Type: WorkNew, Difficulty: Simple}
}

// NodeData is the editable record attached to every node.
type NodeData struct {
	Label     string         `json:"label" yaml:"label"`
	Comment   string         `json:"comment" yaml:"comment"`
	Image     string         `json:"image,omitempty" yaml:"image,omitempty"` // data URI, empty when unset
	Uploading Uploading      `json:"uploading" yaml:"uploading"`
	Design    Classification `json:"design" yaml:"design"`
	Coding    Classification `json:"coding" yaml:"coding"`
}

// DefaultNodeData returns the data a freshly created node starts with.
func DefaultNodeData(id string) NodeData {
	return NodeData{
		Label:     DefaultLabel(id),
		Uploading: UploadingNo,
		Design:    DefaultClassification(),
		Coding:    DefaultClassification(),
	}
}

// DefaultLabel is the generated display name for node id.
func DefaultLabel(id string) string {
	return fmt.Sprintf("Node %s", id)
}

// Node is a work item on the canvas.
type Node struct {
	ID       string
	Kind     string
	Position Position
	Size     *Size // nil until the rendering surface measures the node
	Selected bool
	Data     NodeData
}

// EffectiveSize returns the measured size or the default card size.
func (n Node) EffectiveSize() Size {
	if n.Size != nil && n.Size.Width > 0 && n.Size.Height > 0 {
		return *n.Size
	}
	return Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight}
}

// DisplayLabel returns the label if set, otherwise the generated name.
func (n Node) DisplayLabel() string {
	if n.Data.Label != "" {
		return n.Data.Label
	}
	return DefaultLabel(n.ID)
}

// =============================================================================
// Edge - Directed Connection
// =============================================================================

// Edge is a directed connection between two nodes.
type Edge struct {
	ID       string
	Source   string
	Target   string
	Kind     string
	Comment  string
	Label    string
	Selected bool
}

// Snapshot is a read-only copy of the store contents.
// Mutating a snapshot never affects the store it came from.
type Snapshot struct {
	Nodes []Node
	Edges []Edge
}

func cloneNode(n Node) Node {
	if n.Size != nil {
		s := *n.Size
		n.Size = &s
	}
	return n
}
