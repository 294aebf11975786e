package graph

// ChangeType names a surface-originated mutation.
type ChangeType string

const (
	ChangePosition   ChangeType = "position"
	ChangeDimensions ChangeType = "dimensions"
	ChangeSelect     ChangeType = "select"
	ChangeRemove     ChangeType = "remove"
)

// Valid reports whether t is a known change type.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangePosition, ChangeDimensions, ChangeSelect, ChangeRemove:
		return true
	}
	return false
}

// Target says whether a change applies to a node or an edge.
type Target string

const (
	TargetNode Target = "node"
	TargetEdge Target = "edge"
)

// Change is one generic mutation reported by the rendering surface after the
// user drags, resizes, selects or deletes something.
//
// Only the field matching Type is read: Position for position changes,
// Size for dimensions, Selected for select. Remove carries no payload.
type Change struct {
	Type     ChangeType `json:"type"`
	Target   Target     `json:"target"`
	ID       string     `json:"id"`
	Position *Position  `json:"position,omitempty"`
	Size     *Size      `json:"dimensions,omitempty"`
	Selected bool       `json:"selected,omitempty"`
}

// MoveNode builds a position change for node id.
func MoveNode(id string, x, y float64) Change {
	return Change{Type: ChangePosition, Target: TargetNode, ID: id, Position: &Position{X: x, Y: y}}
}

// ResizeNode builds a dimensions change for node id.
func ResizeNode(id string, w, h float64) Change {
	return Change{Type: ChangeDimensions, Target: TargetNode, ID: id, Size: &Size{Width: w, Height: h}}
}

// SelectNode builds a select change for node id.
func SelectNode(id string, selected bool) Change {
	return Change{Type: ChangeSelect, Target: TargetNode, ID: id, Selected: selected}
}

// SelectEdge builds a select change for edge id.
func SelectEdge(id string, selected bool) Change {
	return Change{Type: ChangeSelect, Target: TargetEdge, ID: id, Selected: selected}
}

// RemoveNodeChange builds a remove change for node id.
func RemoveNodeChange(id string) Change {
	return Change{Type: ChangeRemove, Target: TargetNode, ID: id}
}

// RemoveEdgeChange builds a remove change for edge id.
func RemoveEdgeChange(id string) Change {
	return Change{Type: ChangeRemove, Target: TargetEdge, ID: id}
}

func applyNodeChange(n *Node, c Change) {
	switch c.Type {
	case ChangePosition:
		if c.Position != nil {
			n.Position = *c.Position
		}
	case ChangeDimensions:
		if c.Size != nil {
			s := *c.Size
			n.Size = &s
		}
	case ChangeSelect:
		n.Selected = c.Selected
	}
}

func applyEdgeChange(e *Edge, c Change) {
	if c.Type == ChangeSelect {
		e.Selected = c.Selected
	}
}
