package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Store.AddNode] when the new node ID is
	// empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Store.AddNode] when a node with the
	// same ID already exists in the store.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Store.AddNode] when the requested parent
	// does not exist.
	ErrUnknownNode = errors.New("unknown node")
)

// Store owns the node and edge collections of one diagram.
//
// List order is significant: it is the order the rendering surface draws in
// and the order documents are written in. Every edge endpoint references an
// existing node after any public operation completes, with one exception:
// [Store.ApplyChanges] does not cascade removals, so a batch that removes a
// node must also remove its edges. [Store.WithIncidentEdges] completes such
// a batch.
//
// The zero value is not usable - use [New] or [NewEmpty].
// Store is not safe for concurrent use without external synchronization.
type Store struct {
	nodes []Node
	edges []Edge
	ids   *IDAllocator
}

// New creates a store seeded with a single root node "1" at (0,0).
func New() *Store {
	s := NewEmpty()
	root := newNode(RootID, Position{})
	s.nodes = append(s.nodes, root)
	s.ids.Observe(RootID)
	return s
}

// NewEmpty creates a store with no nodes or edges.
func NewEmpty() *Store {
	return &Store{ids: NewIDAllocator()}
}

func newNode(id string, pos Position) Node {
	return Node{
		ID:       id,
		Kind:     NodeKind,
		Position: pos,
		Data:     DefaultNodeData(id),
	}
}

// =============================================================================
// Mutations
// =============================================================================

// AddNode appends a node with default data one row below its parent and
// connects parent to child.
//
// An empty parentID selects the last node in list order. When the store is
// empty the new node becomes a root at (0,0) and no edge is created.
func (s *Store) AddNode(parentID, newID string) (Node, error) {
	if newID == "" {
		return Node{}, ErrInvalidNodeID
	}
	if s.indexOfNode(newID) >= 0 {
		return Node{}, fmt.Errorf("%w: %s", ErrDuplicateNodeID, newID)
	}

	if len(s.nodes) == 0 {
		n := newNode(newID, Position{})
		s.nodes = append(s.nodes, n)
		s.ids.Observe(newID)
		return cloneNode(n), nil
	}

	pi := len(s.nodes) - 1
	if parentID != "" {
		if pi = s.indexOfNode(parentID); pi < 0 {
			return Node{}, fmt.Errorf("%w: %s", ErrUnknownNode, parentID)
		}
	}
	parent := s.nodes[pi]

	n := newNode(newID, Position{X: parent.Position.X, Y: parent.Position.Y + ChildOffsetY})
	s.nodes = append(s.nodes, n)
	s.ids.Observe(newID)
	s.edges = append(s.edges, Edge{
		ID:     s.edgeID(parent.ID, newID),
		Source: parent.ID,
		Target: newID,
		Kind:   EdgeKindSmooth,
	})
	return cloneNode(n), nil
}

// AddChild is AddNode with an identifier taken from the store's allocator.
func (s *Store) AddChild(parentID string) (Node, error) {
	return s.AddNode(parentID, s.ids.Next())
}

// UpdateNodeData replaces the data record of node id.
// It returns false and changes nothing when id is unknown.
func (s *Store) UpdateNodeData(id string, data NodeData) bool {
	i := s.indexOfNode(id)
	if i < 0 {
		return false
	}
	s.nodes[i].Data = data
	return true
}

// ApplyChanges applies a batch of surface-originated changes in order.
//
// Changes never create elements and removals do not cascade: removing a node
// leaves its edges in place unless the batch removes them too. Use
// [Store.RemoveNode] to delete a node together with its incident edges, or
// pass the batch through [Store.WithIncidentEdges] first.
// Changes referencing unknown ids are skipped.
func (s *Store) ApplyChanges(changes []Change) {
	for _, c := range changes {
		switch c.Target {
		case TargetEdge:
			i := s.indexOfEdge(c.ID)
			if i < 0 {
				continue
			}
			if c.Type == ChangeRemove {
				s.edges = slices.Delete(s.edges, i, i+1)
				continue
			}
			applyEdgeChange(&s.edges[i], c)
		default:
			i := s.indexOfNode(c.ID)
			if i < 0 {
				continue
			}
			if c.Type == ChangeRemove {
				s.nodes = slices.Delete(s.nodes, i, i+1)
				continue
			}
			applyNodeChange(&s.nodes[i], c)
		}
	}
}

// RemoveNode deletes node id and every edge touching it, returning the
// change set that was applied. Unknown ids yield a nil change set.
func (s *Store) RemoveNode(id string) []Change {
	if s.indexOfNode(id) < 0 {
		return nil
	}
	changes := s.WithIncidentEdges([]Change{RemoveNodeChange(id)})
	s.ApplyChanges(changes)
	return changes
}

// WithIncidentEdges returns changes with a remove change inserted before
// every node removal for each edge touching that node. Edges the batch
// already removes are not repeated. The input slice is not modified.
func (s *Store) WithIncidentEdges(changes []Change) []Change {
	removed := make(map[string]bool)
	for _, c := range changes {
		if c.Type == ChangeRemove && c.Target == TargetEdge {
			removed[c.ID] = true
		}
	}
	out := make([]Change, 0, len(changes))
	for _, c := range changes {
		if c.Type == ChangeRemove && c.Target != TargetEdge {
			for _, e := range s.edges {
				if (e.Source == c.ID || e.Target == c.ID) && !removed[e.ID] {
					out = append(out, RemoveEdgeChange(e.ID))
					removed[e.ID] = true
				}
			}
		}
		out = append(out, c)
	}
	return out
}

// Connect appends an edge from sourceID to targetID.
// Both endpoints must exist; otherwise nothing changes and ok is false.
// Parallel edges are permitted and receive a distinct id.
func (s *Store) Connect(sourceID, targetID string) (e Edge, ok bool) {
	if s.indexOfNode(sourceID) < 0 || s.indexOfNode(targetID) < 0 {
		return Edge{}, false
	}
	e = Edge{
		ID:     s.edgeID(sourceID, targetID),
		Source: sourceID,
		Target: targetID,
		Kind:   EdgeKindSmooth,
	}
	s.edges = append(s.edges, e)
	return e, true
}

// SetEdgeComment sets both the comment and the visible label of edge id.
func (s *Store) SetEdgeComment(edgeID, text string) bool {
	i := s.indexOfEdge(edgeID)
	if i < 0 {
		return false
	}
	s.edges[i].Comment = text
	s.edges[i].Label = text
	return true
}

// Load replaces both collections and reseeds the id allocator from the
// largest numeric id present. Callers are responsible for referential
// integrity; the persistence codec guarantees it for decoded documents.
func (s *Store) Load(nodes []Node, edges []Edge) {
	s.nodes = make([]Node, len(nodes))
	for i, n := range nodes {
		s.nodes[i] = cloneNode(n)
	}
	s.edges = slices.Clone(edges)

	ids := make([]string, len(s.nodes))
	for i, n := range s.nodes {
		ids[i] = n.ID
	}
	s.ids.Reseed(ids)
}

// =============================================================================
// Reads
// =============================================================================

// Snapshot returns a deep copy of the store contents.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Nodes: s.Nodes(), Edges: s.Edges()}
}

// Nodes returns a copy of the node list in list order.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = cloneNode(n)
	}
	return out
}

// Edges returns a copy of the edge list in list order.
func (s *Store) Edges() []Edge {
	return slices.Clone(s.edges)
}

// Node returns a copy of node id.
func (s *Store) Node(id string) (Node, bool) {
	i := s.indexOfNode(id)
	if i < 0 {
		return Node{}, false
	}
	return cloneNode(s.nodes[i]), true
}

// HasNode reports whether node id exists.
func (s *Store) HasNode(id string) bool { return s.indexOfNode(id) >= 0 }

// Edge returns a copy of edge id.
func (s *Store) Edge(id string) (Edge, bool) {
	i := s.indexOfEdge(id)
	if i < 0 {
		return Edge{}, false
	}
	return s.edges[i], true
}

// LastNode returns the last node in list order.
func (s *Store) LastNode() (Node, bool) {
	if len(s.nodes) == 0 {
		return Node{}, false
	}
	return cloneNode(s.nodes[len(s.nodes)-1]), true
}

// Children returns the targets of edges leaving id, in edge order.
func (s *Store) Children(id string) []string {
	var out []string
	for _, e := range s.edges {
		if e.Source == id {
			out = append(out, e.Target)
		}
	}
	return out
}

// Selected returns the ids of selected nodes in list order.
func (s *Store) Selected() []string {
	var out []string
	for _, n := range s.nodes {
		if n.Selected {
			out = append(out, n.ID)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (s *Store) NodeCount() int { return len(s.nodes) }

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int { return len(s.edges) }

// NextID returns the id the next AddChild call will use.
func (s *Store) NextID() string { return s.ids.Peek() }

// =============================================================================
// Internal Helpers
// =============================================================================

func (s *Store) indexOfNode(id string) int {
	return slices.IndexFunc(s.nodes, func(n Node) bool { return n.ID == id })
}

func (s *Store) indexOfEdge(id string) int {
	return slices.IndexFunc(s.edges, func(e Edge) bool { return e.ID == id })
}

// edgeID derives "e<src>-<tgt>", suffixed with "-<n>" when already taken.
func (s *Store) edgeID(src, tgt string) string {
	return UniqueEdgeID(src, tgt, func(id string) bool { return s.indexOfEdge(id) >= 0 })
}

// EdgeID is the base identifier for an edge from src to tgt.
func EdgeID(src, tgt string) string {
	return "e" + src + "-" + tgt
}

// UniqueEdgeID returns EdgeID(src, tgt), or the first "-<n>" suffixed variant
// for which taken reports false.
func UniqueEdgeID(src, tgt string, taken func(string) bool) string {
	base := EdgeID(src, tgt)
	if !taken(base) {
		return base
	}
	for n := 2; ; n++ {
		id := fmt.Sprintf("%s-%d", base, n)
		if !taken(id) {
			return id
		}
	}
}
