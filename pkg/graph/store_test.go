package graph

import (
	"errors"
	"slices"
	"testing"
)

func TestNew(t *testing.T) {
	s := New()

	if s.NodeCount() != 1 || s.EdgeCount() != 0 {
		t.Fatalf("counts = %d/%d, want 1/0", s.NodeCount(), s.EdgeCount())
	}
	root, ok := s.Node(RootID)
	if !ok {
		t.Fatal("root node missing")
	}
	if root.Position != (Position{}) {
		t.Errorf("root position = %+v, want origin", root.Position)
	}
	if root.Data.Label != "Node 1" {
		t.Errorf("root label = %q, want %q", root.Data.Label, "Node 1")
	}
	if root.Kind != NodeKind {
		t.Errorf("root kind = %q, want %q", root.Kind, NodeKind)
	}
	if got := s.NextID(); got != "2" {
		t.Errorf("NextID = %q, want 2", got)
	}
}

func TestAddNode(t *testing.T) {
	s := New()
	s.ApplyChanges([]Change{MoveNode("1", 100, 50)})

	n, err := s.AddNode("1", "2")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if n.Position != (Position{X: 100, Y: 200}) {
		t.Errorf("position = %+v, want (100,200)", n.Position)
	}

	want := NodeData{
		Label:     "Node 2",
		Uploading: UploadingNo,
		Design:    Classification{Type: WorkNew, Difficulty: Simple},
		Coding:    Classification{Type: WorkNew, Difficulty: Simple},
	}
	if n.Data != want {
		t.Errorf("data = %+v, want %+v", n.Data, want)
	}

	e, ok := s.Edge("e1-2")
	if !ok {
		t.Fatal("edge e1-2 missing")
	}
	if e.Source != "1" || e.Target != "2" || e.Kind != EdgeKindSmooth {
		t.Errorf("edge = %+v", e)
	}
}

func TestAddNodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		parent  string
		id      string
		wantErr error
	}{
		{"EmptyID", "1", "", ErrInvalidNodeID},
		{"DuplicateID", "1", "1", ErrDuplicateNodeID},
		{"UnknownParent", "missing", "2", ErrUnknownNode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			_, err := s.AddNode(tt.parent, tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if s.NodeCount() != 1 || s.EdgeCount() != 0 {
				t.Errorf("store changed on error: %d nodes, %d edges", s.NodeCount(), s.EdgeCount())
			}
		})
	}
}

func TestAddNodeDefaultParent(t *testing.T) {
	s := New()
	if _, err := s.AddNode("1", "2"); err != nil {
		t.Fatal(err)
	}
	n, err := s.AddNode("", "3")
	if err != nil {
		t.Fatal(err)
	}
	if n.Position.Y != 300 {
		t.Errorf("y = %v, want 300 (below last node)", n.Position.Y)
	}
	if _, ok := s.Edge("e2-3"); !ok {
		t.Error("expected edge from last node e2-3")
	}
}

func TestAddNodeEmptyStore(t *testing.T) {
	s := NewEmpty()
	n, err := s.AddNode("", "7")
	if err != nil {
		t.Fatal(err)
	}
	if n.Position != (Position{}) {
		t.Errorf("position = %+v, want origin", n.Position)
	}
	if s.EdgeCount() != 0 {
		t.Errorf("edges = %d, want 0", s.EdgeCount())
	}
	if got := s.NextID(); got != "8" {
		t.Errorf("NextID = %q, want 8", got)
	}
}

func TestAddChildSequence(t *testing.T) {
	s := New()
	var ids []string
	for range 3 {
		n, err := s.AddChild("1")
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, n.ID)
	}
	if want := []string{"2", "3", "4"}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if got := s.Children("1"); !slices.Equal(got, ids) {
		t.Errorf("Children(1) = %v, want %v", got, ids)
	}
}

func TestUpdateNodeData(t *testing.T) {
	s := New()
	data := DefaultNodeData("1")
	data.Label = "Checkout"
	data.Design = Classification{Type: WorkAdapt, Difficulty: Complex}

	if !s.UpdateNodeData("1", data) {
		t.Fatal("UpdateNodeData(1) = false")
	}
	got, _ := s.Node("1")
	if got.Data != data {
		t.Errorf("data = %+v, want %+v", got.Data, data)
	}

	if s.UpdateNodeData("nope", data) {
		t.Error("UpdateNodeData(unknown) = true")
	}
	if s.NodeCount() != 1 {
		t.Errorf("unknown update created a node")
	}
}

func TestApplyChanges(t *testing.T) {
	s := New()
	_, _ = s.AddChild("1")
	_, _ = s.AddChild("1")

	s.ApplyChanges([]Change{
		MoveNode("2", 10, 20),
		ResizeNode("2", 300, 180),
		SelectNode("3", true),
		SelectEdge("e1-2", true),
		MoveNode("ghost", 1, 1),
	})

	n2, _ := s.Node("2")
	if n2.Position != (Position{X: 10, Y: 20}) {
		t.Errorf("position = %+v", n2.Position)
	}
	if n2.Size == nil || *n2.Size != (Size{Width: 300, Height: 180}) {
		t.Errorf("size = %+v", n2.Size)
	}
	if got := s.Selected(); !slices.Equal(got, []string{"3"}) {
		t.Errorf("selected = %v", got)
	}
	if e, _ := s.Edge("e1-2"); !e.Selected {
		t.Error("edge e1-2 not selected")
	}
	if s.NodeCount() != 3 || s.EdgeCount() != 2 {
		t.Errorf("counts = %d/%d, want 3/2", s.NodeCount(), s.EdgeCount())
	}
}

func TestApplyChangesRemoveNoCascade(t *testing.T) {
	s := New()
	_, _ = s.AddChild("1")

	s.ApplyChanges([]Change{RemoveNodeChange("2")})

	if s.HasNode("2") {
		t.Error("node 2 still present")
	}
	if s.EdgeCount() != 1 {
		t.Errorf("edges = %d, want 1 (no cascade)", s.EdgeCount())
	}
}

func TestWithIncidentEdges(t *testing.T) {
	s := New()
	_, _ = s.AddChild("1") // 2, e1-2
	_, _ = s.AddChild("2") // 3, e2-3
	_, _ = s.Connect("1", "3")

	in := []Change{MoveNode("1", 5, 5), RemoveEdgeChange("e2-3"), RemoveNodeChange("2")}
	got := s.WithIncidentEdges(in)

	want := []Change{MoveNode("1", 5, 5), RemoveEdgeChange("e2-3"), RemoveEdgeChange("e1-2"), RemoveNodeChange("2")}
	if len(got) != len(want) {
		t.Fatalf("changes = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i].Type != want[i].Type || got[i].Target != want[i].Target || got[i].ID != want[i].ID {
			t.Errorf("change %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(in) != 3 {
		t.Error("input batch modified")
	}

	s.ApplyChanges(got)
	for _, e := range s.Edges() {
		if !s.HasNode(e.Source) || !s.HasNode(e.Target) {
			t.Errorf("dangling edge %+v", e)
		}
	}
	if s.EdgeCount() != 1 {
		t.Errorf("edges = %d, want 1", s.EdgeCount())
	}
}

func TestRemoveNode(t *testing.T) {
	s := New()
	_, _ = s.AddChild("1") // 2
	_, _ = s.AddChild("2") // 3
	_, _ = s.Connect("1", "3")

	changes := s.RemoveNode("2")
	if len(changes) != 3 {
		t.Fatalf("changes = %d, want 3", len(changes))
	}
	if last := changes[len(changes)-1]; last.Target != TargetNode || last.ID != "2" {
		t.Errorf("last change = %+v, want node removal", last)
	}

	snap := s.Snapshot()
	if len(snap.Nodes) != 2 || len(snap.Edges) != 1 {
		t.Fatalf("snapshot = %d nodes, %d edges", len(snap.Nodes), len(snap.Edges))
	}
	for _, e := range snap.Edges {
		if !s.HasNode(e.Source) || !s.HasNode(e.Target) {
			t.Errorf("dangling edge %+v", e)
		}
	}

	if got := s.RemoveNode("2"); got != nil {
		t.Errorf("second RemoveNode = %v, want nil", got)
	}
	if got := s.NextID(); got != "4" {
		t.Errorf("NextID after removal = %q, want 4", got)
	}
}

func TestConnect(t *testing.T) {
	s := New()
	_, _ = s.AddChild("1")
	_, _ = s.AddChild("1")

	e, ok := s.Connect("2", "3")
	if !ok || e.ID != "e2-3" {
		t.Fatalf("Connect = %+v, %v", e, ok)
	}

	dup, ok := s.Connect("2", "3")
	if !ok {
		t.Fatal("duplicate Connect rejected")
	}
	if dup.ID == e.ID {
		t.Errorf("duplicate edge reused id %q", dup.ID)
	}

	before := s.EdgeCount()
	if _, ok := s.Connect("2", "99"); ok {
		t.Error("Connect to unknown target succeeded")
	}
	if _, ok := s.Connect("99", "2"); ok {
		t.Error("Connect from unknown source succeeded")
	}
	if s.EdgeCount() != before {
		t.Errorf("edge count changed on rejected connect")
	}
}

func TestSetEdgeComment(t *testing.T) {
	s := New()
	_, _ = s.AddChild("1")

	if !s.SetEdgeComment("e1-2", "x") {
		t.Fatal("SetEdgeComment = false")
	}
	e, _ := s.Edge("e1-2")
	if e.Comment != "x" || e.Label != "x" {
		t.Errorf("edge = %+v, want comment and label x", e)
	}
	if s.SetEdgeComment("missing", "x") {
		t.Error("SetEdgeComment(unknown) = true")
	}
}

func TestLoadReseedsAllocator(t *testing.T) {
	s := New()
	s.Load([]Node{
		{ID: "1", Kind: NodeKind, Data: DefaultNodeData("1")},
		{ID: "5", Kind: NodeKind, Data: DefaultNodeData("5")},
		{ID: "9", Kind: NodeKind, Data: DefaultNodeData("9")},
	}, []Edge{{ID: "e1-5", Source: "1", Target: "5", Kind: EdgeKindSmooth}})

	n, err := s.AddChild("9")
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != "10" {
		t.Errorf("new id = %q, want 10", n.ID)
	}
}

func TestLoadEmpty(t *testing.T) {
	s := New()
	s.Load(nil, nil)
	if s.NodeCount() != 0 || s.NextID() != "1" {
		t.Errorf("after empty load: %d nodes, NextID %q", s.NodeCount(), s.NextID())
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	s.ApplyChanges([]Change{ResizeNode("1", 10, 10)})

	snap := s.Snapshot()
	snap.Nodes[0].Data.Label = "mutated"
	snap.Nodes[0].Size.Width = 999

	n, _ := s.Node("1")
	if n.Data.Label == "mutated" || n.Size.Width == 999 {
		t.Errorf("snapshot mutation leaked into store: %+v", n)
	}
}

func TestEffectiveSize(t *testing.T) {
	n := Node{ID: "1"}
	if got := n.EffectiveSize(); got != (Size{Width: 220, Height: 150}) {
		t.Errorf("default size = %+v", got)
	}
	n.Size = &Size{Width: 100, Height: 40}
	if got := n.EffectiveSize(); got != *n.Size {
		t.Errorf("measured size = %+v", got)
	}
}
