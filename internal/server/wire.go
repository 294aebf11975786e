package server

import (
	"github.com/matzehuels/costgraph/pkg/controller"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/graph"
	cgio "github.com/matzehuels/costgraph/pkg/io"
)

// surfaceNode is a node as the rendering surface consumes it.
type surfaceNode struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position graph.Position `json:"position"`
	Measured *graph.Size    `json:"measured,omitempty"`
	Selected bool           `json:"selected,omitempty"`
	Data     graph.NodeData `json:"data"`
}

type surfaceEdge struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Type     string         `json:"type"`
	Label    string         `json:"label,omitempty"`
	Data     *cgio.EdgeData `json:"data,omitempty"`
	Selected bool           `json:"selected,omitempty"`
}

type graphResponse struct {
	Nodes    []surfaceNode `json:"nodes"`
	Edges    []surfaceEdge `json:"edges"`
	Selected string        `json:"selected,omitempty"`
	NextID   string        `json:"next_id"`
}

func toSurfaceNode(n graph.Node) surfaceNode {
	return surfaceNode{
		ID:       n.ID,
		Type:     n.Kind,
		Position: n.Position,
		Measured: n.Size,
		Selected: n.Selected,
		Data:     n.Data,
	}
}

func toSurfaceEdge(e graph.Edge) surfaceEdge {
	se := surfaceEdge{
		ID:       e.ID,
		Source:   e.Source,
		Target:   e.Target,
		Type:     e.Kind,
		Label:    e.Label,
		Selected: e.Selected,
	}
	if e.Comment != "" {
		se.Data = &cgio.EdgeData{Comment: e.Comment}
	}
	return se
}

func toGraphResponse(snap graph.Snapshot, selected, nextID string) graphResponse {
	resp := graphResponse{
		Nodes:    make([]surfaceNode, len(snap.Nodes)),
		Edges:    make([]surfaceEdge, len(snap.Edges)),
		Selected: selected,
		NextID:   nextID,
	}
	for i, n := range snap.Nodes {
		resp.Nodes[i] = toSurfaceNode(n)
	}
	for i, e := range snap.Edges {
		resp.Edges[i] = toSurfaceEdge(e)
	}
	return resp
}

type changesRequest struct {
	Changes []graph.Change `json:"changes"`
}

type connectRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

type fieldRequest struct {
	Value string `json:"value"`
}

type rateRequest struct {
	Rate float64 `json:"rate"`
}

type dialogResponse struct {
	Open   bool               `json:"open"`
	Dialog *controller.Dialog `json:"dialog,omitempty"`
}

type imageResponse struct {
	Applied bool   `json:"applied"`
	NodeID  string `json:"node_id"`
}

type loadResponse struct {
	Nodes    int      `json:"nodes"`
	Edges    int      `json:"edges"`
	Warnings []string `json:"warnings,omitempty"`
}

type ratesResponse struct {
	Rates map[estimate.WorkKey]float64 `json:"rates"`
	Order []estimate.WorkKey           `json:"order"`
}

// viewport is the live canvas state the client pans and zooms.
type viewport struct {
	Width     float64          `json:"width"`
	Height    float64          `json:"height"`
	Transform export.Transform `json:"transform"`
}
