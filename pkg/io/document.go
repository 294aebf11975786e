package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DefaultFilename is the name used when saving without an explicit path.
const DefaultFilename = "graph.json"

// FormatFromPath picks the encoding from a file extension.
// ".yaml" and ".yml" select YAML; everything else is JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ParseFormat validates a format name given on the command line or in a request.
func ParseFormat(s string) (Format, error) {
	valid := map[string]bool{string(FormatJSON): true, string(FormatYAML): true}
	s = strings.ToLower(s)
	if s == "yml" {
		s = string(FormatYAML)
	}
	if err := errors.ValidateFormat(s, valid); err != nil {
		return "", err
	}
	return Format(s), nil
}

// Document is the portable on-disk form of a diagram.
// Rendering-only node state (size, selection, kind) is not persisted.
type Document struct {
	Nodes []DocumentNode     `json:"nodes" yaml:"nodes"`
	Edges []DocumentEdge     `json:"edges" yaml:"edges"`
	Rates map[string]float64 `json:"rates" yaml:"rates"`
}

// DocumentNode is a persisted node.
type DocumentNode struct {
	ID       string         `json:"id" yaml:"id"`
	Position graph.Position `json:"position" yaml:"position"`
	Data     graph.NodeData `json:"data" yaml:"data"`
}

// DocumentEdge is a persisted edge. Type is the rendering edge kind.
type DocumentEdge struct {
	ID     string    `json:"id" yaml:"id"`
	Source string    `json:"source" yaml:"source"`
	Target string    `json:"target" yaml:"target"`
	Type   string    `json:"type,omitempty" yaml:"type,omitempty"`
	Data   *EdgeData `json:"data,omitempty" yaml:"data,omitempty"`
	Label  string    `json:"label,omitempty" yaml:"label,omitempty"`
}

// EdgeData holds the edge comment.
type EdgeData struct {
	Comment string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// State is a decoded, normalized document ready to be loaded into a store.
type State struct {
	Nodes  []graph.Node
	Edges  []graph.Edge
	Rates  estimate.Rates
	Report Report
}

// Apply loads the state into s, replacing its contents and reseeding its
// identifier allocator.
func (st *State) Apply(s *graph.Store) {
	s.Load(st.Nodes, st.Edges)
}

// NewDocument projects a snapshot and rate table onto the persisted form.
// Rates are written in full, with defaults filled in for missing keys.
func NewDocument(snap graph.Snapshot, rates estimate.Rates) Document {
	doc := Document{
		Nodes: make([]DocumentNode, len(snap.Nodes)),
		Edges: make([]DocumentEdge, len(snap.Edges)),
		Rates: make(map[string]float64, len(estimate.Keys)),
	}
	for i, n := range snap.Nodes {
		doc.Nodes[i] = DocumentNode{ID: n.ID, Position: n.Position, Data: n.Data}
	}
	for i, e := range snap.Edges {
		de := DocumentEdge{ID: e.ID, Source: e.Source, Target: e.Target, Type: e.Kind, Label: e.Label}
		if e.Comment != "" {
			de.Data = &EdgeData{Comment: e.Comment}
		}
		doc.Edges[i] = de
	}
	for k, v := range rates.Clone() {
		doc.Rates[string(k)] = v
	}
	return doc
}
