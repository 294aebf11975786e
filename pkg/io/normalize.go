package io

import (
	"fmt"
	"slices"

	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// Report lists what normalization had to repair while loading a document.
// None of these entries fail the load.
type Report struct {
	// DanglingEdges are edges dropped because an endpoint is not a loaded node.
	DanglingEdges []*errors.DanglingEdgeError
	// DefaultedRates are rate keys absent from the document.
	DefaultedRates []estimate.WorkKey
	// InvalidRates are rate keys present with a negative or non-finite value,
	// replaced by defaults.
	InvalidRates []estimate.WorkKey
	// UnknownRates are rate keys outside the fixed set, dropped.
	UnknownRates []string
	// RenamedEdges maps re-derived edge ids to the duplicate id they replaced.
	RenamedEdges map[string]string
}

// Clean reports whether nothing had to be repaired beyond defaulting rates.
func (r Report) Clean() bool {
	return len(r.DanglingEdges) == 0 && len(r.InvalidRates) == 0 &&
		len(r.UnknownRates) == 0 && len(r.RenamedEdges) == 0
}

// Warnings renders the report as human-readable lines.
// Defaulted rates are not warnings and are omitted.
func (r Report) Warnings() []string {
	var out []string
	for _, d := range r.DanglingEdges {
		out = append(out, "dropped "+d.Error())
	}
	for _, k := range r.InvalidRates {
		out = append(out, fmt.Sprintf("rate %s is negative or not finite, using default %v", k, estimate.DefaultRate(k)))
	}
	for _, k := range r.UnknownRates {
		out = append(out, fmt.Sprintf("ignored unknown rate key %q", k))
	}
	for id, was := range r.RenamedEdges {
		out = append(out, fmt.Sprintf("edge %q renamed to %s", was, id))
	}
	slices.Sort(out[len(out)-len(r.RenamedEdges):])
	return out
}

// normalize turns a partially populated document into a fully populated
// state. It is the only place defaults are substituted on load.
//
// A node without an id or a repeated node id makes the document malformed.
// Everything else is repaired and recorded in the report.
func normalize(doc *Document) (*State, error) {
	st := &State{
		Nodes: make([]graph.Node, 0, len(doc.Nodes)),
		Edges: make([]graph.Edge, 0, len(doc.Edges)),
	}

	seen := make(map[string]bool, len(doc.Nodes))
	for i, dn := range doc.Nodes {
		if dn.ID == "" {
			return nil, errors.New(errors.ErrCodeMalformedDocument, "node %d has no id", i)
		}
		if seen[dn.ID] {
			return nil, errors.New(errors.ErrCodeMalformedDocument, "duplicate node id %q", dn.ID)
		}
		seen[dn.ID] = true
		st.Nodes = append(st.Nodes, graph.Node{
			ID:       dn.ID,
			Kind:     graph.NodeKind,
			Position: dn.Position,
			Data:     normalizeNodeData(dn.ID, dn.Data),
		})
	}

	edgeIDs := make(map[string]bool, len(doc.Edges))
	taken := func(id string) bool { return edgeIDs[id] }
	for _, de := range doc.Edges {
		if missing, ok := danglingEndpoint(seen, de); ok {
			st.Report.DanglingEdges = append(st.Report.DanglingEdges, &errors.DanglingEdgeError{
				EdgeID:  de.ID,
				Source:  de.Source,
				Target:  de.Target,
				Missing: missing,
			})
			continue
		}

		id := de.ID
		if id == "" || edgeIDs[id] {
			id = graph.UniqueEdgeID(de.Source, de.Target, taken)
			if de.ID != "" {
				if st.Report.RenamedEdges == nil {
					st.Report.RenamedEdges = make(map[string]string)
				}
				st.Report.RenamedEdges[id] = de.ID
			}
		}
		edgeIDs[id] = true

		e := graph.Edge{
			ID:     id,
			Source: de.Source,
			Target: de.Target,
			Kind:   de.Type,
			Label:  de.Label,
		}
		if e.Kind == "" {
			e.Kind = graph.EdgeKindSmooth
		}
		if de.Data != nil {
			e.Comment = de.Data.Comment
		}
		st.Edges = append(st.Edges, e)
	}

	st.Rates = normalizeRates(doc.Rates, &st.Report)
	return st, nil
}

func danglingEndpoint(nodes map[string]bool, de DocumentEdge) (string, bool) {
	if !nodes[de.Source] {
		return de.Source, true
	}
	if !nodes[de.Target] {
		return de.Target, true
	}
	return "", false
}

func normalizeNodeData(id string, d graph.NodeData) graph.NodeData {
	if d.Label == "" {
		d.Label = graph.DefaultLabel(id)
	}
	if !d.Uploading.Valid() {
		d.Uploading = graph.UploadingNo
	}
	d.Design = normalizeClassification(d.Design)
	d.Coding = normalizeClassification(d.Coding)
	return d
}

func normalizeClassification(c graph.Classification) graph.Classification {
	def := graph.DefaultClassification()
	if !c.Type.Valid() {
		c.Type = def.Type
	}
	if !c.Difficulty.Valid() {
		c.Difficulty = def.Difficulty
	}
	return c
}

func normalizeRates(in map[string]float64, rep *Report) estimate.Rates {
	out := estimate.DefaultRates()
	for _, k := range estimate.Keys {
		v, ok := in[string(k)]
		switch {
		case !ok:
			rep.DefaultedRates = append(rep.DefaultedRates, k)
		case !estimate.ValidRate(v):
			rep.InvalidRates = append(rep.InvalidRates, k)
		default:
			out[k] = v
		}
	}
	for k := range in {
		if !estimate.WorkKey(k).Valid() {
			rep.UnknownRates = append(rep.UnknownRates, k)
		}
	}
	slices.Sort(rep.UnknownRates)
	return out
}
