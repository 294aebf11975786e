// Package io reads and writes costgraph documents.
//
// # Overview
//
// A document is the portable form of a diagram: its nodes, its edges and
// the rate table used to price them. Documents are plain JSON (or YAML, by
// file extension) so they can be versioned, diffed and produced by other
// tools.
//
// # Format
//
//	{
//	  "nodes": [
//	    {
//	      "id": "1",
//	      "position": {"x": 0, "y": 0},
//	      "data": {
//	        "label": "Node 1",
//	        "comment": "",
//	        "uploading": "no",
//	        "design": {"type": "new", "difficulty": "simple"},
//	        "coding": {"type": "new", "difficulty": "simple"}
//	      }
//	    }
//	  ],
//	  "edges": [
//	    {"id": "e1-2", "source": "1", "target": "2", "type": "smoothstep",
//	     "data": {"comment": "x"}, "label": "x"}
//	  ],
//	  "rates": {"Design-simple": 100, "Coding-simple": 150}
//	}
//
// There is no version field. Absent fields are defaults, not errors.
//
// # Normalization
//
// Every decoded document passes through a single normalization step that:
//
//   - fills missing rate keys with the built-in defaults
//   - drops unknown rate keys and replaces negative rates
//   - defaults empty labels, uploading flags and classifications
//   - tags every node with the work-item kind marker
//   - defaults missing edge kinds to smoothstep
//   - drops edges whose source or target is not a loaded node
//
// Repairs are collected in the state's [Report]. Only unreadable input, a
// node without id or a duplicate node id fail the load, with code
// MALFORMED_DOCUMENT.
//
// # Loading
//
// Decoding never touches a store. Apply a decoded [State] explicitly:
//
//	st, err := io.Import("estimate.json")
//	if err != nil {
//	    return err // the current diagram is unchanged
//	}
//	st.Apply(store) // replaces nodes and edges, reseeds ids
//
// # Saving
//
//	err := io.Export("estimate.yaml", store.Snapshot(), rates)
//
// Rendering-only node state (measured size, selection) is not written.
package io
