package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// WriteJSON encodes a snapshot and rate table as an indented JSON document.
// The output can be read back with [ReadJSON].
func WriteJSON(w io.Writer, snap graph.Snapshot, rates estimate.Rates) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(snap, rates)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes a snapshot and rate table as a YAML document.
func WriteYAML(w io.Writer, snap graph.Snapshot, rates estimate.Rates) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(snap, rates)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes a document in the given format.
func Write(w io.Writer, snap graph.Snapshot, rates estimate.Rates, format Format) error {
	if format == FormatYAML {
		return WriteYAML(w, snap, rates)
	}
	return WriteJSON(w, snap, rates)
}

// Marshal encodes a JSON document in memory.
func Marshal(snap graph.Snapshot, rates estimate.Rates) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, snap, rates); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a JSON document to the file at path.
func ExportJSON(path string, snap graph.Snapshot, rates estimate.Rates) error {
	return exportFile(path, snap, rates, FormatJSON)
}

// Export writes a document to path, choosing the encoder by extension.
func Export(path string, snap graph.Snapshot, rates estimate.Rates) error {
	return exportFile(path, snap, rates, FormatFromPath(path))
}

func exportFile(path string, snap graph.Snapshot, rates estimate.Rates, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, snap, rates, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
