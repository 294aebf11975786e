package io

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/costgraph/pkg/errors"
)

// ReadJSON decodes a JSON document from r and normalizes it.
//
// The input must be a single JSON object. Absent fields take their defaults:
//
//	{
//	  "nodes": [{"id": "1", "position": {"x": 0, "y": 0}, "data": {...}}],
//	  "edges": [{"id": "e1-2", "source": "1", "target": "2"}],
//	  "rates": {"Design-simple": 100}
//	}
//
// ReadJSON returns an error with code MALFORMED_DOCUMENT if:
//   - The input is not valid JSON, or is followed by trailing data
//   - The top level is not an object, or a field has the wrong shape
//   - A node has no id, or two nodes share an id
//
// Edges that reference unknown nodes are dropped and listed in the returned
// state's Report. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*State, error) {
	dec := json.NewDecoder(r)
	var doc *Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "decode json")
	}
	if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "unexpected data after document")
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "document is null")
	}
	return normalize(doc)
}

// ReadYAML decodes a YAML document from r and normalizes it.
// It follows the same rules as [ReadJSON].
func ReadYAML(r io.Reader) (*State, error) {
	var doc *Document
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil, errors.New(errors.ErrCodeMalformedDocument, "document is empty")
		}
		return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "decode yaml")
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "document is null")
	}
	var extra any
	if err := dec.Decode(&extra); !stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.ErrCodeMalformedDocument, "trailing data after document")
	}
	return normalize(doc)
}

// Read decodes a document in the given format.
func Read(r io.Reader, format Format) (*State, error) {
	if format == FormatYAML {
		return ReadYAML(r)
	}
	return ReadJSON(r)
}

// Unmarshal decodes a JSON document held in memory.
func Unmarshal(data []byte) (*State, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON document from the file at path.
func ImportJSON(path string) (*State, error) {
	return importFile(path, FormatJSON)
}

// Import reads a document from path, choosing the decoder by extension.
//
// A missing file yields an error with code FILE_NOT_FOUND. Decoding errors
// are returned as from [ReadJSON] or [ReadYAML], wrapped with the path.
func Import(path string) (*State, error) {
	return importFile(path, FormatFromPath(path))
}

func importFile(path string, format Format) (*State, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}
