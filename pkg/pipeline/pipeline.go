// Package pipeline exports a diagram to several formats in one call.
//
// The [Runner] serializes the diagram and rates to a canonical document,
// hashes it, and looks every requested format up in the artifact cache.
// Formats that miss are rendered concurrently, each from its own snapshot
// and on its own surface, then written back to the cache.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, snap, rates, pipeline.Options{
//	    Formats: []string{"png", "svg"},
//	})
//	png := res.Artifacts["png"]
//
// The CLI export command, the HTTP bridge and the TUI all go through the
// same Runner so they produce identical bytes for the same diagram.
package pipeline

import (
	"image/color"
	"io"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/graph"
)

// =============================================================================
// Default Values
// =============================================================================

// Format constants for output formats.
const (
	FormatPNG  = "png"  // raster capture of the canvas
	FormatSVG  = "svg"  // Graphviz node-link diagram
	FormatDOT  = "dot"  // Graphviz source
	FormatJSON = "json" // persisted document
	FormatYAML = "yaml" // persisted document, YAML variant
)

// DefaultBackground is the export background color.
const DefaultBackground = "#ffffff"

// MaxScale is the largest accepted raster scale.
const MaxScale = 8.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatJSON: true,
	FormatYAML: true,
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string { return "." + format }

// =============================================================================
// Options
// =============================================================================

// Options configures an export run.
type Options struct {
	Formats    []string `json:"formats,omitempty"`
	Padding    float64  `json:"padding,omitempty"`    // PNG margin; 0 means export.DefaultPadding
	Scale      float64  `json:"scale,omitempty"`      // PNG pixels per canvas unit; 0 means 1
	Background string   `json:"background,omitempty"` // PNG background, hex
	NodeWidth  float64  `json:"node_width,omitempty"` // size assumed for unmeasured nodes
	NodeHeight float64  `json:"node_height,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"` // SVG/DOT labels include classifications
	Pinned     bool     `json:"pinned,omitempty"`   // SVG keeps canvas positions
	Refresh    bool     `json:"refresh,omitempty"`  // ignore cached artifacts

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the output of one run.
type Result struct {
	// DocHash is the SHA-256 of the canonical document; it keys the cache.
	DocHash string

	// Frame is the export geometry PNG output uses.
	Frame export.Frame

	// Artifacts holds rendered bytes keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	RenderTime time.Duration
}

// CacheInfo tracks which formats came from the cache.
type CacheInfo struct {
	Hits []string
	// RenderHit is true when every format was served from the cache.
	RenderHit bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	return errors.ValidateFormat(format, ValidFormats)
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseBackground parses a hex color such as "#fff" or "#1a192b".
func ParseBackground(hex string) (color.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid background color %q", hex)
	}
	return c, nil
}

// ValidateAndSetDefaults checks options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	o.Formats = dedupe(o.Formats)
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for _, v := range []float64{o.Padding, o.Scale, o.NodeWidth, o.NodeHeight} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "padding, scale and node size must be finite and not negative")
		}
	}
	if o.Scale > MaxScale {
		return errors.New(errors.ErrCodeInvalidInput, "scale %g exceeds %g", o.Scale, MaxScale)
	}
	if o.Padding == 0 {
		o.Padding = export.DefaultPadding
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if _, err := ParseBackground(o.Background); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns the cache key options for format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
		k.Padding = o.Padding
		k.Background = o.Background
	case FormatSVG, FormatDOT:
		k.Detailed = o.Detailed
		k.Pinned = o.Pinned
	}
	return k
}

// ExportOptions returns the raster capture options.
func (o *Options) ExportOptions() export.Options {
	bg, _ := ParseBackground(o.Background)
	return export.Options{Padding: o.Padding, Background: bg, Scale: o.Scale}
}

// withNodeSize fills in the configured size for nodes the surface has not
// measured yet.
func (o *Options) withNodeSize(snap graph.Snapshot) graph.Snapshot {
	if o.NodeWidth == 0 && o.NodeHeight == 0 {
		return snap
	}
	w, h := o.NodeWidth, o.NodeHeight
	if w == 0 {
		w = graph.DefaultNodeWidth
	}
	if h == 0 {
		h = graph.DefaultNodeHeight
	}
	nodes := slices.Clone(snap.Nodes)
	for i := range nodes {
		if nodes[i].Size == nil {
			nodes[i].Size = &graph.Size{Width: w, Height: h}
		}
	}
	return graph.Snapshot{Nodes: nodes, Edges: snap.Edges}
}

func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
