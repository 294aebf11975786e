package controller

import (
	"context"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/graph"
	cgio "github.com/matzehuels/costgraph/pkg/io"
	"github.com/matzehuels/costgraph/pkg/observability"
	"github.com/matzehuels/costgraph/pkg/render/raster"
)

// Controller turns user events into store mutations.
//
// It owns the graph store, the rate table, the current selection and at
// most one open edit dialog. Estimates are derived on demand and never
// stored. Controller is not safe for concurrent use; front-ends serialize
// access to it.
type Controller struct {
	store    *graph.Store
	rates    estimate.Rates
	selected string
	dialog   *Dialog
	sessions uint64
	loads    uint64 // bumped whenever a document replaces the diagram
	logger   *log.Logger
}

// New creates a controller over a fresh store seeded with one root node and
// the default rates. If logger is nil, log.Default() is used.
func New(logger *log.Logger) *Controller {
	return NewWithState(graph.New(), estimate.DefaultRates(), logger)
}

// NewWithState creates a controller over an existing store and rate table.
func NewWithState(store *graph.Store, rates estimate.Rates, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	if rates == nil {
		rates = estimate.DefaultRates()
	}
	return &Controller{
		store:  store,
		rates:  rates.Clone(),
		logger: logger,
	}
}

// =============================================================================
// Reads
// =============================================================================

// Snapshot returns a deep copy of the diagram.
func (c *Controller) Snapshot() graph.Snapshot { return c.store.Snapshot() }

// Node returns a copy of node id.
func (c *Controller) Node(id string) (graph.Node, bool) { return c.store.Node(id) }

// Selected returns the selected node id, or "" when nothing is selected.
func (c *Controller) Selected() string { return c.selected }

// NextID returns the id the next added node will get.
func (c *Controller) NextID() string { return c.store.NextID() }

// Rates returns a copy of the rate table.
func (c *Controller) Rates() estimate.Rates { return c.rates.Clone() }

// Summary derives all estimate tables from the current nodes and rates.
func (c *Controller) Summary() estimate.Estimate {
	return estimate.Compute(c.store.Nodes(), c.rates)
}

// =============================================================================
// Surface Events
// =============================================================================

// NodeClick selects node id and deselects everything else.
func (c *Controller) NodeClick(id string) error {
	if !c.store.HasNode(id) {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	changes := make([]graph.Change, 0, c.store.NodeCount())
	for _, n := range c.store.Nodes() {
		if n.Selected != (n.ID == id) {
			changes = append(changes, graph.SelectNode(n.ID, n.ID == id))
		}
	}
	c.store.ApplyChanges(changes)
	c.selected = id
	return nil
}

// Changes applies a batch of surface-originated changes and keeps the
// selection and any open dialog consistent with the result. Removing a node
// also removes the edges touching it. The applied batch is returned.
func (c *Controller) Changes(changes []graph.Change) []graph.Change {
	changes = c.store.WithIncidentEdges(changes)
	c.store.ApplyChanges(changes)
	c.reconcile(changes)
	return changes
}

// reconcile updates selection and dialog state after changes were applied.
func (c *Controller) reconcile(changes []graph.Change) {
	for _, ch := range changes {
		if ch.Target == graph.TargetEdge {
			continue
		}
		switch ch.Type {
		case graph.ChangeSelect:
			if ch.Selected {
				c.selected = ch.ID
			} else if c.selected == ch.ID {
				c.selected = ""
			}
		case graph.ChangeRemove:
			c.forget(ch.ID)
		}
	}
	if c.dialog != nil && c.dialog.Kind == DialogEdge {
		if _, ok := c.store.Edge(c.dialog.TargetID); !ok {
			c.closeDialog()
		}
	}
}

// forget drops references to a removed node.
func (c *Controller) forget(id string) {
	if c.selected == id {
		c.selected = ""
	}
	if c.dialog != nil && c.dialog.Kind == DialogNode && c.dialog.TargetID == id {
		c.closeDialog()
	}
}

// =============================================================================
// Commands
// =============================================================================

// AddChild adds a node below the selected node, or below the last node when
// nothing is selected, and returns it.
func (c *Controller) AddChild() (graph.Node, error) {
	parent := c.selected
	if parent != "" && !c.store.HasNode(parent) {
		parent = ""
	}
	n, err := c.store.AddChild(parent)
	if err != nil {
		return graph.Node{}, err
	}
	c.logger.Debug("added node", "id", n.ID, "parent", parent)
	return n, nil
}

// AddChildOf adds a node below parentID.
func (c *Controller) AddChildOf(parentID string) (graph.Node, error) {
	n, err := c.store.AddChild(parentID)
	if err != nil {
		return graph.Node{}, errors.Wrap(errors.ErrCodeNotFound, err, "add child of %s", parentID)
	}
	return n, nil
}

// UpdateNodeData replaces the data of node id after validating it.
func (c *Controller) UpdateNodeData(id string, data graph.NodeData) error {
	if err := ValidateNodeData(data); err != nil {
		return err
	}
	if !c.store.UpdateNodeData(id, data) {
		return errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	return nil
}

// Connect adds an edge between two existing nodes.
func (c *Controller) Connect(source, target string) (graph.Edge, error) {
	e, ok := c.store.Connect(source, target)
	if !ok {
		return graph.Edge{}, errors.New(errors.ErrCodeNotFound, "cannot connect %s -> %s: unknown node", source, target)
	}
	return e, nil
}

// SetEdgeComment sets the comment and label of an edge.
func (c *Controller) SetEdgeComment(id, text string) error {
	if err := errors.ValidateText("comment", text); err != nil {
		return err
	}
	if !c.store.SetEdgeComment(id, text) {
		return errors.New(errors.ErrCodeNotFound, "edge %s not found", id)
	}
	return nil
}

// DeleteNode removes a node and its edges, returning the applied changes.
func (c *Controller) DeleteNode(id string) ([]graph.Change, error) {
	changes := c.store.RemoveNode(id)
	if changes == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "node %s not found", id)
	}
	c.reconcile(changes)
	return changes, nil
}

// SetRate changes one rate. The next Summary reflects it.
func (c *Controller) SetRate(key estimate.WorkKey, value float64) error {
	return c.rates.Set(key, value)
}

// =============================================================================
// Documents and Export
// =============================================================================

// Save writes the diagram and rates as a document.
func (c *Controller) Save(ctx context.Context, w io.Writer, format cgio.Format) error {
	start := time.Now()
	err := cgio.Write(w, c.store.Snapshot(), c.rates, format)
	observability.Document().OnDocumentSave(ctx, string(format), c.store.NodeCount(), time.Since(start), err)
	return err
}

// Load replaces the diagram and rates with a decoded document.
//
// On any error the current diagram, rates and selection are left untouched.
// Repairs made while normalizing the document are returned in the report and
// logged as warnings.
func (c *Controller) Load(ctx context.Context, r io.Reader, format cgio.Format) (cgio.Report, error) {
	start := time.Now()
	st, err := cgio.Read(r, format)
	if err != nil {
		observability.Document().OnDocumentLoad(ctx, string(format), 0, 0, time.Since(start), err)
		return cgio.Report{}, err
	}

	c.LoadState(st)
	warnings := st.Report.Warnings()
	for _, w := range warnings {
		c.logger.Warn(w)
	}
	observability.Document().OnDocumentLoad(ctx, string(format), len(st.Nodes), len(warnings), time.Since(start), nil)
	return st.Report, nil
}

// LoadState installs an already decoded document.
func (c *Controller) LoadState(st *cgio.State) {
	st.Apply(c.store)
	c.loads++
	c.rates = st.Rates.Clone()
	c.selected = ""
	c.closeDialog()
	c.logger.Debug("loaded document", "nodes", len(st.Nodes), "edges", len(st.Edges), "next_id", c.store.NextID())
}

// Export rasterizes the whole diagram through s. The surface is restored
// before Export returns.
func (c *Controller) Export(s export.Surface, opts export.Options) (image.Image, export.Frame, error) {
	return export.Capture(s, c.store.Nodes(), opts)
}

// ExportPNG renders the diagram on a fresh raster canvas and writes a PNG.
func (c *Controller) ExportPNG(w io.Writer, opts export.Options) (export.Frame, error) {
	img, frame, err := c.Export(raster.NewCanvas(c.store.Snapshot()), opts)
	if err != nil {
		return frame, err
	}
	return frame, export.WritePNG(w, img)
}
