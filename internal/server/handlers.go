package server

import (
	"bytes"
	"image/color"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/costgraph/pkg/controller"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/httputil"
	cgio "github.com/matzehuels/costgraph/pkg/io"
	"github.com/matzehuels/costgraph/pkg/pipeline"
)

// contentTypes maps export formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
}

// =============================================================================
// Graph
// =============================================================================

func (s *Server) getGraph(w http.ResponseWriter, _ *http.Request) {
	var resp graphResponse
	s.locked(func(c *controller.Controller) { resp = graphOf(c) })
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func graphOf(c *controller.Controller) graphResponse {
	return toGraphResponse(c.Snapshot(), c.Selected(), c.NextID())
}

func (s *Server) postChanges(w http.ResponseWriter, r *http.Request) {
	var req changesRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	for _, ch := range req.Changes {
		if !ch.Type.Valid() {
			httputil.WriteError(w, errors.New(errors.ErrCodeInvalidInput, "unknown change type %q", ch.Type))
			return
		}
	}
	var resp graphResponse
	s.locked(func(c *controller.Controller) {
		c.Changes(req.Changes)
		resp = graphOf(c)
	})
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Surface Events
// =============================================================================

func (s *Server) nodeClick(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		resp graphResponse
		err  error
	)
	s.locked(func(c *controller.Controller) {
		if err = c.NodeClick(id); err == nil {
			resp = graphOf(c)
		}
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) nodeDoubleClick(w http.ResponseWriter, r *http.Request) {
	s.openDialog(w, func(c *controller.Controller) (controller.Dialog, error) {
		return c.NodeDoubleClick(chi.URLParam(r, "id"))
	})
}

func (s *Server) edgeDoubleClick(w http.ResponseWriter, r *http.Request) {
	s.openDialog(w, func(c *controller.Controller) (controller.Dialog, error) {
		return c.EdgeDoubleClick(chi.URLParam(r, "id"))
	})
}

func (s *Server) openDialog(w http.ResponseWriter, open func(*controller.Controller) (controller.Dialog, error)) {
	var (
		d   controller.Dialog
		err error
	)
	s.locked(func(c *controller.Controller) { d, err = open(c) })
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dialogResponse{Open: true, Dialog: &d})
}

// =============================================================================
// Nodes and Edges
// =============================================================================

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	parent := r.URL.Query().Get("parent")
	var (
		n   graph.Node
		err error
	)
	s.locked(func(c *controller.Controller) {
		if parent != "" {
			n, err = c.AddChildOf(parent)
			return
		}
		n, err = c.AddChild()
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSurfaceNode(n))
}

func (s *Server) deleteNode(w http.ResponseWriter, r *http.Request) {
	var err error
	s.locked(func(c *controller.Controller) {
		_, err = c.DeleteNode(chi.URLParam(r, "id"))
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putNodeData(w http.ResponseWriter, r *http.Request) {
	var data graph.NodeData
	if err := httputil.DecodeJSON(w, r, &data); err != nil {
		httputil.WriteError(w, err)
		return
	}
	id := chi.URLParam(r, "id")
	var (
		n   graph.Node
		err error
	)
	s.locked(func(c *controller.Controller) {
		if err = c.UpdateNodeData(id, data); err == nil {
			n, _ = c.Node(id)
		}
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSurfaceNode(n))
}

func (s *Server) postNodeImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.applyImage(w, r, func(*controller.Controller) (controller.ImageTarget, error) {
		return controller.ImageTarget{NodeID: id}, nil
	})
}

// paste routes an image to the open node dialog, or else the selected node.
func (s *Server) paste(w http.ResponseWriter, r *http.Request) {
	s.applyImage(w, r, func(c *controller.Controller) (controller.ImageTarget, error) {
		t, ok := c.CurrentImageTarget()
		if !ok {
			return t, errors.New(errors.ErrCodeInvalidInput, "nothing to paste into: open a node dialog or select a node")
		}
		return t, nil
	})
}

// applyImage captures the target under the lock, decodes without it and
// completes under the lock again. A target that went stale in between is
// reported as not applied.
func (s *Server) applyImage(w http.ResponseWriter, r *http.Request, target func(*controller.Controller) (controller.ImageTarget, error)) {
	data, err := httputil.ReadBody(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var job controller.ImageJob
	s.locked(func(c *controller.Controller) {
		var t controller.ImageTarget
		if t, err = target(c); err == nil {
			job = c.RequestImage(t, data)
		}
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	res := job.Run()

	var applied bool
	s.locked(func(c *controller.Controller) { applied, err = c.CompleteImage(res) })
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, imageResponse{Applied: applied, NodeID: res.Target.NodeID})
}

func (s *Server) deleteNodeImage(w http.ResponseWriter, r *http.Request) {
	var err error
	s.locked(func(c *controller.Controller) { err = c.ClearImage(chi.URLParam(r, "id")) })
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	var (
		e   graph.Edge
		err error
	)
	s.locked(func(c *controller.Controller) { e, err = c.Connect(req.Source, req.Target) })
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toSurfaceEdge(e))
}

func (s *Server) putEdgeComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	var err error
	s.locked(func(c *controller.Controller) { err = c.SetEdgeComment(chi.URLParam(r, "id"), req.Comment) })
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Dialog
// =============================================================================

func (s *Server) getDialog(w http.ResponseWriter, _ *http.Request) {
	var resp dialogResponse
	s.locked(func(c *controller.Controller) {
		if d, ok := c.Dialog(); ok {
			resp = dialogResponse{Open: true, Dialog: &d}
		}
	})
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) putDialogField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	field := chi.URLParam(r, "field")
	var (
		resp dialogResponse
		err  error
	)
	s.locked(func(c *controller.Controller) {
		if err = c.SetField(field, req.Value); err == nil {
			d, _ := c.Dialog()
			resp = dialogResponse{Open: true, Dialog: &d}
		}
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) commitDialog(w http.ResponseWriter, _ *http.Request) {
	var (
		resp graphResponse
		err  error
	)
	s.locked(func(c *controller.Controller) {
		if err = c.Commit(); err == nil {
			resp = graphOf(c)
		}
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) cancelDialog(w http.ResponseWriter, _ *http.Request) {
	s.locked(func(c *controller.Controller) { c.Cancel() })
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Rates and Summary
// =============================================================================

func (s *Server) getRates(w http.ResponseWriter, _ *http.Request) {
	var rates estimate.Rates
	s.locked(func(c *controller.Controller) { rates = c.Rates() })
	httputil.WriteJSON(w, http.StatusOK, ratesResponse{Rates: rates, Order: estimate.Keys})
}

func (s *Server) putRate(w http.ResponseWriter, r *http.Request) {
	key, err := estimate.ParseKey(chi.URLParam(r, "key"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req rateRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	var summary estimate.Estimate
	s.locked(func(c *controller.Controller) {
		if err = c.SetRate(key, req.Rate); err == nil {
			summary = c.Summary()
		}
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// getSummary always recomputes; summaries are never cached.
func (s *Server) getSummary(w http.ResponseWriter, _ *http.Request) {
	var summary estimate.Estimate
	s.locked(func(c *controller.Controller) { summary = c.Summary() })
	httputil.WriteJSON(w, http.StatusOK, summary)
}

// =============================================================================
// Documents
// =============================================================================

func documentFormat(r *http.Request) (cgio.Format, error) {
	f := r.URL.Query().Get("format")
	if f == "" {
		return cgio.FormatJSON, nil
	}
	return cgio.ParseFormat(f)
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	format, err := documentFormat(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	name := "graph"
	if v := r.URL.Query().Get("name"); v != "" {
		if err := errors.ValidateFilename(v); err != nil {
			httputil.WriteError(w, err)
			return
		}
		name = strings.TrimSuffix(v, "."+string(format))
	}
	var buf bytes.Buffer
	s.locked(func(c *controller.Controller) { err = c.Save(r.Context(), &buf, format) })
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[string(format)])
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+"."+string(format)+`"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) postDocument(w http.ResponseWriter, r *http.Request) {
	format, err := documentFormat(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	data, err := httputil.ReadBody(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var (
		rep  cgio.Report
		resp loadResponse
	)
	s.locked(func(c *controller.Controller) {
		if rep, err = c.Load(r.Context(), bytes.NewReader(data), format); err != nil {
			return
		}
		snap := c.Snapshot()
		s.canvas.SetSnapshot(snap)
		s.canvas.FitView(export.DefaultPadding)
		resp = loadResponse{Nodes: len(snap.Nodes), Edges: len(snap.Edges), Warnings: rep.Warnings()}
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Viewport and Export
// =============================================================================

func (s *Server) viewportLocked() viewport {
	w, h := s.canvas.Size()
	return viewport{Width: w, Height: h, Transform: s.canvas.ViewportTransform()}
}

func (s *Server) getViewport(w http.ResponseWriter, _ *http.Request) {
	var vp viewport
	s.locked(func(*controller.Controller) { vp = s.viewportLocked() })
	httputil.WriteJSON(w, http.StatusOK, vp)
}

func (s *Server) putViewport(w http.ResponseWriter, r *http.Request) {
	var req viewport
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Width <= 0 || req.Height <= 0 || req.Transform.Scale <= 0 {
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidInput, "viewport size and scale must be positive"))
		return
	}
	if err := export.CheckRasterSize(req.Width, req.Height); err != nil {
		httputil.WriteError(w, err)
		return
	}
	var vp viewport
	s.locked(func(*controller.Controller) {
		s.canvas.SetSize(req.Width, req.Height)
		s.canvas.SetViewportTransform(req.Transform)
		vp = s.viewportLocked()
	})
	httputil.WriteJSON(w, http.StatusOK, vp)
}

func (s *Server) fitViewport(w http.ResponseWriter, _ *http.Request) {
	var vp viewport
	s.locked(func(c *controller.Controller) {
		s.canvas.SetSnapshot(c.Snapshot())
		s.canvas.FitView(export.DefaultPadding)
		vp = s.viewportLocked()
	})
	httputil.WriteJSON(w, http.StatusOK, vp)
}

// getViewPNG renders exactly what the viewport shows, clipped.
func (s *Server) getViewPNG(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	var err error
	s.locked(func(c *controller.Controller) {
		s.canvas.SetSnapshot(c.Snapshot())
		vw, vh := s.canvas.Size()
		img, rerr := s.canvas.Rasterize(int(vw), int(vh), export.Opaque(s.background()))
		if rerr != nil {
			err = errors.Wrap(errors.ErrCodeInternal, rerr, "render view")
			return
		}
		err = export.WritePNG(&buf, img)
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatPNG])
	_, _ = w.Write(buf.Bytes())
}

// getExportPNG captures the whole diagram through the live canvas. The
// viewport the client sees is restored before the response is written.
func (s *Server) getExportPNG(w http.ResponseWriter, r *http.Request) {
	opts, err := s.requestOptions(r)
	if err == nil {
		err = opts.ValidateAndSetDefaults()
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var (
		buf   bytes.Buffer
		frame export.Frame
	)
	s.locked(func(c *controller.Controller) {
		s.canvas.SetSnapshot(c.Snapshot())
		img, f, cerr := c.Export(s.canvas, opts.ExportOptions())
		if cerr != nil {
			err = cerr
			return
		}
		frame = f
		err = export.WritePNG(&buf, img)
	})
	if err != nil {
		s.logger.Error("export failed", "err", err)
		httputil.WriteError(w, err)
		return
	}
	pw, ph := frame.PixelSize(opts.Scale)
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatPNG])
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.DefaultFilename+`"`)
	w.Header().Set("X-Export-ID", uuid.NewString())
	w.Header().Set("X-Export-Size", strconv.Itoa(pw)+"x"+strconv.Itoa(ph))
	_, _ = w.Write(buf.Bytes())
}

// getExport renders one format through the cached pipeline.
func (s *Server) getExport(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts, err := s.requestOptions(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	opts.Formats = []string{format}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	var (
		snap  graph.Snapshot
		rates estimate.Rates
	)
	s.locked(func(c *controller.Controller) {
		snap = c.Snapshot()
		rates = c.Rates()
	})

	res, err := s.runner.Execute(r.Context(), snap, rates, opts)
	if err != nil {
		s.logger.Error("export failed", "format", format, "err", err)
		httputil.WriteError(w, err)
		return
	}
	cached := "miss"
	if res.CacheInfo.RenderHit {
		cached = "hit"
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Export-ID", uuid.NewString())
	w.Header().Set("X-Cache", cached)
	_, _ = w.Write(res.Artifacts[format])
}

// requestOptions overlays the padding, scale, background, detailed and
// pinned query parameters on the server defaults. The result is not yet
// validated.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.export
	q := r.URL.Query()
	for name, dst := range map[string]*float64{"padding": &opts.Padding, "scale": &opts.Scale} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
		}
		*dst = f
	}
	if v := q.Get("background"); v != "" {
		opts.Background = v
	}
	for name, dst := range map[string]*bool{"detailed": &opts.Detailed, "pinned": &opts.Pinned, "refresh": &opts.Refresh} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
		}
		*dst = b
	}
	return opts, nil
}

func (s *Server) background() color.Color {
	if c, err := pipeline.ParseBackground(s.export.Background); err == nil {
		return c
	}
	return color.White
}
