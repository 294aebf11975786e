package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/costgraph/pkg/controller"
	"github.com/matzehuels/costgraph/pkg/pipeline"
	"github.com/matzehuels/costgraph/pkg/render/raster"
)

// Options configures a Server.
type Options struct {
	Controller *controller.Controller // nil means a fresh diagram
	Runner     *pipeline.Runner       // nil means an uncached runner
	Metrics    *Metrics               // nil disables /metrics
	Logger     *log.Logger

	// Export holds the defaults for export requests.
	Export pipeline.Options
}

// Server bridges a browser-side rendering surface to the controller.
//
// The controller is single-threaded; every handler that touches it holds mu.
// The live canvas mirrors what the client sees and is the surface raster
// exports go through.
type Server struct {
	mu      sync.Mutex
	ctrl    *controller.Controller
	canvas  *raster.Canvas
	runner  *pipeline.Runner
	metrics *Metrics
	logger  *log.Logger
	export  pipeline.Options
}

// New creates a server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = controller.New(logger)
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	s := &Server{
		ctrl:    ctrl,
		canvas:  raster.NewCanvas(ctrl.Snapshot()),
		runner:  runner,
		metrics: opts.Metrics,
		logger:  logger,
		export:  opts.Export,
	}
	s.export.Logger = logger
	return s
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.getGraph)
		r.Post("/changes", s.postChanges)

		r.Route("/events", func(r chi.Router) {
			r.Post("/node-click/{id}", s.nodeClick)
			r.Post("/node-double-click/{id}", s.nodeDoubleClick)
			r.Post("/edge-double-click/{id}", s.edgeDoubleClick)
		})

		r.Route("/nodes", func(r chi.Router) {
			r.Post("/", s.addNode)
			r.Delete("/{id}", s.deleteNode)
			r.Put("/{id}/data", s.putNodeData)
			r.Post("/{id}/image", s.postNodeImage)
			r.Delete("/{id}/image", s.deleteNodeImage)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Post("/", s.connect)
			r.Put("/{id}/comment", s.putEdgeComment)
		})

		r.Route("/dialog", func(r chi.Router) {
			r.Get("/", s.getDialog)
			r.Put("/fields/{field}", s.putDialogField)
			r.Post("/commit", s.commitDialog)
			r.Post("/cancel", s.cancelDialog)
		})

		r.Post("/paste", s.paste)

		r.Get("/rates", s.getRates)
		r.Put("/rates/{key}", s.putRate)
		r.Get("/summary", s.getSummary)

		r.Get("/document", s.getDocument)
		r.Post("/document", s.postDocument)

		r.Get("/viewport", s.getViewport)
		r.Put("/viewport", s.putViewport)
		r.Post("/viewport/fit", s.fitViewport)
		r.Get("/view.png", s.getViewPNG)

		r.Get("/export.png", s.getExportPNG)
		r.Get("/export/{format}", s.getExport)
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"request_id", chimiddleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// locked runs fn with the controller lock held.
func (s *Server) locked(fn func(c *controller.Controller)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ctrl)
	if s.metrics != nil {
		s.metrics.SetNodes(len(s.ctrl.Snapshot().Nodes))
	}
}
