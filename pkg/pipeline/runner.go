package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/export"
	"github.com/matzehuels/costgraph/pkg/graph"
	"github.com/matzehuels/costgraph/pkg/observability"
)

// MaxParallel bounds how many formats render at once.
const MaxParallel = 4

// Runner executes exports with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store results. Multiple goroutines can safely use the same Runner with
// different snapshots.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long stored artifacts live.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.ArtifactTTL,
	}
}

// Execute renders every requested format of snap.
//
// Cached artifacts are reused unless opts.Refresh is set. Missing formats
// render concurrently; the first failure cancels the rest and is returned.
func (r *Runner) Execute(ctx context.Context, snap graph.Snapshot, rates estimate.Rates, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()
	observability.Export().OnExportStart(ctx, opts.Formats, len(snap.Nodes))

	res, err := r.execute(ctx, snap, rates, opts)

	observability.Export().OnExportComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	res.Stats.RenderTime = time.Since(start)
	r.Logger.Info("exported diagram",
		"formats", opts.Formats,
		"cached", res.CacheInfo.Hits,
		"nodes", res.Stats.NodeCount,
		"duration", res.Stats.RenderTime)
	return res, nil
}

func (r *Runner) execute(ctx context.Context, snap graph.Snapshot, rates estimate.Rates, opts Options) (*Result, error) {
	snap = opts.withNodeSize(snap)

	docHash, err := DocumentHash(snap, rates)
	if err != nil {
		return nil, fmt.Errorf("hash document: %w", err)
	}
	keyHash := ArtifactHash(docHash, snap)

	res := &Result{
		DocHash:   docHash,
		Frame:     export.Compute(snap.Nodes, opts.Padding),
		Artifacts: make(map[string][]byte, len(opts.Formats)),
		Stats:     Stats{NodeCount: len(snap.Nodes), EdgeCount: len(snap.Edges)},
	}

	var missing []string
	for _, f := range opts.Formats {
		if data, ok := r.lookup(ctx, keyHash, f, opts); ok {
			res.Artifacts[f] = data
			res.CacheInfo.Hits = append(res.CacheInfo.Hits, f)
			continue
		}
		missing = append(missing, f)
	}
	res.CacheInfo.RenderHit = len(missing) == 0

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(MaxParallel)
	for _, f := range missing {
		// Each format gets its own deep copy; renderers must not share state.
		own := graph.Snapshot{Nodes: cloneNodes(snap.Nodes), Edges: append([]graph.Edge(nil), snap.Edges...)}
		g.Go(func() error {
			t := time.Now()
			data, err := RenderFormat(gctx, own, rates, f, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", f, err)
			}
			opts.Logger.Debug("rendered", "format", f, "bytes", len(data), "duration", time.Since(t))

			mu.Lock()
			res.Artifacts[f] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, f := range missing {
		r.store(ctx, keyHash, f, opts, res.Artifacts[f])
	}
	return res, nil
}

func (r *Runner) lookup(ctx context.Context, keyHash, format string, opts Options) ([]byte, bool) {
	if opts.Refresh {
		return nil, false
	}
	key := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "format", format, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, format)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, format)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyHash, format string, opts Options, data []byte) {
	key := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "format", format, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, format, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func cloneNodes(nodes []graph.Node) []graph.Node {
	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		if n.Size != nil {
			s := *n.Size
			n.Size = &s
		}
		out[i] = n
	}
	return out
}
