package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/costgraph/pkg/cache"
	"github.com/matzehuels/costgraph/pkg/errors"
	"github.com/matzehuels/costgraph/pkg/estimate"
	"github.com/matzehuels/costgraph/pkg/graph"
	cgio "github.com/matzehuels/costgraph/pkg/io"
)

// memCache counts hits and writes.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, k string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[k]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, k string, d []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[k] = d
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, k string) error { delete(c.data, k); return nil }
func (c *memCache) Close() error                             { return nil }

func testSnapshot(t *testing.T) graph.Snapshot {
	t.Helper()
	s := graph.New()
	if _, err := s.AddChild(""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddChild("2"); err != nil {
		t.Fatal(err)
	}
	return s.Snapshot()
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"png", false},
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"yaml", false},
		{"pdf", true},
		{"PNG", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Formats: []string{"json", "png", "json"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(opts.Formats) != 2 {
		t.Errorf("formats = %v, want duplicates removed", opts.Formats)
	}
	if opts.Padding != 64 || opts.Scale != 1 || opts.Background != DefaultBackground {
		t.Errorf("defaults = %+v", opts)
	}

	bad := []Options{
		{Formats: []string{"gif"}},
		{Scale: -1},
		{Scale: MaxScale + 1},
		{Scale: math.NaN()},
		{Padding: math.Inf(1)},
		{Background: "not-a-color"},
	}
	for _, o := range bad {
		if err := o.ValidateAndSetDefaults(); err == nil {
			t.Errorf("%+v accepted", o)
		}
	}
}

func TestDefaultFormatIsPNG(t *testing.T) {
	var opts Options
	opts.ValidateAndSetDefaults()
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("formats = %v", opts.Formats)
	}
}

func TestParseBackground(t *testing.T) {
	c, err := ParseBackground("#ff0000")
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, a := c.RGBA()
	if r != 0xffff || g != 0 || b != 0 || a != 0xffff {
		t.Errorf("rgba = %x %x %x %x", r, g, b, a)
	}
	if _, err := ParseBackground("red"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
}

func TestArtifactKeyOptsIgnoreUnrelated(t *testing.T) {
	a := Options{Scale: 1, Detailed: false}
	b := Options{Scale: 1, Detailed: true}
	if a.ArtifactKeyOpts(FormatPNG) != b.ArtifactKeyOpts(FormatPNG) {
		t.Error("Detailed changed the png key")
	}
	if a.ArtifactKeyOpts(FormatSVG) == b.ArtifactKeyOpts(FormatSVG) {
		t.Error("Detailed did not change the svg key")
	}
}

func TestDocumentHash(t *testing.T) {
	snap := testSnapshot(t)
	rates := estimate.DefaultRates()

	h1, err := DocumentHash(snap, rates)
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := DocumentHash(snap, rates)
	if h1 != h2 {
		t.Error("hash not deterministic")
	}

	rates.Set(estimate.CodingComplex, 1)
	if h3, _ := DocumentHash(snap, rates); h3 == h1 {
		t.Error("rate change did not change the hash")
	}
}

func TestArtifactHashTracksViewState(t *testing.T) {
	snap := testSnapshot(t)
	base := ArtifactHash("doc", snap)

	sel := testSnapshot(t)
	sel.Nodes[1].Selected = true
	if ArtifactHash("doc", sel) == base {
		t.Error("selection did not change the hash")
	}

	sized := testSnapshot(t)
	sized.Nodes[0].Size = &graph.Size{Width: 300, Height: 90}
	if ArtifactHash("doc", sized) == base {
		t.Error("measured size did not change the hash")
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	snap := testSnapshot(t)
	rates := estimate.DefaultRates()
	c := newMemCache()
	r := NewRunner(c, nil, nil)

	res, err := r.Execute(ctx, snap, rates, Options{Formats: []string{"png", "json", "dot"}})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit || len(res.CacheInfo.Hits) != 0 {
		t.Errorf("first run cache info = %+v", res.CacheInfo)
	}
	if c.sets != 3 {
		t.Errorf("cache writes = %d, want 3", c.sets)
	}

	img, err := png.Decode(bytes.NewReader(res.Artifacts["png"]))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 348 || b.Dy() != 578 {
		t.Errorf("png %dx%d, want 348x578", b.Dx(), b.Dy())
	}
	if res.Frame.Width != 348 || res.Frame.Height != 578 {
		t.Errorf("frame = %+v", res.Frame)
	}

	st, err := cgio.Unmarshal(res.Artifacts["json"])
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Nodes) != 3 {
		t.Errorf("json nodes = %d", len(st.Nodes))
	}
	if !strings.HasPrefix(string(res.Artifacts["dot"]), "digraph G {") {
		t.Errorf("dot = %.30q", res.Artifacts["dot"])
	}

	again, err := r.Execute(ctx, snap, rates, Options{Formats: []string{"png", "json", "dot"}})
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.RenderHit {
		t.Error("second run missed the cache")
	}
	if !bytes.Equal(again.Artifacts["png"], res.Artifacts["png"]) {
		t.Error("cached png differs")
	}
	if again.DocHash != res.DocHash {
		t.Error("doc hash changed between runs")
	}
}

func TestExecuteRefresh(t *testing.T) {
	ctx := context.Background()
	snap := testSnapshot(t)
	c := newMemCache()
	r := NewRunner(c, nil, nil)

	r.Execute(ctx, snap, nil, Options{Formats: []string{"yaml"}})
	res, err := r.Execute(ctx, snap, nil, Options{Formats: []string{"yaml"}, Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("refresh served from cache")
	}
	if c.sets != 2 {
		t.Errorf("cache writes = %d, want 2", c.sets)
	}
}

func TestExecuteNodeSize(t *testing.T) {
	snap := testSnapshot(t)
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(context.Background(), snap, nil, Options{Formats: []string{"json"}, NodeWidth: 100, NodeHeight: 50})
	if err != nil {
		t.Fatal(err)
	}
	// 3 nodes stacked 150 apart, 100x50 each, 64 padding.
	if res.Frame.Width != 228 || res.Frame.Height != 478 {
		t.Errorf("frame = %vx%v, want 228x478", res.Frame.Width, res.Frame.Height)
	}
	if snap.Nodes[0].Size != nil {
		t.Error("caller's snapshot was modified")
	}
}

func TestExecuteFileCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, cache.NewScopedKeyer(nil, "test:"), nil)
	defer r.Close()

	snap := testSnapshot(t)
	if _, err := r.Execute(ctx, snap, nil, Options{Formats: []string{"json"}}); err != nil {
		t.Fatal(err)
	}
	res, err := r.Execute(ctx, snap, nil, Options{Formats: []string{"json"}})
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheInfo.RenderHit {
		t.Error("file cache miss on second run")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), graph.Snapshot{}, nil, Options{Formats: []string{"bmp"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}
