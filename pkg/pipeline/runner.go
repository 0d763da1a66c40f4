package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sankey/pkg/cache"
	"github.com/matzehuels/sankey/pkg/flow"
	sankeyio "github.com/matzehuels/sankey/pkg/io"
	"github.com/matzehuels/sankey/pkg/layout"
	"github.com/matzehuels/sankey/pkg/observability"
	"github.com/matzehuels/sankey/pkg/table"
)

// Cache key kinds reported to the cache hooks.
const (
	kindTable    = "table"
	kindLayout   = "layout"
	kindArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
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
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	t, loadHit, err := r.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Table = t
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.RowCount = len(t.Rows)
	result.CacheInfo.LoadHit = loadHit
	result.TableHash = tableHash(t)

	r.Logger.Info("loaded table",
		"rows", len(t.Rows),
		"stages", t.Stages(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	g, l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = g
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.FlowCount = g.FlowCount()
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", g.NodeCount(),
		"flows", g.FlowCount(),
		"scale", l.Scale,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LoadWithCacheInfo reads and normalizes the input table with caching and
// returns cache hit info. Tables are keyed by the hash of their source bytes.
func (r *Runner) LoadWithCacheInfo(ctx context.Context, opts Options) (t *table.Table, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	data, format, err := ReadSource(opts)
	if err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, string(format))
	start := time.Now()
	defer func() {
		rows := 0
		if t != nil {
			rows = len(t.Rows)
		}
		hooks.OnLoadComplete(ctx, string(format), rows, time.Since(start), err)
	}()

	cacheKey := r.Keyer.TableKey(cache.Hash(data), string(format))

	// Try cache first (unless caching is off)
	if !opts.NoCache {
		if cached, ok := r.get(ctx, kindTable, cacheKey); ok {
			var ct table.Table
			if err := json.Unmarshal(cached, &ct); err == nil && ct.Validate() == nil {
				return &ct, true, nil // Cache hit
			}
		}
	}

	t, err = Decode(data, format)
	if err != nil {
		return nil, false, err
	}

	if !opts.NoCache {
		if encoded, err := json.Marshal(t); err == nil {
			r.set(ctx, kindTable, cacheKey, encoded, cache.TTLTable)
		}
	}

	return t, false, nil // Cache miss
}

// Load is a convenience wrapper that calls LoadWithCacheInfo and discards the cache hit info.
func (r *Runner) Load(ctx context.Context, opts Options) (*table.Table, error) {
	t, _, err := r.LoadWithCacheInfo(ctx, opts)
	return t, err
}

// ComputeLayoutWithCacheInfo aggregates t and computes its layout with
// caching, returning cache hit info. The flow graph is always rebuilt from
// the table; only the layout is cached.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, t *table.Table, opts Options) (g *flow.Graph, l layout.Layout, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, layout.Layout{}, false, err
	}
	if err := t.Validate(); err != nil {
		return nil, layout.Layout{}, false, err
	}

	g = flow.Aggregate(t)
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(g.Stages), g.NodeCount())
	start := time.Now()
	defer func() { hooks.OnLayoutComplete(ctx, time.Since(start), err) }()

	cacheKey := r.Keyer.LayoutKey(tableHash(t), opts.LayoutKeyOpts())

	if !opts.NoCache {
		if cached, ok := r.get(ctx, kindLayout, cacheKey); ok {
			if l, err := sankeyio.ReadJSON(bytes.NewReader(cached)); err == nil {
				return g, l, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
	}

	l, err = layout.Compute(g, opts.LayoutOptions())
	if err != nil {
		return nil, layout.Layout{}, false, err
	}

	if !opts.NoCache {
		var buf bytes.Buffer
		if err := sankeyio.WriteJSON(l, &buf); err == nil {
			r.set(ctx, kindLayout, cacheKey, buf.Bytes(), cache.TTLLayout)
		}
	}

	return g, l, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, t *table.Table, opts Options) (*flow.Graph, layout.Layout, error) {
	g, l, _, err := r.ComputeLayoutWithCacheInfo(ctx, t, opts)
	return g, l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *flow.Graph, l layout.Layout, opts Options) (artifacts map[string][]byte, hit bool, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.VizType, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.VizType, opts.Formats, time.Since(start), err) }()

	// Compute cache key from layout data
	var buf bytes.Buffer
	if err := sankeyio.WriteJSON(l, &buf); err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(buf.Bytes())

	// Try to get all formats from cache
	if !opts.NoCache {
		artifacts = make(map[string][]byte)
		for _, format := range opts.Formats {
			data, ok := r.get(ctx, kindArtifact, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)))
			if !ok {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil // All artifacts from cache
		}
	}

	rendered, err := Render(g, l, opts)
	if err != nil {
		return nil, false, err
	}

	if !opts.NoCache {
		for format, data := range rendered {
			r.set(ctx, kindArtifact, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, cache.TTLArtifact)
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *flow.Graph, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// get reads key and reports the lookup to the cache hooks. Cache errors
// count as misses.
func (r *Runner) get(ctx context.Context, kind, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "kind", kind, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, kind)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, kind)
	return data, true
}

func (r *Runner) set(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "kind", kind, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// tableHash identifies a normalized table independent of its source format.
func tableHash(t *table.Table) string {
	data, _ := json.Marshal(t)
	return cache.Hash(data)
}
