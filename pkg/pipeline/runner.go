package pipeline

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/observability"
	"github.com/matzehuels/badgeforge/pkg/render/compose"
	"github.com/matzehuels/badgeforge/pkg/render/sink"
	"github.com/matzehuels/badgeforge/pkg/spec"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL is the artifact lifetime. Zero uses TTLArtifact.
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
	}
}

// Execute runs the complete decode → render → encode pipeline with caching.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		DocHash: cache.Hash(data),
		Format:  opts.OutputFormat(),
	}
	cacheKey := r.Keyer.ArtifactKey(result.DocHash, opts.ArtifactKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if artifact, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			hooks.OnCacheHit(ctx, "artifact")
			result.Artifact = artifact
			result.Stats.Size = len(artifact)
			result.CacheInfo.ArtifactHit = true
			r.Logger.Debug("artifact cache hit", "hash", result.DocHash[:12], "format", result.Format)
			return result, nil
		} else if err != nil {
			r.Logger.Warn("cache lookup failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, "artifact")
	}

	// Stage 1: Decode
	start := time.Now()
	doc, err := r.Decode(ctx, data, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.DecodeTime = time.Since(start)
	result.Stats.Layers = len(doc.Layers)
	result.Stats.Width = doc.Canvas.Width
	result.Stats.Height = doc.Canvas.Height
	result.Stats.Scale = doc.Canvas.Scale

	// Stage 2: Render
	start = time.Now()
	img, err := r.Render(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	result.Image = img
	result.Stats.RenderTime = time.Since(start)

	r.Logger.Info("rendered badge",
		"layers", result.Stats.Layers,
		"size", fmt.Sprintf("%dx%d", doc.Canvas.Width, doc.Canvas.Height),
		"scale", doc.Canvas.Scale,
		"duration", result.Stats.RenderTime)

	// Stage 3: Encode
	start = time.Now()
	artifact, err := r.Encode(ctx, img, opts)
	if err != nil {
		return nil, err
	}
	result.Artifact = artifact
	result.Stats.EncodeTime = time.Since(start)
	result.Stats.Size = len(artifact)

	if err := r.Cache.Set(ctx, cacheKey, artifact, r.ttl()); err != nil {
		r.Logger.Warn("cache store failed", "error", err)
	} else {
		hooks.OnCacheSet(ctx, "artifact", len(artifact))
	}
	return result, nil
}

// Decode parses and validates a JSON badge document.
func (r *Runner) Decode(ctx context.Context, data []byte, opts Options) (*spec.Document, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	doc, err := spec.Decode(data, opts.DecodeOptions()...)
	layers := 0
	if doc != nil {
		layers = len(doc.Layers)
	}
	observability.Render().OnDecodeComplete(ctx, layers, time.Since(start), err)
	return doc, err
}

// Render composites a decoded document.
func (r *Runner) Render(ctx context.Context, doc *spec.Document, opts Options) (image.Image, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}

	hooks := observability.Render()
	hooks.OnRenderStart(ctx, doc.Canvas.Width, doc.Canvas.Height, doc.Canvas.Scale, len(doc.Layers))
	start := time.Now()
	img, err := compose.RenderDocument(ctx, doc,
		compose.WithAssets(opts.Assets),
		compose.WithLogger(opts.Logger))
	hooks.OnRenderComplete(ctx, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Encode writes img in the requested format.
func (r *Runner) Encode(ctx context.Context, img image.Image, opts Options) ([]byte, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	start := time.Now()
	data, err := sink.Encode(img, opts.OutputFormat(), sink.WithJPEGQuality(opts.JPEGQuality))
	observability.Render().OnEncodeComplete(ctx, opts.Format, len(data), time.Since(start), err)
	return data, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return TTLArtifact
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
