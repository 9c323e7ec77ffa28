// Package pipeline provides the badge rendering pipeline for badgeforge.
//
// This package implements the complete decode → render → encode pipeline that
// is shared by the CLI and the HTTP server, so both entry points apply the
// same limits, caching and logging.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Decode: Parse the JSON badge document and validate every layer
//  2. Render: Composite the layers into an image (see package compose)
//  3. Encode: Write the image as PNG or JPEG
//
// Encoded artifacts are cached by the content hash of the document bytes and
// the options that change the output.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Format: "png",
//	    Assets: assets.NewResolver(assets.DirSource{Root: "assets"}),
//	}
//	result, err := runner.Execute(ctx, data, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("badge.png", result.Artifact, 0o644)
//
// Run individual stages:
//
//	doc, err := runner.Decode(ctx, data, opts)
//	img, err := runner.Render(ctx, doc, opts)
//	out, err := runner.Encode(ctx, img, opts)
package pipeline

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/badgeforge/pkg/assets"
	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/render/sink"
	"github.com/matzehuels/badgeforge/pkg/spec"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is the output format when none is requested.
	DefaultFormat = sink.PNG

	// DefaultMaxScale caps the supersampling factor a document may request.
	DefaultMaxScale = spec.DefaultMaxScale

	// DefaultMaxCanvas caps the canvas width and height.
	DefaultMaxCanvas = 4096

	// TTLArtifact is how long encoded badges stay cached.
	TTLArtifact = 24 * time.Hour
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Encode options
	Format      string `json:"format,omitempty"`
	JPEGQuality int    `json:"jpeg_quality,omitempty"`

	// Decode limits
	MaxScale    int `json:"max_scale,omitempty"`
	MaxCanvas   int `json:"max_canvas,omitempty"`
	FixedWidth  int `json:"fixed_width,omitempty"`
	FixedHeight int `json:"fixed_height,omitempty"`

	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Assets *assets.Resolver `json:"-"`
	// AssetsID names the asset source in cache keys, e.g. the assets directory.
	AssetsID string      `json:"-"`
	Logger   *log.Logger `json:"-"`

	format    sink.Format
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the decoded badge. It is nil on a cache hit.
	Document *spec.Document

	// DocHash is the content hash of the document bytes.
	DocHash string

	// Image is the rendered badge. It is nil on a cache hit.
	Image image.Image

	// Artifact is the encoded badge.
	Artifact []byte

	// Format is the encoding of Artifact.
	Format sink.Format

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks whether the artifact came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Layers     int
	Width      int
	Height     int
	Scale      int
	Size       int
	DecodeTime time.Duration
	RenderTime time.Duration
	EncodeTime time.Duration
}

// CacheInfo tracks cache use for a run.
type CacheInfo struct {
	ArtifactHit bool // Whether the encoded artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	f, err := sink.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.format = f
	o.Format = string(f)

	if o.JPEGQuality == 0 {
		o.JPEGQuality = sink.DefaultJPEGQuality
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "jpeg quality must be within [1,100], got %d", o.JPEGQuality)
	}
	if o.MaxScale == 0 {
		o.MaxScale = DefaultMaxScale
	}
	if o.MaxScale < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "max scale must be positive, got %d", o.MaxScale)
	}
	if o.MaxCanvas == 0 {
		o.MaxCanvas = DefaultMaxCanvas
	}
	if (o.FixedWidth > 0) != (o.FixedHeight > 0) {
		return errors.New(errors.ErrCodeInvalidInput, "fixed canvas needs both width and height")
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Assets == nil {
		o.Assets = assets.NewResolver(nil, assets.WithLogger(o.Logger))
	}
	o.validated = true
	return nil
}

// OutputFormat returns the parsed output format. It is valid after
// ValidateAndSetDefaults.
func (o *Options) OutputFormat() sink.Format { return o.format }

// DecodeOptions returns the document limits for spec.Decode.
func (o *Options) DecodeOptions() []spec.DecodeOption {
	opts := []spec.DecodeOption{
		spec.WithMaxScale(o.MaxScale),
		spec.WithMaxCanvas(o.MaxCanvas),
	}
	if o.FixedWidth > 0 && o.FixedHeight > 0 {
		opts = append(opts, spec.WithFixedCanvas(o.FixedWidth, o.FixedHeight))
	}
	return opts
}

// ArtifactKeyOpts returns cache key options for the encoded artifact.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format: o.Format,
		Assets: o.AssetsID,
		Canvas: fmt.Sprintf("scale<=%d,max=%d,fixed=%dx%d", o.MaxScale, o.MaxCanvas, o.FixedWidth, o.FixedHeight),
	}
	if o.format == sink.JPEG {
		k.JPEGQuality = o.JPEGQuality
	}
	return k
}
