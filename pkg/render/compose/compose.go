// Package compose renders badge documents into images.
//
// A [Composer] holds a canvas descriptor and an ordered list of layers. Each
// call to [Composer.Render] runs the same fixed phases:
//
//  1. Validate the layers and scale every length by the supersampling factor.
//  2. Take the first shape layer as the layout reference and compute its bounds.
//  3. Resolve dynamic placements (logo, title, subtitle, tertiary slot,
//     placeholder rectangle, dynamic wrap widths) into per-render records.
//  4. Paint the records in stable z order onto a canvas at the scaled size.
//  5. Downsample to the nominal size when the scale factor is above one.
//
// Layers are never modified by rendering. Resolved positions live only in the
// records built for that render, so one Composer, and the layers it holds,
// may be rendered from several goroutines at once.
//
// # Assets
//
// Images and fonts are looked up through an [assets.Resolver]. A missing image
// skips its layer; a missing font falls back to the built-in face. A bitmap
// that exists but does not decode fails the render.
package compose

import (
	"context"
	"image"
	"image/color"
	"io"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/badgeforge/pkg/assets"
	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/render/geometry"
	"github.com/matzehuels/badgeforge/pkg/render/raster"
	"github.com/matzehuels/badgeforge/pkg/spec"
)

// Composer renders an ordered list of layers onto a canvas.
type Composer struct {
	canvas spec.CanvasSpec
	layers []spec.Layer
	assets *assets.Resolver
	logger *log.Logger
}

// Option configures a Composer.
type Option func(*Composer)

// WithAssets sets the resolver used for images and fonts. Without it every
// image is missing and every font is the built-in one.
func WithAssets(r *assets.Resolver) Option {
	return func(c *Composer) {
		if r != nil {
			c.assets = r
		}
	}
}

// WithLogger sets the logger for skipped layers and layout fallbacks.
func WithLogger(l *log.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Composer for canvas. A scale below one is treated as one.
func New(canvas spec.CanvasSpec, opts ...Option) *Composer {
	if canvas.Scale < 1 {
		canvas.Scale = 1
	}
	c := &Composer{
		canvas: canvas,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.assets == nil {
		c.assets = assets.NewResolver(nil, assets.WithLogger(c.logger))
	}
	return c
}

// Add appends l to the layer list and returns c for chaining.
// It must not be called while a render is running.
func (c *Composer) Add(l spec.Layer) *Composer {
	c.layers = append(c.layers, l)
	return c
}

// Layers returns the number of layers added so far.
func (c *Composer) Layers() int { return len(c.layers) }

// RenderDocument renders doc with a new Composer.
func RenderDocument(ctx context.Context, doc *spec.Document, opts ...Option) (*image.NRGBA, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "document is nil")
	}
	c := New(doc.Canvas, opts...)
	for _, l := range doc.Layers {
		c.Add(l)
	}
	return c.Render(ctx)
}

// Render composites all layers and returns a new image at the nominal canvas
// size. On error no image is returned.
func (c *Composer) Render(ctx context.Context) (*image.NRGBA, error) {
	start := time.Now()
	if err := c.validate(); err != nil {
		return nil, err
	}

	s := c.canvas.Scale
	w, h := c.canvas.Width*s, c.canvas.Height*s
	scaled := make([]spec.Layer, len(c.layers))
	for i, l := range c.layers {
		scaled[i] = l.Scaled(float64(s))
	}

	p := newPlanner(c, w, h, float64(s))
	records, err := p.plan(ctx, scaled)
	if err != nil {
		return nil, err
	}

	buf := image.NewRGBA(image.Rect(0, 0, w, h))
	raster.Fill(buf, c.background())

	sort.SliceStable(records, func(i, j int) bool { return records[i].z < records[j].z })
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "render canceled")
		}
		r.painter.Paint(buf)
	}

	var out *image.NRGBA
	if s > 1 {
		out = imaging.Resize(buf, c.canvas.Width, c.canvas.Height, imaging.Lanczos)
	} else {
		out = imaging.Clone(buf)
	}
	raster.ClearTransparent(out)

	c.logger.Debug("rendered badge",
		"layers", len(c.layers),
		"painted", len(records),
		"scale", s,
		"duration", time.Since(start))
	return out, nil
}

func (c *Composer) background() color.NRGBA {
	if c.canvas.Transparent {
		return raster.Transparent
	}
	return c.canvas.Background
}

// validate rejects input that cannot be painted. It runs before any pixel is
// touched.
func (c *Composer) validate() error {
	if c.canvas.Width <= 0 || c.canvas.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidSpec,
			"canvas size must be positive, got %dx%d", c.canvas.Width, c.canvas.Height)
	}
	for i, l := range c.layers {
		if err := validateLayer(l); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "layer %d", i)
		}
	}
	return nil
}

func validateLayer(l spec.Layer) error {
	switch l := l.(type) {
	case *spec.BackgroundLayer:
		return nil
	case *spec.ShapeLayer:
		if _, ok := geometry.ParseKind(l.Shape.Kind.String()); !ok {
			return errors.New(errors.ErrCodeUnknownShape, "unknown shape kind %d", int(l.Shape.Kind))
		}
		if err := l.Shape.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSpec, err, "invalid %s", l.Shape.Kind)
		}
		if l.Border.Width < 0 {
			return errors.New(errors.ErrCodeInvalidSpec, "border width must not be negative")
		}
		if l.DynamicRect && l.Shape.Kind != geometry.RoundedRect {
			return errors.New(errors.ErrCodeInvalidSpec, "dynamic rect requires a rounded_rect shape")
		}
	case *spec.ImageLayer:
		if l.Opacity < 0 || l.Opacity > 1 {
			return errors.New(errors.ErrCodeInvalidSpec, "opacity must be within [0,1], got %g", l.Opacity)
		}
		if l.Position.X.IsDynamic() {
			return errors.New(errors.ErrCodeInvalidSpec, "image x cannot be dynamic")
		}
	case *spec.TextLayer:
		if l.Font.Size <= 0 {
			return errors.New(errors.ErrCodeInvalidSpec, "font size must be positive, got %g", l.Font.Size)
		}
		if l.Align.X.IsDynamic() {
			return errors.New(errors.ErrCodeInvalidSpec, "text x cannot be dynamic")
		}
	case nil:
		return errors.New(errors.ErrCodeInvalidSpec, "layer is nil")
	default:
		return errors.New(errors.ErrCodeUnknownLayer, "unsupported layer %T", l)
	}
	return nil
}
