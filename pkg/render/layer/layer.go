// Package layer implements the painters that draw one badge layer each.
//
// Every painter implements [Painter]. Painters receive fully resolved
// inputs: anchors are [align.Anchor] values and wrap widths are plain
// numbers, so nothing dynamic is left to decide at paint time. The composer
// in package compose builds painters from a document and calls them in z
// order on a canvas at the supersampled size.
//
// # Painters
//
//   - [Background]: solid fill (replaces pixels) or a composited gradient
//   - [Shape]: fill through the shape's silhouette mask, then border stroke
//   - [Image]: resized bitmap with opacity, placed by anchors
//   - [Text]: greedy word-wrapped text block with per-line centering
package layer

import (
	"image"

	"github.com/matzehuels/badgeforge/pkg/render/geometry"
	"github.com/matzehuels/badgeforge/pkg/render/raster"
	"github.com/matzehuels/badgeforge/pkg/spec"
)

// Painter draws itself onto a canvas.
type Painter interface {
	Paint(dst *image.RGBA)
}

// fillImage returns the paint source for f at w×h, or nil for a
// transparent fill.
func fillImage(f spec.Fill, w, h int) image.Image {
	switch f.Mode {
	case spec.FillSolid:
		return image.NewUniform(f.Color)
	case spec.FillGradient:
		return raster.LinearGradient(w, h, f.Start, f.End, f.Vertical)
	}
	return nil
}

// Background fills the whole canvas.
type Background struct {
	Fill spec.Fill
}

// NewBackground returns a background painter for f.
func NewBackground(f spec.Fill) *Background {
	return &Background{Fill: f}
}

// Paint replaces every pixel for a solid fill and composites a gradient over
// the existing pixels. A transparent fill paints nothing.
func (b *Background) Paint(dst *image.RGBA) {
	switch b.Fill.Mode {
	case spec.FillSolid:
		raster.Fill(dst, b.Fill.Color)
	case spec.FillGradient:
		r := dst.Bounds()
		raster.Over(dst, fillImage(b.Fill, r.Dx(), r.Dy()), r.Min)
	}
}

// Shape paints a filled and optionally outlined shape.
type Shape struct {
	Shape  geometry.Shape
	Fill   spec.Fill
	Border spec.Border
}

// NewShape returns a shape painter. The shape must already be scaled to the
// canvas it paints on.
func NewShape(s geometry.Shape, f spec.Fill, b spec.Border) *Shape {
	return &Shape{Shape: s, Fill: f, Border: b}
}

// Paint fills through the silhouette mask and then strokes the border.
func (s *Shape) Paint(dst *image.RGBA) {
	r := dst.Bounds()
	w, h := r.Dx(), r.Dy()
	if src := fillImage(s.Fill, w, h); src != nil {
		raster.FillThrough(dst, src, raster.Mask(s.Shape, w, h))
	}
	if s.Border.Visible() {
		raster.Stroke(dst, s.Shape, *s.Border.Color, s.Border.Width)
	}
}
