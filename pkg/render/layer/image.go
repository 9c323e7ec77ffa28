package layer

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/badgeforge/pkg/render/align"
	"github.com/matzehuels/badgeforge/pkg/render/raster"
	"github.com/matzehuels/badgeforge/pkg/spec"
)

// FitSize returns the size of a w×h bitmap after applying p.
//
// Fixed sizes are used as given. A single dimension keeps the aspect ratio,
// truncating the other one. Dynamic sizing scales by the smaller of the two
// bound ratios and caps upscaling at MaxUpscale. Natural sizing multiplies by
// Density. Results are at least 1×1.
func FitSize(w, h int, p spec.SizePolicy) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	ow, oh := float64(w), float64(h)

	var nw, nh int
	switch p.Kind {
	case spec.SizeFixed:
		nw, nh = int(p.Width), int(p.Height)
	case spec.SizeByWidth:
		nw, nh = int(p.Width), int(oh*(p.Width/ow))
	case spec.SizeByHeight:
		nw, nh = int(ow*(p.Height/oh)), int(p.Height)
	case spec.SizeDynamic:
		ratio := math.Min(p.MaxWidth/ow, p.MaxHeight/oh)
		if ratio > 1 {
			ratio = math.Min(ratio, p.MaxUpscale)
		}
		nw, nh = int(ow*ratio), int(oh*ratio)
	default:
		d := p.Density
		if d <= 0 {
			d = 1
		}
		nw, nh = int(ow*d), int(oh*d)
	}
	return max(nw, 1), max(nh, 1)
}

// Image paints a bitmap.
type Image struct {
	src     image.Image
	size    spec.SizePolicy
	x, y    align.Anchor
	opacity float64
}

// NewImage returns a painter for src sized by p, placed at x/y with the
// given opacity in [0,1].
func NewImage(src image.Image, p spec.SizePolicy, x, y align.Anchor, opacity float64) *Image {
	return &Image{src: src, size: p, x: x, y: y, opacity: opacity}
}

// DynamicSize returns the painted size without painting.
func (i *Image) DynamicSize() (int, int) {
	b := i.src.Bounds()
	return FitSize(b.Dx(), b.Dy(), i.size)
}

// Paint resizes the bitmap, applies opacity and composites it at the
// resolved top-left corner.
func (i *Image) Paint(dst *image.RGBA) {
	w, h := i.DynamicSize()
	if w == 0 || h == 0 {
		return
	}

	var img *image.NRGBA
	if b := i.src.Bounds(); b.Dx() == w && b.Dy() == h {
		img = imaging.Clone(i.src)
	} else {
		img = imaging.Resize(i.src, w, h, imaging.Lanczos)
	}
	if i.opacity < 1 {
		raster.ScaleAlpha(img, i.opacity)
	}

	r := dst.Bounds()
	x, y := align.ResolveBox(i.x, i.y, w, h, r.Dx(), r.Dy())
	raster.Over(dst, img, r.Min.Add(image.Pt(x, y)))
}
