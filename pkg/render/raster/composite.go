package raster

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/matzehuels/badgeforge/pkg/render/geometry"
)

// Fill fills the whole of dst with c, replacing existing pixels.
func Fill(dst *image.RGBA, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// ClearTransparent sets every fully transparent pixel of img to
// [Transparent]. Premultiplied buffers lose the color of such pixels.
func ClearTransparent(img *image.NRGBA) {
	for i := 0; i+3 < len(img.Pix); i += 4 {
		if img.Pix[i+3] == 0 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2] = Transparent.R, Transparent.G, Transparent.B
		}
	}
}

// Over alpha-composites src onto dst with its top-left corner at at.
func Over(dst *image.RGBA, src image.Image, at image.Point) {
	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}
	draw.Draw(dst, r, src, sb.Min, draw.Over)
}

// FillThrough paints fill onto a transparent buffer the size of dst using mask
// as a stencil, then alpha-composites that buffer onto dst.
func FillThrough(dst *image.RGBA, fill image.Image, mask *image.Alpha) {
	b := dst.Bounds()
	layer := image.NewRGBA(b)
	draw.DrawMask(layer, b, fill, b.Min, mask, b.Min, draw.Over)
	draw.Draw(dst, b, layer, b.Min, draw.Over)
}

// Stroke draws the outline of s in c with the given line width and
// composites it onto dst. The shield outline is its rounded body plus a
// closed polyline through the tip with round joins.
func Stroke(dst *image.RGBA, s geometry.Shape, c color.Color, width float64) {
	if width <= 0 {
		return
	}
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()

	dc := gg.NewContext(w, h)
	dc.SetColor(c)
	dc.SetLineWidth(width)
	tracePath(dc, s, w, h)
	dc.Stroke()
	if s.Kind == geometry.Shield {
		dc.SetLineJoin(gg.LineJoinRound)
		traceTip(dc, s, w, h)
		dc.Stroke()
	}
	draw.Draw(dst, b, dc.Image(), image.Point{}, draw.Over)
}

// ScaleAlpha multiplies the alpha channel of img by k in place.
func ScaleAlpha(img *image.NRGBA, k float64) {
	if k >= 1 {
		return
	}
	if k < 0 {
		k = 0
	}
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(float64(img.Pix[i])*k + 0.5)
	}
}
