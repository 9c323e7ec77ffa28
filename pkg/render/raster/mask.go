package raster

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/matzehuels/badgeforge/pkg/render/geometry"
)

// tracePath appends the outline of s on a w×h canvas to the current path of dc.
// The shield outline is its body only; callers add the tip separately.
func tracePath(dc *gg.Context, s geometry.Shape, w, h int) {
	switch s.Kind {
	case geometry.Hexagon:
		cx, cy := float64(w/2), float64(h/2)
		pts := geometry.HexagonVertices(cx, cy, s.Hexagon.Radius)
		dc.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			dc.LineTo(p.X, p.Y)
		}
		dc.ClosePath()

	case geometry.Circle:
		m := s.Circle.Margin
		box := geometry.Rect{X0: m, Y0: m, X1: float64(w) - m, Y1: float64(h) - m}
		dc.DrawEllipse((box.X0+box.X1)/2, (box.Y0+box.Y1)/2, box.Width()/2, box.Height()/2)

	case geometry.Shield:
		body, _ := geometry.ShieldOutline(w, h, s.Shield)
		dc.DrawRoundedRectangle(body.X0, body.Y0, body.Width(), body.Height(), s.Shield.CornerRadius)

	case geometry.RoundedRect:
		b := s.RoundedRect.Box
		dc.DrawRoundedRectangle(b.X0, b.Y0, b.Width(), b.Height(), s.RoundedRect.Radius)
	}
}

func traceTip(dc *gg.Context, s geometry.Shape, w, h int) {
	_, tip := geometry.ShieldOutline(w, h, s.Shield)
	dc.NewSubPath()
	dc.MoveTo(tip[0].X, tip[0].Y)
	dc.LineTo(tip[1].X, tip[1].Y)
	dc.LineTo(tip[2].X, tip[2].Y)
	dc.ClosePath()
}

// Mask returns the anti-aliased coverage of s on a w×h canvas. Coverage is
// 255 inside the shape and 0 outside. The shield mask is the union of its
// rounded body and its tip triangle.
func Mask(s geometry.Shape, w, h int) *image.Alpha {
	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	tracePath(dc, s, w, h)
	dc.Fill()
	if s.Kind == geometry.Shield {
		traceTip(dc, s, w, h)
		dc.Fill()
	}
	return dc.AsMask()
}
