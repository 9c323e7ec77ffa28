package geometry

import "math"

// ShapeBounds computes the vertical extent, center and nominal radius of s on a
// w×h canvas.
//
// For a hexagon the extent comes from the computed vertices: a flat-top
// hexagon reaches only r·sin(60°) above and below its center. The shield's
// bounds cover the body only; the tip is a rendering detail.
func ShapeBounds(s Shape, w, h int) Bounds {
	cx, cy := canvasCenter(w, h)
	minDim := float64(min(w, h) / 2)

	switch s.Kind {
	case Hexagon:
		r := s.Hexagon.Radius
		pts := HexagonVertices(cx, cy, r)
		top, bottom := math.Inf(1), math.Inf(-1)
		for _, p := range pts {
			top = math.Min(top, p.Y)
			bottom = math.Max(bottom, p.Y)
		}
		return Bounds{Top: top, Bottom: bottom, CenterX: cx, CenterY: cy, Radius: r}

	case Circle:
		r := minDim - s.Circle.Margin
		return Bounds{Top: cy - r, Bottom: cy + r, CenterX: cx, CenterY: cy, Radius: r}

	case Shield:
		top := s.Shield.Margin
		bottom := float64(h) - s.Shield.Margin
		return Bounds{
			Top:     top,
			Bottom:  bottom,
			CenterX: cx,
			CenterY: math.Floor((top + bottom) / 2),
			Radius:  minDim - s.Shield.Margin,
		}

	case RoundedRect:
		b := s.RoundedRect.Box
		return Bounds{
			Top:     b.Y0,
			Bottom:  b.Y1,
			CenterX: (b.X0 + b.X1) / 2,
			CenterY: (b.Y0 + b.Y1) / 2,
			Radius:  math.Floor(math.Min(b.Width(), b.Height()) / 2),
		}
	}

	return FallbackBounds(w, h, DefaultFallbackInset)
}

// FallbackBounds is the layout box used when no shape is available:
// the canvas inset by a fixed margin.
func FallbackBounds(w, h int, inset float64) Bounds {
	cx, cy := canvasCenter(w, h)
	return Bounds{
		Top:     inset,
		Bottom:  float64(h) - inset,
		CenterX: cx,
		CenterY: cy,
		Radius:  float64(min(w, h)/2) - inset,
	}
}

// WidthAtY returns the horizontal span of s at vertical coordinate y.
//
// Hexagon: every non-horizontal edge whose y-span contains y contributes an
// interpolated x; the span is their min and max, falling back to the full
// width cx±r when no edge qualifies. Circle and rounded rectangle return a
// zero-width span at the center outside their vertical extent. The shield is
// approximated by its straight sides.
func WidthAtY(s Shape, y float64, w, h int) (left, right float64) {
	cx, cy := canvasCenter(w, h)

	switch s.Kind {
	case Hexagon:
		r := s.Hexagon.Radius
		pts := HexagonVertices(cx, cy, r)
		left, right = math.Inf(1), math.Inf(-1)
		found := false
		for i := range pts {
			p1, p2 := pts[i], pts[(i+1)%len(pts)]
			if p1.Y == p2.Y {
				continue
			}
			if (p1.Y <= y && y <= p2.Y) || (p2.Y <= y && y <= p1.Y) {
				t := (y - p1.Y) / (p2.Y - p1.Y)
				x := p1.X + t*(p2.X-p1.X)
				left = math.Min(left, x)
				right = math.Max(right, x)
				found = true
			}
		}
		if !found {
			return cx - r, cx + r
		}
		return left, right

	case Circle:
		r := float64(min(w, h)/2) - s.Circle.Margin
		dy := math.Abs(y - cy)
		if dy <= r {
			dx := math.Sqrt(r*r - dy*dy)
			return cx - dx, cx + dx
		}
		return cx, cx

	case Shield:
		return s.Shield.Margin, float64(w) - s.Shield.Margin

	case RoundedRect:
		b := s.RoundedRect.Box
		if b.Y0 <= y && y <= b.Y1 {
			return b.X0, b.X1
		}
		mid := (b.X0 + b.X1) / 2
		return mid, mid
	}

	return FallbackSpan(w, DefaultFallbackInset)
}

// FallbackSpan is the horizontal span used when there is no reference shape:
// the canvas width minus a fixed inset on each side.
func FallbackSpan(w int, inset float64) (left, right float64) {
	return inset, float64(w) - inset
}
