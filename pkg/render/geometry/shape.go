// Package geometry computes layout geometry for the fixed badge shape vocabulary.
//
// Shapes are a closed set: hexagon, circle, shield and rounded rectangle. Each
// kind has one params struct, and every operation in this package switches
// over [Kind] exhaustively. All coordinates are in canvas pixels with the
// origin at the top-left corner and y growing downwards.
//
// Two queries drive the dynamic layout pass of the composer:
//
//   - [ShapeBounds] returns the vertical extent and center of a shape.
//   - [WidthAtY] returns the horizontal span of a shape at a given y, used to
//     derive text wrap widths that fit inside the silhouette.
//
// The raster package draws from the same outline helpers ([HexagonVertices],
// [ShieldOutline]) so that masks, strokes and layout agree.
package geometry

import (
	"fmt"
	"math"
)

// Kind identifies a shape variant.
type Kind int

// Shape kinds.
const (
	Hexagon Kind = iota + 1
	Circle
	Shield
	RoundedRect
)

// Default parameters, in nominal (unscaled) canvas pixels.
const (
	DefaultHexagonInset      = 20.0
	DefaultCircleMargin      = 50.0
	DefaultShieldMargin      = 56.0
	DefaultShieldCorner      = 56.0
	DefaultShieldTipHeight   = 110.0
	DefaultShieldTipInset    = 36.0
	DefaultRectWidth         = 200.0
	DefaultRectHeight        = 40.0
	DefaultRectCornerRadius  = 20.0
	DefaultFallbackInset     = 50.0
	hexagonVertexCount       = 6
	hexagonVertexAngleRadian = math.Pi / 3
)

var kindNames = map[Kind]string{
	Hexagon:     "hexagon",
	Circle:      "circle",
	Shield:      "shield",
	RoundedRect: "rounded_rect",
}

// String returns the document name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a document shape name to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Point is a position on the canvas.
type Point struct{ X, Y float64 }

// Rect is an axis-aligned box given by its top-left and bottom-right corners.
type Rect struct{ X0, Y0, X1, Y1 float64 }

// Width returns X1-X0.
func (r Rect) Width() float64 { return r.X1 - r.X0 }

// Height returns Y1-Y0.
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// HexagonParams configures a flat-top hexagon centered on the canvas.
type HexagonParams struct {
	Radius float64
}

// CircleParams configures a circle inset from the canvas edges.
type CircleParams struct {
	Margin float64
}

// ShieldParams configures a shield: a rounded body plus a pointed tip.
type ShieldParams struct {
	Margin       float64
	CornerRadius float64
	TipHeight    float64
	// TipInset is how far the tip's base corners sit inside the body edges.
	TipInset float64
}

// RoundedRectParams configures a rounded rectangle with an explicit box.
type RoundedRectParams struct {
	Box    Rect
	Radius float64
}

// Shape is a resolved shape: a kind plus the params for that kind.
// Only the params field matching Kind is meaningful.
type Shape struct {
	Kind        Kind
	Hexagon     HexagonParams
	Circle      CircleParams
	Shield      ShieldParams
	RoundedRect RoundedRectParams
}

// Bounds is the layout-relevant extent of a shape.
type Bounds struct {
	Top     float64
	Bottom  float64
	CenterX float64
	CenterY float64
	Radius  float64
}

// Height returns Bottom-Top.
func (b Bounds) Height() float64 { return b.Bottom - b.Top }

// canvasCenter returns the canvas center using integer division, so odd
// canvas sizes center on a whole pixel.
func canvasCenter(w, h int) (float64, float64) {
	return float64(w / 2), float64(h / 2)
}

// CenteredBox returns a box of the given size centered on the canvas.
// Half extents are floored, matching pixel-aligned drawing.
func CenteredBox(w, h int, boxW, boxH float64) Rect {
	cx, cy := canvasCenter(w, h)
	hw, hh := math.Floor(boxW/2), math.Floor(boxH/2)
	return Rect{X0: cx - hw, Y0: cy - hh, X1: cx + hw, Y1: cy + hh}
}

// HexagonVertices returns the six vertices of a flat-top hexagon, starting at
// angle 0 on the +x axis and stepping 60 degrees clockwise on screen.
func HexagonVertices(cx, cy, r float64) [hexagonVertexCount]Point {
	var pts [hexagonVertexCount]Point
	for i := range pts {
		a := float64(i) * hexagonVertexAngleRadian
		pts[i] = Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

// ShieldOutline returns the shield body box and the three points of its tip.
// The tip's base sits one pixel above the body bottom so the two regions overlap.
func ShieldOutline(w, h int, p ShieldParams) (Rect, [3]Point) {
	left, right := p.Margin, float64(w)-p.Margin
	top := p.Margin
	bottomBody := float64(h) - p.Margin - p.TipHeight
	cx, _ := canvasCenter(w, h)
	body := Rect{X0: left, Y0: top, X1: right, Y1: bottomBody}
	tip := [3]Point{
		{X: left + p.TipInset, Y: bottomBody - 1},
		{X: cx, Y: float64(h) - p.Margin},
		{X: right - p.TipInset, Y: bottomBody - 1},
	}
	return body, tip
}

// Scaled returns a copy of s with every length multiplied by k.
func (s Shape) Scaled(k float64) Shape {
	out := s
	out.Hexagon.Radius *= k
	out.Circle.Margin *= k
	out.Shield.Margin *= k
	out.Shield.CornerRadius *= k
	out.Shield.TipHeight *= k
	out.Shield.TipInset *= k
	out.RoundedRect.Radius *= k
	out.RoundedRect.Box = Rect{
		X0: s.RoundedRect.Box.X0 * k,
		Y0: s.RoundedRect.Box.Y0 * k,
		X1: s.RoundedRect.Box.X1 * k,
		Y1: s.RoundedRect.Box.Y1 * k,
	}
	return out
}

// Validate reports params that cannot describe a drawable shape.
func (s Shape) Validate() error {
	switch s.Kind {
	case Hexagon:
		if s.Hexagon.Radius <= 0 {
			return fmt.Errorf("hexagon radius must be positive, got %g", s.Hexagon.Radius)
		}
	case Circle:
		if s.Circle.Margin < 0 {
			return fmt.Errorf("circle margin must not be negative, got %g", s.Circle.Margin)
		}
	case Shield:
		p := s.Shield
		if p.Margin < 0 || p.CornerRadius < 0 || p.TipHeight < 0 || p.TipInset < 0 {
			return fmt.Errorf("shield params must not be negative")
		}
	case RoundedRect:
		b := s.RoundedRect.Box
		if b.Width() <= 0 || b.Height() <= 0 {
			return fmt.Errorf("rounded_rect must have positive width and height")
		}
		if s.RoundedRect.Radius < 0 {
			return fmt.Errorf("rounded_rect radius must not be negative")
		}
	default:
		return fmt.Errorf("unknown shape kind %v", s.Kind)
	}
	return nil
}
