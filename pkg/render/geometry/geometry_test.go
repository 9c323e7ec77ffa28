package geometry

import (
	"math"
	"testing"
)

const eps = 1e-6

func approx(a, b float64) bool { return math.Abs(a-b) < eps }

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"hexagon", Hexagon, true},
		{"circle", Circle, true},
		{"shield", Shield, true},
		{"rounded_rect", RoundedRect, true},
		{"star", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseKind(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseKind(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
		if ok && got.String() != tt.in {
			t.Errorf("%v.String() = %q, want %q", got, got.String(), tt.in)
		}
	}
}

func TestShapeBoundsHexagon(t *testing.T) {
	s := Shape{Kind: Hexagon, Hexagon: HexagonParams{Radius: 250}}
	b := ShapeBounds(s, 600, 600)

	half := 250 * math.Sin(math.Pi/3)
	if !approx(b.Top, 300-half) || !approx(b.Bottom, 300+half) {
		t.Errorf("bounds = [%v, %v], want [%v, %v]", b.Top, b.Bottom, 300-half, 300+half)
	}
	if b.CenterX != 300 || b.CenterY != 300 || b.Radius != 250 {
		t.Errorf("center/radius = (%v, %v, %v), want (300, 300, 250)", b.CenterX, b.CenterY, b.Radius)
	}
}

func TestShapeBoundsCircle(t *testing.T) {
	s := Shape{Kind: Circle, Circle: CircleParams{Margin: 50}}
	b := ShapeBounds(s, 600, 600)
	if b.Top != 50 || b.Bottom != 550 || b.Radius != 250 {
		t.Errorf("bounds = %+v, want top 50 bottom 550 radius 250", b)
	}
}

func TestShapeBoundsShield(t *testing.T) {
	s := Shape{Kind: Shield, Shield: ShieldParams{Margin: 56, CornerRadius: 56, TipHeight: 110, TipInset: 36}}
	b := ShapeBounds(s, 600, 601)
	if b.Top != 56 || b.Bottom != 545 {
		t.Errorf("bounds = [%v, %v], want [56, 545]", b.Top, b.Bottom)
	}
	if b.CenterY != 300 {
		t.Errorf("CenterY = %v, want floored 300", b.CenterY)
	}
}

func TestShapeBoundsRoundedRect(t *testing.T) {
	box := CenteredBox(600, 600, 200, 40)
	if box != (Rect{X0: 200, Y0: 280, X1: 400, Y1: 320}) {
		t.Fatalf("CenteredBox = %+v", box)
	}
	s := Shape{Kind: RoundedRect, RoundedRect: RoundedRectParams{Box: box, Radius: 20}}
	b := ShapeBounds(s, 600, 600)
	if b.Top != 280 || b.Bottom != 320 || b.CenterY != 300 || b.Radius != 20 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestWidthAtYCircle(t *testing.T) {
	s := Shape{Kind: Circle, Circle: CircleParams{Margin: 50}}

	l, r := WidthAtY(s, 300, 600, 600)
	if !approx(l, 50) || !approx(r, 550) {
		t.Errorf("WidthAtY(center) = (%v, %v), want (50, 550)", l, r)
	}

	l, r = WidthAtY(s, 50, 600, 600)
	if !approx(l, 300) || !approx(r, 300) {
		t.Errorf("WidthAtY(top) = (%v, %v), want (300, 300)", l, r)
	}

	l, r = WidthAtY(s, 10, 600, 600)
	if l != 300 || r != 300 {
		t.Errorf("WidthAtY(outside) = (%v, %v), want zero-width at center", l, r)
	}
}

func TestWidthAtYHexagon(t *testing.T) {
	s := Shape{Kind: Hexagon, Hexagon: HexagonParams{Radius: 250}}

	l, r := WidthAtY(s, 300, 600, 600)
	if !approx(l, 50) || !approx(r, 550) {
		t.Errorf("WidthAtY(center) = (%v, %v), want (50, 550)", l, r)
	}

	// Halfway between the center and the top edge the span shrinks linearly.
	half := 250 * math.Sin(math.Pi/3)
	l, r = WidthAtY(s, 300-half/2, 600, 600)
	if !approx(r-l, 375) {
		t.Errorf("WidthAtY(mid) width = %v, want 375", r-l)
	}

	l, r = WidthAtY(s, 0, 600, 600)
	if l != 50 || r != 550 {
		t.Errorf("WidthAtY(outside) = (%v, %v), want fallback (50, 550)", l, r)
	}
}

func TestWidthAtYShieldAndRect(t *testing.T) {
	shield := Shape{Kind: Shield, Shield: ShieldParams{Margin: 56}}
	if l, r := WidthAtY(shield, 200, 600, 600); l != 56 || r != 544 {
		t.Errorf("shield span = (%v, %v), want (56, 544)", l, r)
	}

	rect := Shape{Kind: RoundedRect, RoundedRect: RoundedRectParams{Box: Rect{X0: 100, Y0: 100, X1: 300, Y1: 140}}}
	if l, r := WidthAtY(rect, 120, 600, 600); l != 100 || r != 300 {
		t.Errorf("rect span inside = (%v, %v)", l, r)
	}
	if l, r := WidthAtY(rect, 200, 600, 600); l != 200 || r != 200 {
		t.Errorf("rect span outside = (%v, %v), want (200, 200)", l, r)
	}
}

func TestFallbackSpan(t *testing.T) {
	if l, r := FallbackSpan(600, DefaultFallbackInset); l != 50 || r != 550 {
		t.Errorf("FallbackSpan = (%v, %v), want (50, 550)", l, r)
	}
}

func TestScaled(t *testing.T) {
	s := Shape{
		Kind:   Shield,
		Shield: ShieldParams{Margin: 56, CornerRadius: 56, TipHeight: 110, TipInset: 36},
	}
	got := s.Scaled(2)
	want := ShieldParams{Margin: 112, CornerRadius: 112, TipHeight: 220, TipInset: 72}
	if got.Shield != want {
		t.Errorf("Scaled(2).Shield = %+v, want %+v", got.Shield, want)
	}
	if s.Shield.Margin != 56 {
		t.Error("Scaled mutated the receiver")
	}
}

func TestShieldOutline(t *testing.T) {
	body, tip := ShieldOutline(600, 600, ShieldParams{Margin: 56, CornerRadius: 56, TipHeight: 110, TipInset: 36})
	if body != (Rect{X0: 56, Y0: 56, X1: 544, Y1: 434}) {
		t.Errorf("body = %+v", body)
	}
	if tip[1] != (Point{X: 300, Y: 544}) {
		t.Errorf("tip apex = %+v, want (300, 544)", tip[1])
	}
	if tip[0].Y != 433 || tip[0].X != 92 || tip[2].X != 508 {
		t.Errorf("tip base = %+v %+v", tip[0], tip[2])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		wantErr bool
	}{
		{"hexagon ok", Shape{Kind: Hexagon, Hexagon: HexagonParams{Radius: 10}}, false},
		{"hexagon zero radius", Shape{Kind: Hexagon}, true},
		{"circle negative margin", Shape{Kind: Circle, Circle: CircleParams{Margin: -1}}, true},
		{"rect empty", Shape{Kind: RoundedRect}, true},
		{"unknown kind", Shape{Kind: Kind(42)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.shape.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
