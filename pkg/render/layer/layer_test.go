package layer

import (
	"image"
	"image/color"
	"reflect"
	"testing"

	"github.com/matzehuels/badgeforge/pkg/fonts"
	"github.com/matzehuels/badgeforge/pkg/render/align"
	"github.com/matzehuels/badgeforge/pkg/render/geometry"
	"github.com/matzehuels/badgeforge/pkg/spec"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

// monoMetrics gives every rune a 10px advance and every line 10px of ink.
type monoMetrics struct{}

func (monoMetrics) Advance(s string) float64 { return float64(10 * len([]rune(s))) }
func (monoMetrics) InkHeight(s string) float64 {
	if s == "" {
		return 0
	}
	return 10
}

func canvas(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func at(img *image.RGBA, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

func TestWrapLines(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWidth float64
		want     []string
	}{
		{"one word per line", "Soft Skill Credential", 60, []string{"Soft", "Skill", "Credential"}},
		{"exact fit", "ab cd", 50, []string{"ab cd"}},
		{"two per line", "aa bb cc dd", 50, []string{"aa bb", "cc dd"}},
		{"no wrap", "Soft Skill Credential", 0, []string{"Soft Skill Credential"}},
		{"explicit breaks", "Spark\nChallenge", 0, []string{"Spark", "Challenge"}},
		{"breaks and wrap", "a b\nc", 20, []string{"a", "b", "c"}},
		{"collapses spaces", "a   b", 100, []string{"a b"}},
		{"empty", "", 100, []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapLines(monoMetrics{}, tt.text, tt.maxWidth)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("WrapLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapLinesRealFace(t *testing.T) {
	f, err := fonts.Regular()
	if err != nil {
		t.Fatal(err)
	}
	m := FaceMetrics{Face: fonts.Face(f, 36)}
	widest := max(m.Advance("Soft"), m.Advance("Skill"), m.Advance("Credential"))
	limit := widest + 1
	if m.Advance("Soft Skill") <= limit {
		t.Skip("face too narrow for a one-word-per-line budget")
	}

	got := WrapLines(m, "Soft Skill Credential", limit)
	want := []string{"Soft", "Skill", "Credential"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("WrapLines() = %q, want %q", got, want)
	}
	for _, ln := range got {
		if m.Advance(ln) > limit {
			t.Errorf("line %q wider than %v", ln, limit)
		}
	}
}

func TestMeasureBlock(t *testing.T) {
	b := MeasureBlock(monoMetrics{}, []string{"abc", "abcde", "a"}, 6)
	if b.Width != 50 || b.Height != 42 {
		t.Errorf("MeasureBlock() = %+v, want {50 42}", b)
	}
	if b := MeasureBlock(monoMetrics{}, nil, 6); b != (Block{}) {
		t.Errorf("MeasureBlock(nil) = %+v", b)
	}
}

func TestFitSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		policy       spec.SizePolicy
		wantW, wantH int
	}{
		{"dynamic downscale", 1000, 500, spec.DynamicSize(), 240, 120},
		{"dynamic upscale capped", 50, 20, spec.DynamicSize(), 100, 40},
		{"dynamic upscale under cap", 200, 100, spec.DynamicSize(), 240, 120},
		{"fixed", 100, 100, spec.SizePolicy{Kind: spec.SizeFixed, Width: 30, Height: 40}, 30, 40},
		{"by width", 300, 200, spec.SizePolicy{Kind: spec.SizeByWidth, Width: 100}, 100, 66},
		{"by height", 300, 200, spec.SizePolicy{Kind: spec.SizeByHeight, Height: 50}, 75, 50},
		{"natural", 30, 20, spec.SizePolicy{}, 30, 20},
		{"natural density", 30, 20, spec.SizePolicy{Density: 2}, 60, 40},
		{"at least one pixel", 1000, 10, spec.SizePolicy{Kind: spec.SizeByWidth, Width: 10}, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := FitSize(tt.w, tt.h, tt.policy)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestImagePaint(t *testing.T) {
	src := solidImage(1000, 500, red)
	p := NewImage(src, spec.DynamicSize(), align.Keyword(align.Center), align.Literal(10), 1)

	if w, h := p.DynamicSize(); w != 240 || h != 120 {
		t.Fatalf("DynamicSize() = %dx%d, want 240x120", w, h)
	}

	dst := canvas(400, 400)
	p.Paint(dst)

	// x = (400-240)/2 = 80, y = 10
	if c := at(dst, 200, 70); c != red {
		t.Errorf("inside = %v, want red", c)
	}
	if c := at(dst, 70, 70); c.A != 0 {
		t.Errorf("left of image = %v, want transparent", c)
	}
	if c := at(dst, 200, 5); c.A != 0 {
		t.Errorf("above image = %v, want transparent", c)
	}
	if c := at(dst, 200, 135); c.A != 0 {
		t.Errorf("below image = %v, want transparent", c)
	}
}

func TestImageOpacity(t *testing.T) {
	src := solidImage(10, 10, blue)
	p := NewImage(src, spec.SizePolicy{}, align.Literal(0), align.Literal(0), 0.5)
	dst := canvas(20, 20)
	p.Paint(dst)

	c := dst.RGBAAt(5, 5)
	if c.A < 120 || c.A > 135 {
		t.Errorf("alpha = %d, want about 128", c.A)
	}
	if src.Pix[3] != 255 {
		t.Error("Paint modified the source bitmap")
	}
}

func TestBackground(t *testing.T) {
	t.Run("solid replaces", func(t *testing.T) {
		dst := canvas(10, 10)
		NewBackground(spec.SolidFill(red)).Paint(dst)
		NewBackground(spec.SolidFill(color.NRGBA{0, 0, 255, 0})).Paint(dst)
		if c := dst.RGBAAt(3, 3); c.A != 0 {
			t.Errorf("solid fill should replace pixels, got %v", c)
		}
	})
	t.Run("gradient composites", func(t *testing.T) {
		dst := canvas(10, 100)
		NewBackground(spec.GradientFill(white, black, true)).Paint(dst)
		top, bottom := at(dst, 5, 0), at(dst, 5, 99)
		if top.R < 240 || bottom.R > 15 {
			t.Errorf("gradient top = %v, bottom = %v", top, bottom)
		}
	})
	t.Run("transparent paints nothing", func(t *testing.T) {
		dst := canvas(10, 10)
		NewBackground(spec.SolidFill(red)).Paint(dst)
		NewBackground(spec.Fill{Mode: spec.FillTransparent}).Paint(dst)
		if c := at(dst, 3, 3); c != red {
			t.Errorf("pixel = %v, want red", c)
		}
	})
}

func TestShapePaint(t *testing.T) {
	circle := geometry.Shape{Kind: geometry.Circle, Circle: geometry.CircleParams{Margin: 20}}

	t.Run("fill inside only", func(t *testing.T) {
		dst := canvas(200, 200)
		NewShape(circle, spec.SolidFill(red), spec.Border{}).Paint(dst)
		if c := at(dst, 100, 100); c != red {
			t.Errorf("center = %v, want red", c)
		}
		if c := at(dst, 5, 5); c.A != 0 {
			t.Errorf("corner = %v, want transparent", c)
		}
	})

	t.Run("border on edge", func(t *testing.T) {
		dst := canvas(200, 200)
		NewShape(circle, spec.SolidFill(red), spec.Border{Color: &blue, Width: 6}).Paint(dst)
		if c := at(dst, 100, 20); c.B < 200 {
			t.Errorf("top edge = %v, want blue border", c)
		}
		if c := at(dst, 100, 100); c != red {
			t.Errorf("center = %v, want red", c)
		}
	})

	t.Run("transparent fill with border", func(t *testing.T) {
		dst := canvas(200, 200)
		NewShape(circle, spec.Fill{Mode: spec.FillTransparent}, spec.Border{Color: &blue, Width: 4}).Paint(dst)
		if c := at(dst, 100, 100); c.A != 0 {
			t.Errorf("center = %v, want transparent", c)
		}
	})
}

func inkRows(img *image.RGBA) (top, bottom int) {
	top, bottom = -1, -1
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A > 0 {
				if top < 0 {
					top = y
				}
				bottom = y
				break
			}
		}
	}
	return top, bottom
}

func TestTextInkTopAtCursor(t *testing.T) {
	f, err := fonts.Regular()
	if err != nil {
		t.Fatal(err)
	}
	dst := canvas(300, 200)
	p := NewText(fonts.Face(f, 40), "Hello", TextStyle{
		Color: black,
		X:     align.Literal(10),
		Y:     align.Literal(50),
	})
	p.Paint(dst)

	top, bottom := inkRows(dst)
	if top < 49 || top > 51 {
		t.Errorf("ink top = %d, want about 50", top)
	}
	if h := p.Block().Height; bottom-top+1 > h+1 {
		t.Errorf("ink spans %d rows, block height %d", bottom-top+1, h)
	}
}

func TestTextCentersEachLine(t *testing.T) {
	f, err := fonts.Regular()
	if err != nil {
		t.Fatal(err)
	}
	face := fonts.Face(f, 30)
	p := NewText(face, "W\nWWWWWW", TextStyle{
		Color:   black,
		X:       align.Keyword(align.Center),
		Y:       align.Keyword(align.Top),
		LineGap: 10,
	})
	if got := len(p.Lines()); got != 2 {
		t.Fatalf("lines = %d, want 2", got)
	}

	dst := canvas(400, 200)
	p.Paint(dst)

	m := FaceMetrics{Face: face}
	firstH := int(m.InkHeight("W"))
	row := firstH / 2
	left, right := -1, -1
	for x := 0; x < 400; x++ {
		if dst.RGBAAt(x, row).A > 0 {
			if left < 0 {
				left = x
			}
			right = x
		}
	}
	if left < 0 {
		t.Fatal("first line not painted")
	}
	mid := (left + right) / 2
	if mid < 190 || mid > 210 {
		t.Errorf("first line centered at %d, want about 200", mid)
	}
}

func TestTextBlockWithWrap(t *testing.T) {
	f, err := fonts.Regular()
	if err != nil {
		t.Fatal(err)
	}
	face := fonts.Face(f, 24)
	centered := align.Keyword(align.Center)
	unwrapped := NewText(face, "Soft Skill Credential", TextStyle{X: centered, Y: centered})
	wrapped := NewText(face, "Soft Skill Credential", TextStyle{MaxWidth: 1, LineGap: 6})

	if len(wrapped.Lines()) != 3 {
		t.Fatalf("wrapped lines = %q", wrapped.Lines())
	}
	if wrapped.Block().Height <= unwrapped.Block().Height {
		t.Error("wrapping should grow the block height")
	}
	if wrapped.Block().Width >= unwrapped.Block().Width {
		t.Error("wrapping should shrink the block width")
	}

	x, y := unwrapped.Origin(600, 600)
	b := unwrapped.Block()
	if x != (600-b.Width)/2 || y != (600-b.Height)/2 {
		t.Errorf("Origin() = (%d,%d) for block %+v", x, y, b)
	}
}
