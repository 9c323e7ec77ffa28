package layer

import (
	"image"
	"image/color"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/badgeforge/pkg/render/align"
)

// Metrics measures strings for wrapping and block layout.
type Metrics interface {
	// Advance is the horizontal pen advance of s in pixels.
	Advance(s string) float64
	// InkHeight is the height of the glyph ink box of s in whole pixels.
	InkHeight(s string) float64
}

// FaceMetrics measures with a font face.
type FaceMetrics struct {
	Face font.Face
}

func (m FaceMetrics) Advance(s string) float64 {
	return float64(font.MeasureString(m.Face, s)) / 64
}

func (m FaceMetrics) InkHeight(s string) float64 {
	b, _ := font.BoundString(m.Face, s)
	return float64(b.Max.Y.Ceil() - b.Min.Y.Floor())
}

// inkTop is the distance from the baseline up to the top of the ink of s.
func inkTop(face font.Face, s string) float64 {
	b, _ := font.BoundString(face, s)
	return float64(-b.Min.Y.Floor())
}

// WrapLines splits text into paragraphs on '\n' and greedily wraps each one
// to maxWidth. Words are joined while the line still fits; a word wider than
// maxWidth sits alone on its line and is never split. A maxWidth of zero or
// less disables wrapping and keeps paragraphs verbatim.
func WrapLines(m Metrics, text string, maxWidth float64) []string {
	paras := strings.Split(text, "\n")
	if maxWidth <= 0 {
		return paras
	}

	var lines []string
	for _, para := range paras {
		cur := ""
		for _, word := range strings.Fields(para) {
			test := word
			if cur != "" {
				test = cur + " " + word
			}
			if cur == "" || m.Advance(test) <= maxWidth {
				cur = test
				continue
			}
			lines = append(lines, cur)
			cur = word
		}
		lines = append(lines, cur)
	}
	return lines
}

// Block is the measured extent of a set of lines.
type Block struct {
	Width  int
	Height int
}

// MeasureBlock returns the widest line advance and the sum of line ink
// heights plus gap between consecutive lines.
func MeasureBlock(m Metrics, lines []string, gap int) Block {
	var b Block
	for i, ln := range lines {
		b.Width = max(b.Width, int(m.Advance(ln)))
		b.Height += int(m.InkHeight(ln))
		if i > 0 {
			b.Height += gap
		}
	}
	return b
}

// TextStyle holds the resolved presentation of a text block.
type TextStyle struct {
	Color color.NRGBA
	X, Y  align.Anchor
	// MaxWidth is the wrap width; zero or less disables wrapping.
	MaxWidth float64
	LineGap  float64
}

// Text paints a wrapped block of text.
type Text struct {
	face    font.Face
	metrics Metrics
	style   TextStyle
	lines   []string
}

// NewText wraps text with face and returns its painter. The face must not be
// shared with concurrently painting layers.
func NewText(face font.Face, text string, style TextStyle) *Text {
	m := FaceMetrics{Face: face}
	return &Text{
		face:    face,
		metrics: m,
		style:   style,
		lines:   WrapLines(m, text, style.MaxWidth),
	}
}

// Lines returns the wrapped lines.
func (t *Text) Lines() []string { return t.lines }

func (t *Text) gap() int { return int(t.style.LineGap) }

// Block returns the measured extent of the wrapped lines.
func (t *Text) Block() Block {
	return MeasureBlock(t.metrics, t.lines, t.gap())
}

// Origin returns the resolved top-left corner of the block on a w×h canvas.
func (t *Text) Origin(w, h int) (int, int) {
	b := t.Block()
	return align.ResolveBox(t.style.X, t.style.Y, b.Width, b.Height, w, h)
}

// Paint draws each line with the top of its ink at the cursor. With a
// horizontal center keyword every line is centered on the canvas on its own.
func (t *Text) Paint(dst *image.RGBA) {
	r := dst.Bounds()
	w, h := r.Dx(), r.Dy()
	x, y := t.Origin(w, h)
	center := t.style.X.IsKeyword() && t.style.X.KeywordValue() == align.Center

	dc := gg.NewContextForRGBA(dst)
	dc.SetFontFace(t.face)
	dc.SetColor(t.style.Color)

	cy := float64(y)
	for _, ln := range t.lines {
		lx := x
		if center {
			lx = (w - int(t.metrics.Advance(ln))) / 2
		}
		if ln != "" {
			dc.DrawString(ln, float64(r.Min.X+lx), float64(r.Min.Y)+cy+inkTop(t.face, ln))
		}
		cy += t.metrics.InkHeight(ln) + float64(t.gap())
	}
}
