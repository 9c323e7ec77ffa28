package spec

import (
	"encoding/json"
	"image/color"

	"github.com/matzehuels/badgeforge/pkg/render/align"
	"github.com/matzehuels/badgeforge/pkg/render/geometry"
)

// Canvas defaults.
const (
	DefaultWidth    = 600
	DefaultHeight   = 600
	DefaultScale    = 1
	DefaultMaxScale = 4
)

// Image and text defaults.
const (
	DefaultMaxImageWidth  = 280.0
	DefaultMaxImageHeight = 120.0
	DefaultMaxUpscale     = 2.0
	DefaultFontSize       = 24.0
	DefaultLineGap        = 6.0
)

// Document is a decoded badge: the canvas plus its layers in document order.
type Document struct {
	Canvas CanvasSpec
	Layers []Layer
}

// CanvasSpec describes the output canvas.
type CanvasSpec struct {
	Width  int
	Height int
	// Background is the canvas fill. It is fully transparent white when
	// Transparent is set.
	Background  color.NRGBA
	Transparent bool
	// Scale is the supersampling factor, at least 1.
	Scale int
}

// DefaultCanvas returns a 600×600 white canvas at scale 1.
func DefaultCanvas() CanvasSpec {
	return CanvasSpec{
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Scale:      DefaultScale,
	}
}

// LayerKind identifies a layer variant.
type LayerKind int

// Layer kinds.
const (
	KindBackground LayerKind = iota + 1
	KindShape
	KindImage
	KindText
)

func (k LayerKind) String() string {
	switch k {
	case KindBackground:
		return "background"
	case KindShape:
		return "shape"
	case KindImage:
		return "image"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Layer is one entry of a document. The set of implementations is closed:
// *BackgroundLayer, *ShapeLayer, *ImageLayer and *TextLayer.
type Layer interface {
	// Z is the paint priority; higher paints later.
	Z() int
	Kind() LayerKind
	// Scaled returns a copy with every length multiplied by k.
	Scaled(k float64) Layer
	isLayer()
}

// FillMode selects how a region is filled.
type FillMode int

// Fill modes.
const (
	FillSolid FillMode = iota
	FillGradient
	FillTransparent
)

// Fill describes the paint of a background or shape.
type Fill struct {
	Mode  FillMode
	Color color.NRGBA
	Start color.NRGBA
	End   color.NRGBA
	// Vertical gradients run top to bottom, horizontal ones left to right.
	Vertical bool
}

// SolidFill returns a solid fill of c.
func SolidFill(c color.NRGBA) Fill { return Fill{Mode: FillSolid, Color: c} }

// GradientFill returns a two-stop linear gradient.
func GradientFill(start, end color.NRGBA, vertical bool) Fill {
	return Fill{Mode: FillGradient, Start: start, End: end, Vertical: vertical}
}

// Border is an optional outline stroke.
type Border struct {
	Color *color.NRGBA
	Width float64
}

// Visible reports whether the border should be drawn.
func (b Border) Visible() bool { return b.Color != nil && b.Width > 0 }

// Axis is a placement along one axis: either a fixed anchor or Dynamic.
// The zero value is the literal 0.
type Axis struct {
	dynamic bool
	anchor  align.Anchor
}

// Dynamic returns an axis resolved from shape geometry at render time.
func Dynamic() Axis { return Axis{dynamic: true} }

// Fixed returns an axis pinned to a.
func Fixed(a align.Anchor) Axis { return Axis{anchor: a} }

// Center is the keyword axis "center".
func Center() Axis { return Fixed(align.Keyword(align.Center)) }

// IsDynamic reports whether the axis is a dynamic placeholder.
func (a Axis) IsDynamic() bool { return a.dynamic }

// Anchor returns the fixed anchor and true, or false for a dynamic axis.
func (a Axis) Anchor() (align.Anchor, bool) {
	if a.dynamic {
		return align.Anchor{}, false
	}
	return a.anchor, true
}

// Or returns the fixed anchor, or fallback when the axis is dynamic.
func (a Axis) Or(fallback align.Anchor) align.Anchor {
	if a.dynamic {
		return fallback
	}
	return a.anchor
}

func (a Axis) scaled(k float64) Axis {
	if a.dynamic {
		return a
	}
	return Axis{anchor: a.anchor.Scaled(k)}
}

func (a Axis) String() string {
	if a.dynamic {
		return "dynamic"
	}
	return a.anchor.String()
}

// MarshalJSON encodes a dynamic axis as "dynamic" and a fixed axis as its anchor.
func (a Axis) MarshalJSON() ([]byte, error) {
	if a.dynamic {
		return json.Marshal("dynamic")
	}
	return a.anchor.MarshalJSON()
}

// UnmarshalJSON accepts "dynamic", a number or an alignment keyword.
func (a *Axis) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s == "dynamic" {
		*a = Dynamic()
		return nil
	}
	var anchor align.Anchor
	if err := anchor.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = Fixed(anchor)
	return nil
}

// Placement positions a box on the canvas.
type Placement struct {
	X Axis
	Y Axis
}

// Centered returns the placement center/center.
func Centered() Placement { return Placement{X: Center(), Y: Center()} }

func (p Placement) scaled(k float64) Placement {
	return Placement{X: p.X.scaled(k), Y: p.Y.scaled(k)}
}

// BackgroundLayer fills the whole canvas.
type BackgroundLayer struct {
	ZIndex int
	Fill   Fill
}

func (l *BackgroundLayer) Z() int { return l.ZIndex }
func (l *BackgroundLayer) Kind() LayerKind { return KindBackground }
func (l *BackgroundLayer) Scaled(float64) Layer { c := *l; return &c }
func (*BackgroundLayer) isLayer() {}

// ShapeLayer paints a shape from the fixed vocabulary.
type ShapeLayer struct {
	ZIndex int
	Shape  geometry.Shape
	// DynamicRect marks a rounded rectangle whose box is placed at render
	// time, centered on the tertiary anchor of the reference shape.
	DynamicRect bool
	Fill        Fill
	Border      Border
}

func (l *ShapeLayer) Z() int { return l.ZIndex }
func (l *ShapeLayer) Kind() LayerKind { return KindShape }
func (*ShapeLayer) isLayer() {}

func (l *ShapeLayer) Scaled(k float64) Layer {
	c := *l
	c.Shape = l.Shape.Scaled(k)
	c.Border.Width *= k
	return &c
}

// SizeKind selects how an image is sized.
type SizeKind int

// Image sizing policies.
const (
	SizeNatural SizeKind = iota
	SizeFixed
	SizeByWidth
	SizeByHeight
	SizeDynamic
)

// SizePolicy describes how an image is resized before painting.
type SizePolicy struct {
	Kind   SizeKind
	Width  float64
	Height float64
	// Dynamic sizing bounds.
	MaxWidth   float64
	MaxHeight  float64
	MaxUpscale float64
	// Density multiplies the natural size of the bitmap. It is 1 at nominal
	// scale and grows with the supersampling factor.
	Density float64
}

// DynamicSize returns the default dynamic policy: fit into 280×120 with at most 2× upscale.
func DynamicSize() SizePolicy {
	return SizePolicy{
		Kind:       SizeDynamic,
		MaxWidth:   DefaultMaxImageWidth,
		MaxHeight:  DefaultMaxImageHeight,
		MaxUpscale: DefaultMaxUpscale,
		Density:    1,
	}
}

// ImageLayer paints a bitmap looked up by path.
type ImageLayer struct {
	ZIndex   int
	Path     string
	Size     SizePolicy
	Position Placement
	Opacity  float64
}

func (l *ImageLayer) Z() int { return l.ZIndex }
func (l *ImageLayer) Kind() LayerKind { return KindImage }
func (*ImageLayer) isLayer() {}

// Scaled scales fixed dimensions, dynamic bounds and literal positions.
// The upscale cap and density scale too, since both are ratios against the
// bitmap's natural size, which does not change.
func (l *ImageLayer) Scaled(k float64) Layer {
	c := *l
	c.Size.Width *= k
	c.Size.Height *= k
	c.Size.MaxWidth *= k
	c.Size.MaxHeight *= k
	c.Size.MaxUpscale *= k
	c.Size.Density *= k
	c.Position = l.Position.scaled(k)
	return &c
}

// FontRef names a font by asset path and size in pixels.
// An empty path selects the built-in font.
type FontRef struct {
	Path string
	Size float64
}

// Wrap controls line wrapping of a text block.
type Wrap struct {
	// MaxWidth is the wrap width; nil disables wrapping.
	MaxWidth *float64
	// Dynamic derives the wrap width from the reference shape's span at the
	// block's position. It is ignored when MaxWidth is set.
	Dynamic bool
	LineGap float64
}

// Role is the layout slot of a dynamically positioned text layer.
type Role int

// Text roles.
const (
	RoleNone Role = iota
	RoleTitle
	RoleSubtitle
	RoleTertiary
)

var roleNames = map[Role]string{
	RoleTitle:    "title",
	RoleSubtitle: "subtitle",
	RoleTertiary: "tertiary",
}

func (r Role) String() string {
	if n, ok := roleNames[r]; ok {
		return n
	}
	return "none"
}

// TextLayer paints a block of text.
type TextLayer struct {
	ZIndex int
	Text   string
	Font   FontRef
	Color  color.NRGBA
	Align  Placement
	Wrap   Wrap
	// Role pins a dynamic-y text layer to a slot. RoleNone takes the next
	// unclaimed slot by order of appearance.
	Role Role
}

func (l *TextLayer) Z() int { return l.ZIndex }
func (l *TextLayer) Kind() LayerKind { return KindText }
func (*TextLayer) isLayer() {}

// Scaled scales the font size, wrap width, line gap and literal alignment.
func (l *TextLayer) Scaled(k float64) Layer {
	c := *l
	c.Font.Size *= k
	c.Wrap.LineGap *= k
	if l.Wrap.MaxWidth != nil {
		w := *l.Wrap.MaxWidth * k
		c.Wrap.MaxWidth = &w
	}
	c.Align = l.Align.scaled(k)
	return &c
}
