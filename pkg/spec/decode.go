package spec

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strings"

	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/render/geometry"
	"github.com/matzehuels/badgeforge/pkg/render/raster"
)

// DecodeOption configures decoding limits.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	maxScale  int
	maxCanvas int
	fixedW    int
	fixedH    int
}

// WithMaxScale caps the accepted supersampling factor. The default is 4.
func WithMaxScale(n int) DecodeOption {
	return func(c *decodeConfig) {
		if n > 0 {
			c.maxScale = n
		}
	}
}

// WithMaxCanvas caps the accepted canvas width and height. Zero means no cap.
func WithMaxCanvas(n int) DecodeOption {
	return func(c *decodeConfig) { c.maxCanvas = n }
}

// WithFixedCanvas forces the canvas size, ignoring the document's width and
// height. Defaults that depend on the canvas are computed against the forced size.
func WithFixedCanvas(w, h int) DecodeOption {
	return func(c *decodeConfig) {
		if w > 0 && h > 0 {
			c.fixedW, c.fixedH = w, h
		}
	}
}

// Layer type tags, in both accepted spellings.
var layerTypes = map[string]LayerKind{
	"background":      KindBackground,
	"BackgroundLayer": KindBackground,
	"shape":           KindShape,
	"ShapeLayer":      KindShape,
	"image":           KindImage,
	"ImageLayer":      KindImage,
	"logo":            KindImage,
	"LogoLayer":       KindImage,
	"text":            KindText,
	"TextLayer":       KindText,
}

// Decode parses a JSON document.
func Decode(data []byte, opts ...DecodeOption) (*Document, error) {
	return Read(bytes.NewReader(data), opts...)
}

// Read decodes a JSON document from r. Read does not close r.
//
// Every layer is decoded and validated before Read returns; any error
// rejects the whole document.
func Read(r io.Reader, opts ...DecodeOption) (*Document, error) {
	cfg := decodeConfig{maxScale: DefaultMaxScale}
	for _, opt := range opts {
		opt(&cfg)
	}

	var raw wireDocument
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode document")
	}

	canvas, err := decodeCanvas(raw.Canvas, cfg)
	if err != nil {
		return nil, err
	}

	doc := &Document{Canvas: canvas, Layers: make([]Layer, 0, len(raw.Layers))}
	for i, data := range raw.Layers {
		l, err := decodeLayer(data, canvas)
		if err != nil {
			return nil, annotate(err, "layer %d", i)
		}
		doc.Layers = append(doc.Layers, l)
	}
	return doc, nil
}

// Load reads and decodes the JSON document at path.
func Load(path string, opts ...DecodeOption) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, opts...)
}

// annotate prefixes the message of a structured error, keeping its code.
func annotate(err error, format string, args ...any) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return &errors.Error{Code: e.Code, Message: fmt.Sprintf(format, args...) + ": " + e.Message, Cause: e.Cause}
	}
	return errors.Wrap(errors.ErrCodeInvalidSpec, err, format, args...)
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidSpec, format, args...)
}

// ===== Wire format =====

type wireDocument struct {
	Canvas *wireCanvas       `json:"canvas"`
	Layers []json.RawMessage `json:"layers"`
}

type wireCanvas struct {
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
	Bg          *string  `json:"bg"`
	Background  *string  `json:"background"`
	ScaleFactor *float64 `json:"scale_factor"`
	Scale       *float64 `json:"scale"`
}

type wireGradient struct {
	StartColor string `json:"start_color"`
	EndColor   string `json:"end_color"`
	Vertical   *bool  `json:"vertical"`
}

type wireFill struct {
	Mode       string        `json:"mode"`
	Color      string        `json:"color"`
	StartColor string        `json:"start_color"`
	EndColor   string        `json:"end_color"`
	Vertical   *bool         `json:"vertical"`
	Gradient   *wireGradient `json:"gradient"`
}

type wireBorder struct {
	Color *string  `json:"color"`
	Width *float64 `json:"width"`
}

type wireShapeParams struct {
	Radius       *float64        `json:"radius"`
	Margin       *float64        `json:"margin"`
	CornerRadius *float64        `json:"corner_radius"`
	TipHeight    *float64        `json:"tip_height"`
	TipInset     *float64        `json:"tip_inset"`
	Width        *float64        `json:"width"`
	Height       *float64        `json:"height"`
	Rect         json.RawMessage `json:"rect"`
}

type wireShape struct {
	Shape  *string         `json:"shape"`
	Fill   json.RawMessage `json:"fill"`
	Border *wireBorder     `json:"border"`
	Params wireShapeParams `json:"params"`
}

type wireSize struct {
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	Dynamic    bool     `json:"dynamic"`
	MaxWidth   *float64 `json:"max_width"`
	MaxHeight  *float64 `json:"max_height"`
	MaxUpscale *float64 `json:"max_upscale"`
}

type wirePlacement struct {
	X *Axis `json:"x"`
	Y *Axis `json:"y"`
}

type wireImage struct {
	Path     string          `json:"path"`
	Size     json.RawMessage `json:"size"`
	Width    *float64        `json:"width"`
	Height   *float64        `json:"height"`
	Y        *Axis           `json:"y"`
	Position *wirePlacement  `json:"position"`
	Opacity  *float64        `json:"opacity"`
}

type wireFont struct {
	Path string   `json:"path"`
	Size *float64 `json:"size"`
}

type wireWrap struct {
	MaxWidth json.RawMessage `json:"max_width"`
	Dynamic  bool            `json:"dynamic"`
	LineGap  *float64        `json:"line_gap"`
}

type wireText struct {
	Text  string         `json:"text"`
	Font  *wireFont      `json:"font"`
	Color string         `json:"color"`
	Align *wirePlacement `json:"align"`
	Wrap  *wireWrap      `json:"wrap"`
	Role  string         `json:"role"`
}

type wireLayerHeader struct {
	Type string   `json:"type"`
	Z    *float64 `json:"z"`
}

// ===== Canvas =====

func decodeCanvas(w *wireCanvas, cfg decodeConfig) (CanvasSpec, error) {
	c := DefaultCanvas()
	if w == nil {
		w = &wireCanvas{}
	}

	if w.Width != nil {
		c.Width = int(*w.Width)
	}
	if w.Height != nil {
		c.Height = int(*w.Height)
	}
	if cfg.fixedW > 0 {
		c.Width, c.Height = cfg.fixedW, cfg.fixedH
	}
	if c.Width <= 0 || c.Height <= 0 {
		return c, invalid("canvas size must be positive, got %dx%d", c.Width, c.Height)
	}
	if cfg.maxCanvas > 0 && (c.Width > cfg.maxCanvas || c.Height > cfg.maxCanvas) {
		return c, invalid("canvas size %dx%d exceeds the limit of %d", c.Width, c.Height, cfg.maxCanvas)
	}

	bg := w.Bg
	if bg == nil {
		bg = w.Background
	}
	if bg != nil {
		col, err := raster.ParseColor(*bg)
		if err != nil {
			return c, errors.Wrap(errors.ErrCodeInvalidSpec, err, "canvas background")
		}
		c.Background = col
		c.Transparent = strings.EqualFold(strings.TrimSpace(*bg), "transparent")
	}

	scale := w.ScaleFactor
	if scale == nil {
		scale = w.Scale
	}
	if scale != nil {
		c.Scale = int(*scale)
	}
	if c.Scale < 1 {
		return c, invalid("scale factor must be at least 1, got %d", c.Scale)
	}
	if c.Scale > cfg.maxScale {
		return c, invalid("scale factor %d exceeds the limit of %d", c.Scale, cfg.maxScale)
	}
	return c, nil
}

// ===== Layers =====

func decodeLayer(data json.RawMessage, canvas CanvasSpec) (Layer, error) {
	var h wireLayerHeader
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode")
	}
	kind, ok := layerTypes[h.Type]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownLayer, "unknown layer type: %q", h.Type)
	}
	z := 0
	if h.Z != nil {
		if *h.Z != math.Trunc(*h.Z) {
			return nil, invalid("z must be an integer, got %v", *h.Z)
		}
		z = int(*h.Z)
	}

	switch kind {
	case KindBackground:
		return decodeBackground(data, z)
	case KindShape:
		return decodeShape(data, z, canvas)
	case KindImage:
		return decodeImage(data, z)
	default:
		return decodeText(data, z)
	}
}

func unmarshal(data json.RawMessage, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSpec, err, "decode")
	}
	return nil
}

func decodeBackground(data json.RawMessage, z int) (Layer, error) {
	var w wireFill
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Mode == "" {
		w.Mode = "solid"
	}
	fill, err := toFill(w)
	if err != nil {
		return nil, err
	}
	return &BackgroundLayer{ZIndex: z, Fill: fill}, nil
}

// parseFill accepts the string "transparent" or a fill object.
// A missing fill is solid white.
func parseFill(data json.RawMessage) (Fill, error) {
	if len(data) == 0 || string(data) == "null" {
		return SolidFill(color.NRGBA{R: 255, G: 255, B: 255, A: 255}), nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if strings.EqualFold(s, "transparent") {
			return Fill{Mode: FillTransparent}, nil
		}
		c, err := raster.ParseColor(s)
		if err != nil {
			return Fill{}, errors.Wrap(errors.ErrCodeInvalidSpec, err, "fill")
		}
		return SolidFill(c), nil
	}
	var w wireFill
	if err := unmarshal(data, &w); err != nil {
		return Fill{}, err
	}
	if w.Mode == "" {
		w.Mode = "solid"
	}
	return toFill(w)
}

func toFill(w wireFill) (Fill, error) {
	parse := func(s, fallback string) (color.NRGBA, error) {
		if s == "" {
			s = fallback
		}
		c, err := raster.ParseColor(s)
		if err != nil {
			return c, errors.Wrap(errors.ErrCodeInvalidSpec, err, "fill")
		}
		return c, nil
	}

	switch strings.ToLower(w.Mode) {
	case "solid":
		c, err := parse(w.Color, "#FFFFFF")
		if err != nil {
			return Fill{}, err
		}
		return SolidFill(c), nil

	case "gradient":
		start, end, vertical := w.StartColor, w.EndColor, w.Vertical
		if g := w.Gradient; g != nil {
			if g.StartColor != "" {
				start = g.StartColor
			}
			if g.EndColor != "" {
				end = g.EndColor
			}
			if g.Vertical != nil {
				vertical = g.Vertical
			}
		}
		s, err := parse(start, "#FFFFFF")
		if err != nil {
			return Fill{}, err
		}
		e, err := parse(end, "#FFFFFF")
		if err != nil {
			return Fill{}, err
		}
		return GradientFill(s, e, vertical == nil || *vertical), nil

	case "transparent":
		return Fill{Mode: FillTransparent}, nil
	}
	return Fill{}, invalid("unknown fill mode %q", w.Mode)
}

func decodeShape(data json.RawMessage, z int, canvas CanvasSpec) (Layer, error) {
	var w wireShape
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}

	name := "hexagon"
	if w.Shape != nil {
		name = *w.Shape
	}
	kind, ok := geometry.ParseKind(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownShape, "unknown shape: %q", name)
	}

	l := &ShapeLayer{ZIndex: z}
	shape, dynamicRect, err := toShape(kind, w.Params, canvas)
	if err != nil {
		return nil, err
	}
	l.Shape, l.DynamicRect = shape, dynamicRect

	if l.Fill, err = parseFill(w.Fill); err != nil {
		return nil, err
	}

	if b := w.Border; b != nil {
		if b.Width != nil {
			if *b.Width < 0 {
				return nil, invalid("border width must not be negative")
			}
			l.Border.Width = *b.Width
		}
		if b.Color != nil && *b.Color != "" {
			c, err := raster.ParseColor(*b.Color)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "border")
			}
			l.Border.Color = &c
		}
	}
	return l, nil
}

func param(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func toShape(kind geometry.Kind, p wireShapeParams, canvas CanvasSpec) (geometry.Shape, bool, error) {
	s := geometry.Shape{Kind: kind}
	dynamicRect := false

	switch kind {
	case geometry.Hexagon:
		def := float64(min(canvas.Width, canvas.Height)/2) - geometry.DefaultHexagonInset
		s.Hexagon.Radius = param(p.Radius, def)

	case geometry.Circle:
		s.Circle.Margin = param(p.Margin, geometry.DefaultCircleMargin)

	case geometry.Shield:
		s.Shield = geometry.ShieldParams{
			Margin:       param(p.Margin, geometry.DefaultShieldMargin),
			CornerRadius: param(p.CornerRadius, geometry.DefaultShieldCorner),
			TipHeight:    param(p.TipHeight, geometry.DefaultShieldTipHeight),
			TipInset:     param(p.TipInset, geometry.DefaultShieldTipInset),
		}

	case geometry.RoundedRect:
		width := param(p.Width, geometry.DefaultRectWidth)
		height := param(p.Height, geometry.DefaultRectHeight)
		if width <= 0 || height <= 0 {
			return s, false, invalid("rounded_rect size must be positive, got %vx%v", width, height)
		}
		s.RoundedRect.Radius = param(p.Radius, geometry.DefaultRectCornerRadius)
		s.RoundedRect.Box = geometry.CenteredBox(canvas.Width, canvas.Height, width, height)

		if len(p.Rect) > 0 && string(p.Rect) != "null" {
			var tag string
			var box [4]float64
			switch {
			case json.Unmarshal(p.Rect, &tag) == nil:
				if tag != "dynamic" {
					return s, false, invalid("rect must be [x1, y1, x2, y2] or \"dynamic\", got %q", tag)
				}
				dynamicRect = true
			case json.Unmarshal(p.Rect, &box) == nil:
				s.RoundedRect.Box = geometry.Rect{X0: box[0], Y0: box[1], X1: box[2], Y1: box[3]}
			default:
				return s, false, invalid("rect must be [x1, y1, x2, y2] or \"dynamic\"")
			}
		}
	}

	if err := s.Validate(); err != nil {
		return s, false, errors.Wrap(errors.ErrCodeInvalidSpec, err, "shape")
	}
	return s, dynamicRect, nil
}

func decodeImage(data json.RawMessage, z int) (Layer, error) {
	var w wireImage
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}
	if w.Path == "" {
		return nil, invalid("image path is required")
	}
	if err := validateAssetPath(w.Path); err != nil {
		return nil, err
	}

	l := &ImageLayer{ZIndex: z, Path: w.Path, Position: Centered(), Opacity: 1}

	size, err := toSize(w)
	if err != nil {
		return nil, err
	}
	l.Size = size

	switch {
	case w.Position != nil:
		if w.Position.X != nil {
			l.Position.X = *w.Position.X
		}
		if w.Position.Y != nil {
			l.Position.Y = *w.Position.Y
		}
	case w.Y != nil:
		l.Position.Y = *w.Y
	}
	if l.Position.X.IsDynamic() {
		return nil, invalid("image position x cannot be dynamic")
	}

	if w.Opacity != nil {
		if *w.Opacity < 0 || *w.Opacity > 1 {
			return nil, invalid("opacity must be within [0, 1], got %v", *w.Opacity)
		}
		l.Opacity = *w.Opacity
	}
	return l, nil
}

// toSize accepts "size": 120 (by width), top-level "width"/"height",
// "size": {"width", "height"} and dynamic sizing via "dynamic" or any max bound.
func toSize(w wireImage) (SizePolicy, error) {
	var ws wireSize
	if len(w.Size) > 0 && string(w.Size) != "null" {
		var n float64
		if err := json.Unmarshal(w.Size, &n); err == nil {
			ws.Width = &n
		} else if err := json.Unmarshal(w.Size, &ws); err != nil {
			return SizePolicy{}, invalid("size must be a number or an object")
		}
	} else {
		ws.Width, ws.Height = w.Width, w.Height
	}

	if ws.Dynamic || ws.MaxWidth != nil || ws.MaxHeight != nil {
		p := DynamicSize()
		p.MaxWidth = param(ws.MaxWidth, p.MaxWidth)
		p.MaxHeight = param(ws.MaxHeight, p.MaxHeight)
		p.MaxUpscale = param(ws.MaxUpscale, p.MaxUpscale)
		if p.MaxWidth <= 0 || p.MaxHeight <= 0 || p.MaxUpscale <= 0 {
			return p, invalid("dynamic size bounds must be positive")
		}
		// Carried so layout can fall back to it when the bitmap is missing.
		p.Height = param(ws.Height, 0)
		return p, nil
	}

	p := SizePolicy{Density: 1}
	for _, v := range []*float64{ws.Width, ws.Height} {
		if v != nil && *v <= 0 {
			return p, invalid("image size must be positive, got %v", *v)
		}
	}
	switch {
	case ws.Width != nil && ws.Height != nil:
		p.Kind, p.Width, p.Height = SizeFixed, *ws.Width, *ws.Height
	case ws.Width != nil:
		p.Kind, p.Width = SizeByWidth, *ws.Width
	case ws.Height != nil:
		p.Kind, p.Height = SizeByHeight, *ws.Height
	default:
		p.Kind = SizeNatural
	}
	return p, nil
}

func decodeText(data json.RawMessage, z int) (Layer, error) {
	var w wireText
	if err := unmarshal(data, &w); err != nil {
		return nil, err
	}

	l := &TextLayer{
		ZIndex: z,
		Text:   w.Text,
		Font:   FontRef{Size: DefaultFontSize},
		Color:  color.NRGBA{A: 255},
		Align:  Centered(),
		Wrap:   Wrap{LineGap: DefaultLineGap},
	}

	if f := w.Font; f != nil {
		if f.Path != "" {
			if err := validateAssetPath(f.Path); err != nil {
				return nil, err
			}
			l.Font.Path = f.Path
		}
		if f.Size != nil {
			if *f.Size <= 0 {
				return nil, invalid("font size must be positive, got %v", *f.Size)
			}
			l.Font.Size = *f.Size
		}
	}

	if w.Color != "" {
		c, err := raster.ParseColor(w.Color)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSpec, err, "text color")
		}
		l.Color = c
	}

	if a := w.Align; a != nil {
		if a.X != nil {
			l.Align.X = *a.X
		}
		if a.Y != nil {
			l.Align.Y = *a.Y
		}
	}
	if l.Align.X.IsDynamic() {
		return nil, invalid("text align x cannot be dynamic")
	}

	if wr := w.Wrap; wr != nil {
		l.Wrap.Dynamic = wr.Dynamic
		if wr.LineGap != nil {
			if *wr.LineGap < 0 {
				return nil, invalid("line gap must not be negative")
			}
			l.Wrap.LineGap = *wr.LineGap
		}
		if len(wr.MaxWidth) > 0 && string(wr.MaxWidth) != "null" {
			var tag string
			var n float64
			switch {
			case json.Unmarshal(wr.MaxWidth, &tag) == nil && tag == "dynamic":
				l.Wrap.Dynamic = true
			case json.Unmarshal(wr.MaxWidth, &n) == nil && n > 0:
				l.Wrap.MaxWidth = &n
			default:
				return nil, invalid("wrap max_width must be a positive number or \"dynamic\"")
			}
		}
	}

	switch strings.ToLower(w.Role) {
	case "":
	case "title":
		l.Role = RoleTitle
	case "subtitle":
		l.Role = RoleSubtitle
	case "tertiary":
		l.Role = RoleTertiary
	default:
		return nil, invalid("unknown text role %q", w.Role)
	}
	return l, nil
}

// validateAssetPath accepts http(s) URLs and safe relative paths.
func validateAssetPath(p string) error {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return errors.ValidateURL(p)
	}
	return errors.ValidatePath(p)
}
