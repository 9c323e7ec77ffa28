package compose

import (
	"context"
	"image"
	"math"

	"github.com/matzehuels/badgeforge/pkg/assets"
	"github.com/matzehuels/badgeforge/pkg/render/align"
	"github.com/matzehuels/badgeforge/pkg/render/geometry"
	"github.com/matzehuels/badgeforge/pkg/render/layer"
	"github.com/matzehuels/badgeforge/pkg/spec"
)

// Slot positions as fractions of the reference shape height, measured from
// its top. The tertiary anchor is measured below the shape's center.
const (
	logoCenterFraction = 0.20
	titleFraction      = 0.361
	subtitleFraction   = 0.477
	tertiaryFraction   = 0.15

	// Tertiary text height estimate as a fraction of its font size.
	tertiaryInkFraction = 0.7
)

// Nominal lengths used by the pre-pass. They are multiplied by the scale
// factor like every other length.
const (
	defaultLogoHeight = 85.0
	wrapPadding       = 40.0
	minWrapWidth      = 100.0
)

// record is one paintable layer after the pre-pass.
type record struct {
	index   int
	z       int
	painter layer.Painter
}

// slots holds the absolute y anchors derived from the reference shape.
type slots struct {
	// logoTop is the logo's top edge: its center anchor minus half its height.
	logoTop    float64
	title      int
	subtitle   int
	tertiary   float64
	// rectCenter is the vertical center of the last resolved placeholder
	// rectangle, or -1.
	rectCenter int
}

// planner resolves one render. It is created per call to Render.
type planner struct {
	c    *Composer
	w, h int
	s    float64

	ref    *geometry.Shape
	bounds geometry.Bounds
	slots  slots

	images map[int]image.Image
}

func newPlanner(c *Composer, w, h int, s float64) *planner {
	return &planner{
		c:      c,
		w:      w,
		h:      h,
		s:      s,
		slots:  slots{rectCenter: -1},
		images: make(map[int]image.Image),
	}
}

// plan runs the reference and dynamic phases and returns paint records in
// input order.
func (p *planner) plan(ctx context.Context, layers []spec.Layer) ([]record, error) {
	p.findReference(layers)
	if err := p.loadImages(ctx, layers); err != nil {
		return nil, err
	}
	if p.ref != nil {
		p.computeSlots(layers)
	} else if hasDynamic(layers) {
		p.c.logger.Warn("no shape layer to anchor dynamic placements, centering instead")
	}
	return p.buildRecords(ctx, layers), nil
}

// findReference picks the first shape layer that is not a placeholder
// rectangle, since placeholders are positioned from the reference.
func (p *planner) findReference(layers []spec.Layer) {
	for _, l := range layers {
		if sl, ok := l.(*spec.ShapeLayer); ok && !sl.DynamicRect {
			ref := sl.Shape
			p.ref = &ref
			p.bounds = geometry.ShapeBounds(ref, p.w, p.h)
			return
		}
	}
}

func hasDynamic(layers []spec.Layer) bool {
	for _, l := range layers {
		switch l := l.(type) {
		case *spec.ImageLayer:
			if l.Position.Y.IsDynamic() {
				return true
			}
		case *spec.TextLayer:
			if l.Align.Y.IsDynamic() || (l.Wrap.Dynamic && l.Wrap.MaxWidth == nil) {
				return true
			}
		case *spec.ShapeLayer:
			if l.DynamicRect {
				return true
			}
		}
	}
	return false
}

// loadImages decodes every image layer's bitmap. Missing bitmaps are logged
// and left out; other failures abort the render.
func (p *planner) loadImages(ctx context.Context, layers []spec.Layer) error {
	for i, l := range layers {
		il, ok := l.(*spec.ImageLayer)
		if !ok {
			continue
		}
		img, err := p.c.assets.Image(ctx, il.Path)
		if assets.IsNotFound(err) {
			p.c.logger.Warn("image not found, skipping layer", "layer", i, "path", il.Path)
			continue
		}
		if err != nil {
			return err
		}
		p.images[i] = img
	}
	return nil
}

// logoIndex returns the index of the first image layer with a dynamic y.
func logoIndex(layers []spec.Layer) int {
	for i, l := range layers {
		if il, ok := l.(*spec.ImageLayer); ok && il.Position.Y.IsDynamic() {
			return i
		}
	}
	return -1
}

// logoHeight is the fitted height of a dynamically sized logo, the declared
// height of a fixed or height-only logo, or the nominal fallback.
func (p *planner) logoHeight(layers []spec.Layer) float64 {
	i := logoIndex(layers)
	if i < 0 {
		return defaultLogoHeight * p.s
	}
	il := layers[i].(*spec.ImageLayer)
	switch il.Size.Kind {
	case spec.SizeDynamic:
		if img, ok := p.images[i]; ok {
			b := img.Bounds()
			_, h := layer.FitSize(b.Dx(), b.Dy(), il.Size)
			return float64(h)
		}
	case spec.SizeFixed, spec.SizeByHeight:
		if il.Size.Height > 0 {
			return il.Size.Height
		}
	}
	return defaultLogoHeight * p.s
}

func (p *planner) computeSlots(layers []spec.Layer) {
	top, height := p.bounds.Top, p.bounds.Height()
	logoH := p.logoHeight(layers)

	p.slots = slots{
		logoTop:    top + height*logoCenterFraction - logoH/2,
		title:      int(top + height*titleFraction),
		subtitle:   int(top + height*subtitleFraction),
		tertiary:   top + height*0.5 + height*tertiaryFraction,
		rectCenter: -1,
	}
	p.c.logger.Debug("reference shape",
		"kind", p.ref.Kind,
		"top", p.bounds.Top,
		"bottom", p.bounds.Bottom,
		"logo_height", logoH)
}

// placeholderRect returns the concrete box of a dynamic rounded rectangle and
// records its vertical center for the tertiary text.
func (p *planner) placeholderRect() geometry.Rect {
	rw := int(geometry.DefaultRectWidth * p.s)
	rh := int(geometry.DefaultRectHeight * p.s)
	if p.ref == nil {
		return geometry.CenteredBox(p.w, p.h, float64(rw), float64(rh))
	}

	cx := p.w / 2
	top := int(p.slots.tertiary - float64(rh/2))
	bottom := int(p.slots.tertiary + float64(rh/2))
	p.slots.rectCenter = (top + bottom) / 2
	return geometry.Rect{
		X0: float64(cx - rw/2),
		Y0: float64(top),
		X1: float64(cx + rw/2),
		Y1: float64(bottom),
	}
}

// textSlots maps each dynamic-y text layer to its slot. Tagged layers keep
// their role; untagged ones take the free slots in title, subtitle, tertiary
// order. Layers left without a slot map to RoleNone.
func textSlots(layers []spec.Layer) map[int]spec.Role {
	var dynamic []int
	claimed := make(map[spec.Role]bool)
	for i, l := range layers {
		tl, ok := l.(*spec.TextLayer)
		if !ok || !tl.Align.Y.IsDynamic() {
			continue
		}
		dynamic = append(dynamic, i)
		if tl.Role != spec.RoleNone {
			claimed[tl.Role] = true
		}
	}

	free := []spec.Role{spec.RoleTitle, spec.RoleSubtitle, spec.RoleTertiary}
	out := make(map[int]spec.Role, len(dynamic))
	for _, i := range dynamic {
		if r := layers[i].(*spec.TextLayer).Role; r != spec.RoleNone {
			out[i] = r
			continue
		}
		for len(free) > 0 && claimed[free[0]] {
			free = free[1:]
		}
		if len(free) == 0 {
			out[i] = spec.RoleNone
			continue
		}
		out[i] = free[0]
		free = free[1:]
	}
	return out
}

func (p *planner) slotY(role spec.Role, fontSize float64) int {
	switch role {
	case spec.RoleTitle:
		return p.slots.title
	case spec.RoleSubtitle:
		return p.slots.subtitle
	}
	if p.slots.rectCenter >= 0 {
		return int(float64(p.slots.rectCenter) - fontSize*tertiaryInkFraction/2)
	}
	return int(p.slots.tertiary)
}

// buildRecords resolves every layer in input order. Rectangles are resolved
// first so the tertiary text can center on them.
func (p *planner) buildRecords(ctx context.Context, layers []spec.Layer) []record {
	shapes := make(map[int]geometry.Shape)
	for i, l := range layers {
		if sl, ok := l.(*spec.ShapeLayer); ok {
			s := sl.Shape
			if sl.DynamicRect {
				s.RoundedRect.Box = p.placeholderRect()
			}
			shapes[i] = s
		}
	}

	logo := logoIndex(layers)
	center := align.Keyword(align.Center)
	records := make([]record, 0, len(layers))
	add := func(i int, l spec.Layer, painter layer.Painter) {
		records = append(records, record{index: i, z: l.Z(), painter: painter})
	}

	roles := textSlots(layers)
	for i, l := range layers {
		switch l := l.(type) {
		case *spec.BackgroundLayer:
			add(i, l, layer.NewBackground(l.Fill))

		case *spec.ShapeLayer:
			add(i, l, layer.NewShape(shapes[i], l.Fill, l.Border))

		case *spec.ImageLayer:
			img, ok := p.images[i]
			if !ok {
				continue
			}
			y, ok := l.Position.Y.Anchor()
			switch {
			case ok:
			case i != logo:
				p.c.logger.Warn("image has no dynamic slot, skipping layer", "layer", i, "path", l.Path)
				continue
			case p.ref == nil:
				y = center
			default:
				y = align.Literal(float64(int(p.slots.logoTop)))
			}
			x := l.Position.X.Or(center)
			add(i, l, layer.NewImage(img, l.Size, x, y, l.Opacity))

		case *spec.TextLayer:
			y, ok := l.Align.Y.Anchor()
			if !ok {
				role := roles[i]
				switch {
				case role == spec.RoleNone:
					p.c.logger.Warn("text has no dynamic slot, skipping layer", "layer", i, "text", l.Text)
					continue
				case p.ref == nil:
					y = center
				default:
					y = align.Literal(float64(p.slotY(role, l.Font.Size)))
				}
			}
			add(i, l, p.text(ctx, l, y))
		}
	}
	return records
}

// text builds the painter for a text layer whose y is already resolved,
// deriving a dynamic wrap width from the reference shape's span.
func (p *planner) text(ctx context.Context, l *spec.TextLayer, y align.Anchor) *layer.Text {
	face := p.c.assets.Face(ctx, l.Font.Path, l.Font.Size)
	style := layer.TextStyle{
		Color:   l.Color,
		X:       l.Align.X.Or(align.Keyword(align.Center)),
		Y:       y,
		LineGap: l.Wrap.LineGap,
	}

	switch {
	case l.Wrap.MaxWidth != nil:
		style.MaxWidth = *l.Wrap.MaxWidth
	case l.Wrap.Dynamic:
		block := layer.NewText(face, l.Text, style).Block()
		ty := align.ResolveY(y, p.h, block.Height)

		var left, right float64
		if p.ref != nil {
			left, right = geometry.WidthAtY(*p.ref, float64(ty), p.w, p.h)
		} else {
			left, right = geometry.FallbackSpan(p.w, geometry.DefaultFallbackInset*p.s)
		}
		style.MaxWidth = math.Max(minWrapWidth*p.s, right-left-wrapPadding*p.s)
	}
	return layer.NewText(face, l.Text, style)
}
