package assets

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"path"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	_ "golang.org/x/image/webp"

	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/fonts"
)

// Resolver turns asset paths into decoded images and parsed fonts.
//
// Parsed fonts are cached per path. The cache is the only mutable state and
// is guarded by a mutex, so one Resolver may serve concurrent renders.
// Faces are not cached: they carry glyph caches that are unsafe to share.
type Resolver struct {
	src         Source
	logger      *log.Logger
	systemFonts bool

	mu    sync.Mutex
	fonts map[string]*truetype.Font
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report font fallbacks.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithSystemFonts enables or disables the installed-font fallback.
// It is enabled by default.
func WithSystemFonts(enabled bool) Option {
	return func(r *Resolver) { r.systemFonts = enabled }
}

// NewResolver creates a Resolver reading from src. A nil src finds nothing,
// which makes every image missing and every font the built-in one.
func NewResolver(src Source, opts ...Option) *Resolver {
	if src == nil {
		src = MapSource{}
	}
	r := &Resolver{
		src:         src,
		logger:      log.NewWithOptions(io.Discard, log.Options{}),
		systemFonts: true,
		fonts:       make(map[string]*truetype.Font),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Image loads and decodes the bitmap at p. PNG, JPEG, GIF, BMP, TIFF and
// WebP are supported; JPEG orientation tags are applied.
//
// A missing bitmap returns an error for which [IsNotFound] is true. Bytes
// that do not decode return INVALID_FORMAT.
func (r *Resolver) Image(ctx context.Context, p string) (image.Image, error) {
	data, err := r.src.Open(ctx, p)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode image %s", p)
	}
	return img, nil
}

// Font returns the parsed font at p, falling back to a system font with the
// same file name and then to the built-in font. An empty path selects the
// built-in font directly.
func (r *Resolver) Font(ctx context.Context, p string) *truetype.Font {
	r.mu.Lock()
	f, ok := r.fonts[p]
	r.mu.Unlock()
	if ok {
		return f
	}

	f = r.loadFont(ctx, p)

	r.mu.Lock()
	r.fonts[p] = f
	r.mu.Unlock()
	return f
}

func (r *Resolver) loadFont(ctx context.Context, p string) *truetype.Font {
	if p != "" {
		data, err := r.src.Open(ctx, p)
		switch {
		case err == nil:
			f, perr := truetype.Parse(data)
			if perr == nil {
				return f
			}
			r.logger.Warn("font does not parse, using fallback", "path", p, "error", perr)
		case !IsNotFound(err):
			r.logger.Warn("font lookup failed, using fallback", "path", p, "error", err)
		}

		if r.systemFonts {
			if f := systemFont(path.Base(p)); f != nil {
				r.logger.Debug("using system font", "path", p)
				return f
			}
		}
		r.logger.Warn("font not found, using built-in font", "path", p, "font", fonts.FamilyName)
	}

	f, err := fonts.Regular()
	if err != nil {
		panic(err) // compiled in
	}
	return f
}

func systemFont(name string) *truetype.Font {
	file, err := findfont.Find(name)
	if err != nil {
		return nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil
	}
	return f
}

// Face returns a new face for the font at p at size pixels.
func (r *Resolver) Face(ctx context.Context, p string, size float64) font.Face {
	return fonts.Face(r.Font(ctx, p), size)
}
