// Package sink encodes rendered badges into transport formats.
//
// Supported formats are PNG (lossless, keeps transparency) and JPEG (alpha is
// flattened onto white). [DataURI] wraps encoded bytes as a base64 data URI,
// the shape returned by the JSON render endpoint.
package sink

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/badgeforge/pkg/errors"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// DefaultJPEGQuality is used when no quality option is given.
const DefaultJPEGQuality = 92

// ParseFormat maps a format name or file extension to a Format.
// The empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "", "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (use png or jpeg)", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Extension returns the file extension of f, including the dot.
func (f Format) Extension() string {
	if f == JPEG {
		return ".jpg"
	}
	return ".png"
}

// Option configures encoding.
type Option func(*encoder)

type encoder struct {
	quality int
}

// WithJPEGQuality sets the JPEG quality in [1,100].
func WithJPEGQuality(q int) Option {
	return func(e *encoder) {
		if q >= 1 && q <= 100 {
			e.quality = q
		}
	}
}

// Encode writes img in format f.
func Encode(img image.Image, f Format, opts ...Option) ([]byte, error) {
	e := encoder{quality: DefaultJPEGQuality}
	for _, opt := range opts {
		opt(&e)
	}

	var buf bytes.Buffer
	switch f {
	case PNG:
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
		}
	case JPEG:
		flat := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.White)
		flat = imaging.Overlay(flat, img, image.Point{}, 1)
		if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(e.quality)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode jpeg")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported format %q", string(f))
	}
	return buf.Bytes(), nil
}

// DataURI returns data as a base64 data URI of format f.
func DataURI(data []byte, f Format) string {
	return "data:" + f.ContentType() + ";base64," + base64.StdEncoding.EncodeToString(data)
}
