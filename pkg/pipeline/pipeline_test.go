package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/observability"
	"github.com/matzehuels/badgeforge/pkg/render/sink"
)

const badgeJSON = `{
	"canvas": {"width": 200, "height": 120, "bg": "#FFFFFF"},
	"layers": [
		{"type": "shape", "shape": "rounded_rect", "fill": {"mode": "solid", "color": "#123456"}, "z": 1},
		{"type": "text", "text": "Teamwork", "font": {"size": 24}, "color": "#FFFFFF", "align": {"x": "center", "y": "center"}, "z": 2}
	]
}`

func TestOptions_ValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantErr  bool
		wantCode errors.Code
		format   sink.Format
	}{
		{"defaults", Options{}, false, "", sink.PNG},
		{"jpeg alias", Options{Format: "jpg"}, false, "", sink.JPEG},
		{"unknown format", Options{Format: "gif"}, true, errors.ErrCodeInvalidInput, ""},
		{"quality out of range", Options{Format: "jpeg", JPEGQuality: 101}, true, errors.ErrCodeInvalidInput, ""},
		{"negative max scale", Options{MaxScale: -1}, true, errors.ErrCodeInvalidInput, ""},
		{"half fixed canvas", Options{FixedWidth: 600}, true, errors.ErrCodeInvalidInput, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, tt.wantCode) {
					t.Errorf("code = %s, want %s", errors.GetCode(err), tt.wantCode)
				}
				return
			}
			if opts.OutputFormat() != tt.format {
				t.Errorf("format = %s, want %s", opts.OutputFormat(), tt.format)
			}
			if opts.MaxScale != DefaultMaxScale || opts.MaxCanvas != DefaultMaxCanvas {
				t.Errorf("limits = %d/%d, want defaults", opts.MaxScale, opts.MaxCanvas)
			}
			if opts.Logger == nil || opts.Assets == nil {
				t.Error("logger and assets should be defaulted")
			}
		})
	}
}

func TestOptions_ArtifactKeyOpts(t *testing.T) {
	pngOpts := Options{}
	jpeg := Options{Format: "jpeg", JPEGQuality: 80}
	fixed := Options{FixedWidth: 600, FixedHeight: 600}
	for _, o := range []*Options{&pngOpts, &jpeg, &fixed} {
		if err := o.ValidateAndSetDefaults(); err != nil {
			t.Fatal(err)
		}
	}

	if pngOpts.ArtifactKeyOpts().JPEGQuality != 0 {
		t.Error("png key should not depend on jpeg quality")
	}
	if jpeg.ArtifactKeyOpts().JPEGQuality != 80 {
		t.Error("jpeg key should carry its quality")
	}
	keyer := cache.NewDefaultKeyer()
	if keyer.ArtifactKey("h", pngOpts.ArtifactKeyOpts()) == keyer.ArtifactKey("h", fixed.ArtifactKeyOpts()) {
		t.Error("forced canvas should change the artifact key")
	}
}

func TestRunner_Execute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(badgeJSON), Options{})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if res.CacheInfo.ArtifactHit {
		t.Error("first run should not hit the cache")
	}
	if res.Stats.Layers != 2 || res.Stats.Width != 200 || res.Stats.Height != 120 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Stats.Size != len(res.Artifact) || res.Format != sink.PNG {
		t.Errorf("size %d, format %s", res.Stats.Size, res.Format)
	}

	img, err := png.Decode(bytes.NewReader(res.Artifact))
	if err != nil {
		t.Fatalf("artifact is not a png: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 200, 120) {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestRunner_FixedCanvas(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(badgeJSON), Options{FixedWidth: 300, FixedHeight: 300})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if res.Image.Bounds().Dx() != 300 || res.Image.Bounds().Dy() != 300 {
		t.Errorf("image bounds = %v, want 300x300", res.Image.Bounds())
	}
}

func TestRunner_Caching(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, []byte(badgeJSON), Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, []byte(badgeJSON), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.ArtifactHit {
		t.Error("second run should hit the cache")
	}
	if second.Document != nil || second.Image != nil {
		t.Error("cache hit should not decode or render")
	}
	if !bytes.Equal(first.Artifact, second.Artifact) {
		t.Error("cached artifact differs from rendered one")
	}

	refreshed, err := r.Execute(ctx, []byte(badgeJSON), Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.ArtifactHit {
		t.Error("refresh should bypass the cache")
	}

	jpeg, err := r.Execute(ctx, []byte(badgeJSON), Options{Format: "jpeg"})
	if err != nil {
		t.Fatal(err)
	}
	if jpeg.CacheInfo.ArtifactHit {
		t.Error("a different format should miss the cache")
	}
}

func TestRunner_Errors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		data string
		opts Options
		want errors.Code
	}{
		{"malformed", `{"layers": [`, Options{}, errors.ErrCodeInvalidSpec},
		{"unknown layer", `{"layers":[{"type":"SpriteLayer"}]}`, Options{}, errors.ErrCodeUnknownLayer},
		{"scale above cap", `{"canvas":{"scale_factor":3}}`, Options{MaxScale: 2}, errors.ErrCodeInvalidSpec},
		{"bad format", badgeJSON, Options{Format: "tiff"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, []byte(tt.data), tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.want)
			}
		})
	}
}

func TestRunner_RenderNilDocument(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Render(context.Background(), nil, Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Render(nil) error = %v", err)
	}
}

type countingRenderHooks struct {
	observability.NoopRenderHooks
	decodes, renders, encodes atomic.Int32
}

func (h *countingRenderHooks) OnDecodeComplete(context.Context, int, time.Duration, error) {
	h.decodes.Add(1)
}

func (h *countingRenderHooks) OnRenderComplete(context.Context, time.Duration, error) {
	h.renders.Add(1)
}

func (h *countingRenderHooks) OnEncodeComplete(context.Context, string, int, time.Duration, error) {
	h.encodes.Add(1)
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets atomic.Int32
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string)      { h.hits.Add(1) }
func (h *countingCacheHooks) OnCacheMiss(context.Context, string)     { h.misses.Add(1) }
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) { h.sets.Add(1) }

func TestRunner_Hooks(t *testing.T) {
	rh := &countingRenderHooks{}
	ch := &countingCacheHooks{}
	observability.SetRenderHooks(rh)
	observability.SetCacheHooks(ch)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	for n := 0; n < 2; n++ {
		if _, err := r.Execute(context.Background(), []byte(badgeJSON), Options{}); err != nil {
			t.Fatal(err)
		}
	}

	if rh.decodes.Load() != 1 || rh.renders.Load() != 1 || rh.encodes.Load() != 1 {
		t.Errorf("render hooks = %d/%d/%d, want 1/1/1", rh.decodes.Load(), rh.renders.Load(), rh.encodes.Load())
	}
	if ch.misses.Load() != 1 || ch.sets.Load() != 1 || ch.hits.Load() != 1 {
		t.Errorf("cache hooks = miss %d set %d hit %d", ch.misses.Load(), ch.sets.Load(), ch.hits.Load())
	}
}
