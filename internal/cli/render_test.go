package cli

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/render/sink"
)

const testBadge = `{
	"canvas": {"width": 120, "height": 80, "bg": "#FFFFFF"},
	"layers": [
		{"type": "shape", "shape": "circle", "fill": {"mode": "solid", "color": "#336699"}, "z": 1},
		{"type": "text", "text": "CLI", "font": {"size": 18}, "color": "#FFFFFF", "z": 2}
	]
}`

func testCLI(t *testing.T) (*CLI, context.Context) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, log.InfoLevel)
	c.templatesDir = t.TempDir()
	return c, withLogger(context.Background(), c.Logger)
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		output  string
		want    sink.Format
		wantErr bool
	}{
		{"default", "", "", sink.PNG, false},
		{"from extension", "", "badge.jpg", sink.JPEG, false},
		{"flag wins", "png", "badge.jpeg", sink.PNG, false},
		{"unknown flag", "svg", "", "", true},
		{"unknown extension", "", "badge.gif", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputFormat(tt.flag, tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("outputFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("outputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultOutput(t *testing.T) {
	if got := defaultOutput("badges/team", sink.JPEG); got != "badges/team.jpg" {
		t.Errorf("defaultOutput() = %q", got)
	}
}

func TestRunRender(t *testing.T) {
	c, ctx := testCLI(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "badge.json")
	if err := os.WriteFile(input, []byte(testBadge), 0o644); err != nil {
		t.Fatal(err)
	}

	opts := renderOpts{assets: dir, maxScale: 2}
	if err := c.runRender(ctx, input, opts); err != nil {
		t.Fatalf("runRender() error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "badge.png"))
	if err != nil {
		t.Fatalf("default output missing: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 80 {
		t.Errorf("image = %dx%d, want 120x80", b.Dx(), b.Dy())
	}

	opts.output = filepath.Join(dir, "out.jpg")
	if err := c.runRender(ctx, input, opts); err != nil {
		t.Fatalf("runRender(jpeg) error: %v", err)
	}
	if _, err := os.Stat(opts.output); err != nil {
		t.Errorf("jpeg output missing: %v", err)
	}
}

func TestRunRender_Template(t *testing.T) {
	c, ctx := testCLI(t)
	out := filepath.Join(t.TempDir(), "shield.png")

	opts := renderOpts{template: "shield", output: out, assets: t.TempDir(), noCache: true}
	if err := c.runRender(ctx, "", opts); err != nil {
		t.Fatalf("runRender(template) error: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}

	opts.template = "missing"
	if err := c.runRender(ctx, "", opts); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing template error = %v, want NOT_FOUND", err)
	}
}

func TestRunRender_Errors(t *testing.T) {
	c, ctx := testCLI(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"layers":[{"type":"hologram"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := c.runRender(ctx, bad, renderOpts{}); !errors.Is(err, errors.ErrCodeUnknownLayer) {
		t.Errorf("unknown layer error = %v", err)
	}
	if err := c.runRender(ctx, filepath.Join(dir, "nope.json"), renderOpts{}); err == nil {
		t.Error("missing input should fail")
	}
	if err := c.runRender(ctx, bad, renderOpts{format: "tiff"}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad format error = %v", err)
	}
}

func TestRenderCommand_Args(t *testing.T) {
	c, _ := testCLI(t)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{"render"})
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("render without input error = %v, want INVALID_INPUT", err)
	}

	root.SetArgs([]string{"render", "x.json", "--template", "default"})
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("render with both inputs error = %v, want INVALID_INPUT", err)
	}
}
