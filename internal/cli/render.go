package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/config"
	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/pipeline"
	"github.com/matzehuels/badgeforge/pkg/render/sink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // png or jpeg; derived from output extension when empty
	assets   string // directory relative image and font paths resolve against
	template string // render a stored or builtin template instead of a file
	maxScale int    // cap on the document's supersampling factor
	fixed    int    // force a square canvas of this size
	quality  int    // jpeg quality
	noCache  bool   // bypass the artifact cache entirely
	refresh  bool   // re-render even when cached
	remote   bool   // allow http(s) image paths
	sysFonts bool   // fall back to installed system fonts
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{
		assets:   defaultAssetsDir,
		maxScale: pipeline.DefaultMaxScale,
		remote:   true,
		sysFonts: true,
	}

	cmd := &cobra.Command{
		Use:   "render [spec.json | -]",
		Short: "Render a badge document to PNG or JPEG",
		Long: `Render composites a JSON badge document into an image.

The document is read from a file, from stdin ("-"), or from a saved or
builtin template (--template). The output format follows --format, then
the extension of --output, and defaults to PNG.`,
		Example: `  badgeforge render badge.json -o badge.png
  badgeforge render --template default --assets ./assets
  cat badge.json | badgeforge render - -o badge.jpg --quality 85`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if (input == "") == (opts.template == "") {
				return errors.New(errors.ErrCodeInvalidInput, "give exactly one of a document path or --template")
			}
			return c.runRender(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png (default), jpeg")
	cmd.Flags().StringVar(&opts.assets, "assets", opts.assets, "directory for relative image and font paths")
	cmd.Flags().StringVarP(&opts.template, "template", "t", "", "render a saved or builtin template")
	cmd.Flags().IntVar(&opts.maxScale, "scale", opts.maxScale, "maximum supersampling factor")
	cmd.Flags().IntVar(&opts.fixed, "fixed", 0, "force a square canvas of this size")
	cmd.Flags().IntVar(&opts.quality, "quality", sink.DefaultJPEGQuality, "jpeg quality (1-100)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached badge exists")
	cmd.Flags().BoolVar(&opts.remote, "remote", opts.remote, "allow http(s) image paths")
	cmd.Flags().BoolVar(&opts.sysFonts, "system-fonts", opts.sysFonts, "fall back to installed system fonts")

	return cmd
}

// runRender loads the document, runs the pipeline and writes the artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	data, label, err := c.loadDocument(ctx, input, opts.template)
	if err != nil {
		return err
	}

	format, err := outputFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	output := opts.output
	if output == "" {
		output = defaultOutput(label, format)
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipelineOptions(opts, format, logger, runner.Cache)

	spin := startSpinner(ctx, os.Stderr, fmt.Sprintf("Rendering %s...", label))
	result, err := runner.Execute(ctx, data, popts)
	if err != nil {
		spin.Fail("Render failed")
		return err
	}
	elapsed := spin.Stop()

	if err := os.WriteFile(output, result.Artifact, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	logger.Info("rendered", "output", output, "elapsed", elapsed.Round(time.Millisecond))

	printSuccess("Rendered %s", label)
	printFile(output)
	printStats(result.Stats, result.CacheInfo.ArtifactHit)
	return nil
}

// loadDocument returns the document bytes and a display label.
func (c *CLI) loadDocument(ctx context.Context, input, template string) ([]byte, string, error) {
	if template != "" {
		t, err := c.templateStore(ctx).Get(ctx, template)
		if err != nil {
			return nil, "", err
		}
		return t.Document, t.Name, nil
	}
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "badge", nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", input, err)
	}
	return data, strings.TrimSuffix(input, filepath.Ext(input)), nil
}

// pipelineOptions maps render flags onto pipeline options.
func pipelineOptions(opts renderOpts, format sink.Format, logger *log.Logger, bodies cache.Cache) pipeline.Options {
	cfg := config.Default()
	cfg.Render.AssetsDir = opts.assets
	cfg.Render.MaxScale = opts.maxScale
	cfg.Render.FixedCanvas = opts.fixed
	cfg.Render.RemoteAssets = opts.remote
	cfg.Render.SystemFonts = opts.sysFonts

	popts := cfg.PipelineOptions()
	popts.Format = string(format)
	popts.JPEGQuality = opts.quality
	popts.Refresh = opts.refresh
	popts.Assets = cfg.Assets(logger, bodies)
	popts.Logger = logger
	return popts
}

// outputFormat picks the format from the flag, then the output extension.
func outputFormat(flag, output string) (sink.Format, error) {
	if flag != "" {
		return sink.ParseFormat(flag)
	}
	if ext := filepath.Ext(output); ext != "" {
		return sink.ParseFormat(ext)
	}
	return pipeline.DefaultFormat, nil
}

// defaultOutput derives the output path from the input label.
func defaultOutput(label string, format sink.Format) string {
	return label + format.Extension()
}
