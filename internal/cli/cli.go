// Package cli implements the badgeforge command-line interface.
//
// # Commands
//
//   - render: Composite a badge document (or a saved template) into PNG/JPEG
//   - serve: Run the HTTP badge API
//   - template: List, show, save, delete and interactively pick templates
//   - cache: Manage the rendered-badge cache
//   - completion: Generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context, shared with the render pipeline and
// installed as the observability hooks, so debug output includes per-stage
// timings.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/badgeforge/pkg/buildinfo"
	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/observability"
	"github.com/matzehuels/badgeforge/pkg/pipeline"
	"github.com/matzehuels/badgeforge/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "badgeforge"

	// defaultAssetsDir is where relative image and font paths are resolved.
	defaultAssetsDir = "assets"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// templatesDir overrides the template store directory (tests).
	templatesDir string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	setLevel(c.Logger, level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Badgeforge composites layered badge images",
		Long:         `Badgeforge renders JSON badge documents (backgrounds, shapes, logos and wrapped text) into PNG or JPEG images, from the command line or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			observability.Install(observability.NewLogHooks(c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// templateStore opens the user's template directory with builtins layered in.
// It falls back to builtins only when the directory cannot be created.
func (c *CLI) templateStore(ctx context.Context) store.Store {
	fs, err := store.NewFileStore(c.templatesDir)
	if err != nil {
		loggerFromContext(ctx).Warn("template directory unavailable, using builtins only", "error", err)
		return store.WithBuiltins(store.NewMemoryStore())
	}
	return store.WithBuiltins(fs)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/badgeforge/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
