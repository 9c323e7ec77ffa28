package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/badgeforge/internal/server"
	"github.com/matzehuels/badgeforge/pkg/buildinfo"
	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/config"
	"github.com/matzehuels/badgeforge/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	config string // TOML config file
	addr   string // listen address override
	assets string // assets directory override
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP badge API",
		Long: `Serve starts the badge HTTP API.

Settings come from the built-in defaults, then the --config TOML file, then
BADGEFORGE_* environment variables, then command-line flags.`,
		Example: `  badgeforge serve
  badgeforge serve --config badgeforge.toml --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.config)
			if err != nil {
				return err
			}
			if opts.addr != "" {
				cfg.Server.Addr = opts.addr
			}
			if opts.assets != "" {
				cfg.Render.AssetsDir = opts.assets
			}
			if !cmd.Flags().Changed("verbose") {
				c.SetLogLevel(cfg.LogLevel())
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML config file")
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.assets, "assets", "", "assets directory (overrides config)")

	return cmd
}

// runServe wires the configured backends into a server and blocks until ctx
// is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	artifacts, err := cfg.OpenCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	templates, err := cfg.OpenStore(ctx)
	if err != nil {
		artifacts.Close()
		return fmt.Errorf("open template store: %w", err)
	}
	defer templates.Close()

	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	runner := pipeline.NewRunner(artifacts, keyer, logger)
	runner.TTL = cfg.Cache.TTL
	defer runner.Close()

	base := cfg.PipelineOptions()
	base.Assets = cfg.Assets(logger, artifacts)

	srv := server.New(runner, templates, base,
		server.WithLogger(logger),
		server.WithConfig(cfg.Server))

	printSuccess("Serving badge API %s", StyleDim.Render(buildinfo.Version))
	printKeyValue("Address", StyleLink.Render(listenURL(cfg.Server.Addr)))
	printKeyValue("Assets", cfg.Render.AssetsDir)
	printKeyValue("Cache", cfg.Cache.Backend)
	printKeyValue("Templates", cfg.Store.Backend)
	printNewline()

	return srv.ListenAndServe(ctx)
}

// listenURL turns a listen address into a clickable URL.
func listenURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
