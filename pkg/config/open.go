package config

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/badgeforge/pkg/assets"
	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/pipeline"
	"github.com/matzehuels/badgeforge/pkg/store"
)

// OpenCache builds the configured artifact cache.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendFile:
		dir := c.Cache.Dir
		if dir == "" {
			d, err := cache.DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	case BackendRedis:
		var opts []cache.RedisOption
		if c.Cache.KeyPrefix != "" {
			opts = append(opts, cache.WithKeyPrefix(c.Cache.KeyPrefix))
		}
		return cache.NewRedisCache(ctx, c.Cache.RedisURL, opts...)
	}
	return cache.NewNullCache(), nil
}

// OpenStore builds the configured template store with builtins layered in.
func (c Config) OpenStore(ctx context.Context) (store.Store, error) {
	var s store.Store
	switch c.Store.Backend {
	case BackendFile:
		fs, err := store.NewFileStore(c.Store.Dir)
		if err != nil {
			return nil, err
		}
		s = fs
	case BackendMongo:
		ms, err := store.NewMongoStore(ctx, store.MongoConfig{
			URI:        c.Store.MongoURI,
			Database:   c.Store.Database,
			Collection: c.Store.Collection,
		})
		if err != nil {
			return nil, err
		}
		s = ms
	default:
		s = store.NewMemoryStore()
	}
	return store.WithBuiltins(s), nil
}

// remoteAssetTTL bounds how long a downloaded logo is reused.
const remoteAssetTTL = 24 * time.Hour

// Assets builds the resolver for the configured assets directory. Remote
// downloads, when enabled, are stored in bodies; nil disables that caching.
func (c Config) Assets(logger *log.Logger, bodies cache.Cache) *assets.Resolver {
	router := assets.Router{Local: assets.DirSource{Root: c.Render.AssetsDir}}
	if c.Render.RemoteAssets {
		router.Remote = assets.HTTPSource{
			Client: &http.Client{Timeout: 30 * time.Second},
			Cache:  bodies,
			TTL:    remoteAssetTTL,
		}
	}
	return assets.NewResolver(router,
		assets.WithLogger(logger),
		assets.WithSystemFonts(c.Render.SystemFonts))
}

// PipelineOptions returns the render limits as pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.Options{
		MaxScale:  c.Render.MaxScale,
		MaxCanvas: c.Render.MaxCanvas,
		AssetsID:  assetsID(c.Render.AssetsDir),
	}
	if c.Render.FixedCanvas > 0 {
		opts.FixedWidth, opts.FixedHeight = c.Render.FixedCanvas, c.Render.FixedCanvas
	}
	return opts
}

func assetsID(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
