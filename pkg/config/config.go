// Package config loads badgeforge settings from TOML with environment
// overrides.
//
// Settings are resolved in three steps: [Default], then the TOML file given
// to [Load], then BADGEFORGE_* environment variables. [Config.Validate]
// reports values that cannot work.
//
//	[server]
//	addr = ":3001"
//	render_timeout = "20s"
//
//	[render]
//	assets_dir = "assets"
//	fixed_canvas = 600
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/badgeforge/pkg/errors"
)

// Backend names.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Config is the complete configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
	Log    LogConfig    `toml:"log"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr          string        `toml:"addr"`
	ReadTimeout   time.Duration `toml:"read_timeout"`
	WriteTimeout  time.Duration `toml:"write_timeout"`
	RenderTimeout time.Duration `toml:"render_timeout"`
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	CORSOrigins  []string `toml:"cors_origins"`
}

// RenderConfig configures the render pipeline.
type RenderConfig struct {
	AssetsDir string `toml:"assets_dir"`
	MaxScale  int    `toml:"max_scale"`
	MaxCanvas int    `toml:"max_canvas"`
	// FixedCanvas forces a square canvas of this size when positive.
	FixedCanvas  int  `toml:"fixed_canvas"`
	RemoteAssets bool `toml:"remote_assets"`
	SystemFonts  bool `toml:"system_fonts"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisURL  string        `toml:"redis_url"`
	KeyPrefix string        `toml:"key_prefix"`
	TTL       time.Duration `toml:"ttl"`
}

// StoreConfig selects the template store.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          ":3001",
			ReadTimeout:   15 * time.Second,
			WriteTimeout:  30 * time.Second,
			RenderTimeout: 20 * time.Second,
			MaxBodyBytes:  1 << 20,
			CORSOrigins:   []string{"*"},
		},
		Render: RenderConfig{
			AssetsDir:    "assets",
			MaxScale:     4,
			MaxCanvas:    4096,
			RemoteAssets: true,
			SystemFonts:  true,
		},
		Cache: CacheConfig{
			Backend: BackendNone,
			TTL:     24 * time.Hour,
		},
		Store: StoreConfig{
			Backend:    BackendMemory,
			Database:   "badgeforge",
			Collection: "templates",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load returns the defaults overlaid with the TOML file at path (if not
// empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from BADGEFORGE_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("BADGEFORGE_ADDR", &c.Server.Addr)
	str("BADGEFORGE_ASSETS", &c.Render.AssetsDir)
	str("BADGEFORGE_LOG_LEVEL", &c.Log.Level)
	str("BADGEFORGE_CACHE_DIR", &c.Cache.Dir)

	if v, ok := lookup("BADGEFORGE_REDIS_URL"); ok && v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = BackendRedis
	}
	if v, ok := lookup("BADGEFORGE_MONGO_URI"); ok && v != "" {
		c.Store.MongoURI = v
		c.Store.Backend = BackendMongo
	}
	if v, ok := lookup("BADGEFORGE_FIXED_CANVAS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "BADGEFORGE_FIXED_CANVAS")
		}
		c.Render.FixedCanvas = n
	}
	return nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	bad := func(format string, args ...any) error {
		return errors.New(errors.ErrCodeInvalidInput, "config: "+format, args...)
	}

	if c.Server.Addr == "" {
		return bad("server.addr is required")
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.RenderTimeout < 0 {
		return bad("server timeouts must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return bad("server.max_body_bytes must be positive")
	}
	if c.Render.MaxScale < 1 {
		return bad("render.max_scale must be at least 1, got %d", c.Render.MaxScale)
	}
	if c.Render.MaxCanvas < 0 || c.Render.FixedCanvas < 0 {
		return bad("render canvas limits must not be negative")
	}
	if c.Render.MaxCanvas > 0 && c.Render.FixedCanvas > c.Render.MaxCanvas {
		return bad("render.fixed_canvas %d exceeds render.max_canvas %d", c.Render.FixedCanvas, c.Render.MaxCanvas)
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return bad("cache.redis_url is required for the redis backend")
		}
	default:
		return bad("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return bad("cache.ttl must not be negative")
	}

	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return bad("store.mongo_uri is required for the mongo backend")
		}
	default:
		return bad("unknown store backend %q", c.Store.Backend)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return bad("log.level: %v", err)
	}
	return nil
}

// LogLevel returns the parsed log level, defaulting to info.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// String renders the configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
