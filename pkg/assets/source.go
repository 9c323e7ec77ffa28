// Package assets resolves the fonts and bitmaps referenced by badge documents.
//
// # Sources
//
// A [Source] is an opaque byte lookup by path. Implementations:
//
//   - [DirSource]: files under a root directory (path traversal rejected)
//   - [MapSource]: in-memory bytes, mostly for tests
//   - [HTTPSource]: http(s) URLs, fetched with retries and cached in a cache.Cache
//   - [Router]: sends URLs to one source and relative paths to another
//
// A missing asset is reported with the RESOURCE_NOT_FOUND error code; use
// [IsNotFound] to test for it.
//
// # Resolver
//
// [Resolver] decodes bytes from a Source into images and fonts. Images that
// cannot be found are reported to the caller, who skips the layer. Fonts that
// cannot be found fall back first to an installed system font with the same
// file name, then to the built-in Go Regular font; a font lookup never fails.
package assets

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/httputil"
	"github.com/matzehuels/badgeforge/pkg/observability"
)

// Source looks up asset bytes by path.
type Source interface {
	Open(ctx context.Context, path string) ([]byte, error)
}

// IsNotFound reports whether err means the asset does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeResourceNotFound)
}

func notFound(path string, cause error) error {
	if cause == nil {
		return errors.New(errors.ErrCodeResourceNotFound, "asset not found: %s", path)
	}
	return errors.Wrap(errors.ErrCodeResourceNotFound, cause, "asset not found: %s", path)
}

// DirSource reads assets from files under Root.
type DirSource struct {
	Root string
}

// Open reads Root/path. Unsafe paths are rejected with INVALID_PATH.
func (s DirSource) Open(_ context.Context, path string) ([]byte, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.Root, filepath.FromSlash(path)))
	if os.IsNotExist(err) {
		return nil, notFound(path, nil)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read asset %s", path)
	}
	return data, nil
}

// MapSource serves assets from memory.
type MapSource map[string][]byte

// Open returns the bytes stored under path.
func (s MapSource) Open(_ context.Context, path string) ([]byte, error) {
	if data, ok := s[path]; ok {
		return data, nil
	}
	return nil, notFound(path, nil)
}

// HTTPSource downloads assets by URL.
type HTTPSource struct {
	// Client performs requests. Nil uses a client with a 30s timeout.
	Client *http.Client
	// Cache stores downloaded bodies under "asset:<sha256(url)>". Nil
	// disables caching.
	Cache cache.Cache
	// TTL is the lifetime of cached bodies; zero keeps them forever.
	TTL time.Duration
	// MaxBytes limits body size. Zero uses httputil.MaxBodySize.
	MaxBytes int64
}

func assetKey(url string) string { return "asset:" + cache.Hash([]byte(url)) }

// Open fetches url, consulting the cache first. Cache failures only cost a
// download.
func (s HTTPSource) Open(ctx context.Context, url string) ([]byte, error) {
	if err := errors.ValidateURL(url); err != nil {
		return nil, err
	}
	if s.Cache != nil {
		if data, ok, err := s.Cache.Get(ctx, assetKey(url)); err == nil && ok {
			observability.Cache().OnCacheHit(ctx, "asset")
			return data, nil
		}
		observability.Cache().OnCacheMiss(ctx, "asset")
	}

	data, err := httputil.Fetch(ctx, s.Client, url, s.MaxBytes)
	if err != nil {
		if stderrors.Is(err, httputil.ErrNotFound) {
			return nil, notFound(url, err)
		}
		return nil, errors.Wrap(errors.ErrCodeResourceNotFound, err, "fetch %s", url)
	}
	if s.Cache != nil && s.Cache.Set(ctx, assetKey(url), data, s.TTL) == nil {
		observability.Cache().OnCacheSet(ctx, "asset", len(data))
	}
	return data, nil
}

// Router sends http(s) URLs to Remote and everything else to Local.
// A nil Remote treats URLs as not found.
type Router struct {
	Local  Source
	Remote Source
}

// Open dispatches path to the matching source.
func (r Router) Open(ctx context.Context, path string) ([]byte, error) {
	if isURL(path) {
		if r.Remote == nil {
			return nil, notFound(path, nil)
		}
		return r.Remote.Open(ctx, path)
	}
	if r.Local == nil {
		return nil, notFound(path, nil)
	}
	return r.Local.Open(ctx, path)
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
