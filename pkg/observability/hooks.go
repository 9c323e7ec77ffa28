// Package observability lets a host program watch badge renders without the
// render packages depending on any metrics or tracing backend.
//
// The pipeline, cache layer and HTTP fetcher report events to three process
// wide hook sets. Each starts out as a no-op; a binary swaps in its own at
// startup:
//
//	observability.Install(observability.NewLogHooks(logger))
//
// [LogHooks] ships with the package and writes each event as a debug line.
// Anything implementing one or more of [RenderHooks], [CacheHooks] and
// [HTTPHooks] can be installed the same way.
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// RenderHooks observes the decode, composite and encode stages.
type RenderHooks interface {
	OnDecodeComplete(ctx context.Context, layers int, d time.Duration, err error)
	// OnRenderStart reports the logical canvas size and the supersampling
	// factor about to be used.
	OnRenderStart(ctx context.Context, width, height, scale, layers int)
	OnRenderComplete(ctx context.Context, d time.Duration, err error)
	OnEncodeComplete(ctx context.Context, format string, size int, d time.Duration, err error)
}

// CacheHooks observes artifact cache traffic. kind names the entry type,
// currently always "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, kind string)
	OnCacheMiss(ctx context.Context, kind string)
	OnCacheSet(ctx context.Context, kind string, size int)
}

// HTTPHooks observes remote asset downloads.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, status int, d time.Duration)
	// OnError reports transport failures; non-2xx responses go to OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// Embed the Noop types to implement only the events you care about.
type (
	NoopRenderHooks struct{}
	NoopCacheHooks  struct{}
	NoopHTTPHooks   struct{}
)

func (NoopRenderHooks) OnDecodeComplete(context.Context, int, time.Duration, error)         {}
func (NoopRenderHooks) OnRenderStart(context.Context, int, int, int, int)                   {}
func (NoopRenderHooks) OnRenderComplete(context.Context, time.Duration, error)              {}
func (NoopRenderHooks) OnEncodeComplete(context.Context, string, int, time.Duration, error) {}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook set. The boxed struct keeps atomic.Pointer
// usable with interface values.
type slot[T any] struct{ p atomic.Pointer[box[T]] }

type box[T any] struct{ v T }

func (s *slot[T]) load(def T) T {
	if b := s.p.Load(); b != nil {
		return b.v
	}
	return def
}

func (s *slot[T]) store(v T) { s.p.Store(&box[T]{v}) }
func (s *slot[T]) clear()    { s.p.Store(nil) }

var (
	renderSlot slot[RenderHooks]
	cacheSlot  slot[CacheHooks]
	httpSlot   slot[HTTPHooks]
)

// SetRenderHooks replaces the render hooks. nil is ignored.
func SetRenderHooks(h RenderHooks) {
	if h != nil {
		renderSlot.store(h)
	}
}

// SetCacheHooks replaces the cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheSlot.store(h)
	}
}

// SetHTTPHooks replaces the HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpSlot.store(h)
	}
}

// Install registers h for every hook interface it implements and reports
// how many it matched.
func Install(h any) int {
	n := 0
	if r, ok := h.(RenderHooks); ok {
		SetRenderHooks(r)
		n++
	}
	if c, ok := h.(CacheHooks); ok {
		SetCacheHooks(c)
		n++
	}
	if x, ok := h.(HTTPHooks); ok {
		SetHTTPHooks(x)
		n++
	}
	return n
}

func Render() RenderHooks { return renderSlot.load(NoopRenderHooks{}) }
func Cache() CacheHooks   { return cacheSlot.load(NoopCacheHooks{}) }
func HTTP() HTTPHooks     { return httpSlot.load(NoopHTTPHooks{}) }

// Reset restores the no-op hooks.
func Reset() {
	renderSlot.clear()
	cacheSlot.clear()
	httpSlot.clear()
}
