package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event as a debug line on a charm logger. It
// implements all three hook interfaces.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging to l, prefixed with "hooks". A nil l
// uses log.Default().
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) stage(name string, d time.Duration, err error, kv ...any) {
	kv = append(kv, "elapsed", d.Round(time.Microsecond))
	if err != nil {
		h.logger.Debug(name+" failed", append(kv, "error", err)...)
		return
	}
	h.logger.Debug(name, kv...)
}

func (h *LogHooks) OnDecodeComplete(_ context.Context, layers int, d time.Duration, err error) {
	h.stage("decode", d, err, "layers", layers)
}

func (h *LogHooks) OnRenderStart(_ context.Context, width, height, scale, layers int) {
	h.logger.Debug("composite", "canvas", [2]int{width, height}, "scale", scale, "layers", layers)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, d time.Duration, err error) {
	h.stage("composite", d, err)
}

func (h *LogHooks) OnEncodeComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	h.stage("encode", d, err, "format", format, "bytes", size)
}

func (h *LogHooks) OnCacheHit(_ context.Context, kind string)  { h.logger.Debug("cache hit", "kind", kind) }
func (h *LogHooks) OnCacheMiss(_ context.Context, kind string) { h.logger.Debug("cache miss", "kind", kind) }

func (h *LogHooks) OnCacheSet(_ context.Context, kind string, size int) {
	h.logger.Debug("cache set", "kind", kind, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("fetch", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("fetched", "host", host, "path", path, "status", status, "elapsed", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("fetch failed", "method", method, "host", host, "path", path, "error", err)
}
