package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/badgeforge/pkg/buildinfo"
	"github.com/matzehuels/badgeforge/pkg/observability"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			if r.UserAgent() != buildinfo.UserAgent() {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte("png-bytes"))
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	data, err := Fetch(ctx, srv.Client(), srv.URL+"/logo.png", 0)
	if err != nil || string(data) != "png-bytes" {
		t.Errorf("Fetch() = %q, %v", data, err)
	}

	if _, err := Fetch(ctx, srv.Client(), srv.URL+"/missing.png", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}

	if _, err := Fetch(ctx, srv.Client(), srv.URL+"/forbidden", 0); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(forbidden) error = %v", err)
	}

	if _, err := Fetch(ctx, srv.Client(), srv.URL+"/logo.png", 3); err == nil {
		t.Error("Fetch() should reject bodies over the limit")
	}
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	fetchBackoff = Backoff{Attempts: 3, Initial: time.Millisecond}
	t.Cleanup(func() { fetchBackoff = DefaultBackoff })

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.Client(), srv.URL, 0)
	if err != nil || string(data) != "ok" {
		t.Fatalf("Fetch() = %q, %v", data, err)
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	requests  atomic.Int32
	responses atomic.Int32
	status    atomic.Int32
}

func (h *recordingHTTPHooks) OnRequest(context.Context, string, string, string) {
	h.requests.Add(1)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _, _ string, status int, _ time.Duration) {
	h.responses.Add(1)
	h.status.Store(int32(status))
}

func TestFetch_EmitsHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.Client(), srv.URL+"/logo.png", 0); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}
	if hooks.requests.Load() != 1 || hooks.responses.Load() != 1 {
		t.Errorf("hooks saw %d requests, %d responses; want 1, 1", hooks.requests.Load(), hooks.responses.Load())
	}
	if hooks.status.Load() != http.StatusOK {
		t.Errorf("status = %d, want 200", hooks.status.Load())
	}
}
