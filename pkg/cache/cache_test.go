package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/badgeforge/pkg/httputil"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		ttl     time.Duration
		wait    time.Duration
		wantHit bool
	}{
		{"no ttl", 0, 0, true},
		{"fresh", time.Hour, 0, true},
		{"expired", time.Millisecond, 5 * time.Millisecond, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Set(ctx, tt.name, []byte("png"), tt.ttl); err != nil {
				t.Fatal(err)
			}
			time.Sleep(tt.wait)
			data, hit, err := c.Get(ctx, tt.name)
			if err != nil {
				t.Fatal(err)
			}
			if hit != tt.wantHit {
				t.Fatalf("hit = %v, want %v", hit, tt.wantHit)
			}
			if hit && string(data) != "png" {
				t.Errorf("data = %q", data)
			}
		})
	}

	if err := c.Delete(ctx, "fresh"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "fresh"); hit {
		t.Error("deleted entry still present")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	if n, size, err := c.Usage(); err != nil || n != 3 || size == 0 {
		t.Errorf("Usage() = %d, %d, %v; want 3 entries", n, size, err)
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Fatalf("Clear() = %d, %v; want 3", n, err)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	base := ArtifactKeyOpts{Format: "png"}

	tests := []struct {
		name string
		hash string
		opts ArtifactKeyOpts
		same bool
	}{
		{"identical", "h1", base, true},
		{"other document", "h2", base, false},
		{"other format", "h1", ArtifactKeyOpts{Format: "jpeg"}, false},
		{"other quality", "h1", ArtifactKeyOpts{Format: "png", JPEGQuality: 80}, false},
		{"other assets", "h1", ArtifactKeyOpts{Format: "png", Assets: "/srv/a"}, false},
	}
	ref := k.ArtifactKey("h1", base)
	if !strings.HasPrefix(ref, "artifact:") {
		t.Fatalf("key = %q", ref)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.ArtifactKey(tt.hash, tt.opts)
			if (got == ref) != tt.same {
				t.Errorf("key equality = %v, want %v", got == ref, tt.same)
			}
		})
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "v1:")
	got := scoped.ArtifactKey("h", ArtifactKeyOpts{Format: "png"})
	want := "v1:" + NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{Format: "png"})
	if got != want {
		t.Errorf("ArtifactKey() = %q, want %q", got, want)
	}
}

func TestNewRedisCacheErrors(t *testing.T) {
	saved := connectBackoff
	connectBackoff = httputil.Backoff{Attempts: 2, Initial: time.Millisecond}
	t.Cleanup(func() { connectBackoff = saved })
	ctx := context.Background()

	if _, err := NewRedisCache(ctx, "http://not-redis"); err == nil {
		t.Error("expected error for non-redis url")
	}
	if _, err := NewRedisCache(ctx, "redis://127.0.0.1:1/0"); !errors.Is(err, ErrNetwork) {
		t.Errorf("unreachable server error = %v, want ErrNetwork", err)
	}
}

func TestRedisCacheKeyPrefix(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	c := NewRedisCacheFromClient(client, WithKeyPrefix("test:"))
	defer c.Close()

	if got := c.key("artifact:abc"); got != "test:artifact:abc" {
		t.Errorf("key = %q", got)
	}
	if def := NewRedisCacheFromClient(client); def.key("k") != "badgeforge:k" {
		t.Errorf("default prefix key = %q", def.key("k"))
	}
}
