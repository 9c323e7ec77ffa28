package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"time"
)

// On-disk entry layout: magic, big-endian expiry in Unix nanoseconds (0 for
// never), then the raw bytes.
var entryMagic = []byte("bfc1")

const (
	entryExt    = ".entry"
	entryHeader = 4 + 8
)

// FileCache stores one file per key under a directory, sharded by the first
// byte of the key hash. Writes go through a temp file and rename, so
// concurrent readers never see a partial entry.
type FileCache struct {
	dir string
}

// DefaultDir returns ~/.cache/badgeforge/artifacts.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "badgeforge", "artifacts"), nil
}

// NewFileCache opens dir, creating it if needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) Dir() string { return c.dir }

// Get returns a miss for absent, expired or unreadable entries, removing the
// latter two.
func (c *FileCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	p := c.path(key)
	raw, err := os.ReadFile(p)
	switch {
	case os.IsNotExist(err):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}

	if len(raw) < entryHeader || !bytes.Equal(raw[:4], entryMagic) {
		_ = os.Remove(p)
		return nil, false, nil
	}
	if exp := int64(binary.BigEndian.Uint64(raw[4:entryHeader])); exp != 0 && time.Now().UnixNano() > exp {
		_ = os.Remove(p)
		return nil, false, nil
	}
	return raw[entryHeader:], true, nil
}

func (c *FileCache) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = time.Now().Add(ttl).UnixNano()
	}
	buf := make([]byte, entryHeader, entryHeader+len(data))
	copy(buf, entryMagic)
	binary.BigEndian.PutUint64(buf[4:], uint64(exp))
	buf = append(buf, data...)

	p := c.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear deletes every entry, then any shard directories left empty, and
// returns the number of entries removed.
func (c *FileCache) Clear() (int, error) {
	n := 0
	err := c.walk(func(path string, _ os.DirEntry) error {
		if os.Remove(path) == nil {
			n++
		}
		return nil
	})
	if err != nil {
		return n, err
	}
	shards, _ := os.ReadDir(c.dir)
	for _, s := range shards {
		if s.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, s.Name()))
		}
	}
	return n, nil
}

// Usage counts the entries on disk and their total size in bytes. Expired
// entries are included until the next Get removes them.
func (c *FileCache) Usage() (entries int, size int64, err error) {
	err = c.walk(func(_ string, d os.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries++
		size += info.Size()
		return nil
	})
	return entries, size, err
}

// walk calls fn for every entry file.
func (c *FileCache) walk(fn func(path string, d os.DirEntry) error) error {
	return filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == c.dir {
				return err
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != entryExt {
			return nil
		}
		return fn(path, d)
	})
}

func (c *FileCache) Close() error { return nil }

func (c *FileCache) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(c.dir, h[:2], h[2:]+entryExt)
}

var _ Cache = (*FileCache)(nil)
