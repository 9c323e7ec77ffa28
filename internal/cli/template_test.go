package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/badgeforge/pkg/cache"
	"github.com/matzehuels/badgeforge/pkg/errors"
)

func TestTemplateCommands(t *testing.T) {
	c, ctx := testCLI(t)
	doc := filepath.Join(t.TempDir(), "team.json")
	if err := os.WriteFile(doc, []byte(testBadge), 0o644); err != nil {
		t.Fatal(err)
	}

	run := func(args ...string) error {
		root := c.RootCommand()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs(args)
		return root.ExecuteContext(ctx)
	}

	if err := run("template", "save", "team", doc, "-d", "team badge"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(c.templatesDir, "team.json")); err != nil {
		t.Errorf("saved template file missing: %v", err)
	}

	got, err := c.templateStore(ctx).Get(ctx, "team")
	if err != nil || got.Description != "team badge" {
		t.Fatalf("Get(team) = %+v, %v", got, err)
	}

	for _, args := range [][]string{
		{"template", "list"},
		{"template", "show", "team"},
		{"template", "show", "default"},
	} {
		if err := run(args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}

	if err := run("template", "show", "nope"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("show missing error = %v, want NOT_FOUND", err)
	}
	if err := run("template", "save", "Bad Name", doc); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("save bad name error = %v, want INVALID_INPUT", err)
	}

	if err := run("template", "delete", "team"); err != nil {
		t.Errorf("delete: %v", err)
	}
	if err := run("template", "delete", "default"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("delete builtin error = %v, want INVALID_INPUT", err)
	}
}

func TestCacheCommands(t *testing.T) {
	c, ctx := testCLI(t)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(ctx); err != nil {
		t.Errorf("cache clear on empty cache: %v", err)
	}

	dir := filepath.Join(t.TempDir(), "badge.json")
	if err := os.WriteFile(dir, []byte(testBadge), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := c.runRender(ctx, dir, renderOpts{}); err != nil {
		t.Fatal(err)
	}

	cdir, _ := cacheDir()
	entries, _ := os.ReadDir(cdir)
	if len(entries) == 0 {
		t.Fatal("render should populate the cache")
	}

	for _, args := range [][]string{{"cache", "info"}, {"cache", "path"}, {"cache", "clear"}} {
		root.SetArgs(args)
		if err := root.ExecuteContext(ctx); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
	if n, _, _ := mustFileCache(t, cdir).Usage(); n != 0 {
		t.Errorf("%d entries left after cache clear", n)
	}
}

func mustFileCache(t *testing.T, dir string) *cache.FileCache {
	t.Helper()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	return fc
}
