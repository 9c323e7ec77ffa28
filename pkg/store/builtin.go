package store

import (
	"context"
	"embed"
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/matzehuels/badgeforge/pkg/errors"
)

//go:embed templates/*.json
var builtinFS embed.FS

var builtinDescriptions = map[string]string{
	"default": "Hexagon with gradient fill, logo, title, subtitle and tertiary label",
	"circle":  "Circular badge on a transparent canvas, supersampled 2x",
	"shield":  "Shield with a placeholder pill behind the tertiary label",
}

// Builtins returns the templates shipped in the binary, sorted by name.
func Builtins() []Template {
	entries, err := builtinFS.ReadDir("templates")
	if err != nil {
		return nil
	}
	out := make([]Template, 0, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		out = append(out, Template{
			Name:        name,
			Description: builtinDescriptions[name],
			Document:    json.RawMessage(data),
			Builtin:     true,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Builtin returns the builtin template called name.
func Builtin(name string) (*Template, bool) {
	for _, t := range Builtins() {
		if t.Name == name {
			return &t, true
		}
	}
	return nil, false
}

// layered serves builtins beneath a backing store.
type layered struct {
	Store
}

// WithBuiltins returns s with the builtin templates added underneath.
func WithBuiltins(s Store) Store {
	return &layered{Store: s}
}

func (l *layered) List(ctx context.Context) ([]Template, error) {
	stored, err := l.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(stored))
	for _, t := range stored {
		seen[t.Name] = true
	}
	for _, t := range Builtins() {
		if !seen[t.Name] {
			stored = append(stored, t)
		}
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].Name < stored[j].Name })
	return stored, nil
}

func (l *layered) Get(ctx context.Context, name string) (*Template, error) {
	t, err := l.Store.Get(ctx, name)
	if err == nil || !errors.Is(err, errors.ErrCodeNotFound) {
		return t, err
	}
	if b, ok := Builtin(name); ok {
		return b, nil
	}
	return nil, err
}

func (l *layered) Delete(ctx context.Context, name string) error {
	err := l.Store.Delete(ctx, name)
	if errors.Is(err, errors.ErrCodeNotFound) {
		if _, ok := Builtin(name); ok {
			return errors.New(errors.ErrCodeInvalidInput, "builtin template %q cannot be deleted", name)
		}
	}
	return err
}
