// Package store persists named badge templates.
//
// A template is a badge document saved under a name, so callers can render
// "default" or "shield" instead of posting the whole document each time.
//
// # Backends
//
//   - [MemoryStore]: in-process map, for tests and single-instance servers
//   - [FileStore]: one JSON file per template, for the CLI
//   - [MongoStore]: MongoDB collection, for multi-instance deployments
//
// [WithBuiltins] layers the templates shipped in the binary under any
// backend. Stored templates shadow builtins of the same name; builtins
// themselves cannot be deleted.
//
// # Usage
//
//	s := store.WithBuiltins(store.NewMemoryStore())
//	t, err := s.Get(ctx, "default")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, t.Document, opts)
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/badgeforge/pkg/errors"
	"github.com/matzehuels/badgeforge/pkg/spec"
)

// Template is a named badge document.
type Template struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Document    json.RawMessage `json:"document"`
	Builtin     bool            `json:"builtin,omitempty"`
	UpdatedAt   time.Time       `json:"updated_at,omitempty"`
}

// Store is the interface for template storage backends.
type Store interface {
	// List returns all templates sorted by name.
	List(ctx context.Context) ([]Template, error)

	// Get retrieves a template by name.
	// Returns a NOT_FOUND error if the template doesn't exist.
	Get(ctx context.Context, name string) (*Template, error)

	// Put creates or replaces a template.
	Put(ctx context.Context, t *Template) error

	// Delete removes a template.
	// Returns a NOT_FOUND error if the template doesn't exist.
	Delete(ctx context.Context, name string) error

	Close() error
}

// Validate checks the template name and that its document decodes.
func Validate(t *Template) error {
	if t == nil {
		return errors.New(errors.ErrCodeInvalidInput, "template is nil")
	}
	if err := errors.ValidateTemplateName(t.Name); err != nil {
		return err
	}
	if len(t.Document) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "template %q has no document", t.Name)
	}
	if _, err := spec.Decode(t.Document); err != nil {
		return errors.Wrap(errors.GetCode(err), err, "template %q", t.Name)
	}
	return nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "template %q not found", name)
}

// prepare validates t and returns a copy stamped with the current time.
func prepare(t *Template) (Template, error) {
	if err := Validate(t); err != nil {
		return Template{}, err
	}
	c := *t
	c.Document = append(json.RawMessage(nil), t.Document...)
	c.Builtin = false
	c.UpdatedAt = time.Now().UTC()
	return c, nil
}
