package streamfield

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/editor"
	"github.com/goliatone/go-streamfield/pkg/render"
	"github.com/goliatone/go-streamfield/pkg/renderers/html"
	"github.com/goliatone/go-streamfield/pkg/schema"
)

// RenderOptions describes per-request form wrapping for renderers; alias
// exported via the root package for convenience.
type RenderOptions = render.RenderOptions

// ErrorList aliases the recursive error shape blocks accept.
type ErrorList = blocks.ErrorList

// NewEditor exposes the editor constructor from the top-level module.
func NewEditor(def blocks.Definition, options ...editor.Option) (*editor.Editor, error) {
	return editor.New(def, options...)
}

// LoadEditor reads a definition document from fsys and mounts it.
func LoadEditor(ctx context.Context, fsys fs.FS, path string, options ...editor.Option) (*editor.Editor, error) {
	return editor.Load(ctx, fsys, path, nil, options...)
}

// ParseDefinition builds a definition from an inline JSON or YAML document.
func ParseDefinition(data []byte) (blocks.Definition, error) {
	doc, err := schema.Parse(data, schema.SourceInline("inline"))
	if err != nil {
		return nil, err
	}
	return doc.Build(schema.NewBuilder(nil))
}

// GenerateHTML parses the definition document, mounts it with state and
// renders it with the built-in HTML renderer. It is the simplest entry point
// for callers that just want markup.
func GenerateHTML(ctx context.Context, definition []byte, state any, options RenderOptions) ([]byte, error) {
	def, err := ParseDefinition(definition)
	if err != nil {
		return nil, fmt.Errorf("streamfield: %w", err)
	}
	ed, err := editor.New(def, editor.WithState(state))
	if err != nil {
		return nil, err
	}
	return ed.Render(ctx, html.Name, options)
}

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}
