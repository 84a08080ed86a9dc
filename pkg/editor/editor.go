package editor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/form"
	"github.com/goliatone/go-streamfield/pkg/render"
	"github.com/goliatone/go-streamfield/pkg/renderers/html"
	"github.com/goliatone/go-streamfield/pkg/schema"
	"github.com/goliatone/go-streamfield/pkg/surface"
	"github.com/goliatone/go-streamfield/pkg/validation"
)

const defaultRendererName = html.Name

// Editor mounts one definition into a fresh document and keeps the live block
// tree together with the collaborators needed to submit, validate and render
// it.
type Editor struct {
	def             blocks.Definition
	prefix          string
	state           any
	hasState        bool
	errors          blocks.ErrorList
	ids             blocks.IDGenerator
	log             zerolog.Logger
	registry        *render.Registry
	defaultRenderer string

	document *surface.Node
	block    blocks.Block
}

// New renders def and returns the editor around the live tree. Missing
// dependencies are initialised with the built-in implementations (UUID ids,
// HTML renderer, no-op logger).
func New(def blocks.Definition, options ...Option) (*Editor, error) {
	if def == nil {
		return nil, errors.New("editor: definition is required")
	}
	e := &Editor{
		def:             def,
		prefix:          def.Name(),
		log:             zerolog.Nop(),
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	if err := e.applyDefaults(); err != nil {
		return nil, err
	}

	state := e.state
	if !e.hasState {
		state = def.DefaultState()
	}
	e.document = surface.NewElement("div", "c-sf-editor")
	mount := surface.NewPlaceholder()
	e.document.Append(mount)

	logger := e.log
	block, err := def.Render(mount, e.prefix, state, e.errors, blocks.RenderContext{IDs: e.ids, Logger: &logger})
	if err != nil {
		return nil, fmt.Errorf("editor: render %q: %w", def.Name(), err)
	}
	e.block = block
	e.log.Debug().Str("definition", def.Name()).Str("prefix", e.prefix).Msg("editor mounted")
	return e, nil
}

// Load parses the definition document at path in fsys, builds it with
// builder (schema.NewBuilder(nil) when nil) and mounts it.
func Load(ctx context.Context, fsys fs.FS, path string, builder *schema.Builder, options ...Option) (*Editor, error) {
	if ctx == nil {
		return nil, errors.New("editor: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := schema.LoadFS(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("editor: load definition: %w", err)
	}
	return mountDocument(doc, builder, options)
}

// LoadOpenAPI derives the definition from the component schema named
// component in the OpenAPI document at path, then mounts it like Load.
func LoadOpenAPI(ctx context.Context, fsys fs.FS, path, component string, builder *schema.Builder, options ...Option) (*Editor, error) {
	if ctx == nil {
		return nil, errors.New("editor: context is required")
	}
	doc, err := schema.LoadOpenAPI(ctx, fsys, path, component)
	if err != nil {
		return nil, fmt.Errorf("editor: load openapi definition: %w", err)
	}
	return mountDocument(doc, builder, options)
}

func mountDocument(doc schema.Document, builder *schema.Builder, options []Option) (*Editor, error) {
	if builder == nil {
		builder = schema.NewBuilder(nil)
	}
	def, err := doc.Build(builder)
	if err != nil {
		return nil, fmt.Errorf("editor: build definition: %w", err)
	}
	return New(def, options...)
}

func (e *Editor) applyDefaults() error {
	if e.ids == nil {
		e.ids = blocks.UUIDGenerator{}
	}
	e.log = e.log.With().Str("source", "editor").Logger()
	if e.registry == nil {
		e.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			return fmt.Errorf("editor: default renderer: %w", err)
		}
		e.registry.MustRegister(renderer)
	}
	if e.defaultRenderer == "" {
		e.defaultRenderer = defaultRendererName
	}
	return nil
}

// Definition returns the mounted definition.
func (e *Editor) Definition() blocks.Definition { return e.def }

// Block returns the root of the live tree.
func (e *Editor) Block() blocks.Block { return e.block }

// Document returns the surface node the tree is mounted in.
func (e *Editor) Document() *surface.Node { return e.document }

// Prefix returns the submission prefix of the root block.
func (e *Editor) Prefix() string { return e.prefix }

// Renderers returns the renderer registry.
func (e *Editor) Renderers() *render.Registry { return e.registry }

// Value returns the root block's value.
func (e *Editor) Value() any { return e.block.Value() }

// State returns the root block's state.
func (e *Editor) State() any { return e.block.State() }

// SetState replaces the tree's state.
func (e *Editor) SetState(state any) { e.block.SetState(state) }

// Submission returns the fields a browser would post for the document.
func (e *Editor) Submission() url.Values { return form.Collect(e.document) }

// DecodeSubmission reads a posted submission back into state form.
func (e *Editor) DecodeSubmission(values url.Values) (any, error) {
	state, err := form.DecodeState(e.def, values, e.prefix)
	if err != nil {
		return nil, fmt.Errorf("editor: decode submission: %w", err)
	}
	return state, nil
}

// ApplyErrors projects errs onto the tree.
func (e *Editor) ApplyErrors(errs blocks.ErrorList) {
	e.block.SetError(errs)
}

// ApplyErrorPayload folds a flat path-keyed payload into the tree's error
// shape, applies it and returns the projected list.
func (e *Editor) ApplyErrorPayload(payload map[string][]string) blocks.ErrorList {
	errs := validation.MapBlockPayload(e.block, payload)
	e.block.SetError(errs)
	return errs
}

// ApplyErrorJSON decodes a recursive JSON error payload against the live
// tree and applies it.
func (e *Editor) ApplyErrorJSON(raw []byte) (blocks.ErrorList, error) {
	errs, err := validation.DecodeFor(e.block, raw)
	if err != nil {
		return nil, fmt.Errorf("editor: decode errors: %w", err)
	}
	e.block.SetError(errs)
	return errs, nil
}

// Resolve returns the block at a dotted path below the root.
func (e *Editor) Resolve(path string) (blocks.Block, error) {
	return blocks.Resolve(e.block, path)
}

// Render serializes the document with the named renderer, or the default
// renderer when name is empty.
func (e *Editor) Render(ctx context.Context, name string, options render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("editor: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	renderer, err := e.rendererFor(name)
	if err != nil {
		return nil, err
	}
	output, err := renderer.Render(ctx, e.document, options)
	if err != nil {
		return nil, fmt.Errorf("editor: render output: %w", err)
	}
	return output, nil
}

func (e *Editor) rendererFor(name string) (render.Renderer, error) {
	if e.registry == nil {
		return nil, errors.New("editor: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = e.defaultRenderer
	}

	if target != "" {
		renderer, err := e.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("editor: renderer %q: %w", name, err)
		}
	}

	names := e.registry.List()
	if len(names) == 0 {
		return nil, errors.New("editor: no renderers registered")
	}

	renderer, err := e.registry.Get(names[0])
	if err != nil {
		return nil, fmt.Errorf("editor: renderer %q: %w", names[0], err)
	}
	return renderer, nil
}
