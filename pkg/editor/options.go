package editor

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/render"
)

// Option customises the editor configuration.
type Option func(*Editor)

// WithPrefix overrides the submission prefix of the root block. The
// definition name is used by default.
func WithPrefix(prefix string) Option {
	return func(e *Editor) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

// WithState seeds the tree. Without it the definition's default state is
// rendered.
func WithState(state any) Option {
	return func(e *Editor) {
		e.state = state
		e.hasState = true
	}
}

// WithErrors projects errs onto the tree as it renders.
func WithErrors(errs blocks.ErrorList) Option {
	return func(e *Editor) {
		e.errors = errs
	}
}

// WithLogger sets the logger handed down to every block.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Editor) {
		e.log = logger
	}
}

// WithIDGenerator overrides the generator used for sequence item ids.
func WithIDGenerator(ids blocks.IDGenerator) Option {
	return func(e *Editor) {
		e.ids = ids
	}
}

// WithRenderers injects a renderer registry. When omitted the editor
// registers the HTML renderer.
func WithRenderers(registry *render.Registry) Option {
	return func(e *Editor) {
		e.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when Render is called
// without a name.
func WithDefaultRenderer(name string) Option {
	return func(e *Editor) {
		e.defaultRenderer = name
	}
}
