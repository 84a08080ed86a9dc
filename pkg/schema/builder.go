package schema

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/widgets"
)

// Builder turns spec trees into definitions using an injected registry.
type Builder struct {
	registry *Registry
	widgets  *widgets.Registry
	log      zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithWidgets overrides the widget registry used by field factories.
func WithWidgets(reg *widgets.Registry) BuilderOption {
	return func(b *Builder) {
		if reg != nil {
			b.widgets = reg
		}
	}
}

// WithLogger sets the logger used to trace factory dispatch.
func WithLogger(logger zerolog.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = logger.With().Str("source", "schema").Logger()
	}
}

// NewBuilder returns a builder dispatching through registry. A nil registry
// uses NewRegistry().
func NewBuilder(registry *Registry, opts ...BuilderOption) *Builder {
	if registry == nil {
		registry = NewRegistry()
	}
	b := &Builder{
		registry: registry,
		widgets:  widgets.NewRegistry(),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Registry returns the factory registry.
func (b *Builder) Registry() *Registry { return b.registry }

// Widgets returns the widget registry handed to field factories.
func (b *Builder) Widgets() *widgets.Registry { return b.widgets }

// Build constructs the definition for spec. A missing type defaults to
// "field".
func (b *Builder) Build(spec Spec) (blocks.Definition, error) {
	spec.Name = strings.TrimSpace(spec.Name)
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidSpec)
	}
	kind := strings.TrimSpace(spec.Type)
	if kind == "" {
		kind = TypeField
	}
	factory, err := b.registry.Get(kind)
	if err != nil {
		return nil, fmt.Errorf("schema: %q: %w", spec.Name, err)
	}
	b.log.Debug().Str("name", spec.Name).Str("type", kind).Msg("building definition")
	return factory(b, spec)
}

// BuildAll builds every spec in order.
func (b *Builder) BuildAll(specs []Spec) ([]blocks.Definition, error) {
	out := make([]blocks.Definition, 0, len(specs))
	for _, spec := range specs {
		def, err := b.Build(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}
