package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-streamfield/pkg/blocks"
)

// Factory builds a definition from a spec node. Factories recurse into
// children through the builder they receive.
type Factory func(b *Builder, spec Spec) (blocks.Definition, error)

var (
	// ErrUnknownType is returned when a spec names a type with no factory.
	ErrUnknownType = errors.New("schema: unknown definition type")
	// ErrInvalidSpec is returned for structurally invalid spec nodes.
	ErrInvalidSpec = errors.New("schema: invalid definition spec")
)

// Registry maps definition types to factories. It is injected into a Builder;
// there is no package-level registry.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in field, struct, list
// and stream factories.
func NewRegistry() *Registry {
	reg := &Registry{factories: make(map[string]Factory)}
	reg.MustRegister(TypeField, buildField)
	reg.MustRegister(TypeStruct, buildStruct)
	reg.MustRegister(TypeList, buildList)
	reg.MustRegister(TypeStream, buildStream)
	return reg
}

// Register binds a type name to a factory, replacing any previous binding.
func (r *Registry) Register(name string, factory Factory) error {
	if r == nil {
		return errors.New("schema: registry is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("schema: factory type is required")
	}
	if factory == nil {
		return fmt.Errorf("schema: factory for %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Get returns the factory bound to name.
func (r *Registry) Get(name string) (Factory, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return factory, nil
}

// Has reports whether name has a factory.
func (r *Registry) Has(name string) bool {
	_, err := r.Get(name)
	return err == nil
}

// Types lists the registered type names, sorted.
func (r *Registry) Types() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildField(b *Builder, spec Spec) (blocks.Definition, error) {
	factory, err := b.widgets.Factory(spec.Hints())
	if err != nil {
		return nil, fmt.Errorf("schema: field %q: %w", spec.Name, err)
	}
	return blocks.NewField(spec.Name, spec.Meta(), factory), nil
}

func buildStruct(b *Builder, spec Spec) (blocks.Definition, error) {
	children, err := b.BuildAll(spec.Children)
	if err != nil {
		return nil, err
	}
	def, err := blocks.NewStruct(spec.Name, spec.Meta(), children, layoutItems(spec.Layout)...)
	if err != nil {
		return nil, fmt.Errorf("schema: struct %q: %w", spec.Name, err)
	}
	return def, nil
}

func buildList(b *Builder, spec Spec) (blocks.Definition, error) {
	if spec.Child == nil {
		return nil, fmt.Errorf("%w: list %q has no child", ErrInvalidSpec, spec.Name)
	}
	child := *spec.Child
	if child.Name == "" {
		child.Name = "item"
	}
	def, err := b.Build(child)
	if err != nil {
		return nil, err
	}
	return blocks.NewList(spec.Name, spec.Meta(), def), nil
}

func buildStream(b *Builder, spec Spec) (blocks.Definition, error) {
	if len(spec.Children) == 0 {
		return nil, fmt.Errorf("%w: stream %q declares no block types", ErrInvalidSpec, spec.Name)
	}
	children, err := b.BuildAll(spec.Children)
	if err != nil {
		return nil, err
	}
	def, err := blocks.NewStream(spec.Name, spec.Meta(), children...)
	if err != nil {
		return nil, fmt.Errorf("schema: stream %q: %w", spec.Name, err)
	}
	return def, nil
}
