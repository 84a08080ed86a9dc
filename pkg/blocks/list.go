package blocks

import (
	"fmt"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// ListDefinition is a homogeneous ordered collection of one child definition.
type ListDefinition struct {
	name  string
	meta  Meta
	child Definition
}

// NewList returns a list definition over child.
func NewList(name string, meta Meta, child Definition) *ListDefinition {
	meta = meta.clone()
	if meta.Label == "" {
		meta.Label = DefaultLabeler(name)
	}
	return &ListDefinition{name: name, meta: meta, child: child}
}

func (d *ListDefinition) Name() string { return d.name }
func (d *ListDefinition) Kind() Kind   { return KindList }
func (d *ListDefinition) Meta() Meta   { return d.meta.clone() }

// Child returns the item definition.
func (d *ListDefinition) Child() Definition { return d.child }

func (d *ListDefinition) DefaultState() any {
	if d.meta.Default != nil {
		return deepCopy(d.meta.Default)
	}
	return []ListItem{}
}

func (d *ListDefinition) rekey(state any) any {
	items, ok := asListItems(state)
	if !ok || d.child == nil {
		return deepCopy(state)
	}
	out := make([]ListItem, len(items))
	for i, item := range items {
		out[i] = ListItem{Value: d.child.rekey(item.Value)}
	}
	return out
}

func (d *ListDefinition) Render(mount *surface.Node, prefix string, state any, errs ErrorList, rc RenderContext) (Block, error) {
	if mount == nil {
		return nil, ErrMountRequired
	}
	if d.child == nil {
		return nil, fmt.Errorf("blocks: list %q has no child definition", d.name)
	}
	items, ok := asListItems(state)
	if !ok {
		return nil, fmt.Errorf("blocks: list %q: unsupported state %T", d.name, state)
	}
	rc = rc.normalized()

	b := &ListBlock{def: d}
	b.sequence = newSequence(KindList, d.name, prefix, d.meta, rc)
	b.lookup = func(string) (Definition, bool) { return d.child, true }

	b.addButton = surface.NewElement("button", "c-sf-container__add")
	b.addButton.SetAttr("type", "button")
	b.addButton.SetAttr("data-action", "append")
	b.addButton.SetText("Add " + d.child.Meta().Label)
	b.addButton.On(surface.EventClick, func(evt *surface.Event) {
		evt.StopPropagation()
		if _, err := b.Append(d.child.DefaultState(), WithFocus()); err != nil {
			b.log.Debug().Err(err).Msg("append rejected")
		}
	})
	b.element.Append(b.addButton)
	b.changed = func() {
		if b.registry.Enabled(CapabilityAdd) {
			b.addButton.RemoveAttr("disabled")
		} else {
			b.addButton.SetAttr("disabled", "")
		}
	}

	mount.ReplaceWith(b.element)

	if err := b.fill(items, d.meta.Collapsed); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		b.SetError(errs)
	}
	return b, nil
}

// ListBlock is a live list.
type ListBlock struct {
	*sequence
	def       *ListDefinition
	addButton *surface.Node
}

func (b *ListBlock) Definition() Definition { return b.def }

// Append adds value after the last active child.
func (b *ListBlock) Append(value any, opts ...InsertOption) (*SequenceChild, error) {
	return b.Insert(value, len(b.children), opts...)
}

// Insert adds value at index. It fails with ErrLimitReached when the list is
// full.
func (b *ListBlock) Insert(value any, index int, opts ...InsertOption) (*SequenceChild, error) {
	if !b.allowed(CapabilityAdd, "") {
		return nil, fmt.Errorf("%w: %s holds %d of %d", ErrLimitReached, b.prefix, len(b.children), b.meta.MaxNum)
	}
	return b.insertChild("", value, index, buildInsertOptions(opts))
}

// State returns one ListItem per active child.
func (b *ListBlock) State() any {
	out := make([]ListItem, 0, len(b.children))
	for _, child := range b.children {
		out = append(out, ListItem{ID: child.id, Value: child.BlockState()})
	}
	return out
}

// Value returns the active children's values.
func (b *ListBlock) Value() any {
	out := make([]any, 0, len(b.children))
	for _, child := range b.children {
		out = append(out, child.Value())
	}
	return out
}

// SetState replaces every child. Limits are not enforced and no soft-deleted
// entries are left behind.
func (b *ListBlock) SetState(state any) {
	items, ok := asListItems(state)
	if !ok {
		b.log.Warn().Str("state", fmt.Sprintf("%T", state)).Msg("ignoring unsupported list state")
		return
	}
	b.clear()
	if err := b.fill(items, false); err != nil {
		b.log.Error().Err(err).Msg("set state")
	}
}

func (b *ListBlock) fill(items []ListItem, collapsed bool) error {
	for i, item := range items {
		if _, err := b.insertChild("", item.Value, i, insertOptions{id: item.ID, collapsed: collapsed}); err != nil {
			return err
		}
	}
	b.recompute()
	return nil
}
