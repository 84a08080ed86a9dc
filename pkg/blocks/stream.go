package blocks

import (
	"fmt"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// StreamDefinition is a heterogeneous ordered collection: every child picks
// its type from the declared child definitions.
type StreamDefinition struct {
	name     string
	meta     Meta
	children []Definition
	byName   map[string]Definition
}

// NewStream returns a stream definition. Child names must be unique and
// every BlockCounts key must name a declared child.
func NewStream(name string, meta Meta, children ...Definition) (*StreamDefinition, error) {
	meta = meta.clone()
	if meta.Label == "" {
		meta.Label = DefaultLabeler(name)
	}
	d := &StreamDefinition{
		name:   name,
		meta:   meta,
		byName: make(map[string]Definition, len(children)),
	}
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("blocks: stream %q: child %d is nil", name, i)
		}
		if _, exists := d.byName[child.Name()]; exists {
			return nil, fmt.Errorf("%w: stream %q declares %q twice", ErrDuplicateChild, name, child.Name())
		}
		d.byName[child.Name()] = child
		d.children = append(d.children, child)
	}
	for blockType := range meta.BlockCounts {
		if _, ok := d.byName[blockType]; !ok {
			return nil, fmt.Errorf("%w: stream %q block count for %q", ErrUnknownChild, name, blockType)
		}
	}
	return d, nil
}

// MustStream is NewStream that panics on error.
func MustStream(name string, meta Meta, children ...Definition) *StreamDefinition {
	d, err := NewStream(name, meta, children...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *StreamDefinition) Name() string { return d.name }
func (d *StreamDefinition) Kind() Kind   { return KindStream }
func (d *StreamDefinition) Meta() Meta   { return d.meta.clone() }

// ChildDefinitions returns the declared child definitions in order.
func (d *StreamDefinition) ChildDefinitions() []Definition {
	return append([]Definition(nil), d.children...)
}

// ChildDefinition looks up a declared child type.
func (d *StreamDefinition) ChildDefinition(blockType string) (Definition, bool) {
	def, ok := d.byName[blockType]
	return def, ok
}

func (d *StreamDefinition) DefaultState() any {
	if d.meta.Default != nil {
		return deepCopy(d.meta.Default)
	}
	return []StreamItem{}
}

func (d *StreamDefinition) rekey(state any) any {
	items, err := asStreamItems(state)
	if err != nil {
		return deepCopy(state)
	}
	out := make([]StreamItem, len(items))
	for i, item := range items {
		value := deepCopy(item.Value)
		if def, ok := d.byName[item.Type]; ok {
			value = def.rekey(item.Value)
		}
		out[i] = StreamItem{Type: item.Type, Value: value}
	}
	return out
}

func (d *StreamDefinition) Render(mount *surface.Node, prefix string, state any, errs ErrorList, rc RenderContext) (Block, error) {
	if mount == nil {
		return nil, ErrMountRequired
	}
	items, err := asStreamItems(state)
	if err != nil {
		return nil, fmt.Errorf("blocks: stream %q: %w", d.name, err)
	}
	rc = rc.normalized()

	b := &StreamBlock{def: d}
	b.sequence = newSequence(KindStream, d.name, prefix, d.meta, rc)
	b.lookup = d.ChildDefinition

	b.top = newInsertionControl(b, 0)
	b.head = b.top.Element()
	b.items.Append(b.head)
	b.decorate = func(child *SequenceChild) {
		child.inserter = newInsertionControl(b, child.index+1)
		child.element.Append(child.inserter.Element())
	}
	b.changed = b.syncInsertionControls

	mount.ReplaceWith(b.element)

	if err := b.fill(items, d.meta.Collapsed); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		b.SetError(errs)
	}
	return b, nil
}

// StreamBlock is a live stream.
type StreamBlock struct {
	*sequence
	def *StreamDefinition
	top *InsertionControl
}

func (b *StreamBlock) Definition() Definition { return b.def }

// InsertionControls returns one control per insertion point: index 0 before
// the first child, then one after each active child.
func (b *StreamBlock) InsertionControls() []*InsertionControl {
	out := make([]*InsertionControl, 0, len(b.children)+1)
	out = append(out, b.top)
	for _, child := range b.children {
		out = append(out, child.inserter)
	}
	return out
}

// Append adds item after the last active child.
func (b *StreamBlock) Append(item StreamItem, opts ...InsertOption) (*SequenceChild, error) {
	return b.Insert(item, len(b.children), opts...)
}

// Insert adds item at index. The stream-wide limit and the per-type limit of
// item.Type both apply.
func (b *StreamBlock) Insert(item StreamItem, index int, opts ...InsertOption) (*SequenceChild, error) {
	if _, ok := b.def.byName[item.Type]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, item.Type)
	}
	if !b.allowed(CapabilityAdd, item.Type) {
		return nil, fmt.Errorf("%w: cannot add %q to %s", ErrLimitReached, item.Type, b.prefix)
	}
	o := buildInsertOptions(opts)
	if o.id == "" {
		o.id = item.ID
	}
	return b.insertChild(item.Type, item.Value, index, o)
}

// AddBlock inserts a new block of blockType in its default state at index
// and focuses it.
func (b *StreamBlock) AddBlock(blockType string, index int) (*SequenceChild, error) {
	def, ok := b.def.byName[blockType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, blockType)
	}
	return b.Insert(StreamItem{Type: blockType, Value: def.DefaultState()}, index, WithFocus())
}

// State returns one StreamItem per active child, values in state form.
func (b *StreamBlock) State() any {
	out := make([]StreamItem, 0, len(b.children))
	for _, child := range b.children {
		out = append(out, StreamItem{Type: child.blockType, Value: child.BlockState(), ID: child.id})
	}
	return out
}

// Value returns one StreamItem per active child, values in value form.
func (b *StreamBlock) Value() any {
	out := make([]StreamItem, 0, len(b.children))
	for _, child := range b.children {
		out = append(out, StreamItem{Type: child.blockType, Value: child.Value(), ID: child.id})
	}
	return out
}

// SetState replaces every child. Limits are not enforced. A state naming an
// undeclared type is rejected as a whole.
func (b *StreamBlock) SetState(state any) {
	items, err := asStreamItems(state)
	if err == nil {
		err = b.checkTypes(items)
	}
	if err != nil {
		b.log.Warn().Err(err).Msg("ignoring unsupported stream state")
		return
	}
	b.clear()
	if err := b.fill(items, false); err != nil {
		b.log.Error().Err(err).Msg("set state")
	}
}

func (b *StreamBlock) checkTypes(items []StreamItem) error {
	for i, item := range items {
		if _, ok := b.def.byName[item.Type]; !ok {
			return fmt.Errorf("%w: item %d has type %q", ErrUnknownBlockType, i, item.Type)
		}
	}
	return nil
}

func (b *StreamBlock) fill(items []StreamItem, collapsed bool) error {
	if err := b.checkTypes(items); err != nil {
		return fmt.Errorf("blocks: stream %q: %w", b.def.name, err)
	}
	for i, item := range items {
		if _, err := b.insertChild(item.Type, item.Value, i, insertOptions{id: item.ID, collapsed: collapsed}); err != nil {
			return err
		}
	}
	b.recompute()
	return nil
}

func (b *StreamBlock) syncInsertionControls() {
	b.top.SetIndex(0)
	b.top.refresh()
	for i, child := range b.children {
		if child.inserter == nil {
			continue
		}
		child.inserter.SetIndex(i + 1)
		child.inserter.refresh()
	}
}
