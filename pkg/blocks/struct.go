package blocks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// LayoutItem places either one child (Field) or a nested Group.
type LayoutItem struct {
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
	Group *Group `json:"group,omitempty" yaml:"group,omitempty"`
}

// Group renders its items inside a collapsible panel. A Settings group is
// rendered in a separate region toggled independently from the main content
// and may only appear at the top level.
type Group struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Label       string       `json:"label,omitempty" yaml:"label,omitempty"`
	LabelFormat string       `json:"labelFormat,omitempty" yaml:"labelFormat,omitempty"`
	Collapsed   bool         `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Settings    bool         `json:"settings,omitempty" yaml:"settings,omitempty"`
	Items       []LayoutItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// LayoutField is shorthand for a LayoutItem holding one child.
func LayoutField(name string) LayoutItem { return LayoutItem{Field: name} }

// LayoutGroup is shorthand for a LayoutItem holding a group.
func LayoutGroup(group Group) LayoutItem { return LayoutItem{Group: &group} }

var errInvalidLayout = errors.New("blocks: invalid struct layout")

// StructDefinition is a fixed set of named children with an optional layout.
type StructDefinition struct {
	name     string
	meta     Meta
	children []Definition
	byName   map[string]Definition
	layout   []LayoutItem
}

// NewStruct returns a struct definition. Referencing an undeclared child in
// layout, declaring a child twice or nesting a settings group fails. Children
// the layout does not mention are appended to the main content.
func NewStruct(name string, meta Meta, children []Definition, layout ...LayoutItem) (*StructDefinition, error) {
	meta = meta.clone()
	if meta.Label == "" {
		meta.Label = DefaultLabeler(name)
	}
	d := &StructDefinition{
		name:   name,
		meta:   meta,
		byName: make(map[string]Definition, len(children)),
	}
	for i, child := range children {
		if child == nil {
			return nil, fmt.Errorf("blocks: struct %q: child %d is nil", name, i)
		}
		if _, exists := d.byName[child.Name()]; exists {
			return nil, fmt.Errorf("%w: struct %q declares %q twice", ErrDuplicateChild, name, child.Name())
		}
		d.byName[child.Name()] = child
		d.children = append(d.children, child)
	}

	placed := make(map[string]bool, len(children))
	items, err := d.checkLayout(layout, placed, true)
	if err != nil {
		return nil, err
	}
	for _, child := range d.children {
		if !placed[child.Name()] {
			items = append(items, LayoutField(child.Name()))
		}
	}
	d.layout = items
	return d, nil
}

// MustStruct is NewStruct that panics on error.
func MustStruct(name string, meta Meta, children []Definition, layout ...LayoutItem) *StructDefinition {
	d, err := NewStruct(name, meta, children, layout...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *StructDefinition) checkLayout(items []LayoutItem, placed map[string]bool, topLevel bool) ([]LayoutItem, error) {
	out := make([]LayoutItem, 0, len(items))
	for _, item := range items {
		switch {
		case item.Field != "" && item.Group != nil:
			return nil, fmt.Errorf("%w: item %q sets both field and group", errInvalidLayout, item.Field)
		case item.Field != "":
			if _, ok := d.byName[item.Field]; !ok {
				return nil, fmt.Errorf("%w: struct %q layout references %q", ErrUnknownChild, d.name, item.Field)
			}
			if placed[item.Field] {
				return nil, fmt.Errorf("%w: struct %q layout places %q twice", ErrDuplicateChild, d.name, item.Field)
			}
			placed[item.Field] = true
			out = append(out, item)
		case item.Group != nil:
			if item.Group.Settings && !topLevel {
				return nil, fmt.Errorf("%w: settings group %q must be top level", errInvalidLayout, item.Group.Name)
			}
			nested, err := d.checkLayout(item.Group.Items, placed, false)
			if err != nil {
				return nil, err
			}
			group := *item.Group
			group.Items = nested
			out = append(out, LayoutItem{Group: &group})
		default:
			return nil, fmt.Errorf("%w: empty layout item in struct %q", errInvalidLayout, d.name)
		}
	}
	return out, nil
}

func (d *StructDefinition) Name() string { return d.name }
func (d *StructDefinition) Kind() Kind   { return KindStruct }
func (d *StructDefinition) Meta() Meta   { return d.meta.clone() }

// ChildDefinitions returns the declared children in order.
func (d *StructDefinition) ChildDefinitions() []Definition {
	return append([]Definition(nil), d.children...)
}

// ChildDefinition looks up a declared child.
func (d *StructDefinition) ChildDefinition(name string) (Definition, bool) {
	def, ok := d.byName[name]
	return def, ok
}

// Layout returns the normalized layout.
func (d *StructDefinition) Layout() []LayoutItem {
	return append([]LayoutItem(nil), d.layout...)
}

func (d *StructDefinition) DefaultState() any {
	if d.meta.Default != nil {
		return deepCopy(d.meta.Default)
	}
	out := make(map[string]any, len(d.children))
	for _, child := range d.children {
		out[child.Name()] = child.DefaultState()
	}
	return out
}

func (d *StructDefinition) rekey(state any) any {
	values, ok := asStructState(state)
	if !ok {
		return deepCopy(state)
	}
	out := make(map[string]any, len(values))
	for name, value := range values {
		if def, ok := d.byName[name]; ok {
			out[name] = def.rekey(value)
			continue
		}
		out[name] = deepCopy(value)
	}
	return out
}

func (d *StructDefinition) Render(mount *surface.Node, prefix string, state any, errs ErrorList, rc RenderContext) (Block, error) {
	if mount == nil {
		return nil, ErrMountRequired
	}
	values, ok := asStructState(state)
	if !ok {
		return nil, fmt.Errorf("blocks: struct %q: unsupported state %T", d.name, state)
	}
	rc = rc.normalized()

	b := &StructBlock{
		def:    d,
		prefix: prefix,
		blocks: make(map[string]Block, len(d.children)),
		log:    rc.logger("struct", prefix),
	}
	b.element = surface.NewElement("div", "struct-block")
	b.element.AddClass(d.meta.Classname)
	b.element.SetAttr("data-block", d.name)
	b.element.SetAttr("data-struct", "")
	b.errors = surface.NewElement("div", "struct-block__errors", "help-block")
	b.content = surface.NewElement("div", "struct-block__content")
	b.element.Append(b.errors, b.content)
	b.element.On(surface.EventChange, func(*surface.Event) { b.refreshGroups() })

	mount.ReplaceWith(b.element)

	// Capabilities stop at the struct. Sequence actions such as split take
	// the whole struct state, which no single child holds.
	childRC := rc.WithCapabilities(nil)
	if err := b.renderItems(b.content, d.layout, values, childRC); err != nil {
		return nil, err
	}
	b.refreshGroups()

	if len(errs) > 0 {
		b.SetError(errs)
	}
	return b, nil
}

func (b *StructBlock) renderItems(container *surface.Node, items []LayoutItem, values map[string]any, rc RenderContext) error {
	for _, item := range items {
		if item.Group == nil {
			if err := b.renderChild(container, item.Field, values, rc); err != nil {
				return err
			}
			continue
		}

		if item.Group.Settings {
			b.ensureSettings()
			if err := b.renderItems(b.settings, item.Group.Items, values, rc); err != nil {
				return err
			}
			continue
		}

		title := item.Group.Label
		if title == "" {
			title = DefaultLabeler(item.Group.Name)
		}
		panel := newPanel("struct-block__group", title, item.Group.Collapsed)
		if item.Group.Name != "" {
			panel.Element().SetAttr("data-group", item.Group.Name)
		}
		container.Append(panel.Element())
		b.groups = append(b.groups, &structGroup{group: *item.Group, panel: panel})
		if err := b.renderItems(panel.Content(), item.Group.Items, values, rc); err != nil {
			return err
		}
	}
	return nil
}

func (b *StructBlock) renderChild(container *surface.Node, name string, values map[string]any, rc RenderContext) error {
	def := b.def.byName[name]
	state, ok := values[name]
	if !ok {
		state = def.DefaultState()
	}
	mount := surface.NewPlaceholder()
	container.Append(mount)
	block, err := def.Render(mount, b.prefix+"-"+name, state, nil, rc)
	if err != nil {
		return fmt.Errorf("blocks: struct %q child %q: %w", b.def.name, name, err)
	}
	b.blocks[name] = block
	return nil
}

func (b *StructBlock) ensureSettings() {
	if b.settings != nil {
		return
	}
	b.settingsToggle = surface.NewElement("button", "struct-block__settings-toggle")
	b.settingsToggle.SetAttr("type", "button")
	b.settingsToggle.SetAttr("data-action", "toggle-settings")
	b.settingsToggle.SetText("Settings")
	b.settingsToggle.On(surface.EventClick, func(evt *surface.Event) {
		evt.StopPropagation()
		b.ToggleSettings()
	})
	b.settings = surface.NewElement("div", "struct-block__settings")
	b.settings.SetAttr("data-settings", "")
	b.settings.On(surface.EventReveal, func(*surface.Event) { b.setSettingsVisible(true) })
	b.element.InsertBefore(b.settingsToggle, b.content)
	b.element.Append(b.settings)
	b.setSettingsVisible(false)
}

type structGroup struct {
	group Group
	panel *Panel
}

// StructBlock is a live struct.
type StructBlock struct {
	def    *StructDefinition
	prefix string
	blocks map[string]Block
	groups []*structGroup
	log    zerolog.Logger

	element         *surface.Node
	errors          *surface.Node
	content         *surface.Node
	settings        *surface.Node
	settingsToggle  *surface.Node
	settingsVisible bool
}

func (b *StructBlock) Definition() Definition { return b.def }
func (b *StructBlock) Element() *surface.Node { return b.element }

// ChildBlock returns the child named key.
func (b *StructBlock) ChildBlock(key string) (Block, bool) {
	block, ok := b.blocks[key]
	return block, ok
}

// Value maps each child name to the child's value.
func (b *StructBlock) Value() any {
	out := make(map[string]any, len(b.blocks))
	for name, block := range b.blocks {
		out[name] = block.Value()
	}
	return out
}

// State maps each child name to the child's state.
func (b *StructBlock) State() any {
	out := make(map[string]any, len(b.blocks))
	for name, block := range b.blocks {
		out[name] = block.State()
	}
	return out
}

// SetState forwards each entry to the named child; unknown names are skipped.
func (b *StructBlock) SetState(state any) {
	values, ok := asStructState(state)
	if !ok {
		b.log.Warn().Str("state", fmt.Sprintf("%T", state)).Msg("ignoring unsupported struct state")
		return
	}
	for name, value := range values {
		block, ok := b.blocks[name]
		if !ok {
			b.log.Debug().Str("child", name).Msg("ignoring state for undeclared child")
			continue
		}
		block.SetState(value)
	}
	b.refreshGroups()
}

// SetError applies a single StructError: messages are shown at block level
// and block errors go to the named children. A non-empty error reveals the
// block inside any collapsed ancestor.
func (b *StructBlock) SetError(errs ErrorList) {
	if len(errs) != 1 {
		b.log.Debug().Int("entries", len(errs)).Msg("ignoring error list without a single aggregate entry")
		return
	}
	structErr, ok := errs[0].(StructError)
	if !ok {
		b.log.Debug().Str("variant", fmt.Sprintf("%T", errs[0])).Msg("ignoring non-struct error")
		return
	}

	b.errors.Clear()
	for _, message := range structErr.Messages {
		p := surface.NewElement("p", "error-message")
		p.SetText(message)
		b.errors.Append(p)
	}
	b.element.ToggleClass("struct-block--error", len(structErr.Messages) > 0)

	for name, childErr := range structErr.BlockErrors {
		block, ok := b.blocks[name]
		if !ok {
			b.log.Debug().Str("child", name).Msg("error for undeclared child")
			continue
		}
		block.SetError(Single(childErr))
	}
	if !IsEmpty(structErr) {
		b.element.Dispatch(surface.EventReveal, nil)
	}
}

// ErrorMessages returns the block-level messages currently shown.
func (b *StructBlock) ErrorMessages() []string {
	var out []string
	for _, node := range b.errors.Children() {
		out = append(out, node.TextContent())
	}
	return out
}

// Focus focuses the first declared child.
func (b *StructBlock) Focus(opts FocusOptions) {
	if len(b.def.children) == 0 {
		return
	}
	if block, ok := b.blocks[b.def.children[0].Name()]; ok {
		block.Focus(opts)
	}
}

// Label applies the label format when one is configured and otherwise
// returns the first non-empty child label in declared order.
func (b *StructBlock) Label() string {
	if b.def.meta.LabelFormat != "" {
		return strings.TrimSpace(FormatLabel(b.def.meta.LabelFormat, b.childLabel))
	}
	for _, child := range b.def.children {
		if label := b.childLabel(child.Name()); label != "" {
			return label
		}
	}
	return ""
}

func (b *StructBlock) childLabel(name string) string {
	block, ok := b.blocks[name]
	if !ok {
		return ""
	}
	return strings.TrimSpace(safeLabel(block.Label))
}

// SettingsVisible reports whether the settings region is shown.
func (b *StructBlock) SettingsVisible() bool { return b.settingsVisible }

// HasSettings reports whether the layout declares a settings group.
func (b *StructBlock) HasSettings() bool { return b.settings != nil }

// ToggleSettings flips the settings region without touching the main content.
func (b *StructBlock) ToggleSettings() {
	if b.settings == nil {
		return
	}
	b.setSettingsVisible(!b.settingsVisible)
}

func (b *StructBlock) setSettingsVisible(visible bool) {
	b.settingsVisible = visible
	b.settings.SetHidden(!visible)
	if visible {
		b.settingsToggle.SetAttr("aria-expanded", "true")
	} else {
		b.settingsToggle.SetAttr("aria-expanded", "false")
	}
}

// GroupPanel returns the panel rendered for the named group.
func (b *StructBlock) GroupPanel(name string) (*Panel, bool) {
	for _, g := range b.groups {
		if g.group.Name == name {
			return g.panel, true
		}
	}
	return nil, false
}

// Refresh re-derives group titles from their label formats.
func (b *StructBlock) Refresh() { b.refreshGroups() }

func (b *StructBlock) refreshGroups() {
	for _, g := range b.groups {
		if g.group.LabelFormat == "" {
			continue
		}
		title := strings.TrimSpace(FormatLabel(g.group.LabelFormat, b.childLabel))
		if title == "" {
			title = g.group.Label
		}
		g.panel.SetTitle(title)
	}
}
