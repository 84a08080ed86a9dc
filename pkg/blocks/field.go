package blocks

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// Widget is the minimal contract a leaf input must satisfy.
type Widget interface {
	Value() any
	State() any
	SetState(state any)
	Focus(opts FocusOptions)
	// Label returns a short text rendition of the current value.
	Label() string
	// IDForLabel is the id of the element a <label> should point at.
	IDForLabel() string
}

// WidgetFactory renders a widget into mount. name is the submission name and
// id the element id; caps is the view the enclosing field received.
type WidgetFactory interface {
	Render(mount *surface.Node, name, id string, state any, caps *Capabilities) (Widget, error)
}

// WidgetFactoryFunc adapts a function to WidgetFactory.
type WidgetFactoryFunc func(mount *surface.Node, name, id string, state any, caps *Capabilities) (Widget, error)

func (f WidgetFactoryFunc) Render(mount *surface.Node, name, id string, state any, caps *Capabilities) (Widget, error) {
	return f(mount, name, id, state, caps)
}

// FieldDefinition describes an atomic block backed by a widget.
type FieldDefinition struct {
	name   string
	meta   Meta
	widget WidgetFactory
}

// NewField returns a field definition. An empty label is derived from name.
func NewField(name string, meta Meta, widget WidgetFactory) *FieldDefinition {
	meta = meta.clone()
	if meta.Label == "" {
		meta.Label = DefaultLabeler(name)
	}
	return &FieldDefinition{name: name, meta: meta, widget: widget}
}

func (d *FieldDefinition) Name() string { return d.name }
func (d *FieldDefinition) Kind() Kind   { return KindField }
func (d *FieldDefinition) Meta() Meta   { return d.meta.clone() }

// Widget returns the widget factory.
func (d *FieldDefinition) Widget() WidgetFactory { return d.widget }

func (d *FieldDefinition) DefaultState() any { return deepCopy(d.meta.Default) }

func (d *FieldDefinition) rekey(state any) any { return deepCopy(state) }

// Render builds the field chrome and mounts the widget. A widget that fails
// to render leaves the field in an errored state instead of failing the tree.
func (d *FieldDefinition) Render(mount *surface.Node, prefix string, state any, errs ErrorList, rc RenderContext) (Block, error) {
	if mount == nil {
		return nil, ErrMountRequired
	}
	rc = rc.normalized()

	b := &FieldBlock{
		def:      d,
		prefix:   prefix,
		fallback: deepCopy(state),
		log:      rc.logger("field", prefix),
	}

	b.element = surface.NewElement("div", "w-field")
	b.element.AddClass(d.meta.Classname)
	b.element.SetAttr("data-field", "")
	b.element.SetAttr("data-block", d.name)
	if d.meta.Required {
		b.element.AddClass("w-field--required")
	}

	label := surface.NewElement("label", "w-field__label")
	label.SetText(d.meta.Label)
	if d.meta.Required {
		marker := surface.NewElement("span", "w-required-mark")
		marker.SetText("*")
		label.Append(marker)
	}
	b.element.Append(label)

	if d.meta.HelpText != "" {
		help := surface.NewElement("div", "w-field__help")
		help.SetText(d.meta.HelpText)
		b.element.Append(help)
	}

	b.errors = surface.NewElement("div", "w-field__errors")
	b.errors.SetAttr("data-field-errors", "")
	b.element.Append(b.errors)

	wrapper := surface.NewElement("div", "w-field__input")
	widgetMount := surface.NewPlaceholder()
	wrapper.Append(widgetMount)
	b.element.Append(wrapper)

	mount.ReplaceWith(b.element)

	widget, err := renderWidget(d.widget, widgetMount, prefix, prefix, state, rc.Capabilities)
	if err != nil {
		b.failed = true
		b.log.Error().Err(err).Str("block", d.name).Msg("widget failed to render")
		b.element.AddClass("w-field--error")
		b.showMessages([]string{MessageRenderFailed})
		return b, nil
	}
	b.widget = widget
	if id := widget.IDForLabel(); id != "" {
		label.SetAttr("for", id)
	}

	if len(errs) > 0 {
		b.SetError(errs)
	}
	return b, nil
}

func renderWidget(factory WidgetFactory, mount *surface.Node, name, id string, state any, caps *Capabilities) (widget Widget, err error) {
	if factory == nil {
		return nil, fmt.Errorf("blocks: field %q has no widget", name)
	}
	defer func() {
		if r := recover(); r != nil {
			widget = nil
			err = fmt.Errorf("blocks: widget panicked: %v", r)
		}
	}()
	widget, err = factory.Render(mount, name, id, state, caps)
	if err == nil && widget == nil {
		err = fmt.Errorf("blocks: widget factory returned no widget")
	}
	return widget, err
}

// FieldBlock is a live leaf block.
type FieldBlock struct {
	def      *FieldDefinition
	prefix   string
	element  *surface.Node
	errors   *surface.Node
	widget   Widget
	failed   bool
	fallback any
	log      zerolog.Logger
}

func (b *FieldBlock) Definition() Definition { return b.def }
func (b *FieldBlock) Element() *surface.Node { return b.element }

// Widget returns the underlying widget; nil when rendering failed.
func (b *FieldBlock) Widget() Widget { return b.widget }

// Failed reports whether the widget failed to render.
func (b *FieldBlock) Failed() bool { return b.failed }

func (b *FieldBlock) Value() any {
	if b.widget == nil {
		return nil
	}
	return b.widget.Value()
}

// State returns the widget state; a failed field keeps its initial state so
// a round trip does not lose data.
func (b *FieldBlock) State() any {
	if b.widget == nil {
		return deepCopy(b.fallback)
	}
	return b.widget.State()
}

func (b *FieldBlock) SetState(state any) {
	if b.widget == nil {
		b.fallback = deepCopy(state)
		return
	}
	b.widget.SetState(state)
}

// SetError shows every message in errs; an empty list clears the field.
func (b *FieldBlock) SetError(errs ErrorList) {
	if b.failed {
		return
	}
	var messages []string
	for _, err := range errs {
		messages = append(messages, Messages(err)...)
	}
	b.showMessages(messages)
	if len(messages) > 0 {
		b.element.Dispatch(surface.EventReveal, nil)
	}
}

func (b *FieldBlock) showMessages(messages []string) {
	b.errors.Clear()
	for _, message := range messages {
		if strings.TrimSpace(message) == "" {
			continue
		}
		p := surface.NewElement("p", "error-message")
		p.SetText(message)
		b.errors.Append(p)
	}
	b.element.ToggleClass("w-field--error", b.errors.ChildCount() > 0)
}

// ErrorMessages returns the messages currently displayed.
func (b *FieldBlock) ErrorMessages() []string {
	var out []string
	for _, child := range b.errors.Children() {
		out = append(out, child.TextContent())
	}
	return out
}

func (b *FieldBlock) Focus(opts FocusOptions) {
	if b.widget == nil {
		b.element.Focus()
		return
	}
	b.widget.Focus(opts)
}

func (b *FieldBlock) Label() string {
	if b.widget == nil {
		return ""
	}
	return safeLabel(b.widget.Label)
}
