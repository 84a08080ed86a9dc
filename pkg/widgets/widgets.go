package widgets

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/surface"
)

// Choice is one option of a select widget.
type Choice struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Enterer is implemented by widgets that accept simulated user input: the
// value is applied and a change event is dispatched from the widget.
type Enterer interface {
	Enter(value any)
}

// Splitter is implemented by widgets that can split their content at a
// cursor position into the current block and a new sibling.
type Splitter interface {
	SplitAt(cursor int) error
	CanSplit() bool
}

type input struct {
	node *surface.Node
}

func (w *input) IDForLabel() string { return w.node.AttrOr("id", "") }

func (w *input) Focus(opts blocks.FocusOptions) {
	w.node.Focus()
	if !opts.Soft {
		w.node.SetAttr("data-cursor", strconv.Itoa(utf8.RuneCountInString(w.node.Value())))
	}
}

func newInputNode(tag, name, id string) *surface.Node {
	node := surface.NewElement(tag, "w-widget")
	node.SetAttr("name", name)
	node.SetAttr("id", id)
	return node
}

// TextWidget is a single line input.
type TextWidget struct {
	input
}

// TextInput renders an <input> of the given type.
func TextInput(inputType, placeholder string) blocks.WidgetFactory {
	if inputType == "" {
		inputType = "text"
	}
	return blocks.WidgetFactoryFunc(func(mount *surface.Node, name, id string, state any, _ *blocks.Capabilities) (blocks.Widget, error) {
		node := newInputNode("input", name, id)
		node.SetAttr("type", inputType)
		if placeholder != "" {
			node.SetAttr("placeholder", placeholder)
		}
		w := &TextWidget{input{node: node}}
		w.SetState(state)
		mount.ReplaceWith(node)
		return w, nil
	})
}

func (w *TextWidget) Value() any         { return w.node.Value() }
func (w *TextWidget) State() any         { return w.node.Value() }
func (w *TextWidget) SetState(state any) { w.node.SetValue(toString(state)) }
func (w *TextWidget) Label() string      { return strings.TrimSpace(w.node.Value()) }

func (w *TextWidget) Enter(value any) {
	w.SetState(value)
	w.node.Dispatch(surface.EventChange, w.Value())
}

// TextAreaWidget is a multi line input.
type TextAreaWidget struct {
	input
}

// TextArea renders a <textarea>.
func TextArea(placeholder string) blocks.WidgetFactory {
	return blocks.WidgetFactoryFunc(func(mount *surface.Node, name, id string, state any, _ *blocks.Capabilities) (blocks.Widget, error) {
		w := &TextAreaWidget{input{node: newTextArea(name, id, placeholder)}}
		w.SetState(state)
		mount.ReplaceWith(w.node)
		return w, nil
	})
}

func newTextArea(name, id, placeholder string) *surface.Node {
	node := newInputNode("textarea", name, id)
	if placeholder != "" {
		node.SetAttr("placeholder", placeholder)
	}
	return node
}

func (w *TextAreaWidget) Value() any         { return w.node.Value() }
func (w *TextAreaWidget) State() any         { return w.node.Value() }
func (w *TextAreaWidget) SetState(state any) { w.node.SetValue(toString(state)) }
func (w *TextAreaWidget) Label() string      { return firstLine(w.node.Value()) }

func (w *TextAreaWidget) Enter(value any) {
	w.SetState(value)
	w.node.Dispatch(surface.EventChange, w.Value())
}

// CheckboxWidget holds a boolean.
type CheckboxWidget struct {
	input
}

// Checkbox renders an <input type="checkbox">.
func Checkbox() blocks.WidgetFactory {
	return blocks.WidgetFactoryFunc(func(mount *surface.Node, name, id string, state any, _ *blocks.Capabilities) (blocks.Widget, error) {
		node := newInputNode("input", name, id)
		node.SetAttr("type", "checkbox")
		node.SetAttr("value", "on")
		w := &CheckboxWidget{input{node: node}}
		w.SetState(state)
		mount.ReplaceWith(node)
		return w, nil
	})
}

func (w *CheckboxWidget) Checked() bool {
	_, ok := w.node.Attr("checked")
	return ok
}

func (w *CheckboxWidget) Value() any    { return w.Checked() }
func (w *CheckboxWidget) State() any    { return w.Checked() }
func (w *CheckboxWidget) Label() string { return "" }

func (w *CheckboxWidget) SetState(state any) {
	if toBool(state) {
		w.node.SetAttr("checked", "")
		return
	}
	w.node.RemoveAttr("checked")
}

func (w *CheckboxWidget) Enter(value any) {
	w.SetState(value)
	w.node.Dispatch(surface.EventChange, w.Value())
}

// SelectWidget picks one of a fixed set of choices.
type SelectWidget struct {
	input
	choices []Choice
	options map[string]*surface.Node
}

// Select renders a <select> with one <option> per choice. A state that is not
// one of the choices selects nothing.
func Select(choices []Choice) blocks.WidgetFactory {
	choices = append([]Choice(nil), choices...)
	return blocks.WidgetFactoryFunc(func(mount *surface.Node, name, id string, state any, _ *blocks.Capabilities) (blocks.Widget, error) {
		if len(choices) == 0 {
			return nil, fmt.Errorf("widgets: select %q has no choices", name)
		}
		node := newInputNode("select", name, id)
		w := &SelectWidget{input: input{node: node}, choices: choices, options: make(map[string]*surface.Node, len(choices))}
		empty := surface.NewElement("option")
		empty.SetAttr("value", "")
		empty.SetText("---------")
		node.Append(empty)
		for _, choice := range choices {
			option := surface.NewElement("option")
			option.SetAttr("value", choice.Value)
			option.SetText(choiceLabel(choice))
			node.Append(option)
			w.options[choice.Value] = option
		}
		w.SetState(state)
		mount.ReplaceWith(node)
		return w, nil
	})
}

// Choices returns a copy of the widget's choices.
func (w *SelectWidget) Choices() []Choice { return append([]Choice(nil), w.choices...) }

func (w *SelectWidget) Value() any { return w.node.Value() }
func (w *SelectWidget) State() any { return w.node.Value() }

func (w *SelectWidget) SetState(state any) {
	value := toString(state)
	for key, option := range w.options {
		if key == value {
			option.SetAttr("selected", "")
		} else {
			option.RemoveAttr("selected")
		}
	}
	if _, ok := w.options[value]; !ok {
		value = ""
	}
	w.node.SetValue(value)
}

func (w *SelectWidget) Label() string {
	value := w.node.Value()
	for _, choice := range w.choices {
		if choice.Value == value {
			return choiceLabel(choice)
		}
	}
	return ""
}

func (w *SelectWidget) Enter(value any) {
	w.SetState(value)
	w.node.Dispatch(surface.EventChange, w.Value())
}

// ParagraphWidget is a text area that can split its content into a new
// sibling block through the enclosing container's split capability.
type ParagraphWidget struct {
	input
	caps *blocks.Capabilities
}

// Paragraph renders a splittable <textarea>.
func Paragraph(placeholder string) blocks.WidgetFactory {
	return blocks.WidgetFactoryFunc(func(mount *surface.Node, name, id string, state any, caps *blocks.Capabilities) (blocks.Widget, error) {
		w := &ParagraphWidget{input: input{node: newTextArea(name, id, placeholder)}, caps: caps}
		w.node.AddClass("w-widget--paragraph")
		w.SetState(state)
		w.syncSplit()
		caps.Subscribe(func(name string, _ blocks.Capability) {
			if strings.HasPrefix(name, blocks.CapabilitySplit) {
				w.syncSplit()
			}
		})
		mount.ReplaceWith(w.node)
		return w, nil
	})
}

func (w *ParagraphWidget) Value() any         { return w.node.Value() }
func (w *ParagraphWidget) State() any         { return w.node.Value() }
func (w *ParagraphWidget) SetState(state any) { w.node.SetValue(toString(state)) }
func (w *ParagraphWidget) Label() string      { return firstLine(w.node.Value()) }

func (w *ParagraphWidget) Enter(value any) {
	w.SetState(value)
	w.node.Dispatch(surface.EventChange, w.Value())
}

// CanSplit reports whether the enclosing container currently allows a split.
func (w *ParagraphWidget) CanSplit() bool {
	return w.caps.Has(blocks.CapabilitySplit) && w.caps.Enabled(blocks.CapabilitySplit)
}

// SplitAt keeps the text before cursor (in runes) and moves the rest into a
// new sibling block.
func (w *ParagraphWidget) SplitAt(cursor int) error {
	runes := []rune(w.node.Value())
	if cursor < 0 || cursor > len(runes) {
		return fmt.Errorf("widgets: split cursor %d outside 0..%d", cursor, len(runes))
	}
	before := strings.TrimRight(string(runes[:cursor]), " \n")
	after := strings.TrimLeft(string(runes[cursor:]), " \n")
	return w.caps.Invoke(blocks.CapabilitySplit, before, after)
}

func (w *ParagraphWidget) syncSplit() {
	if w.CanSplit() {
		w.node.SetAttr("data-split", "enabled")
		return
	}
	w.node.SetAttr("data-split", "disabled")
}

func choiceLabel(choice Choice) string {
	if choice.Label != "" {
		return choice.Label
	}
	return choice.Value
}

func firstLine(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, '\n'); idx >= 0 {
		value = strings.TrimSpace(value[:idx])
	}
	return value
}

func toString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

func toBool(value any) bool {
	switch typed := value.(type) {
	case bool:
		return typed
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "1", "true", "on", "yes":
			return true
		}
	case int:
		return typed != 0
	case float64:
		return typed != 0
	}
	return false
}
