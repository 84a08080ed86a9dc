package blocks

import (
	"errors"
	"strconv"
	"testing"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

type stubWidget struct {
	input *surface.Node
	caps  *Capabilities
}

func (w *stubWidget) Value() any         { return w.input.Value() }
func (w *stubWidget) State() any         { return w.input.Value() }
func (w *stubWidget) SetState(state any) { w.input.SetValue(stringOf(state)) }
func (w *stubWidget) Focus(FocusOptions) { w.input.Focus() }
func (w *stubWidget) Label() string      { return w.input.Value() }
func (w *stubWidget) IDForLabel() string { return w.input.AttrOr("id", "") }

func (w *stubWidget) split(cursor int) error {
	value := w.input.Value()
	return w.caps.Invoke(CapabilitySplit, value[:cursor], value[cursor:])
}

var stubText = WidgetFactoryFunc(func(mount *surface.Node, name, id string, state any, caps *Capabilities) (Widget, error) {
	input := surface.NewElement("input")
	input.SetAttr("type", "text")
	input.SetAttr("name", name)
	input.SetAttr("id", id)
	input.SetValue(stringOf(state))
	mount.ReplaceWith(input)
	return &stubWidget{input: input, caps: caps}, nil
})

var failingWidget = WidgetFactoryFunc(func(*surface.Node, string, string, any, *Capabilities) (Widget, error) {
	return nil, errors.New("boom")
})

var panickingWidget = WidgetFactoryFunc(func(*surface.Node, string, string, any, *Capabilities) (Widget, error) {
	panic("widget exploded")
})

func textField(name string) *FieldDefinition {
	return NewField(name, Meta{}, stubText)
}

func newMount() *surface.Node {
	root := surface.NewElement("form")
	placeholder := surface.NewPlaceholder()
	root.Append(placeholder)
	return placeholder
}

// mount renders def under a form root with deterministic ids.
func mount(t *testing.T, def Definition, state any) (Block, *surface.Node) {
	t.Helper()
	root := surface.NewElement("form")
	placeholder := surface.NewPlaceholder()
	root.Append(placeholder)
	block, err := def.Render(placeholder, "body", state, nil, RenderContext{IDs: NewSequentialIDs("id")})
	if err != nil {
		t.Fatalf("render %s: %v", def.Name(), err)
	}
	return block, root
}

func mountList(t *testing.T, def *ListDefinition, state any) *ListBlock {
	t.Helper()
	block, _ := mount(t, def, state)
	return block.(*ListBlock)
}

func mountStream(t *testing.T, def *StreamDefinition, state any) *StreamBlock {
	t.Helper()
	block, _ := mount(t, def, state)
	return block.(*StreamBlock)
}

// assertContiguous checks indices, order fields, presentation order and move
// affordances of the active children.
func assertContiguous(t *testing.T, s *sequence) {
	t.Helper()
	n := len(s.children)
	for i, child := range s.children {
		if child.Index() != i {
			t.Fatalf("child %s index = %d, want %d", child.ID(), child.Index(), i)
		}
		if got := child.orderInput.Value(); got != strconv.Itoa(i) {
			t.Fatalf("child %s order field = %q, want %d", child.ID(), got, i)
		}
		if child.CanMoveUp() != (i > 0) {
			t.Fatalf("child %d move-up = %v", i, child.CanMoveUp())
		}
		if child.CanMoveDown() != (i < n-1) {
			t.Fatalf("child %d move-down = %v", i, child.CanMoveDown())
		}
	}

	var presented []*surface.Node
	for _, node := range s.items.Children() {
		if _, ok := node.Attr("data-sequence-child"); ok && !node.Hidden() {
			presented = append(presented, node)
		}
	}
	if len(presented) != n {
		t.Fatalf("presented %d children, want %d", len(presented), n)
	}
	for i, node := range presented {
		if node != s.children[i].Element() {
			t.Fatalf("presentation order differs at %d", i)
		}
	}
}

func ids(children []*SequenceChild) []string {
	out := make([]string, 0, len(children))
	for _, child := range children {
		out = append(out, child.ID())
	}
	return out
}

// collectIDs walks a state tree and returns every sequence item id.
func collectIDs(state any) []string {
	var out []string
	switch typed := state.(type) {
	case []ListItem:
		for _, item := range typed {
			out = append(out, item.ID)
			out = append(out, collectIDs(item.Value)...)
		}
	case []StreamItem:
		for _, item := range typed {
			out = append(out, item.ID)
			out = append(out, collectIDs(item.Value)...)
		}
	case map[string]any:
		for _, value := range typed {
			out = append(out, collectIDs(value)...)
		}
	}
	return out
}
