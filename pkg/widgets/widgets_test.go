package widgets_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/surface"
	"github.com/goliatone/go-streamfield/pkg/widgets"
)

func renderField(t *testing.T, def blocks.Definition, state any) blocks.Block {
	t.Helper()
	root := surface.NewElement("form")
	mount := surface.NewPlaceholder()
	root.Append(mount)
	block, err := def.Render(mount, "f", state, nil, blocks.RenderContext{IDs: blocks.NewSequentialIDs("id")})
	require.NoError(t, err)
	return block
}

func TestTextInput(t *testing.T) {
	factory, err := widgets.NewRegistry().Factory(widgets.Hints{Format: "email", Placeholder: "you@example.com"})
	require.NoError(t, err)
	field := renderField(t, blocks.NewField("email", blocks.Meta{}, factory), "a@b.c").(*blocks.FieldBlock)

	input := field.Element().FindByAttr("name", "f")
	require.NotNil(t, input)
	assert.Equal(t, "email", input.AttrOr("type", ""))
	assert.Equal(t, "you@example.com", input.AttrOr("placeholder", ""))
	assert.Equal(t, "a@b.c", field.Value())

	field.SetState("x@y.z")
	assert.Equal(t, "x@y.z", field.State())
}

func TestCheckbox(t *testing.T) {
	field := renderField(t, blocks.NewField("agree", blocks.Meta{}, widgets.Checkbox()), "on").(*blocks.FieldBlock)
	assert.Equal(t, true, field.Value())

	field.SetState(false)
	assert.Equal(t, false, field.State())
	_, checked := field.Element().FindByAttr("name", "f").Attr("checked")
	assert.False(t, checked)
}

func TestSelect(t *testing.T) {
	choices := []widgets.Choice{{Value: "h2", Label: "Heading 2"}, {Value: "h3"}}
	field := renderField(t, blocks.NewField("level", blocks.Meta{}, widgets.Select(choices)), "h2").(*blocks.FieldBlock)
	assert.Equal(t, "h2", field.Value())
	assert.Equal(t, "Heading 2", field.Label())

	field.SetState("h4")
	assert.Equal(t, "", field.Value(), "unknown choices select nothing")

	field.SetState("h3")
	assert.Equal(t, "h3", field.Label())
}

func TestSelectWithoutChoicesFailsLocally(t *testing.T) {
	field := renderField(t, blocks.NewField("level", blocks.Meta{}, widgets.Select(nil)), "h2").(*blocks.FieldBlock)
	assert.True(t, field.Failed())
	assert.Equal(t, []string{blocks.MessageRenderFailed}, field.ErrorMessages())
}

func TestParagraphSplitsThroughContainer(t *testing.T) {
	stream, err := blocks.NewStream("body", blocks.Meta{MaxNum: 2},
		blocks.NewField("paragraph", blocks.Meta{}, widgets.Paragraph("")))
	require.NoError(t, err)
	block := renderField(t, stream, []blocks.StreamItem{{Type: "paragraph", Value: "Hello world", ID: "p1"}})
	body := block.(*blocks.StreamBlock)

	child, _ := body.Child(0)
	paragraph := child.Block().(*blocks.FieldBlock).Widget().(*widgets.ParagraphWidget)
	require.True(t, paragraph.CanSplit())

	require.NoError(t, paragraph.SplitAt(5))
	assert.Equal(t, []blocks.StreamItem{
		{Type: "paragraph", Value: "Hello", ID: "p1"},
		{Type: "paragraph", Value: "world", ID: body.Children()[1].ID()},
	}, body.Value())

	// The stream is now full: the capability flips for every paragraph.
	assert.False(t, paragraph.CanSplit())
	err = paragraph.SplitAt(1)
	assert.True(t, errors.Is(err, blocks.ErrCapabilityDisabled))
	assert.Error(t, paragraph.SplitAt(99))
}

func TestEnterRefreshesPanelTitle(t *testing.T) {
	list := blocks.NewList("items", blocks.Meta{}, blocks.NewField("item", blocks.Meta{}, widgets.TextInput("text", "")))
	block := renderField(t, list, []any{"first"}).(*blocks.ListBlock)
	child, _ := block.Child(0)
	assert.Equal(t, "first", child.Panel().Title())

	enterer, ok := child.Block().(*blocks.FieldBlock).Widget().(widgets.Enterer)
	require.True(t, ok)
	enterer.Enter("renamed")
	assert.Equal(t, "renamed", child.Panel().Title())
}
