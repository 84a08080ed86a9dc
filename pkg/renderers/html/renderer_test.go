package html_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/form"
	"github.com/goliatone/go-streamfield/pkg/render"
	"github.com/goliatone/go-streamfield/pkg/renderers/html"
	"github.com/goliatone/go-streamfield/pkg/surface"
	"github.com/goliatone/go-streamfield/pkg/testsupport"
	"github.com/goliatone/go-streamfield/pkg/widgets"
)

func TestFlatten(t *testing.T) {
	root := surface.NewElement("div", "wrap")
	label := surface.NewElement("label")
	label.SetText("Title")
	input := surface.NewElement("input")
	input.SetAttr("name", "title")
	input.SetAttr("disabled", "")
	area := surface.NewElement("textarea")
	area.SetAttr("value", "a\nb")
	gone := surface.NewElement("div")
	gone.SetHidden(true)
	root.Append(label, input, area, gone)

	want := []html.Token{
		{Kind: html.TokenOpen, Tag: "div", Attrs: []html.Attr{{Name: "class", Value: "wrap"}}},
		{Kind: html.TokenInline, Tag: "label", Text: "Title", Depth: 1},
		{Kind: html.TokenVoid, Tag: "input", Depth: 1, Attrs: []html.Attr{{Name: "disabled", Bare: true}, {Name: "name", Value: "title"}}},
		{Kind: html.TokenInline, Tag: "textarea", Text: "a\nb", Depth: 1},
		{Kind: html.TokenInline, Tag: "div", Depth: 1, Attrs: []html.Attr{{Name: "hidden", Bare: true}}},
		{Kind: html.TokenClose, Tag: "div"},
	}
	if diff := cmp.Diff(want, html.Flatten(root)); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_RendersBlockTree(t *testing.T) {
	list := blocks.NewList("tags", blocks.Meta{}, blocks.NewField("tag", blocks.Meta{}, widgets.TextArea("")))
	root, block := testsupport.Mount(t, list, "tags", []any{"<go>", "blocks"})
	require.NoError(t, block.(*blocks.ListBlock).DeleteBlock(1))

	renderer, err := html.New()
	require.NoError(t, err)
	assert.Equal(t, html.Name, renderer.Name())

	out, err := renderer.Render(context.Background(), root, render.RenderOptions{
		Form:   true,
		Action: "/pages/1",
		Method: "put",
		Hidden: []form.HiddenField{form.CSRFToken("_csrf", "t0k")},
	})
	require.NoError(t, err)
	markup := string(out)

	assert.True(t, strings.HasPrefix(markup, `<form method="post" action="/pages/1" data-streamfield>`), markup)
	assert.Contains(t, markup, `<input type="hidden" name="_csrf" value="t0k">`)
	assert.Contains(t, markup, `<input type="hidden" name="_method" value="PUT">`)
	assert.Contains(t, markup, `<input data-sequence-count="" name="tags-count" type="hidden" value="2">`)
	assert.Contains(t, markup, `>&lt;go&gt;</textarea>`)
	assert.Contains(t, markup, `<input name="tags-1-deleted" type="hidden" value="1">`)
	assert.Contains(t, markup, " hidden>")
	assert.Equal(t, 1, strings.Count(markup, "<form"), "forms must not nest")
	assert.Contains(t, markup, `<div class="c-sf-editor">`)
	assert.NotContains(t, markup, "<go>")
	assert.True(t, strings.HasSuffix(markup, "</form>\n"), markup)
}

func TestRenderer_CustomTemplates(t *testing.T) {
	renderer, err := html.New(html.WithTemplatesDir("templates"))
	require.NoError(t, err)

	out, err := renderer.Render(testsupport.Context(), surface.NewElement("p"), render.RenderOptions{Title: "Page"})
	require.NoError(t, err)
	assert.Equal(t, "<h1 class=\"c-sf-title\">Page</h1>\n<p></p>\n", string(out))
}

type recordingTemplates struct {
	name string
	data map[string]any
}

func (r *recordingTemplates) RenderTemplate(name string, data map[string]any, _ ...io.Writer) (string, error) {
	r.name, r.data = name, data
	return "stub", nil
}

func TestRenderer_InjectedTemplateRenderer(t *testing.T) {
	templates := &recordingTemplates{}
	renderer, err := html.New(html.WithTemplateRenderer(templates))
	require.NoError(t, err)

	out, err := renderer.Render(context.Background(), surface.NewElement("p"), render.RenderOptions{Form: true, Method: "patch"})
	require.NoError(t, err)
	assert.Equal(t, "stub", string(out))
	assert.Equal(t, "document", templates.name)
	assert.Equal(t, "post", templates.data["method"])
	assert.Equal(t, []any{map[string]any{"name": "_method", "value": "PATCH"}}, templates.data["hidden"])
}

func TestRenderer_Errors(t *testing.T) {
	renderer, err := html.New()
	require.NoError(t, err)
	_, err = renderer.Render(context.Background(), nil, render.RenderOptions{})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = renderer.Render(ctx, surface.NewElement("div"), render.RenderOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
