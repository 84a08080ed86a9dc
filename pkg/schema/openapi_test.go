package schema

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/widgets"
)

func TestLoadOpenAPI_DerivesSpec(t *testing.T) {
	fsys := fstest.MapFS{"api.yaml": &fstest.MapFile{Data: mustRead(t, "testdata/article.openapi.yaml")}}
	doc, err := LoadOpenAPI(context.Background(), fsys, "api.yaml", "Article")
	require.NoError(t, err)
	assert.Equal(t, SourceKindOpenAPI, doc.Source().Kind())
	assert.Equal(t, "api.yaml#/components/schemas/Article", doc.Location())

	want := Spec{
		Name: "article",
		Type: TypeStruct,
		Children: []Spec{
			{Name: "title", Type: TypeField, Label: "Title", Required: true, ValueType: "string"},
			{Name: "published", Type: TypeField, ValueType: "boolean"},
			{Name: "body", Type: TypeStream, MaxNum: 5, Children: []Spec{
				{Name: "heading", Type: TypeStruct, Label: "Heading", Children: []Spec{
					{Name: "level", Type: TypeField, ValueType: "string", Choices: []widgets.Choice{
						{Value: "h2", Label: "h2"}, {Value: "h3", Label: "h3"},
					}},
					{Name: "text", Type: TypeField, ValueType: "string"},
				}},
				{Name: "paragraph_block", Type: TypeField, Label: "Paragraph", ValueType: "string", Format: "paragraph"},
			}},
			{Name: "tags", Type: TypeList, MinNum: 1, Child: &Spec{Name: "item", Type: TypeField, ValueType: "string"}},
		},
	}
	if diff := cmp.Diff(want, doc.Spec()); diff != "" {
		t.Fatalf("spec mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOpenAPI_BuildsDefinition(t *testing.T) {
	doc, err := ParseOpenAPI(context.Background(), mustRead(t, "testdata/article.openapi.yaml"), "", "Article")
	require.NoError(t, err)
	assert.Equal(t, "inline#/components/schemas/Article", doc.Location())

	def, err := doc.Build(NewBuilder(nil))
	require.NoError(t, err)
	article, ok := def.(*blocks.StructDefinition)
	require.True(t, ok, "root should be a struct, got %T", def)

	body, ok := article.ChildDefinition("body")
	require.True(t, ok)
	stream := body.(*blocks.StreamDefinition)
	_, ok = stream.ChildDefinition("heading")
	assert.True(t, ok)
	paragraph, ok := stream.ChildDefinition("paragraph_block")
	require.True(t, ok)
	assert.Equal(t, blocks.KindField, paragraph.Kind())

	tags, _ := article.ChildDefinition("tags")
	assert.Equal(t, 1, tags.Meta().MinNum)
}

func TestParseOpenAPI_Errors(t *testing.T) {
	ctx := context.Background()
	data := mustRead(t, "testdata/article.openapi.yaml")

	_, err := ParseOpenAPI(ctx, data, "api.yaml", "Missing")
	require.ErrorIs(t, err, ErrInvalidSpec)
	assert.Contains(t, err.Error(), "Article, HeadingBlock, ParagraphBlock")

	_, err = ParseOpenAPI(ctx, []byte(" "), "api.yaml", "Article")
	assert.Error(t, err)

	_, err = ParseOpenAPI(ctx, []byte("openapi: 3.0.3\ninfo: {title: x, version: '1'}\npaths: {}\n"), "api.yaml", "Article")
	assert.ErrorIs(t, err, ErrInvalidSpec)

	_, err = LoadOpenAPI(ctx, fstest.MapFS{}, "api.txt", "Article")
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ParseOpenAPI(cancelled, data, "api.yaml", "Article")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnakeName(t *testing.T) {
	cases := map[string]string{
		"Article":        "article",
		"HeadingBlock":   "heading_block",
		"HTMLBlock":      "htmlblock",
		"call to-action": "call_to_action",
		"v2Block":        "v2_block",
	}
	for in, want := range cases {
		assert.Equal(t, want, snakeName(in), in)
	}
}
