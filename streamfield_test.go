package streamfield_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	streamfield "github.com/goliatone/go-streamfield"
)

const notesDefinition = `
name: notes
type: list
minNum: 1
child:
  name: note
`

func TestGenerateHTML(t *testing.T) {
	out, err := streamfield.GenerateHTML(context.Background(), []byte(notesDefinition), []any{"first", "second"}, streamfield.RenderOptions{})
	require.NoError(t, err)
	markup := string(out)
	assert.Contains(t, markup, `name="notes-count"`)
	assert.Contains(t, markup, "second")
	assert.False(t, strings.HasPrefix(markup, "<form"))
}

func TestGenerateHTML_InvalidDefinition(t *testing.T) {
	_, err := streamfield.GenerateHTML(context.Background(), []byte("type: [broken"), nil, streamfield.RenderOptions{})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "streamfield: "), err.Error())
}

func TestEmbeddedTemplates(t *testing.T) {
	data, err := fs.ReadFile(streamfield.EmbeddedTemplates(), "document.tpl")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
