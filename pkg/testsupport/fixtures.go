package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/schema"
	"github.com/goliatone/go-streamfield/pkg/surface"
)

// LoadDefinition parses a definition fixture and builds it with the default
// registry. Failures stop the test.
func LoadDefinition(t *testing.T, path string) blocks.Definition {
	t.Helper()

	doc, err := schema.LoadFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}
	def, err := doc.Build(schema.NewBuilder(nil))
	if err != nil {
		t.Fatalf("build definition: %v", err)
	}
	return def
}

// Mount renders def under a fresh editor <div> root with sequential ids, so
// generated identities are stable across runs. The root is not a form: the
// html renderer adds its own when asked to.
func Mount(t *testing.T, def blocks.Definition, prefix string, state any) (*surface.Node, blocks.Block) {
	t.Helper()

	root := surface.NewElement("div", "c-sf-editor")
	mount := surface.NewPlaceholder()
	root.Append(mount)
	block, err := def.Render(mount, prefix, state, nil, blocks.RenderContext{IDs: blocks.NewSequentialIDs("id")})
	if err != nil {
		t.Fatalf("render %s: %v", def.Name(), err)
	}
	return root, block
}

// WriteGolden writes value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, append(payload, '\n'))
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CompareJSONGolden decodes the golden at path and diffs it against value
// after a JSON round trip, so map ordering and number types do not matter.
// The golden is rewritten first when UPDATE_GOLDENS is set.
func CompareJSONGolden(t *testing.T, path string, value any) string {
	t.Helper()

	WriteGolden(t, path, value)
	var want any
	if err := json.Unmarshal(MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal value: %v", err)
	}
	var got any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	return cmp.Diff(want, got)
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
