package pongo_test

import (
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-streamfield/pkg/render/template/pongo"
	"github.com/goliatone/go-streamfield/pkg/testsupport"
)

func newEngine(t *testing.T, opts ...pongo.Option) *pongo.Engine {
	t.Helper()
	files := fstest.MapFS{
		"hello.tpl":   {Data: []byte("Hello {{ name }}!")},
		"escape.tpl":  {Data: []byte("<p>{{ body }}</p>")},
		"page.html":   {Data: []byte("{% include \"part.html\" %}")},
		"part.html":   {Data: []byte("part {{ n }}")},
		"broken.tpl":  {Data: []byte("{% if %}")},
		"missing.tpl": {Data: []byte("{% include \"nowhere.tpl\" %}")},
	}
	engine, err := pongo.New(append([]pongo.Option{pongo.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
	})
	if result != "Hello Ada!" || written != result {
		t.Fatalf("render mismatch: result %q written %q", result, written)
	}

	// The explicit extension resolves to the same cached template.
	result, err := engine.RenderTemplate("hello.tpl", map[string]any{"name": "Grace"})
	if err != nil || result != "Hello Grace!" {
		t.Fatalf("render = %q, %v", result, err)
	}
}

func TestEngine_Autoescapes(t *testing.T) {
	engine := newEngine(t)

	result, err := engine.RenderTemplate("escape", map[string]any{"body": "<b>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "<p>&lt;b&gt;</p>" {
		t.Fatalf("autoescape mismatch: %q", result)
	}
}

func TestEngine_WithExtension(t *testing.T) {
	engine := newEngine(t, pongo.WithExtension("html"))

	result, err := engine.RenderTemplate("page", map[string]any{"n": 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "part 2" {
		t.Fatalf("render = %q", result)
	}
}

func TestEngine_ConcurrentRenders(t *testing.T) {
	engine := newEngine(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.RenderTemplate("hello", map[string]any{"name": "x"}); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent render: %v", err)
	}
}

func TestEngine_Errors(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without a template fs")
	}

	engine := newEngine(t)
	for _, name := range []string{"absent", "broken", "missing"} {
		_, err := engine.RenderTemplate(name, nil)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.Contains(err.Error(), name+".tpl") {
			t.Fatalf("%s: error should name the template: %v", name, err)
		}
	}

	var nilEngine *pongo.Engine
	if _, err := nilEngine.RenderTemplate("hello", nil); err == nil {
		t.Fatalf("expected error from nil engine")
	}
}
