package template

import (
	"io"
)

// TemplateRenderer is the seam template-backed renderers rely on: render the
// named template from the engine's bundle with data, optionally copying the
// result to out.
type TemplateRenderer interface {
	RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error)
}
