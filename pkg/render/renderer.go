package render

import (
	"context"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// Renderer serializes a rendered block surface (HTML, plain text outlines,
// etc.). Renderers read the tree; they never mutate it.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, root *surface.Node, options RenderOptions) ([]byte, error)
}
