package render_test

import (
	"fmt"

	"github.com/goliatone/go-streamfield/pkg/render"
)

func fmtFields(opts render.RenderOptions) string {
	return fmt.Sprint(opts.HiddenFields())
}
