package render

import (
	"strings"

	"github.com/goliatone/go-streamfield/pkg/form"
)

// RenderOptions describe per-request data renderers can use to customise
// their output without touching the block tree.
type RenderOptions struct {
	// Form wraps the output in a <form> element when set.
	Form bool
	// Action and Method are applied to the wrapping form. Verbs other than
	// GET and POST are sent as POST plus a hidden _method input.
	Action string
	Method string
	// Hidden adds extra hidden inputs (CSRF tokens, versions) to the form.
	Hidden []form.HiddenField
	// Title is shown above the tree by renderers that support it.
	Title string
}

// HiddenFields returns the hidden inputs the wrapping form should carry,
// including a _method override, sorted by name.
func (o RenderOptions) HiddenFields() []form.HiddenField {
	fields := append([]form.HiddenField(nil), o.Hidden...)
	if method := o.method(); method != "GET" && method != "POST" {
		fields = append(fields, form.Hidden("_method", method))
	}
	return form.SortedHiddenFields(form.MergeHiddenFields(nil, fields...))
}

// FormMethod is the method attribute a browser form can carry.
func (o RenderOptions) FormMethod() string {
	if o.method() == "GET" {
		return "get"
	}
	return "post"
}

func (o RenderOptions) method() string {
	method := strings.ToUpper(strings.TrimSpace(o.Method))
	if method == "" {
		return "POST"
	}
	return method
}
