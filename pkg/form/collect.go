package form

import (
	"net/url"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// Collect gathers what a browser would submit for the inputs under node, in
// document order. Hidden nodes still submit; disabled inputs and unchecked
// checkboxes or radios do not.
func Collect(node *surface.Node) url.Values {
	values := url.Values{}
	if node == nil {
		return values
	}
	for _, input := range node.Inputs() {
		if _, disabled := input.Attr("disabled"); disabled {
			continue
		}
		name := input.AttrOr("name", "")
		if name == "" {
			continue
		}
		if input.Tag == "input" {
			switch input.AttrOr("type", "text") {
			case "checkbox", "radio":
				if _, checked := input.Attr("checked"); !checked {
					continue
				}
				values.Add(name, input.AttrOr("value", "on"))
				continue
			case "button", "submit", "reset":
				continue
			}
		}
		values.Add(name, input.Value())
	}
	return values
}
