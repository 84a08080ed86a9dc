package html

import (
	"strings"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// Token kinds produced by Flatten.
const (
	TokenOpen   = "open"
	TokenClose  = "close"
	TokenVoid   = "void"
	TokenInline = "inline"
	TokenText   = "text"
)

// Attr is one rendered attribute. Bare attributes print without a value.
type Attr struct {
	Name  string
	Value string
	Bare  bool
}

// Token is one line of flattened markup.
type Token struct {
	Kind  string
	Tag   string
	Text  string
	Attrs []Attr
	Depth int
}

var voidElements = map[string]bool{
	"input": true, "br": true, "hr": true, "img": true, "meta": true, "link": true,
}

var booleanAttrs = map[string]bool{
	"checked": true, "disabled": true, "hidden": true, "multiple": true,
	"readonly": true, "required": true, "selected": true,
}

// Flatten walks root in document order and emits tokens. Elements holding
// only text, and every textarea, render on a single line so whitespace does
// not leak into their content.
func Flatten(root *surface.Node) []Token {
	var tokens []Token
	flatten(root, 0, &tokens)
	return tokens
}

func flatten(n *surface.Node, depth int, out *[]Token) {
	if n == nil {
		return
	}
	if n.IsText() {
		if text := strings.TrimSpace(n.Text); text != "" {
			*out = append(*out, Token{Kind: TokenText, Text: text, Depth: depth})
		}
		return
	}

	token := Token{Tag: n.Tag, Attrs: attributes(n), Depth: depth}
	switch {
	case voidElements[n.Tag]:
		token.Kind = TokenVoid
		*out = append(*out, token)
		return
	case n.Tag == "textarea":
		token.Kind = TokenInline
		token.Text = n.Value()
		*out = append(*out, token)
		return
	case textOnly(n):
		token.Kind = TokenInline
		token.Text = n.TextContent()
		*out = append(*out, token)
		return
	}

	token.Kind = TokenOpen
	*out = append(*out, token)
	for _, child := range n.Children() {
		flatten(child, depth+1, out)
	}
	*out = append(*out, Token{Kind: TokenClose, Tag: n.Tag, Depth: depth})
}

func textOnly(n *surface.Node) bool {
	children := n.Children()
	if len(children) == 0 {
		return true
	}
	for _, child := range children {
		if !child.IsText() {
			return false
		}
	}
	return true
}

func attributes(n *surface.Node) []Attr {
	var attrs []Attr
	if classes := n.Classes(); len(classes) > 0 {
		attrs = append(attrs, Attr{Name: "class", Value: strings.Join(classes, " ")})
	}
	for _, name := range n.AttrNames() {
		if name == "value" && (n.Tag == "textarea" || n.Tag == "select") {
			continue
		}
		value, _ := n.Attr(name)
		attrs = append(attrs, Attr{Name: name, Value: value, Bare: booleanAttrs[name] && value == ""})
	}
	if n.Hidden() {
		if _, set := n.Attr("hidden"); !set {
			attrs = append(attrs, Attr{Name: "hidden", Bare: true})
		}
	}
	return attrs
}

// tokenContext converts tokens into plain maps for the template engine.
func tokenContext(tokens []Token) []any {
	out := make([]any, 0, len(tokens))
	for _, token := range tokens {
		attrs := make([]any, 0, len(token.Attrs))
		for _, attr := range token.Attrs {
			attrs = append(attrs, map[string]any{"name": attr.Name, "value": attr.Value, "bare": attr.Bare})
		}
		out = append(out, map[string]any{
			"kind":   token.Kind,
			"tag":    token.Tag,
			"text":   token.Text,
			"attrs":  attrs,
			"indent": strings.Repeat("  ", token.Depth),
		})
	}
	return out
}
