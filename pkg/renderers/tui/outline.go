package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-streamfield/pkg/blocks"
)

// Outline renders the tree under root as indented text. Every line starts
// with the dotted path the session accepts for that block; stream children
// carry their type in angle brackets and error messages follow on "!" lines.
func Outline(root blocks.Block, name string) string {
	if root == nil {
		return ""
	}
	if name == "" {
		name = root.Definition().Name()
	}
	var sb strings.Builder
	writeOutline(&sb, root, name, "", 0)
	return strings.TrimRight(sb.String(), "\n")
}

func writeOutline(sb *strings.Builder, block blocks.Block, head, path string, depth int) {
	indent := strings.Repeat("  ", depth)
	switch typed := block.(type) {
	case *blocks.FieldBlock:
		fmt.Fprintf(sb, "%s%s = %s\n", indent, head, displayValue(typed))
		writeMessages(sb, indent, typed.ErrorMessages())
	case *blocks.StructBlock:
		fmt.Fprintf(sb, "%s%s {struct}\n", indent, head)
		writeMessages(sb, indent, typed.ErrorMessages())
		def, ok := typed.Definition().(*blocks.StructDefinition)
		if !ok {
			return
		}
		for _, childDef := range def.ChildDefinitions() {
			child, ok := typed.ChildBlock(childDef.Name())
			if !ok {
				continue
			}
			childPath := joinPath(path, childDef.Name())
			writeOutline(sb, child, childPath, childPath, depth+1)
		}
	case blocks.Sequence:
		fmt.Fprintf(sb, "%s%s [%s, %d]\n", indent, head, typed.Definition().Kind(), typed.Count())
		writeMessages(sb, indent, typed.NonBlockErrors())
		for _, child := range typed.Children() {
			childPath := joinPath(path, strconv.Itoa(child.Index()))
			childHead := childPath
			if child.Type() != "" {
				childHead += " <" + child.Type() + ">"
			}
			writeOutline(sb, child.Block(), childHead, childPath, depth+1)
		}
	default:
		fmt.Fprintf(sb, "%s%s\n", indent, head)
	}
}

func writeMessages(sb *strings.Builder, indent string, messages []string) {
	for _, msg := range messages {
		fmt.Fprintf(sb, "%s  ! %s\n", indent, msg)
	}
}

func displayValue(field *blocks.FieldBlock) string {
	if field.Failed() {
		return "(" + blocks.MessageRenderFailed + ")"
	}
	switch value := field.Value().(type) {
	case nil:
		return `""`
	case string:
		return strconv.Quote(value)
	default:
		return fmt.Sprint(value)
	}
}

func joinPath(base, segment string) string {
	if base == "" {
		return segment
	}
	return base + "." + segment
}
