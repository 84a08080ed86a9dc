package validation

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-streamfield/pkg/blocks"
)

// MapPayload folds a flat payload keyed by field paths into the recursive
// error shape for def. Paths may be dotted ("body.0.title"), bracketed
// ("body[0].title") or JSON pointers ("#/body/0/title"), with or without the
// root block's name or a request wrapper ("payload", "data") in front.
// Messages for a path that stops resolving attach to the deepest block that
// did resolve; form-level keys and unknown roots land on the root block.
func MapPayload(def blocks.Definition, payload map[string][]string) blocks.ErrorList {
	if def == nil {
		return nil
	}
	return mapPayload(defShape{def: def}, payload)
}

// MapBlockPayload is MapPayload against a live block.
func MapBlockPayload(block blocks.Block, payload map[string][]string) blocks.ErrorList {
	if block == nil {
		return nil
	}
	return mapPayload(blockShape{block: block}, payload)
}

func mapPayload(root shape, payload map[string][]string) blocks.ErrorList {
	if len(payload) == 0 {
		return nil
	}
	tree := &entry{}
	for _, rawPath := range sortedKeys(payload) {
		messages := normalizeMessages(payload[rawPath])
		if len(messages) == 0 {
			continue
		}
		if isFormLevelKey(rawPath) {
			tree.messages = append(tree.messages, messages...)
			continue
		}
		node, current := tree, root
		for _, segment := range trimRoot(root, parsePathSegments(rawPath)) {
			next, ok := current.child(segment)
			if !ok {
				break
			}
			current = next
			node = node.at(segment)
		}
		node.messages = append(node.messages, messages...)
	}
	return blocks.Single(tree.project(root))
}

type entry struct {
	messages []string
	children map[string]*entry
}

func (e *entry) at(segment string) *entry {
	if e.children == nil {
		e.children = make(map[string]*entry)
	}
	child, ok := e.children[segment]
	if !ok {
		child = &entry{}
		e.children[segment] = child
	}
	return child
}

func (e *entry) project(s shape) blocks.ValidationError {
	kind := s.kind()
	if kind == "" {
		kind = inferKind(false, keysOf(e.children))
	}
	messages := normalizeMessages(e.messages)

	switch {
	case kind == blocks.KindStruct:
		out := blocks.StructError{Messages: messages}
		for name, child := range e.children {
			cs, _ := s.child(name)
			if out.BlockErrors == nil {
				out.BlockErrors = make(map[string]blocks.ValidationError)
			}
			out.BlockErrors[name] = child.project(cs)
		}
		return out
	case isSequence(kind):
		out := blocks.SequenceError{NonBlockErrors: messages}
		for key, child := range e.children {
			cs, _ := s.child(key)
			index, _ := strconv.Atoi(key)
			if out.BlockErrors == nil {
				out.BlockErrors = make(map[int]blocks.ValidationError)
			}
			out.BlockErrors[index] = child.project(cs)
		}
		return out
	default:
		return blocks.FieldError{Messages: messages}
	}
}

// trimRoot drops a leading root name or request wrapper unless the root
// block itself has a child by that name.
func trimRoot(root shape, segments []string) []string {
	if len(segments) == 0 {
		return segments
	}
	if _, ok := root.child(segments[0]); ok {
		return segments
	}
	if segments[0] == root.name() {
		return segments[1:]
	}
	stripped := dropWrapperSegments(segments)
	if len(stripped) > 0 && stripped[0] == root.name() {
		if _, ok := root.child(stripped[0]); !ok {
			return stripped[1:]
		}
	}
	return stripped
}

// MergeMessages concatenates message slices, trimming whitespace and removing
// duplicates while preserving order.
func MergeMessages(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
	}

	out := segments
	for len(out) > 0 {
		if _, ok := wrappers[strings.ToLower(out[0])]; ok {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
