package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/goliatone/go-streamfield/pkg/blocks"
)

type payload struct {
	Messages       []string        `json:"messages"`
	NonBlockErrors []string        `json:"non_block_errors"`
	BlockErrors    json.RawMessage `json:"block_errors"`
}

// Decode reads a nested JSON error payload for def. Each level is either an
// array of messages or an object with "messages", "non_block_errors" and
// "block_errors"; block_errors is keyed by child name for structs and by
// active index (object or array) for lists and streams. Stream children are
// typed from the shape of their payload.
func Decode(def blocks.Definition, raw []byte) (blocks.ErrorList, error) {
	if def == nil {
		return nil, fmt.Errorf("validation: definition is required")
	}
	return decode(defShape{def: def}, raw)
}

// DecodeFor is Decode against a live block, so stream children are typed
// from the blocks they address.
func DecodeFor(block blocks.Block, raw []byte) (blocks.ErrorList, error) {
	if block == nil {
		return nil, fmt.Errorf("validation: block is required")
	}
	return decode(blockShape{block: block}, raw)
}

func decode(root shape, raw []byte) (blocks.ErrorList, error) {
	if isNull(raw) {
		return nil, nil
	}
	verr, err := decodeNode(root, bytes.TrimSpace(raw), root.name())
	if err != nil {
		return nil, err
	}
	return blocks.Single(verr), nil
}

func decodeNode(s shape, raw json.RawMessage, path string) (blocks.ValidationError, error) {
	if isNull(raw) {
		return nil, nil
	}
	var body payload
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &body.Messages); err != nil {
			return nil, fmt.Errorf("validation: %s: messages: %w", path, err)
		}
	case '"':
		var message string
		if err := json.Unmarshal(raw, &message); err != nil {
			return nil, fmt.Errorf("validation: %s: %w", path, err)
		}
		body.Messages = []string{message}
	default:
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("validation: %s: %w", path, err)
		}
	}

	children, err := childPayloads(body.BlockErrors, path)
	if err != nil {
		return nil, err
	}

	kind := s.kind()
	if kind == "" {
		kind = inferKind(body.NonBlockErrors != nil, keysOf(children))
	}

	switch {
	case kind == blocks.KindStruct:
		out := blocks.StructError{
			Messages: normalizeMessages(append(body.Messages, body.NonBlockErrors...)),
		}
		for _, name := range sortedKeys(children) {
			cs, ok := s.child(name)
			if !ok {
				return nil, fmt.Errorf("validation: %s: unknown child block %q", path, name)
			}
			child, err := decodeNode(cs, children[name], joinPath(path, name))
			if err != nil {
				return nil, err
			}
			if child != nil {
				if out.BlockErrors == nil {
					out.BlockErrors = make(map[string]blocks.ValidationError)
				}
				out.BlockErrors[name] = child
			}
		}
		return out, nil
	case isSequence(kind):
		out := blocks.SequenceError{
			NonBlockErrors: normalizeMessages(append(body.Messages, body.NonBlockErrors...)),
		}
		for _, key := range sortedKeys(children) {
			index, err := strconv.Atoi(key)
			if err != nil || index < 0 {
				return nil, fmt.Errorf("validation: %s: block_errors key %q is not an index", path, key)
			}
			cs, ok := s.child(key)
			if !ok {
				return nil, fmt.Errorf("validation: %s: no block at index %d", path, index)
			}
			child, err := decodeNode(cs, children[key], joinPath(path, key))
			if err != nil {
				return nil, err
			}
			if child != nil {
				if out.BlockErrors == nil {
					out.BlockErrors = make(map[int]blocks.ValidationError)
				}
				out.BlockErrors[index] = child
			}
		}
		return out, nil
	default:
		if len(children) > 0 {
			return nil, fmt.Errorf("validation: %s: field errors cannot carry block_errors", path)
		}
		return blocks.FieldError{Messages: normalizeMessages(body.Messages)}, nil
	}
}

// childPayloads accepts block_errors as an object or as an array whose
// positions are indexes; null array entries are skipped.
func childPayloads(raw json.RawMessage, path string) (map[string]json.RawMessage, error) {
	if isNull(raw) {
		return nil, nil
	}
	raw = bytes.TrimSpace(raw)
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("validation: %s: block_errors: %w", path, err)
		}
		out := make(map[string]json.RawMessage, len(list))
		for i, entry := range list {
			if !isNull(entry) {
				out[strconv.Itoa(i)] = entry
			}
		}
		return out, nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("validation: %s: block_errors: %w", path, err)
	}
	return out, nil
}

// inferKind types a payload level that has no schema behind it.
func inferKind(hasNonBlock bool, keys []string) blocks.Kind {
	if hasNonBlock {
		return blocks.KindList
	}
	if len(keys) == 0 {
		return blocks.KindField
	}
	for _, key := range keys {
		if !isIndex(key) {
			return blocks.KindStruct
		}
	}
	return blocks.KindList
}

func isNull(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}

func sortedKeys[V any](m map[string]V) []string {
	keys := keysOf(m)
	sort.Strings(keys)
	return keys
}
