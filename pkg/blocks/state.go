package blocks

import "fmt"

// ListItem is one entry of a list block's state.
type ListItem struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Value any    `json:"value" yaml:"value"`
}

// StreamItem is one entry of a stream block's state or value.
type StreamItem struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value" yaml:"value"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
}

// StructState is the state (and value) shape of a struct block.
type StructState = map[string]any

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	case []ListItem:
		clone := make([]ListItem, len(typed))
		for i, item := range typed {
			clone[i] = ListItem{ID: item.ID, Value: deepCopy(item.Value)}
		}
		return clone
	case []StreamItem:
		clone := make([]StreamItem, len(typed))
		for i, item := range typed {
			clone[i] = StreamItem{Type: item.Type, ID: item.ID, Value: deepCopy(item.Value)}
		}
		return clone
	case []string:
		return append([]string(nil), typed...)
	default:
		return typed
	}
}

// asListItems accepts []ListItem, or a generic slice whose elements are
// either {"id","value"} maps or bare child states.
func asListItems(state any) ([]ListItem, bool) {
	switch typed := state.(type) {
	case nil:
		return nil, true
	case []ListItem:
		return typed, true
	case []any:
		out := make([]ListItem, 0, len(typed))
		for _, raw := range typed {
			if item, ok := raw.(ListItem); ok {
				out = append(out, item)
				continue
			}
			if m, ok := raw.(map[string]any); ok && isListItemMap(m) {
				out = append(out, ListItem{ID: stringOf(m["id"]), Value: m["value"]})
				continue
			}
			out = append(out, ListItem{Value: raw})
		}
		return out, true
	default:
		return nil, false
	}
}

func isListItemMap(m map[string]any) bool {
	if _, ok := m["value"]; !ok {
		return false
	}
	for key := range m {
		if key != "id" && key != "value" {
			return false
		}
	}
	return true
}

// asStreamItems accepts []StreamItem or a generic slice of
// {"type","value","id"} maps.
func asStreamItems(state any) ([]StreamItem, error) {
	switch typed := state.(type) {
	case nil:
		return nil, nil
	case []StreamItem:
		return typed, nil
	case []any:
		out := make([]StreamItem, 0, len(typed))
		for i, raw := range typed {
			switch item := raw.(type) {
			case StreamItem:
				out = append(out, item)
			case map[string]any:
				blockType := stringOf(item["type"])
				if blockType == "" {
					return nil, fmt.Errorf("stream item %d has no type", i)
				}
				out = append(out, StreamItem{Type: blockType, Value: item["value"], ID: stringOf(item["id"])})
			default:
				return nil, fmt.Errorf("stream item %d has unsupported shape %T", i, raw)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported stream state %T", state)
	}
}

func asStructState(state any) (map[string]any, bool) {
	switch typed := state.(type) {
	case nil:
		return nil, true
	case map[string]any:
		return typed, true
	default:
		return nil, false
	}
}

func stringOf(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	default:
		return fmt.Sprint(typed)
	}
}
