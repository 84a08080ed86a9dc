package form

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-streamfield/pkg/blocks"
)

// ErrMissingField is returned when a sequence submission lacks one of its
// bookkeeping fields.
var ErrMissingField = errors.New("form: missing submission field")

// SequenceEntry is one submitted sequence child.
type SequenceEntry struct {
	// Prefix is the child's submission prefix, e.g. "body-3".
	Prefix  string
	ID      string
	Type    string
	Order   int
	Deleted bool
}

// ValuePrefix is the prefix the child's block submitted under.
func (e SequenceEntry) ValuePrefix() string { return e.Prefix + "-value" }

// DecodeSequence reads prefix-count and the per-child fields of a list or
// stream submission. Active entries come first ordered by their order field;
// deleted entries follow in creation order.
func DecodeSequence(values url.Values, prefix string) ([]SequenceEntry, error) {
	rawCount, ok := lookup(values, prefix+"-count")
	if !ok {
		return nil, fmt.Errorf("%w: %s-count", ErrMissingField, prefix)
	}
	count, err := strconv.Atoi(strings.TrimSpace(rawCount))
	if err != nil || count < 0 {
		return nil, fmt.Errorf("form: %s-count: invalid count %q", prefix, rawCount)
	}

	var active, deleted []SequenceEntry
	for i := 0; i < count; i++ {
		childPrefix := prefix + "-" + strconv.Itoa(i)
		rawOrder, ok := lookup(values, childPrefix+"-order")
		if !ok {
			return nil, fmt.Errorf("%w: %s-order", ErrMissingField, childPrefix)
		}
		entry := SequenceEntry{
			Prefix:  childPrefix,
			ID:      values.Get(childPrefix + "-id"),
			Type:    values.Get(childPrefix + "-type"),
			Deleted: values.Get(childPrefix+"-deleted") != "",
		}
		if entry.Deleted {
			deleted = append(deleted, entry)
			continue
		}
		order, err := strconv.Atoi(strings.TrimSpace(rawOrder))
		if err != nil {
			return nil, fmt.Errorf("form: %s-order: invalid order %q", childPrefix, rawOrder)
		}
		entry.Order = order
		active = append(active, entry)
	}

	sort.SliceStable(active, func(i, j int) bool { return active[i].Order < active[j].Order })
	return append(active, deleted...), nil
}

// DecodeState rebuilds block state for def from a submission made under
// prefix. Field values are the submitted strings (nil when absent); deleted
// sequence children are dropped.
func DecodeState(def blocks.Definition, values url.Values, prefix string) (any, error) {
	switch typed := def.(type) {
	case *blocks.StructDefinition:
		out := make(map[string]any, len(typed.ChildDefinitions()))
		for _, child := range typed.ChildDefinitions() {
			state, err := DecodeState(child, values, prefix+"-"+child.Name())
			if err != nil {
				return nil, err
			}
			out[child.Name()] = state
		}
		return out, nil
	case *blocks.ListDefinition:
		entries, err := DecodeSequence(values, prefix)
		if err != nil {
			return nil, err
		}
		items := make([]blocks.ListItem, 0, len(entries))
		for _, entry := range entries {
			if entry.Deleted {
				continue
			}
			state, err := DecodeState(typed.Child(), values, entry.ValuePrefix())
			if err != nil {
				return nil, err
			}
			items = append(items, blocks.ListItem{ID: entry.ID, Value: state})
		}
		return items, nil
	case *blocks.StreamDefinition:
		entries, err := DecodeSequence(values, prefix)
		if err != nil {
			return nil, err
		}
		items := make([]blocks.StreamItem, 0, len(entries))
		for _, entry := range entries {
			if entry.Deleted {
				continue
			}
			child, ok := typed.ChildDefinition(entry.Type)
			if !ok {
				return nil, fmt.Errorf("%w: %q at %s", blocks.ErrUnknownBlockType, entry.Type, entry.Prefix)
			}
			state, err := DecodeState(child, values, entry.ValuePrefix())
			if err != nil {
				return nil, err
			}
			items = append(items, blocks.StreamItem{Type: entry.Type, Value: state, ID: entry.ID})
		}
		return items, nil
	case nil:
		return nil, errors.New("form: definition is required")
	default:
		value, ok := lookup(values, prefix)
		if !ok {
			return nil, nil
		}
		return value, nil
	}
}

func lookup(values url.Values, key string) (string, bool) {
	list, ok := values[key]
	if !ok || len(list) == 0 {
		return "", false
	}
	return list[0], true
}
