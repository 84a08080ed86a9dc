package validation

import (
	"strconv"

	"github.com/goliatone/go-streamfield/pkg/blocks"
)

// shape answers the two questions projection needs at every level: which
// error variant applies, and what sits below a path segment. An unknown kind
// is inferred from the payload itself.
type shape interface {
	name() string
	kind() blocks.Kind
	child(segment string) (shape, bool)
}

// defShape walks a definition. Stream children cannot be typed without
// state, so they become inferred shapes.
type defShape struct {
	def blocks.Definition
}

func (s defShape) name() string      { return s.def.Name() }
func (s defShape) kind() blocks.Kind { return s.def.Kind() }

func (s defShape) child(segment string) (shape, bool) {
	switch def := s.def.(type) {
	case *blocks.StructDefinition:
		child, ok := def.ChildDefinition(segment)
		if !ok {
			return nil, false
		}
		return defShape{def: child}, true
	case *blocks.ListDefinition:
		if !isIndex(segment) {
			return nil, false
		}
		return defShape{def: def.Child()}, true
	case *blocks.StreamDefinition:
		if !isIndex(segment) {
			return nil, false
		}
		return inferred{}, true
	default:
		return nil, false
	}
}

// blockShape walks a live block; sequence segments address active indexes.
type blockShape struct {
	block blocks.Block
}

func (s blockShape) name() string      { return s.block.Definition().Name() }
func (s blockShape) kind() blocks.Kind { return s.block.Definition().Kind() }

func (s blockShape) child(segment string) (shape, bool) {
	container, ok := s.block.(blocks.Container)
	if !ok {
		return nil, false
	}
	if s.kind() != blocks.KindStruct && !isIndex(segment) {
		return nil, false
	}
	child, ok := container.ChildBlock(segment)
	if !ok {
		return nil, false
	}
	return blockShape{block: child}, true
}

type inferred struct{}

func (inferred) name() string               { return "" }
func (inferred) kind() blocks.Kind          { return "" }
func (inferred) child(string) (shape, bool) { return inferred{}, true }

func isIndex(segment string) bool {
	n, err := strconv.Atoi(segment)
	return err == nil && n >= 0
}

func isSequence(kind blocks.Kind) bool {
	return kind == blocks.KindList || kind == blocks.KindStream
}
