package blocks

import (
	"sort"
	"strconv"
	"strings"
)

// ValidationError is the recursive error shape projected onto a block tree.
// The variant is closed: FieldError, StructError and SequenceError.
type ValidationError interface {
	error
	validationError()
}

// ErrorList is what blocks accept in SetError. Containers only apply lists
// holding exactly one aggregate entry.
type ErrorList []ValidationError

// FieldError carries messages for a leaf block.
type FieldError struct {
	Messages []string `json:"messages,omitempty"`
}

// StructError carries block-level messages plus errors keyed by child name.
type StructError struct {
	Messages    []string                   `json:"messages,omitempty"`
	BlockErrors map[string]ValidationError `json:"block_errors,omitempty"`
}

// SequenceError carries messages shown above the children plus errors keyed
// by active child index.
type SequenceError struct {
	NonBlockErrors []string                `json:"non_block_errors,omitempty"`
	BlockErrors    map[int]ValidationError `json:"block_errors,omitempty"`
}

func (FieldError) validationError()    {}
func (StructError) validationError()   {}
func (SequenceError) validationError() {}

func (e FieldError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func (e StructError) Error() string {
	parts := append([]string(nil), e.Messages...)
	names := make([]string, 0, len(e.BlockErrors))
	for name := range e.BlockErrors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if child := e.BlockErrors[name]; child != nil {
			parts = append(parts, name+": "+child.Error())
		}
	}
	return strings.Join(parts, "; ")
}

func (e SequenceError) Error() string {
	parts := append([]string(nil), e.NonBlockErrors...)
	indexes := make([]int, 0, len(e.BlockErrors))
	for idx := range e.BlockErrors {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		if child := e.BlockErrors[idx]; child != nil {
			parts = append(parts, strconv.Itoa(idx)+": "+child.Error())
		}
	}
	return strings.Join(parts, "; ")
}

// Single wraps err in a one-entry ErrorList, or returns nil for a nil error.
func Single(err ValidationError) ErrorList {
	if err == nil {
		return nil
	}
	return ErrorList{err}
}

// Messages returns the top-level messages of err regardless of its variant.
func Messages(err ValidationError) []string {
	switch typed := err.(type) {
	case FieldError:
		return typed.Messages
	case StructError:
		return typed.Messages
	case SequenceError:
		return typed.NonBlockErrors
	default:
		return nil
	}
}

// IsEmpty reports whether err carries no messages at any depth.
func IsEmpty(err ValidationError) bool {
	switch typed := err.(type) {
	case nil:
		return true
	case FieldError:
		return len(typed.Messages) == 0
	case StructError:
		if len(typed.Messages) > 0 {
			return false
		}
		for _, child := range typed.BlockErrors {
			if !IsEmpty(child) {
				return false
			}
		}
		return true
	case SequenceError:
		if len(typed.NonBlockErrors) > 0 {
			return false
		}
		for _, child := range typed.BlockErrors {
			if !IsEmpty(child) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
