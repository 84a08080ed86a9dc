package blocks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPathNotFound is returned by Resolve when a segment does not address a
// child.
var ErrPathNotFound = errors.New("blocks: path not found")

// Resolve walks a dotted path from root: struct children by name, list and
// stream children by active index. An empty path resolves to root.
func Resolve(root Block, path string) (Block, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: nil root", ErrPathNotFound)
	}
	current := root
	for _, segment := range SplitPath(path) {
		container, ok := current.(Container)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no children (at %q)", ErrPathNotFound, current.Definition().Name(), segment)
		}
		next, ok := container.ChildBlock(segment)
		if !ok {
			return nil, fmt.Errorf("%w: %q in %q", ErrPathNotFound, segment, path)
		}
		current = next
	}
	return current, nil
}

// ResolveIndex resolves the list or stream addressed by every segment of
// path but the last, which must be a decimal index. The index is not checked
// against the active children.
func ResolveIndex(root Block, path string) (Sequence, int, error) {
	segments := SplitPath(path)
	if len(segments) == 0 {
		return nil, 0, fmt.Errorf("%w: empty child path", ErrPathNotFound)
	}
	last := segments[len(segments)-1]
	index, err := strconv.Atoi(last)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q is not an index", ErrPathNotFound, last)
	}
	parent, err := Resolve(root, strings.Join(segments[:len(segments)-1], "."))
	if err != nil {
		return nil, 0, err
	}
	seq, ok := parent.(Sequence)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q is not a list or stream", ErrPathNotFound, parent.Definition().Name())
	}
	return seq, index, nil
}

// ResolveChild resolves the active sequence child addressed by path.
func ResolveChild(root Block, path string) (*SequenceChild, error) {
	seq, index, err := ResolveIndex(root, path)
	if err != nil {
		return nil, err
	}
	child, ok := seq.Child(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d (active %d)", ErrIndexOutOfRange, index, seq.Count())
	}
	return child, nil
}

// SplitPath splits a dotted path, dropping empty segments.
func SplitPath(path string) []string {
	var out []string
	for _, segment := range strings.Split(path, ".") {
		if segment = strings.TrimSpace(segment); segment != "" {
			out = append(out, segment)
		}
	}
	return out
}
