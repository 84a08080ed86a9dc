package surface

import (
	"sort"
	"strings"
)

// Node is a single element of the render surface. Elements carry a tag,
// attributes, classes and ordered children; text nodes carry only Text.
// A node belongs to at most one parent at a time.
type Node struct {
	Tag  string
	Text string

	attrs     map[string]string
	classes   []string
	children  []*Node
	parent    *Node
	hidden    bool
	listeners map[string][]Listener

	// focused is only meaningful on the root of a tree.
	focused *Node
}

// NewElement returns a detached element node.
func NewElement(tag string, classes ...string) *Node {
	n := &Node{Tag: strings.TrimSpace(tag)}
	for _, class := range classes {
		n.AddClass(class)
	}
	return n
}

// NewText returns a detached text node.
func NewText(text string) *Node {
	return &Node{Text: text}
}

// NewHiddenInput returns an <input type="hidden"> carrying name/value.
func NewHiddenInput(name, value string) *Node {
	n := NewElement("input")
	n.SetAttr("type", "hidden")
	n.SetAttr("name", name)
	n.SetAttr("value", value)
	return n
}

// NewPlaceholder returns an empty element intended to be swapped out by a
// block render through ReplaceWith.
func NewPlaceholder() *Node {
	return NewElement("div")
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Tag == ""
}

// Parent returns the enclosing node or nil when detached.
func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Root walks up to the top-most ancestor.
func (n *Node) Root() *Node {
	if n == nil {
		return nil
	}
	current := n
	for current.parent != nil {
		current = current.parent
	}
	return current
}

// Children returns a copy of the child slice.
func (n *Node) Children() []*Node {
	if n == nil || len(n.children) == 0 {
		return nil
	}
	return append([]*Node(nil), n.children...)
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	if n == nil {
		return 0
	}
	return len(n.children)
}

// IndexOf returns the position of child within n, or -1.
func (n *Node) IndexOf(child *Node) int {
	if n == nil || child == nil {
		return -1
	}
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Append adds children at the end of n. Children already attached elsewhere
// are detached first.
func (n *Node) Append(children ...*Node) *Node {
	for _, child := range children {
		n.InsertAt(len(n.children), child)
	}
	return n
}

// InsertAt inserts child at position i (clamped to the valid range).
func (n *Node) InsertAt(i int, child *Node) {
	if n == nil || child == nil {
		return
	}
	child.Remove()
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	child.parent = n
}

// InsertBefore inserts child directly before ref. When ref is not a child of
// n the child is appended.
func (n *Node) InsertBefore(child, ref *Node) {
	idx := n.IndexOf(ref)
	if idx < 0 {
		n.Append(child)
		return
	}
	if child.parent == n && n.IndexOf(child) < idx {
		idx--
	}
	n.InsertAt(idx, child)
}

// InsertAfter inserts child directly after ref. When ref is not a child of n
// the child is appended.
func (n *Node) InsertAfter(child, ref *Node) {
	idx := n.IndexOf(ref)
	if idx < 0 {
		n.Append(child)
		return
	}
	if child.parent == n && n.IndexOf(child) < idx {
		idx--
	}
	n.InsertAt(idx+1, child)
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n == nil || n.parent == nil {
		return
	}
	parent := n.parent
	idx := parent.IndexOf(n)
	if idx >= 0 {
		parent.children = append(parent.children[:idx], parent.children[idx+1:]...)
	}
	n.parent = nil
}

// Clear removes every child of n.
func (n *Node) Clear() {
	if n == nil {
		return
	}
	for _, child := range n.children {
		child.parent = nil
	}
	n.children = nil
}

// ReplaceWith swaps n for replacement in the parent. A detached mount point
// adopts the replacement's content instead, so callers holding n keep a
// valid handle.
func (n *Node) ReplaceWith(replacement *Node) *Node {
	if n == nil || replacement == nil || n == replacement {
		return replacement
	}
	parent := n.parent
	if parent == nil {
		n.Append(replacement)
		return replacement
	}
	idx := parent.IndexOf(n)
	n.Remove()
	parent.InsertAt(idx, replacement)
	return replacement
}

// Attr returns the attribute value and whether it is set.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.attrs == nil {
		return "", false
	}
	value, ok := n.attrs[name]
	return value, ok
}

// AttrOr returns the attribute value or fallback when missing.
func (n *Node) AttrOr(name, fallback string) string {
	if value, ok := n.Attr(name); ok {
		return value
	}
	return fallback
}

// SetAttr sets an attribute. Empty names are ignored.
func (n *Node) SetAttr(name, value string) {
	name = strings.TrimSpace(name)
	if n == nil || name == "" {
		return
	}
	if name == "class" {
		n.classes = nil
		for _, class := range strings.Fields(value) {
			n.AddClass(class)
		}
		return
	}
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

// RemoveAttr deletes an attribute.
func (n *Node) RemoveAttr(name string) {
	if n == nil || n.attrs == nil {
		return
	}
	delete(n.attrs, name)
}

// AttrNames returns the attribute names in sorted order.
func (n *Node) AttrNames() []string {
	if n == nil || len(n.attrs) == 0 {
		return nil
	}
	names := make([]string, 0, len(n.attrs))
	for name := range n.attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Value is shorthand for the "value" attribute used by inputs.
func (n *Node) Value() string {
	return n.AttrOr("value", "")
}

// SetValue is shorthand for setting the "value" attribute.
func (n *Node) SetValue(value string) {
	n.SetAttr("value", value)
}

// Classes returns the class list in insertion order.
func (n *Node) Classes() []string {
	if n == nil {
		return nil
	}
	return append([]string(nil), n.classes...)
}

// AddClass appends a class when not present.
func (n *Node) AddClass(class string) {
	class = strings.TrimSpace(class)
	if n == nil || class == "" || n.HasClass(class) {
		return
	}
	n.classes = append(n.classes, class)
}

// RemoveClass drops a class when present.
func (n *Node) RemoveClass(class string) {
	if n == nil {
		return
	}
	for i, c := range n.classes {
		if c == class {
			n.classes = append(n.classes[:i], n.classes[i+1:]...)
			return
		}
	}
}

// ToggleClass adds or removes class depending on on.
func (n *Node) ToggleClass(class string, on bool) {
	if on {
		n.AddClass(class)
		return
	}
	n.RemoveClass(class)
}

// HasClass reports whether class is present.
func (n *Node) HasClass(class string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.classes {
		if c == class {
			return true
		}
	}
	return false
}

// SetText replaces the children of n with a single text node. Passing an
// empty string clears n.
func (n *Node) SetText(text string) {
	if n == nil {
		return
	}
	n.Clear()
	if text != "" {
		n.Append(NewText(text))
	}
}

// TextContent concatenates the text of n and all of its descendants.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	for _, child := range n.children {
		b.WriteString(child.TextContent())
	}
	return b.String()
}

// SetHidden toggles the hidden flag.
func (n *Node) SetHidden(hidden bool) {
	if n == nil {
		return
	}
	n.hidden = hidden
}

// Hidden reports whether n itself is hidden.
func (n *Node) Hidden() bool {
	return n != nil && n.hidden
}

// Visible reports whether n and every ancestor are not hidden.
func (n *Node) Visible() bool {
	for current := n; current != nil; current = current.parent {
		if current.hidden {
			return false
		}
	}
	return n != nil
}

// Focus marks n as the focused node of its tree.
func (n *Node) Focus() {
	if n == nil {
		return
	}
	n.Root().focused = n
}

// Focused returns the focused node recorded on the root of n's tree.
func (n *Node) Focused() *Node {
	if n == nil {
		return nil
	}
	return n.Root().focused
}

// Walk visits n and its descendants depth-first in document order. Returning
// false from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || fn == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// Find returns the first descendant (or n) matching fn.
func (n *Node) Find(fn func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(current *Node) bool {
		if found != nil {
			return false
		}
		if fn(current) {
			found = current
			return false
		}
		return true
	})
	return found
}

// FindByAttr returns the first node whose attribute name equals value.
func (n *Node) FindByAttr(name, value string) *Node {
	return n.Find(func(current *Node) bool {
		got, ok := current.Attr(name)
		return ok && got == value
	})
}

// Inputs returns every named input/textarea/select element in document order.
func (n *Node) Inputs() []*Node {
	var inputs []*Node
	n.Walk(func(current *Node) bool {
		switch current.Tag {
		case "input", "textarea", "select":
			if _, ok := current.Attr("name"); ok {
				inputs = append(inputs, current)
			}
		}
		return true
	})
	return inputs
}
