package blocks

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// InsertOption tunes a single insert.
type InsertOption func(*insertOptions)

type insertOptions struct {
	id        string
	focus     bool
	collapsed bool
}

// WithBlockID inserts the child with a known identity instead of a fresh one.
func WithBlockID(id string) InsertOption {
	return func(o *insertOptions) { o.id = id }
}

// WithFocus focuses the new child once it is in place.
func WithFocus() InsertOption {
	return func(o *insertOptions) { o.focus = true }
}

// WithCollapsed renders the new child's panel collapsed.
func WithCollapsed() InsertOption {
	return func(o *insertOptions) { o.collapsed = true }
}

func buildInsertOptions(opts []InsertOption) insertOptions {
	var out insertOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}

// sequence is the machinery shared by list and stream blocks: the ordered
// active children, every child ever created, the count field, index
// renumbering, move enablement and capability recompute.
type sequence struct {
	name     string
	prefix   string
	meta     Meta
	rc       RenderContext
	log      zerolog.Logger
	registry *CapabilityRegistry
	withType bool
	lookup   func(blockType string) (Definition, bool)

	children []*SequenceChild
	all      []*SequenceChild
	counter  int

	element    *surface.Node
	countInput *surface.Node
	errors     *surface.Node
	items      *surface.Node
	// head is the node index 0 is placed after; nil means the start of items.
	head *surface.Node

	decorate func(*SequenceChild)
	changed  func()
}

func newSequence(kind Kind, name, prefix string, meta Meta, rc RenderContext) *sequence {
	s := &sequence{
		name:     name,
		prefix:   prefix,
		meta:     meta,
		rc:       rc,
		log:      rc.logger(string(kind), prefix),
		registry: NewCapabilityRegistry(),
		withType: kind == KindStream,
	}
	s.element = surface.NewElement("div", "c-sf-container", "c-sf-container--"+string(kind))
	s.element.AddClass(meta.Classname)
	s.element.SetAttr("data-block", name)
	s.element.SetAttr("data-sequence", string(kind))
	s.countInput = surface.NewHiddenInput(prefix+"-count", "0")
	s.countInput.SetAttr("data-sequence-count", "")
	s.errors = surface.NewElement("div", "c-sf-container__errors", "help-block")
	s.errors.SetAttr("data-sequence-errors", "")
	s.items = surface.NewElement("div", "c-sf-container__items")
	s.element.Append(s.countInput, s.errors, s.items)
	return s
}

// Element returns the container root.
func (s *sequence) Element() *surface.Node { return s.element }

// Prefix is the submission prefix of the container.
func (s *sequence) Prefix() string { return s.prefix }

// Registry exposes the capability registry shared with every child.
func (s *sequence) Registry() *CapabilityRegistry { return s.registry }

// Count returns the number of active children.
func (s *sequence) Count() int { return len(s.children) }

// TotalCount returns the number of children ever created, deleted included.
// It is the value of the count field.
func (s *sequence) TotalCount() int { return s.counter }

// Children returns the active children in presentation order.
func (s *sequence) Children() []*SequenceChild {
	return append([]*SequenceChild(nil), s.children...)
}

// AllChildren returns every child ever created, in creation order.
func (s *sequence) AllChildren() []*SequenceChild {
	return append([]*SequenceChild(nil), s.all...)
}

// Child returns the active child at index.
func (s *sequence) Child(index int) (*SequenceChild, bool) {
	if index < 0 || index >= len(s.children) {
		return nil, false
	}
	return s.children[index], true
}

// ChildBlock resolves a decimal index to the active child's block.
func (s *sequence) ChildBlock(key string) (Block, bool) {
	index, err := strconv.Atoi(key)
	if err != nil {
		return nil, false
	}
	child, ok := s.Child(index)
	if !ok {
		return nil, false
	}
	return child.Block(), true
}

func (s *sequence) active(index int) (*SequenceChild, error) {
	child, ok := s.Child(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d (active %d)", ErrIndexOutOfRange, index, len(s.children))
	}
	return child, nil
}

func (s *sequence) allowed(name, blockType string) bool {
	return NewCapabilities(s.registry, blockType).Enabled(name)
}

// insertChild creates and places a child without checking count limits.
func (s *sequence) insertChild(blockType string, state any, index int, opts insertOptions) (*SequenceChild, error) {
	if index < 0 || index > len(s.children) {
		return nil, fmt.Errorf("%w: insert at %d (active %d)", ErrIndexOutOfRange, index, len(s.children))
	}
	def, ok := s.lookup(blockType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, blockType)
	}

	id := opts.id
	if id == "" {
		id = s.rc.IDs.NewID()
	}
	creation := s.counter
	child, err := newSequenceChild(s, childConfig{
		def:       def,
		prefix:    s.prefix + "-" + strconv.Itoa(creation),
		creation:  creation,
		index:     index,
		id:        id,
		blockType: blockType,
		state:     state,
		collapsed: opts.collapsed,
		withType:  s.withType,
	}, s.rc)
	if err != nil {
		return nil, fmt.Errorf("blocks: render %s child %d: %w", s.prefix, creation, err)
	}
	s.counter++
	s.countInput.SetValue(strconv.Itoa(s.counter))
	if s.decorate != nil {
		s.decorate(child)
	}

	s.place(child.element, index)
	s.children = slices.Insert(s.children, index, child)
	s.all = append(s.all, child)
	for i := index + 1; i < len(s.children); i++ {
		s.children[i].SetIndex(i)
	}

	last := len(s.children) - 1
	if index == 0 {
		if len(s.children) > 1 {
			s.children[1].EnableMoveUp()
		}
		child.DisableMoveUp()
	} else {
		child.EnableMoveUp()
	}
	if index == last {
		if len(s.children) > 1 {
			s.children[last-1].EnableMoveDown()
		}
		child.DisableMoveDown()
	} else {
		child.EnableMoveDown()
	}

	s.recompute()
	child.refreshButtons()
	s.log.Debug().Str("type", blockType).Str("id", id).Int("index", index).Msg("child inserted")

	if opts.focus {
		child.Focus(FocusOptions{})
	}
	return child, nil
}

// place positions a wrapper so that it follows the active child currently at
// index-1, before the children slice is updated.
func (s *sequence) place(element *surface.Node, index int) {
	if index > 0 {
		s.items.InsertAfter(element, s.children[index-1].element)
		return
	}
	if s.head != nil {
		s.items.InsertAfter(element, s.head)
		return
	}
	s.items.InsertAt(0, element)
}

// DeleteBlock soft-deletes the active child at index. The child keeps its
// identity fields and stays in AllChildren.
func (s *sequence) DeleteBlock(index int) error {
	child, err := s.active(index)
	if err != nil {
		return err
	}
	if !s.allowed(CapabilityDelete, child.blockType) {
		return fmt.Errorf("%w: delete %s at %d", ErrLimitReached, child.blockType, index)
	}

	child.MarkDeleted()
	s.children = slices.Delete(s.children, index, index+1)
	for i := index; i < len(s.children); i++ {
		s.children[i].SetIndex(i)
	}
	if index == 0 && len(s.children) > 0 {
		s.children[0].DisableMoveUp()
	}
	if index == len(s.children) && len(s.children) > 0 {
		s.children[len(s.children)-1].DisableMoveDown()
	}

	s.recompute()
	s.log.Debug().Str("id", child.id).Int("index", index).Msg("child deleted")
	return nil
}

// MoveBlock moves the active child at oldIndex to newIndex. Only the range
// between the two positions is renumbered; children outside it keep both
// their index and their move affordances.
func (s *sequence) MoveBlock(oldIndex, newIndex int) error {
	child, err := s.active(oldIndex)
	if err != nil {
		return err
	}
	if _, err := s.active(newIndex); err != nil {
		return err
	}
	if oldIndex == newIndex {
		return nil
	}

	target := s.children[newIndex].element
	if newIndex > oldIndex {
		s.items.InsertAfter(child.element, target)
	} else {
		s.items.InsertBefore(child.element, target)
	}
	s.children = slices.Delete(s.children, oldIndex, oldIndex+1)
	s.children = slices.Insert(s.children, newIndex, child)

	lo, hi := min(oldIndex, newIndex), max(oldIndex, newIndex)
	last := len(s.children) - 1
	for i := lo; i <= hi; i++ {
		s.children[i].SetIndex(i)
		s.children[i].setMove(ActionMoveUp, i > 0)
		s.children[i].setMove(ActionMoveDown, i < last)
	}

	s.recompute()
	s.log.Debug().Str("id", child.id).Int("from", oldIndex).Int("to", newIndex).Msg("child moved")
	return nil
}

// DuplicateBlock inserts a copy of the child at index directly after it. The
// copy takes the source's state, never its identity: every nested sequence
// item gets a fresh id.
func (s *sequence) DuplicateBlock(index int) (*SequenceChild, error) {
	child, err := s.active(index)
	if err != nil {
		return nil, err
	}
	if !s.allowed(CapabilityDuplicate, child.blockType) {
		return nil, fmt.Errorf("%w: duplicate %s at %d", ErrLimitReached, child.blockType, index)
	}
	state := child.def.rekey(child.block.State())
	return s.insertChild(child.blockType, state, index+1, insertOptions{focus: true})
}

// Split inserts a sibling of the same type holding after directly behind the
// child at index, then sets that child to before. The new child receives
// focus. When the sibling cannot be created the source child is unchanged.
func (s *sequence) Split(index int, before, after any) (*SequenceChild, error) {
	child, err := s.active(index)
	if err != nil {
		return nil, err
	}
	if !s.allowed(CapabilitySplit, child.blockType) {
		return nil, fmt.Errorf("%w: split %s at %d", ErrLimitReached, child.blockType, index)
	}
	sibling, err := s.insertChild(child.blockType, after, index+1, insertOptions{focus: true})
	if err != nil {
		return nil, err
	}
	child.block.SetState(before)
	child.RefreshLabel()
	return sibling, nil
}

// clear forgets every child and resets the count field. It backs SetState,
// which replaces the whole collection rather than deleting children.
func (s *sequence) clear() {
	for _, child := range s.all {
		child.detach()
	}
	s.items.Clear()
	if s.head != nil {
		s.items.Append(s.head)
	}
	s.children = nil
	s.all = nil
	s.counter = 0
	s.countInput.SetValue("0")
}

// recompute brings the shared registry in line with the active counts.
func (s *sequence) recompute() {
	count := len(s.children)
	room := withinMax(count, s.meta.MaxNum)
	s.registry.Set(CapabilityAdd, room)
	s.registry.Set(CapabilityDuplicate, room)
	s.registry.Set(CapabilitySplit, room)
	s.registry.Set(CapabilityDelete, count > s.meta.MinNum)

	if s.withType && len(s.meta.BlockCounts) > 0 {
		counts := s.typeCounts()
		for blockType, limits := range s.meta.BlockCounts {
			typeRoom := withinMax(counts[blockType], limits.MaxNum)
			s.registry.Set(QualifiedCapability(CapabilityAdd, blockType), typeRoom)
			s.registry.Set(QualifiedCapability(CapabilityDuplicate, blockType), typeRoom)
			s.registry.Set(QualifiedCapability(CapabilitySplit, blockType), typeRoom)
			s.registry.Set(QualifiedCapability(CapabilityDelete, blockType), counts[blockType] > limits.MinNum)
		}
	}
	if s.changed != nil {
		s.changed()
	}
}

func (s *sequence) typeCounts() map[string]int {
	counts := make(map[string]int)
	for _, child := range s.children {
		counts[child.blockType]++
	}
	return counts
}

// SetError applies a single SequenceError: non-block messages are shown above
// the children and block errors are forwarded by active index. Any other
// list shape is ignored.
func (s *sequence) SetError(errs ErrorList) {
	if len(errs) != 1 {
		s.log.Debug().Int("entries", len(errs)).Msg("ignoring error list without a single aggregate entry")
		return
	}
	seqErr, ok := errs[0].(SequenceError)
	if !ok {
		s.log.Debug().Str("variant", fmt.Sprintf("%T", errs[0])).Msg("ignoring non-sequence error")
		return
	}

	s.errors.Clear()
	for _, message := range seqErr.NonBlockErrors {
		p := surface.NewElement("p", "error-message")
		p.SetText(message)
		s.errors.Append(p)
	}
	s.element.ToggleClass("c-sf-container--error", len(seqErr.NonBlockErrors) > 0)

	for index, childErr := range seqErr.BlockErrors {
		child, ok := s.Child(index)
		if !ok {
			s.log.Debug().Int("index", index).Msg("error for missing child")
			continue
		}
		child.SetError(Single(childErr))
	}
	if !IsEmpty(seqErr) {
		s.element.Dispatch(surface.EventReveal, nil)
	}
}

// NonBlockErrors returns the messages currently shown above the children.
func (s *sequence) NonBlockErrors() []string {
	var out []string
	for _, node := range s.errors.Children() {
		out = append(out, node.TextContent())
	}
	return out
}

// Focus focuses the first active child.
func (s *sequence) Focus(opts FocusOptions) {
	if len(s.children) > 0 {
		s.children[0].Focus(opts)
	}
}

// Label joins the labels of the active children.
func (s *sequence) Label() string {
	var parts []string
	for _, child := range s.children {
		if label := strings.TrimSpace(safeLabel(child.block.Label)); label != "" {
			parts = append(parts, label)
		}
	}
	return truncateLabel(strings.Join(parts, ", "), maxSummaryLength)
}

// Refresh re-derives every child's panel title from its current content.
func (s *sequence) Refresh() {
	for _, child := range s.children {
		child.RefreshLabel()
	}
}

// CountErrors reports minNum/maxNum violations of the current active counts,
// container-wide first and then per block type.
func (s *sequence) CountErrors() []string {
	var out []string
	count := len(s.children)
	if s.meta.MinNum > 0 && count < s.meta.MinNum {
		out = append(out, fmt.Sprintf("The minimum number of items is %d", s.meta.MinNum))
	}
	if s.meta.MaxNum > 0 && count > s.meta.MaxNum {
		out = append(out, fmt.Sprintf("The maximum number of items is %d", s.meta.MaxNum))
	}
	if !s.withType || len(s.meta.BlockCounts) == 0 {
		return out
	}

	counts := s.typeCounts()
	types := make([]string, 0, len(s.meta.BlockCounts))
	for blockType := range s.meta.BlockCounts {
		types = append(types, blockType)
	}
	slices.Sort(types)
	for _, blockType := range types {
		limits := s.meta.BlockCounts[blockType]
		label := DefaultLabeler(blockType)
		if def, ok := s.lookup(blockType); ok {
			label = def.Meta().Label
		}
		if limits.MinNum > 0 && counts[blockType] < limits.MinNum {
			out = append(out, fmt.Sprintf("%s: The minimum number of items is %d", label, limits.MinNum))
		}
		if limits.MaxNum > 0 && counts[blockType] > limits.MaxNum {
			out = append(out, fmt.Sprintf("%s: The maximum number of items is %d", label, limits.MaxNum))
		}
	}
	return out
}
