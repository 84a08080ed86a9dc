package blocks

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestList_ScenarioMaxNum(t *testing.T) {
	def := NewList("items", Meta{MaxNum: 3}, textField("item"))
	list := mountList(t, def, []ListItem{{ID: "a", Value: "one"}, {ID: "b", Value: "two"}})

	if !list.Registry().Enabled(CapabilityAdd) || !list.Registry().Enabled(CapabilityDuplicate) {
		t.Fatalf("add/duplicate should be enabled with 2 of 3 items")
	}

	if _, err := list.Append("three"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if list.Count() != 3 {
		t.Fatalf("count = %d, want 3", list.Count())
	}
	if list.Registry().Enabled(CapabilityAdd) || list.Registry().Enabled(CapabilityDuplicate) {
		t.Fatalf("add/duplicate should be disabled at maxNum")
	}
	if _, disabled := list.addButton.Attr("disabled"); !disabled {
		t.Fatalf("append button should be disabled at maxNum")
	}
	if _, err := list.Append("four"); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("append past maxNum: got %v, want ErrLimitReached", err)
	}
	if _, err := list.DuplicateBlock(0); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("duplicate past maxNum: got %v, want ErrLimitReached", err)
	}

	if err := list.DeleteBlock(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list.Count() != 2 {
		t.Fatalf("count = %d, want 2", list.Count())
	}
	if !list.Registry().Enabled(CapabilityAdd) || !list.Registry().Enabled(CapabilityDuplicate) {
		t.Fatalf("add/duplicate should re-enable after delete")
	}
	for _, child := range list.Children() {
		if !child.ActionEnabled(ActionDuplicate) {
			t.Fatalf("duplicate button of %s should be enabled", child.ID())
		}
	}
	assertContiguous(t, list.sequence)
}

func TestList_CapabilityViewIsShared(t *testing.T) {
	def := NewList("items", Meta{MaxNum: 2}, textField("item"))
	list := mountList(t, def, []any{"one"})

	first, _ := list.Child(0)
	caps := first.Capabilities()
	if !caps.Enabled(CapabilityDuplicate) {
		t.Fatalf("duplicate should be enabled before the list is full")
	}
	if _, err := list.Append("two"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if caps.Enabled(CapabilityDuplicate) {
		t.Fatalf("view handed out before the append must observe the new state")
	}
	if first.ActionEnabled(ActionDuplicate) {
		t.Fatalf("duplicate button should follow the registry")
	}
}

func TestList_DeleteRespectsMinNum(t *testing.T) {
	def := NewList("items", Meta{MinNum: 1}, textField("item"))
	list := mountList(t, def, []any{"one", "two"})

	if err := list.DeleteBlock(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if list.Registry().Enabled(CapabilityDelete) {
		t.Fatalf("delete should be disabled at minNum")
	}
	if err := list.DeleteBlock(0); !errors.Is(err, ErrLimitReached) {
		t.Fatalf("delete at minNum: got %v, want ErrLimitReached", err)
	}
}

func TestList_ContiguityAcrossOperations(t *testing.T) {
	def := NewList("items", Meta{}, textField("item"))
	list := mountList(t, def, []any{"a", "b", "c", "d"})
	assertContiguous(t, list.sequence)

	steps := []struct {
		name string
		run  func() error
	}{
		{"move first to last", func() error { return list.MoveBlock(0, 3) }},
		{"move last to first", func() error { return list.MoveBlock(3, 0) }},
		{"move middle down", func() error { return list.MoveBlock(1, 2) }},
		{"move middle up", func() error { return list.MoveBlock(2, 1) }},
		{"delete first", func() error { return list.DeleteBlock(0) }},
		{"insert at front", func() error { _, err := list.Insert("e", 0); return err }},
		{"delete last", func() error { return list.DeleteBlock(list.Count() - 1) }},
		{"append", func() error { _, err := list.Append("f"); return err }},
		{"delete middle", func() error { return list.DeleteBlock(1) }},
		{"duplicate first", func() error { _, err := list.DuplicateBlock(0); return err }},
		{"move to last", func() error { return list.MoveBlock(1, list.Count()-1) }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		assertContiguous(t, list.sequence)
	}
}

func TestList_MoveAcrossMiddleRefreshesAffordances(t *testing.T) {
	def := NewList("items", Meta{}, textField("item"))
	for _, move := range [][2]int{{0, 2}, {2, 0}} {
		list := mountList(t, def, []ListItem{{ID: "a", Value: "A"}, {ID: "b", Value: "B"}, {ID: "c", Value: "C"}})
		if err := list.MoveBlock(move[0], move[1]); err != nil {
			t.Fatalf("move %d to %d: %v", move[0], move[1], err)
		}
		assertContiguous(t, list.sequence)
		middle, _ := list.Child(1)
		if !middle.ActionEnabled(ActionMoveUp) || !middle.ActionEnabled(ActionMoveDown) {
			t.Fatalf("move %d to %d: middle child %s buttons not both enabled", move[0], move[1], middle.ID())
		}
	}
}

func TestList_MoveKeepsIdentity(t *testing.T) {
	def := NewList("items", Meta{}, textField("item"))
	list := mountList(t, def, []ListItem{{ID: "a", Value: "A"}, {ID: "b", Value: "B"}, {ID: "c", Value: "C"}})

	if err := list.MoveBlock(0, 2); err != nil {
		t.Fatalf("move: %v", err)
	}
	want := []ListItem{{ID: "b", Value: "B"}, {ID: "c", Value: "C"}, {ID: "a", Value: "A"}}
	if diff := cmp.Diff(want, list.State()); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}
	if err := list.MoveBlock(0, 5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("move out of range: got %v", err)
	}
}

func TestList_SoftDeletePermanence(t *testing.T) {
	def := NewList("items", Meta{}, textField("item"))
	list := mountList(t, def, []ListItem{{ID: "a", Value: "A"}, {ID: "b", Value: "B"}})

	if err := list.DeleteBlock(0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	deleted := list.AllChildren()[0]
	if !deleted.Deleted() || deleted.State() != ChildDeleted {
		t.Fatalf("child should be tagged deleted")
	}

	if _, err := list.Append("C"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := list.MoveBlock(0, 1); err != nil {
		t.Fatalf("move: %v", err)
	}

	if got := deleted.deletedInput.Value(); got != "1" {
		t.Fatalf("deleted flag = %q, want 1", got)
	}
	if got := deleted.idInput.Value(); got != "a" {
		t.Fatalf("deleted id field = %q, want a", got)
	}
	if deleted.idInput.Parent() != deleted.Element() {
		t.Fatalf("identity fields must stay attached")
	}
	if deleted.Element().Parent() == nil || !deleted.Element().Hidden() {
		t.Fatalf("deleted child should remain in the surface, hidden")
	}
	if len(deleted.buttons) != 0 {
		t.Fatalf("deleted child still exposes %d actions", len(deleted.buttons))
	}
	if list.TotalCount() != 3 || list.countInput.Value() != "3" {
		t.Fatalf("count field = %q, want 3", list.countInput.Value())
	}
}

func TestList_DuplicateUsesStateNotIdentity(t *testing.T) {
	def := NewList("items", Meta{}, textField("item"))
	list := mountList(t, def, []ListItem{{ID: "a", Value: "A"}})

	dup, err := list.DuplicateBlock(0)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if dup.Index() != 1 || dup.Value() != "A" {
		t.Fatalf("duplicate at %d holds %v", dup.Index(), dup.Value())
	}
	if dup.ID() == "" || dup.ID() == "a" {
		t.Fatalf("duplicate id = %q, want fresh", dup.ID())
	}
	if dup.Prefix() != "body-1" {
		t.Fatalf("prefix = %q, want body-1", dup.Prefix())
	}
}

func TestList_SplitInsertsAfter(t *testing.T) {
	def := NewList("items", Meta{}, textField("item"))
	list := mountList(t, def, []ListItem{{ID: "a", Value: "hello world"}})

	first, _ := list.Child(0)
	widget := first.Block().(*FieldBlock).Widget().(*stubWidget)
	if err := widget.split(5); err != nil {
		t.Fatalf("split: %v", err)
	}

	got := list.Value()
	want := []any{"hello", " world"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("value mismatch (-want +got):\n%s", diff)
	}
	second, _ := list.Child(1)
	input := second.Block().(*FieldBlock).Widget().(*stubWidget).input
	if input.Root().Focused() != input {
		t.Fatalf("split should focus the new child")
	}
}

func TestList_SetStateResets(t *testing.T) {
	def := NewList("items", Meta{MaxNum: 2}, textField("item"))
	list := mountList(t, def, []any{"a", "b"})
	if err := list.DeleteBlock(0); err != nil {
		t.Fatalf("delete: %v", err)
	}

	list.SetState([]ListItem{{ID: "x", Value: "X"}, {ID: "y", Value: "Y"}, {ID: "z", Value: "Z"}})

	if list.Count() != 3 || len(list.AllChildren()) != 3 || list.TotalCount() != 3 {
		t.Fatalf("set state should replace every child, got %d active / %d total", list.Count(), len(list.AllChildren()))
	}
	if list.Registry().Enabled(CapabilityAdd) {
		t.Fatalf("add should be disabled above maxNum")
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, ids(list.Children())); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	assertContiguous(t, list.sequence)
}

func TestList_RoundTrip(t *testing.T) {
	inner := NewList("tags", Meta{}, textField("tag"))
	def := NewList("items", Meta{}, MustStruct("entry", Meta{}, []Definition{textField("title"), inner}))
	state := []ListItem{
		{ID: "e1", Value: map[string]any{"title": "one", "tags": []ListItem{{ID: "t1", Value: "x"}}}},
		{ID: "e2", Value: map[string]any{"title": "two", "tags": []ListItem{}}},
	}
	list := mountList(t, def, state)

	first := list.State()
	list.SetState(first)
	list.SetState(list.State())
	if diff := cmp.Diff(first, list.State()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(state, first); diff != "" {
		t.Fatalf("initial state mismatch (-want +got):\n%s", diff)
	}
}

func TestList_SetErrorArity(t *testing.T) {
	def := NewList("items", Meta{}, textField("item"))
	list := mountList(t, def, []any{"a", "b"})
	seqErr := SequenceError{
		NonBlockErrors: []string{"Too many"},
		BlockErrors:    map[int]ValidationError{1: FieldError{Messages: []string{"Bad value"}}},
	}

	list.SetError(ErrorList{seqErr, seqErr})
	if len(list.NonBlockErrors()) != 0 {
		t.Fatalf("two-entry list must be ignored")
	}
	list.SetError(nil)
	list.SetError(ErrorList{FieldError{Messages: []string{"wrong shape"}}})
	if len(list.NonBlockErrors()) != 0 {
		t.Fatalf("non-sequence error must be ignored")
	}

	list.SetError(ErrorList{seqErr})
	if diff := cmp.Diff([]string{"Too many"}, list.NonBlockErrors()); diff != "" {
		t.Fatalf("non-block errors mismatch (-want +got):\n%s", diff)
	}
	second, _ := list.Child(1)
	if diff := cmp.Diff([]string{"Bad value"}, second.Block().(*FieldBlock).ErrorMessages()); diff != "" {
		t.Fatalf("child errors mismatch (-want +got):\n%s", diff)
	}
	first, _ := list.Child(0)
	if msgs := first.Block().(*FieldBlock).ErrorMessages(); len(msgs) != 0 {
		t.Fatalf("unmentioned child got errors: %v", msgs)
	}
}

func TestList_ChildActionsDispatch(t *testing.T) {
	def := NewList("items", Meta{}, textField("item"))
	list := mountList(t, def, []ListItem{{ID: "a", Value: "A"}, {ID: "b", Value: "B"}})

	first, _ := list.Child(0)
	first.buttons[ActionMoveDown].Dispatch("click", nil)
	if diff := cmp.Diff([]string{"b", "a"}, ids(list.Children())); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	first.buttons[ActionDelete].Dispatch("click", nil)
	if list.Count() != 1 || !first.Deleted() {
		t.Fatalf("delete action should soft-delete the child")
	}

	list.addButton.Dispatch("click", nil)
	if list.Count() != 2 {
		t.Fatalf("append button should add a child, count = %d", list.Count())
	}
	assertContiguous(t, list.sequence)
}
