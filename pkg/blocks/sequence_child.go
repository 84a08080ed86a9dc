package blocks

import (
	"strconv"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// ChildState tags a sequence child as active or soft-deleted.
type ChildState int

const (
	ChildActive ChildState = iota
	ChildDeleted
)

func (s ChildState) String() string {
	if s == ChildDeleted {
		return "deleted"
	}
	return "active"
}

// Child action names, also used as data-action attributes.
const (
	ActionMoveUp    = "move-up"
	ActionMoveDown  = "move-down"
	ActionDuplicate = "duplicate"
	ActionDelete    = "delete"
)

// SequenceChild wraps one block inside a list or stream. It owns the child's
// index, identity, soft-delete state, action affordances and the hidden
// submission fields prefix-{id,type,deleted,order}.
type SequenceChild struct {
	seq       *sequence
	def       Definition
	block     Block
	prefix    string
	creation  int
	index     int
	id        string
	blockType string
	state     ChildState

	moveUpEnabled   bool
	moveDownEnabled bool

	element  *surface.Node
	panel    *Panel
	buttons  map[string]*surface.Node
	caps     *Capabilities
	inserter *InsertionControl

	idInput      *surface.Node
	typeInput    *surface.Node
	deletedInput *surface.Node
	orderInput   *surface.Node

	unsubscribe func()
}

type childConfig struct {
	def       Definition
	prefix    string
	creation  int
	index     int
	id        string
	blockType string
	state     any
	collapsed bool
	withType  bool
}

func newSequenceChild(seq *sequence, cfg childConfig, rc RenderContext) (*SequenceChild, error) {
	c := &SequenceChild{
		seq:       seq,
		def:       cfg.def,
		prefix:    cfg.prefix,
		creation:  cfg.creation,
		index:     cfg.index,
		id:        cfg.id,
		blockType: cfg.blockType,
		state:     ChildActive,
		buttons:   make(map[string]*surface.Node),
	}

	c.element = surface.NewElement("div", "c-sf-child")
	c.element.SetAttr("data-sequence-child", "")
	c.element.SetAttr("data-prefix", cfg.prefix)

	c.deletedInput = surface.NewHiddenInput(cfg.prefix+"-deleted", "")
	c.orderInput = surface.NewHiddenInput(cfg.prefix+"-order", strconv.Itoa(cfg.index))
	c.idInput = surface.NewHiddenInput(cfg.prefix+"-id", cfg.id)
	c.element.Append(c.deletedInput, c.orderInput, c.idInput)
	if cfg.withType {
		c.typeInput = surface.NewHiddenInput(cfg.prefix+"-type", cfg.blockType)
		c.element.Append(c.typeInput)
	}

	meta := cfg.def.Meta()
	c.panel = newPanel("c-sf-child__panel", meta.Label, cfg.collapsed)
	c.element.Append(c.panel.Element())

	for _, action := range []string{ActionMoveUp, ActionMoveDown, ActionDuplicate, ActionDelete} {
		c.addButton(action)
	}

	c.caps = NewCapabilities(seq.registry, cfg.blockType)
	c.caps.bind(CapabilitySplit, func(args ...any) error {
		before, after := splitArgs(args)
		_, err := seq.Split(c.index, before, after)
		return err
	})
	c.caps.bind(CapabilityDuplicate, func(...any) error {
		_, err := seq.DuplicateBlock(c.index)
		return err
	})
	c.unsubscribe = seq.registry.Subscribe(func(string, Capability) { c.refreshButtons() })

	c.panel.Content().On(surface.EventChange, func(*surface.Event) {
		if c.block != nil {
			c.RefreshLabel()
		}
	})

	mount := surface.NewPlaceholder()
	c.panel.Content().Append(mount)
	block, err := cfg.def.Render(mount, cfg.prefix+"-value", cfg.state, nil, rc.WithCapabilities(c.caps))
	if err != nil {
		c.unsubscribe()
		return nil, err
	}
	c.block = block
	c.RefreshLabel()
	return c, nil
}

func splitArgs(args []any) (any, any) {
	var before, after any
	if len(args) > 0 {
		before = args[0]
	}
	if len(args) > 1 {
		after = args[1]
	}
	return before, after
}

func (c *SequenceChild) addButton(action string) {
	button := surface.NewElement("button", "c-sf-child__action", "c-sf-child__action--"+action)
	button.SetAttr("type", "button")
	button.SetAttr("data-action", action)
	button.SetText(DefaultLabeler(action))
	button.On(surface.EventClick, func(evt *surface.Event) {
		evt.StopPropagation()
		if _, disabled := button.Attr("disabled"); disabled {
			return
		}
		c.runAction(action)
	})
	c.buttons[action] = button
	c.panel.Toolbar().Append(button)
}

func (c *SequenceChild) runAction(action string) {
	if c.state == ChildDeleted {
		return
	}
	var err error
	switch action {
	case ActionMoveUp:
		err = c.seq.MoveBlock(c.index, c.index-1)
	case ActionMoveDown:
		err = c.seq.MoveBlock(c.index, c.index+1)
	case ActionDuplicate:
		_, err = c.seq.DuplicateBlock(c.index)
	case ActionDelete:
		err = c.seq.DeleteBlock(c.index)
	}
	if err != nil {
		c.seq.log.Debug().Err(err).Str("action", action).Int("index", c.index).Msg("child action rejected")
	}
}

// Block returns the wrapped block.
func (c *SequenceChild) Block() Block { return c.block }

// Definition returns the child's block definition.
func (c *SequenceChild) Definition() Definition { return c.def }

// Element returns the wrapper node.
func (c *SequenceChild) Element() *surface.Node { return c.element }

// Panel returns the collapsible panel around the block.
func (c *SequenceChild) Panel() *Panel { return c.panel }

// Capabilities returns the view handed to the wrapped block.
func (c *SequenceChild) Capabilities() *Capabilities { return c.caps }

// InsertionControl returns the control placed after this child (streams).
func (c *SequenceChild) InsertionControl() *InsertionControl { return c.inserter }

// Index is the position among active siblings; -1 once deleted.
func (c *SequenceChild) Index() int { return c.index }

// ID is the stable identity of the child.
func (c *SequenceChild) ID() string { return c.id }

// Type is the block type name (the child definition's name).
func (c *SequenceChild) Type() string { return c.blockType }

// Prefix is the submission prefix, e.g. "body-3".
func (c *SequenceChild) Prefix() string { return c.prefix }

// State reports whether the child is active or soft-deleted.
func (c *SequenceChild) State() ChildState { return c.state }

// Deleted reports whether the child was soft-deleted.
func (c *SequenceChild) Deleted() bool { return c.state == ChildDeleted }

// BlockState returns the wrapped block's state.
func (c *SequenceChild) BlockState() any { return c.block.State() }

// Value returns the wrapped block's value.
func (c *SequenceChild) Value() any { return c.block.Value() }

// SetError forwards to the wrapped block.
func (c *SequenceChild) SetError(errs ErrorList) {
	c.block.SetError(errs)
	if len(errs) > 0 && !IsEmpty(errs[0]) {
		c.block.Element().Dispatch(surface.EventReveal, nil)
	}
}

// Focus forwards to the wrapped block.
func (c *SequenceChild) Focus(opts FocusOptions) {
	c.panel.Expand()
	c.block.Focus(opts)
}

// SetIndex updates the in-memory index and the submitted order field.
func (c *SequenceChild) SetIndex(index int) {
	c.index = index
	c.orderInput.SetValue(strconv.Itoa(index))
}

// MarkDeleted soft-deletes the child: the deleted flag is set, the action
// affordances are detached and the node is hidden, while the id/type/order
// fields stay in place for submission.
func (c *SequenceChild) MarkDeleted() {
	if c.state == ChildDeleted {
		return
	}
	c.state = ChildDeleted
	c.index = -1
	c.deletedInput.SetValue("1")
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	for action, button := range c.buttons {
		button.Remove()
		delete(c.buttons, action)
	}
	c.element.AddClass("c-sf-child--deleted")
	c.element.SetHidden(true)
}

// detach drops registry subscriptions when the sequence is cleared.
func (c *SequenceChild) detach() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// CanMoveUp reports the move-up affordance state.
func (c *SequenceChild) CanMoveUp() bool { return c.moveUpEnabled }

// CanMoveDown reports the move-down affordance state.
func (c *SequenceChild) CanMoveDown() bool { return c.moveDownEnabled }

func (c *SequenceChild) EnableMoveUp()    { c.setMove(ActionMoveUp, true) }
func (c *SequenceChild) DisableMoveUp()   { c.setMove(ActionMoveUp, false) }
func (c *SequenceChild) EnableMoveDown()  { c.setMove(ActionMoveDown, true) }
func (c *SequenceChild) DisableMoveDown() { c.setMove(ActionMoveDown, false) }

func (c *SequenceChild) setMove(action string, enabled bool) {
	if action == ActionMoveUp {
		c.moveUpEnabled = enabled
	} else {
		c.moveDownEnabled = enabled
	}
	c.setButtonEnabled(action, enabled)
}

func (c *SequenceChild) setButtonEnabled(action string, enabled bool) {
	button, ok := c.buttons[action]
	if !ok {
		return
	}
	if enabled {
		button.RemoveAttr("disabled")
	} else {
		button.SetAttr("disabled", "")
	}
}

// ActionEnabled reports whether the action button is present and enabled.
func (c *SequenceChild) ActionEnabled(action string) bool {
	button, ok := c.buttons[action]
	if !ok {
		return false
	}
	_, disabled := button.Attr("disabled")
	return !disabled
}

func (c *SequenceChild) refreshButtons() {
	if c.state == ChildDeleted {
		return
	}
	c.setButtonEnabled(ActionDuplicate, c.caps.Enabled(CapabilityDuplicate))
	c.setButtonEnabled(ActionDelete, c.caps.Enabled(CapabilityDelete))
}

// RefreshLabel updates the panel header from the block's text label.
func (c *SequenceChild) RefreshLabel() {
	title := truncateLabel(c.block.Label(), maxSummaryLength)
	if title == "" {
		title = c.def.Meta().Label
	}
	c.panel.SetTitle(title)
}
