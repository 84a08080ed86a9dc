package blocks

import (
	"strconv"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// InsertionControl is the "insert here" affordance of a stream. Control i
// sits before the active child i; the control after the last child has index
// len(children).
type InsertionControl struct {
	stream  *StreamBlock
	index   int
	open    bool
	element *surface.Node
	toggle  *surface.Node
	menu    *surface.Node
	items   map[string]*surface.Node
}

func newInsertionControl(stream *StreamBlock, index int) *InsertionControl {
	ic := &InsertionControl{
		stream:  stream,
		element: surface.NewElement("div", "c-sf-add-panel"),
		toggle:  surface.NewElement("button", "c-sf-add-button"),
		menu:    surface.NewElement("div", "c-sf-add-panel__menu"),
		items:   make(map[string]*surface.Node),
	}
	ic.element.SetAttr("data-insertion-control", "")
	ic.toggle.SetAttr("type", "button")
	ic.toggle.SetAttr("aria-label", "Insert a block")
	ic.toggle.On(surface.EventClick, func(evt *surface.Event) {
		evt.StopPropagation()
		ic.Toggle()
	})

	var group *surface.Node
	currentGroup := ""
	for i, def := range stream.def.children {
		meta := def.Meta()
		if i == 0 || meta.GroupLabel != currentGroup {
			currentGroup = meta.GroupLabel
			group = surface.NewElement("div", "c-sf-add-panel__group")
			if currentGroup != "" {
				title := surface.NewElement("h4", "c-sf-add-panel__group-title")
				title.SetText(currentGroup)
				group.Append(title)
			}
			ic.menu.Append(group)
		}
		ic.addItem(group, def.Name(), meta)
	}

	ic.element.Append(ic.toggle, ic.menu)
	ic.SetIndex(index)
	ic.setOpen(false)
	return ic
}

func (ic *InsertionControl) addItem(group *surface.Node, blockType string, meta Meta) {
	item := surface.NewElement("button", "c-sf-add-panel__item")
	item.SetAttr("type", "button")
	item.SetAttr("data-block-type", blockType)
	if meta.Icon != "" {
		item.SetAttr("data-icon", meta.Icon)
	}
	item.SetText(meta.Label)
	item.On(surface.EventClick, func(evt *surface.Event) {
		evt.StopPropagation()
		if _, disabled := item.Attr("disabled"); disabled {
			return
		}
		if _, err := ic.Choose(blockType); err != nil {
			ic.stream.log.Debug().Err(err).Str("type", blockType).Msg("insert rejected")
		}
	})
	ic.items[blockType] = item
	group.Append(item)
}

// Element returns the control's root node.
func (ic *InsertionControl) Element() *surface.Node { return ic.element }

// Index is the insertion point this control targets.
func (ic *InsertionControl) Index() int { return ic.index }

// SetIndex retargets the control.
func (ic *InsertionControl) SetIndex(index int) {
	ic.index = index
	ic.element.SetAttr("data-insertion-index", strconv.Itoa(index))
}

// IsOpen reports whether the menu is shown.
func (ic *InsertionControl) IsOpen() bool { return ic.open }

func (ic *InsertionControl) Open()   { ic.setOpen(true) }
func (ic *InsertionControl) Close()  { ic.setOpen(false) }
func (ic *InsertionControl) Toggle() { ic.setOpen(!ic.open) }

func (ic *InsertionControl) setOpen(open bool) {
	ic.open = open
	ic.menu.SetHidden(!open)
	ic.element.ToggleClass("c-sf-add-panel--open", open)
	if open {
		ic.toggle.SetAttr("aria-expanded", "true")
	} else {
		ic.toggle.SetAttr("aria-expanded", "false")
	}
}

// Choose inserts a block of blockType at this control's index and closes the
// menu.
func (ic *InsertionControl) Choose(blockType string) (*SequenceChild, error) {
	child, err := ic.stream.AddBlock(blockType, ic.index)
	if err != nil {
		return nil, err
	}
	ic.Close()
	return child, nil
}

// ItemEnabled reports whether the menu entry for blockType can be chosen.
func (ic *InsertionControl) ItemEnabled(blockType string) bool {
	item, ok := ic.items[blockType]
	if !ok {
		return false
	}
	_, disabled := item.Attr("disabled")
	return !disabled
}

func (ic *InsertionControl) refresh() {
	for blockType, item := range ic.items {
		if ic.stream.allowed(CapabilityAdd, blockType) {
			item.RemoveAttr("disabled")
		} else {
			item.SetAttr("disabled", "")
		}
	}
}
