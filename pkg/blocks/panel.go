package blocks

import "github.com/goliatone/go-streamfield/pkg/surface"

// Panel is a collapsible section with a header (title plus optional
// toolbar) and a content area. A reveal event dispatched from anywhere inside
// the panel expands it.
type Panel struct {
	element *surface.Node
	header  *surface.Node
	title   *surface.Node
	toggle  *surface.Node
	toolbar *surface.Node
	content *surface.Node

	collapsed bool
}

func newPanel(classname, title string, collapsed bool) *Panel {
	p := &Panel{
		element: surface.NewElement("section", "w-panel"),
		header:  surface.NewElement("div", "w-panel__header"),
		title:   surface.NewElement("h3", "w-panel__heading"),
		toggle:  surface.NewElement("button", "w-panel__toggle"),
		toolbar: surface.NewElement("div", "w-panel__controls"),
		content: surface.NewElement("div", "w-panel__content"),
	}
	p.element.AddClass(classname)
	p.toggle.SetAttr("type", "button")
	p.toggle.SetAttr("data-panel-toggle", "")
	p.toggle.On(surface.EventClick, func(*surface.Event) { p.Toggle() })
	p.title.SetText(title)
	p.header.Append(p.toggle, p.title, p.toolbar)
	p.element.Append(p.header, p.content)

	p.element.On(surface.EventReveal, func(*surface.Event) {
		if p.collapsed {
			p.Expand()
		}
	})

	p.setCollapsed(collapsed)
	return p
}

// Element returns the panel root.
func (p *Panel) Element() *surface.Node { return p.element }

// Content is where the panel's body is mounted.
func (p *Panel) Content() *surface.Node { return p.content }

// Toolbar hosts action buttons in the header.
func (p *Panel) Toolbar() *surface.Node { return p.toolbar }

// Title returns the current header text.
func (p *Panel) Title() string { return p.title.TextContent() }

// SetTitle replaces the header text.
func (p *Panel) SetTitle(title string) { p.title.SetText(title) }

// Collapsed reports whether the content is hidden.
func (p *Panel) Collapsed() bool { return p.collapsed }

// Expand shows the content.
func (p *Panel) Expand() { p.setCollapsed(false) }

// Collapse hides the content.
func (p *Panel) Collapse() { p.setCollapsed(true) }

// Toggle flips the collapsed state.
func (p *Panel) Toggle() { p.setCollapsed(!p.collapsed) }

func (p *Panel) setCollapsed(collapsed bool) {
	p.collapsed = collapsed
	p.content.SetHidden(collapsed)
	p.element.ToggleClass("w-panel--collapsed", collapsed)
	if collapsed {
		p.toggle.SetAttr("aria-expanded", "false")
	} else {
		p.toggle.SetAttr("aria-expanded", "true")
	}
}
