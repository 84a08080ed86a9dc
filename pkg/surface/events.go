package surface

// Event names dispatched by the block tree.
const (
	// EventReveal asks enclosing collapsed panels to expand so that the
	// originating node becomes visible.
	EventReveal = "reveal"
	// EventChange signals a value change from a widget.
	EventChange = "change"
	// EventClick activates buttons such as child action affordances.
	EventClick = "click"
)

// Event travels from the dispatching node up to the root.
type Event struct {
	Name   string
	Target *Node
	Detail any

	stopped bool
}

// StopPropagation prevents delivery to further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Listener receives dispatched events.
type Listener func(*Event)

// On registers fn for events named name on n.
func (n *Node) On(name string, fn Listener) {
	if n == nil || fn == nil || name == "" {
		return
	}
	if n.listeners == nil {
		n.listeners = make(map[string][]Listener)
	}
	n.listeners[name] = append(n.listeners[name], fn)
}

// Dispatch delivers an event named name to n and then each ancestor until a
// listener stops propagation. It reports whether any listener ran.
func (n *Node) Dispatch(name string, detail any) bool {
	if n == nil {
		return false
	}
	evt := &Event{Name: name, Target: n, Detail: detail}
	delivered := false
	for current := n; current != nil; current = current.parent {
		for _, fn := range current.listeners[name] {
			fn(evt)
			delivered = true
		}
		if evt.stopped {
			break
		}
	}
	return delivered
}
