package blocks

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Capability names written by sequence containers.
const (
	CapabilityAdd       = "add"
	CapabilityDuplicate = "duplicate"
	CapabilitySplit     = "split"
	CapabilityDelete    = "delete"
)

// Capability is a named enable/disable constraint plus free-form extras.
type Capability struct {
	Enabled bool
	Extra   map[string]any
}

// QualifiedCapability returns the registry key for a per-type capability,
// e.g. "duplicate@heading".
func QualifiedCapability(name, blockType string) string {
	if blockType == "" {
		return name
	}
	return name + "@" + blockType
}

// CapabilityRegistry is the shared, mutable capability map a container hands
// by reference to every child it creates. Only the owning container writes
// to it; every holder observes writes immediately.
type CapabilityRegistry struct {
	mu          sync.RWMutex
	entries     map[string]Capability
	subscribers map[int]func(name string, c Capability)
	nextSub     int
}

// NewCapabilityRegistry returns an empty registry.
func NewCapabilityRegistry() *CapabilityRegistry {
	return &CapabilityRegistry{
		entries:     make(map[string]Capability),
		subscribers: make(map[int]func(string, Capability)),
	}
}

// Set updates the enabled flag of name, notifying subscribers when the value
// changes or the entry is new.
func (r *CapabilityRegistry) Set(name string, enabled bool) {
	if r == nil || strings.TrimSpace(name) == "" {
		return
	}
	r.mu.Lock()
	current, exists := r.entries[name]
	if exists && current.Enabled == enabled {
		r.mu.Unlock()
		return
	}
	current.Enabled = enabled
	r.entries[name] = current
	subs := r.snapshotSubscribers()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(name, current)
	}
}

// SetExtra stores an extra field on the named capability.
func (r *CapabilityRegistry) SetExtra(name, key string, value any) {
	if r == nil || name == "" || key == "" {
		return
	}
	r.mu.Lock()
	current := r.entries[name]
	extra := make(map[string]any, len(current.Extra)+1)
	for k, v := range current.Extra {
		extra[k] = v
	}
	extra[key] = value
	current.Extra = extra
	r.entries[name] = current
	subs := r.snapshotSubscribers()
	r.mu.Unlock()

	for _, fn := range subs {
		fn(name, current)
	}
}

// Delete removes an entry without notifying subscribers.
func (r *CapabilityRegistry) Delete(name string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	delete(r.entries, name)
	r.mu.Unlock()
}

// Get returns the capability registered under name.
func (r *CapabilityRegistry) Get(name string) (Capability, bool) {
	if r == nil {
		return Capability{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[name]
	return c, ok
}

// Enabled reports whether name is present and enabled.
func (r *CapabilityRegistry) Enabled(name string) bool {
	c, ok := r.Get(name)
	return ok && c.Enabled
}

// Names returns the registered capability names, sorted.
func (r *CapabilityRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Subscribe registers fn to be called after every change. The returned func
// removes the subscription.
func (r *CapabilityRegistry) Subscribe(fn func(name string, c Capability)) func() {
	if r == nil || fn == nil {
		return func() {}
	}
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}

func (r *CapabilityRegistry) snapshotSubscribers() []func(string, Capability) {
	if len(r.subscribers) == 0 {
		return nil
	}
	ids := make([]int, 0, len(r.subscribers))
	for id := range r.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(string, Capability), 0, len(ids))
	for _, id := range ids {
		out = append(out, r.subscribers[id])
	}
	return out
}

// Handler runs a capability on behalf of a child block, e.g. splitting it.
type Handler func(args ...any) error

// Capabilities is the read-only view a block receives from its parent. It
// reads through the parent's shared registry and adds per-child handlers;
// per-type entries (see QualifiedCapability) narrow the container-wide ones.
type Capabilities struct {
	registry  *CapabilityRegistry
	qualifier string
	handlers  map[string]Handler
}

// NewCapabilities builds a view over registry. qualifier selects per-type
// entries and may be empty.
func NewCapabilities(registry *CapabilityRegistry, qualifier string) *Capabilities {
	return &Capabilities{
		registry:  registry,
		qualifier: qualifier,
		handlers:  make(map[string]Handler),
	}
}

// Registry exposes the shared registry for observers.
func (c *Capabilities) Registry() *CapabilityRegistry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Enabled reports whether name is enabled container-wide and, when a
// per-type entry exists, for this child's type too.
func (c *Capabilities) Enabled(name string) bool {
	if c == nil || !c.registry.Enabled(name) {
		return false
	}
	if c.qualifier != "" {
		if typed, ok := c.registry.Get(QualifiedCapability(name, c.qualifier)); ok {
			return typed.Enabled
		}
	}
	return true
}

// Get returns the effective capability for name.
func (c *Capabilities) Get(name string) (Capability, bool) {
	if c == nil {
		return Capability{}, false
	}
	base, ok := c.registry.Get(name)
	if !ok {
		return Capability{}, false
	}
	base.Enabled = c.Enabled(name)
	return base, true
}

// Has reports whether a handler is bound for name.
func (c *Capabilities) Has(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.handlers[name]
	return ok
}

// Invoke runs the handler bound to name when the capability is enabled.
func (c *Capabilities) Invoke(name string, args ...any) error {
	if c == nil {
		return fmt.Errorf("%w: %s", ErrCapabilityDisabled, name)
	}
	handler, ok := c.handlers[name]
	if !ok || !c.Enabled(name) {
		return fmt.Errorf("%w: %s", ErrCapabilityDisabled, name)
	}
	return handler(args...)
}

// Subscribe forwards to the shared registry.
func (c *Capabilities) Subscribe(fn func(name string, c Capability)) func() {
	if c == nil {
		return func() {}
	}
	return c.registry.Subscribe(fn)
}

func (c *Capabilities) bind(name string, handler Handler) *Capabilities {
	c.handlers[name] = handler
	return c
}
