package widgets

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-streamfield/pkg/blocks"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetText      = "text"
	WidgetTextArea  = "textarea"
	WidgetCheckbox  = "checkbox"
	WidgetSelect    = "select"
	WidgetParagraph = "paragraph"
)

// Hints describe a field well enough for the registry to pick a widget.
type Hints struct {
	// Widget names a widget explicitly and bypasses matchers.
	Widget      string   `json:"widget,omitempty" yaml:"widget,omitempty"`
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"`
	Format      string   `json:"format,omitempty" yaml:"format,omitempty"`
	Multiline   bool     `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Choices     []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Matcher decides whether a widget should handle fields with the supplied
// hints.
type Matcher func(hints Hints) bool

// Constructor builds a widget factory for the supplied hints.
type Constructor func(hints Hints) blocks.WidgetFactory

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields based on explicit hints or registered
// matchers. Higher priority wins; ties fall back to registration order.
type Registry struct {
	mu           sync.RWMutex
	rules        []rule
	constructors map[string]Constructor
}

// NewRegistry constructs a registry with the built-in widgets registered.
func NewRegistry() *Registry {
	reg := &Registry{constructors: make(map[string]Constructor)}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget matcher with the provided name and priority. Higher
// priority values take precedence. The latest registration of a name wins
// during resolution.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// RegisterConstructor binds a widget name to the code that builds it.
func (r *Registry) RegisterConstructor(name string, ctor Constructor) {
	if r == nil || ctor == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.constructors == nil {
		r.constructors = make(map[string]Constructor)
	}
	r.constructors[trimmed] = ctor
}

// Resolve returns the widget name for hints. An explicit Widget hint is
// honoured before matcher evaluation.
func (r *Registry) Resolve(hints Hints) (string, bool) {
	if explicit := strings.TrimSpace(hints.Widget); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(hints) {
			return entry.name, true
		}
	}
	return "", false
}

// Factory resolves hints to a widget name and builds its factory.
func (r *Registry) Factory(hints Hints) (blocks.WidgetFactory, error) {
	name, ok := r.Resolve(hints)
	if !ok {
		return nil, fmt.Errorf("widgets: no widget matches %+v", hints)
	}
	r.mu.RLock()
	ctor, ok := r.constructors[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("widgets: widget %q is not registered", name)
	}
	return ctor(hints), nil
}

// Names lists widgets that have a constructor, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetCheckbox, 90, func(hints Hints) bool {
		return strings.EqualFold(hints.Type, "boolean")
	})

	r.Register(WidgetSelect, 70, func(hints Hints) bool {
		return len(hints.Choices) > 0
	})

	r.Register(WidgetParagraph, 60, func(hints Hints) bool {
		format := strings.TrimSpace(strings.ToLower(hints.Format))
		return format == "paragraph" || format == "richtext"
	})

	r.Register(WidgetTextArea, 50, func(hints Hints) bool {
		return hints.Multiline
	})

	r.Register(WidgetText, 0, func(Hints) bool { return true })

	r.RegisterConstructor(WidgetText, func(h Hints) blocks.WidgetFactory { return TextInput(inputType(h.Format), h.Placeholder) })
	r.RegisterConstructor(WidgetTextArea, func(h Hints) blocks.WidgetFactory { return TextArea(h.Placeholder) })
	r.RegisterConstructor(WidgetCheckbox, func(Hints) blocks.WidgetFactory { return Checkbox() })
	r.RegisterConstructor(WidgetSelect, func(h Hints) blocks.WidgetFactory { return Select(h.Choices) })
	r.RegisterConstructor(WidgetParagraph, func(h Hints) blocks.WidgetFactory { return Paragraph(h.Placeholder) })
}

func inputType(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "email":
		return "email"
	case "uri", "url":
		return "url"
	case "date":
		return "date"
	case "number", "integer":
		return "number"
	default:
		return "text"
	}
}
