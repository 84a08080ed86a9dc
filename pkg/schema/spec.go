package schema

import (
	"github.com/goliatone/go-streamfield/pkg/blocks"
	"github.com/goliatone/go-streamfield/pkg/widgets"
)

// Built-in definition types.
const (
	TypeField  = "field"
	TypeStruct = "struct"
	TypeList   = "list"
	TypeStream = "stream"
)

// Spec is one node of a definition document. Type selects the registered
// factory; the remaining fields are read by the factories that need them.
type Spec struct {
	Name string `json:"name" yaml:"name" jsonschema:"minLength=1"`
	Type string `json:"type" yaml:"type" jsonschema:"minLength=1"`

	Label       string                       `json:"label,omitempty" yaml:"label,omitempty"`
	Icon        string                       `json:"icon,omitempty" yaml:"icon,omitempty"`
	HelpText    string                       `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Required    bool                         `json:"required,omitempty" yaml:"required,omitempty"`
	MinNum      int                          `json:"minNum,omitempty" yaml:"minNum,omitempty" jsonschema:"minimum=0"`
	MaxNum      int                          `json:"maxNum,omitempty" yaml:"maxNum,omitempty" jsonschema:"minimum=0"`
	Classname   string                       `json:"classname,omitempty" yaml:"classname,omitempty"`
	LabelFormat string                       `json:"labelFormat,omitempty" yaml:"labelFormat,omitempty"`
	Collapsed   bool                         `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Group       string                       `json:"group,omitempty" yaml:"group,omitempty"`
	Default     any                          `json:"default,omitempty" yaml:"default,omitempty"`
	BlockCounts map[string]blocks.BlockCount `json:"blockCounts,omitempty" yaml:"blockCounts,omitempty"`

	// Field widget hints.
	Widget      string           `json:"widget,omitempty" yaml:"widget,omitempty"`
	ValueType   string           `json:"valueType,omitempty" yaml:"valueType,omitempty"`
	Format      string           `json:"format,omitempty" yaml:"format,omitempty"`
	Multiline   bool             `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	Placeholder string           `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Choices     []widgets.Choice `json:"choices,omitempty" yaml:"choices,omitempty"`

	// Containers.
	Children []Spec       `json:"children,omitempty" yaml:"children,omitempty"`
	Child    *Spec        `json:"child,omitempty" yaml:"child,omitempty"`
	Layout   []LayoutSpec `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// LayoutSpec is one entry of a struct layout: either a child name in Field or
// a nested group.
type LayoutSpec struct {
	Field       string       `json:"field,omitempty" yaml:"field,omitempty"`
	Group       string       `json:"group,omitempty" yaml:"group,omitempty"`
	Label       string       `json:"label,omitempty" yaml:"label,omitempty"`
	LabelFormat string       `json:"labelFormat,omitempty" yaml:"labelFormat,omitempty"`
	Collapsed   bool         `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	Settings    bool         `json:"settings,omitempty" yaml:"settings,omitempty"`
	Items       []LayoutSpec `json:"items,omitempty" yaml:"items,omitempty"`
}

// Meta returns the block metadata carried by the spec. Icon and help text
// are sanitized.
func (s Spec) Meta() blocks.Meta {
	return blocks.Meta{
		Label:       s.Label,
		Icon:        SanitizeIcon(s.Icon),
		HelpText:    SanitizeHelp(s.HelpText),
		Required:    s.Required,
		MinNum:      s.MinNum,
		MaxNum:      s.MaxNum,
		Classname:   s.Classname,
		LabelFormat: s.LabelFormat,
		Collapsed:   s.Collapsed,
		GroupLabel:  s.Group,
		Default:     s.Default,
		BlockCounts: s.BlockCounts,
	}
}

// Hints returns the widget selection hints of a field spec.
func (s Spec) Hints() widgets.Hints {
	return widgets.Hints{
		Widget:      s.Widget,
		Type:        s.ValueType,
		Format:      s.Format,
		Multiline:   s.Multiline,
		Placeholder: s.Placeholder,
		Choices:     s.Choices,
	}
}

func layoutItems(specs []LayoutSpec) []blocks.LayoutItem {
	if len(specs) == 0 {
		return nil
	}
	items := make([]blocks.LayoutItem, 0, len(specs))
	for _, spec := range specs {
		if spec.Group == "" {
			items = append(items, blocks.LayoutField(spec.Field))
			continue
		}
		items = append(items, blocks.LayoutItem{Group: &blocks.Group{
			Name:        spec.Group,
			Label:       spec.Label,
			LabelFormat: spec.LabelFormat,
			Collapsed:   spec.Collapsed,
			Settings:    spec.Settings,
			Items:       layoutItems(spec.Items),
		}})
	}
	return items
}
