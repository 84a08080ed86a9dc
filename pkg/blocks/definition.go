package blocks

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-streamfield/pkg/surface"
)

// Kind identifies a definition variant.
type Kind string

const (
	KindField  Kind = "field"
	KindStruct Kind = "struct"
	KindList   Kind = "list"
	KindStream Kind = "stream"
)

// BlockCount bounds how many children of one type a stream may hold. Zero
// MaxNum means unbounded.
type BlockCount struct {
	MinNum int `json:"minNum,omitempty" yaml:"minNum,omitempty"`
	MaxNum int `json:"maxNum,omitempty" yaml:"maxNum,omitempty"`
}

// Meta is the presentational and constraint metadata of a definition.
// MaxNum <= 0 means unbounded.
type Meta struct {
	Label       string                `json:"label,omitempty" yaml:"label,omitempty"`
	Icon        string                `json:"icon,omitempty" yaml:"icon,omitempty"`
	HelpText    string                `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Required    bool                  `json:"required,omitempty" yaml:"required,omitempty"`
	MinNum      int                   `json:"minNum,omitempty" yaml:"minNum,omitempty"`
	MaxNum      int                   `json:"maxNum,omitempty" yaml:"maxNum,omitempty"`
	Classname   string                `json:"classname,omitempty" yaml:"classname,omitempty"`
	LabelFormat string                `json:"labelFormat,omitempty" yaml:"labelFormat,omitempty"`
	Collapsed   bool                  `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	GroupLabel  string                `json:"group,omitempty" yaml:"group,omitempty"`
	Default     any                   `json:"default,omitempty" yaml:"default,omitempty"`
	BlockCounts map[string]BlockCount `json:"blockCounts,omitempty" yaml:"blockCounts,omitempty"`
}

func (m Meta) clone() Meta {
	out := m
	out.Default = deepCopy(m.Default)
	if len(m.BlockCounts) > 0 {
		out.BlockCounts = make(map[string]BlockCount, len(m.BlockCounts))
		for k, v := range m.BlockCounts {
			out.BlockCounts[k] = v
		}
	}
	return out
}

// withinMax reports whether count leaves room for one more block.
func withinMax(count, maxNum int) bool {
	return maxNum <= 0 || count < maxNum
}

// Definition is an immutable schema node. Every variant renders itself into
// a mount point and produces a live Block. The variant is closed to this
// package: FieldDefinition, StructDefinition, ListDefinition and
// StreamDefinition.
type Definition interface {
	Name() string
	Kind() Kind
	Meta() Meta
	// DefaultState is the state used for newly added blocks.
	DefaultState() any
	Render(mount *surface.Node, prefix string, state any, errs ErrorList, rc RenderContext) (Block, error)

	// rekey returns a deep copy of state with every nested sequence item id
	// blanked, so a render of the copy allocates fresh identities.
	rekey(state any) any
}

// Block is a live instance produced by Definition.Render.
type Block interface {
	Definition() Definition
	// Element is the root surface node the block replaced its mount with.
	Element() *surface.Node
	Value() any
	State() any
	SetState(state any)
	SetError(errs ErrorList)
	Focus(opts FocusOptions)
	// Label is a short human-readable summary of the block's content.
	Label() string
}

// Container is implemented by blocks that hold addressable children: struct
// blocks by child name, sequences by active index.
type Container interface {
	Block
	ChildBlock(key string) (Block, bool)
}

// Sequence is the structural surface shared by ListBlock and StreamBlock.
type Sequence interface {
	Container
	Prefix() string
	Count() int
	TotalCount() int
	Children() []*SequenceChild
	Child(index int) (*SequenceChild, bool)
	MoveBlock(oldIndex, newIndex int) error
	DeleteBlock(index int) error
	DuplicateBlock(index int) (*SequenceChild, error)
	NonBlockErrors() []string
}

var (
	_ Sequence  = (*ListBlock)(nil)
	_ Sequence  = (*StreamBlock)(nil)
	_ Container = (*StructBlock)(nil)
)

// FocusOptions tunes Focus.
type FocusOptions struct {
	// Soft focus does not move the cursor into text inputs.
	Soft bool
}

// RenderContext carries collaborators down the tree during render.
type RenderContext struct {
	// Capabilities is the parent's view; nil for a top-level block.
	Capabilities *Capabilities
	IDs          IDGenerator
	Logger       *zerolog.Logger
}

// WithCapabilities returns a copy of rc carrying caps.
func (rc RenderContext) WithCapabilities(caps *Capabilities) RenderContext {
	rc.Capabilities = caps
	return rc
}

func (rc RenderContext) ids() IDGenerator {
	if rc.IDs == nil {
		return UUIDGenerator{}
	}
	return rc.IDs
}

func (rc RenderContext) logger(source, prefix string) zerolog.Logger {
	base := zerolog.Nop()
	if rc.Logger != nil {
		base = *rc.Logger
	}
	return base.With().Str("source", source).Str("prefix", prefix).Logger()
}

// normalized fills defaults so children share one generator and logger.
func (rc RenderContext) normalized() RenderContext {
	if rc.IDs == nil {
		rc.IDs = UUIDGenerator{}
	}
	if rc.Logger == nil {
		nop := zerolog.Nop()
		rc.Logger = &nop
	}
	return rc
}
