package schema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-streamfield/pkg/widgets"
)

// SourceKindOpenAPI marks definitions derived from an OpenAPI component
// schema.
const SourceKindOpenAPI SourceKind = "openapi"

// openAPIExtension holds per-schema overrides such as
// x-streamfield: {widget: ..., icon: ..., order: ...}.
const openAPIExtension = "x-streamfield"

type openAPISource struct {
	location  string
	component string
}

func (s openAPISource) Location() string {
	return s.location + "#/components/schemas/" + s.component
}
func (s openAPISource) Kind() SourceKind { return SourceKindOpenAPI }

// SourceFromOpenAPI identifies the component schema named component inside
// the OpenAPI document at location.
func SourceFromOpenAPI(location, component string) Source {
	if location == "" {
		location = "inline"
	}
	return openAPISource{location: location, component: component}
}

// ParseOpenAPI loads an OpenAPI 3 document (JSON or YAML) and derives a
// definition from the component schema named component:
//
//   - objects become structs, their required list marks required children
//   - arrays become lists, minItems/maxItems bound the child count
//   - arrays whose items are a oneOf become streams, one block type per member
//   - enums become select fields, booleans become checkboxes
func ParseOpenAPI(ctx context.Context, data []byte, location, component string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	src := SourceFromOpenAPI(location, component)
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("schema: document %s is empty", src.Location())
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return Document{}, fmt.Errorf("schema: load openapi %s: %w", location, err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return Document{}, fmt.Errorf("%w: openapi %s has no component schemas", ErrInvalidSpec, location)
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return Document{}, fmt.Errorf("%w: openapi %s has no component %q (have %s)",
			ErrInvalidSpec, location, component, strings.Join(componentNames(doc.Components.Schemas), ", "))
	}

	conv := openAPIConverter{visiting: make(map[*openapi3.Schema]bool)}
	spec, err := conv.convert(snakeName(component), ref.Value, false)
	if err != nil {
		return Document{}, fmt.Errorf("schema: openapi %s: %w", src.Location(), err)
	}
	return Document{source: src, raw: append([]byte(nil), data...), spec: spec}, nil
}

// LoadOpenAPI reads path from fsys and derives the definition rooted at
// component.
func LoadOpenAPI(ctx context.Context, fsys fs.FS, path, component string) (Document, error) {
	if fsys == nil {
		return Document{}, errors.New("schema: filesystem is required")
	}
	if !IsDefinitionFile(path) {
		return Document{}, fmt.Errorf("schema: %s is not a .json, .yaml or .yml file", path)
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return Document{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return ParseOpenAPI(ctx, data, path, component)
}

type openAPIConverter struct {
	visiting map[*openapi3.Schema]bool
}

func (c openAPIConverter) convert(name string, schema *openapi3.Schema, required bool) (Spec, error) {
	if c.visiting[schema] {
		return Spec{}, fmt.Errorf("%w: %q is recursive", ErrInvalidSpec, name)
	}
	c.visiting[schema] = true
	defer delete(c.visiting, schema)

	spec := Spec{
		Name:     name,
		Label:    schema.Title,
		HelpText: schema.Description,
		Required: required,
		Default:  schema.Default,
	}
	ext := extensionMap(schema.Extensions)
	if icon, ok := ext["icon"].(string); ok {
		spec.Icon = icon
	}

	switch {
	case schema.Type.Is(openapi3.TypeArray) || schema.Items != nil:
		return c.convertArray(spec, schema)
	case schema.Type.Is(openapi3.TypeObject) || len(schema.Properties) > 0:
		spec.Type = TypeStruct
		children, err := c.convertProperties(schema, "")
		if err != nil {
			return Spec{}, err
		}
		spec.Children = children
		return spec, nil
	}

	spec.Type = TypeField
	spec.ValueType = firstType(schema.Type)
	spec.Format = schema.Format
	if widget, ok := ext["widget"].(string); ok {
		spec.Widget = widget
	}
	if schema.MaxLength != nil && *schema.MaxLength > 255 {
		spec.Multiline = true
	}
	for _, value := range schema.Enum {
		text := fmt.Sprint(value)
		spec.Choices = append(spec.Choices, widgets.Choice{Value: text, Label: text})
	}
	return spec, nil
}

func (c openAPIConverter) convertArray(spec Spec, schema *openapi3.Schema) (Spec, error) {
	spec.MinNum = int(schema.MinItems)
	if schema.MaxItems != nil {
		spec.MaxNum = int(*schema.MaxItems)
	}
	if schema.Items == nil || schema.Items.Value == nil {
		return Spec{}, fmt.Errorf("%w: array %q has no items", ErrInvalidSpec, spec.Name)
	}
	items := schema.Items.Value

	if len(items.OneOf) == 0 {
		child, err := c.convert("item", items, false)
		if err != nil {
			return Spec{}, err
		}
		spec.Type = TypeList
		spec.Child = &child
		return spec, nil
	}

	discriminator := ""
	if items.Discriminator != nil {
		discriminator = items.Discriminator.PropertyName
	}
	spec.Type = TypeStream
	for i, member := range items.OneOf {
		if member == nil || member.Value == nil {
			continue
		}
		block, err := c.convertMember(member, discriminator, i)
		if err != nil {
			return Spec{}, err
		}
		spec.Children = append(spec.Children, block)
	}
	return spec, nil
}

// convertMember turns one oneOf alternative into a stream block type. The
// discriminator property names the block and is not rendered as a child.
func (c openAPIConverter) convertMember(ref *openapi3.SchemaRef, discriminator string, index int) (Spec, error) {
	schema := ref.Value
	name := memberName(ref, discriminator, index)
	if len(schema.Properties) == 0 {
		return c.convert(name, schema, false)
	}
	if value := wrappedValue(schema, discriminator); value != nil {
		spec, err := c.convert(name, value, false)
		if err != nil {
			return Spec{}, err
		}
		if spec.Label == "" {
			spec.Label = schema.Title
		}
		return spec, nil
	}

	if c.visiting[schema] {
		return Spec{}, fmt.Errorf("%w: %q is recursive", ErrInvalidSpec, name)
	}
	c.visiting[schema] = true
	defer delete(c.visiting, schema)

	children, err := c.convertProperties(schema, discriminator)
	if err != nil {
		return Spec{}, err
	}
	return Spec{
		Name:     name,
		Type:     TypeStruct,
		Label:    schema.Title,
		HelpText: schema.Description,
		Children: children,
	}, nil
}

// wrappedValue returns the value schema of a {discriminator, value} pair,
// the shape stream items take on the wire.
func wrappedValue(schema *openapi3.Schema, discriminator string) *openapi3.Schema {
	if discriminator == "" || len(schema.Properties) != 2 || schema.Properties[discriminator] == nil {
		return nil
	}
	if ref := schema.Properties["value"]; ref != nil {
		return ref.Value
	}
	return nil
}

func (c openAPIConverter) convertProperties(schema *openapi3.Schema, skip string) ([]Spec, error) {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}
	names := propertyOrder(schema.Properties)
	children := make([]Spec, 0, len(names))
	for _, name := range names {
		if name == skip {
			continue
		}
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		child, err := c.convert(name, ref.Value, required[name])
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

// propertyOrder sorts property names by their x-streamfield order, then by
// name. OpenAPI property maps carry no order of their own.
func propertyOrder(props openapi3.Schemas) []string {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	order := func(name string) float64 {
		ref := props[name]
		if ref == nil || ref.Value == nil {
			return 0
		}
		switch v := extensionMap(ref.Value.Extensions)["order"].(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
		return 0
	}
	sort.SliceStable(names, func(i, j int) bool {
		oi, oj := order(names[i]), order(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

func memberName(ref *openapi3.SchemaRef, discriminator string, index int) string {
	schema := ref.Value
	if discriminator != "" {
		if prop := schema.Properties[discriminator]; prop != nil && prop.Value != nil && len(prop.Value.Enum) == 1 {
			if value, ok := prop.Value.Enum[0].(string); ok && value != "" {
				return value
			}
		}
	}
	if ref.Ref != "" {
		return snakeName(ref.Ref[strings.LastIndex(ref.Ref, "/")+1:])
	}
	if schema.Title != "" {
		return snakeName(schema.Title)
	}
	return fmt.Sprintf("block%d", index+1)
}

func extensionMap(extensions map[string]any) map[string]any {
	if raw, ok := extensions[openAPIExtension].(map[string]any); ok {
		return raw
	}
	return nil
}

func firstType(types *openapi3.Types) string {
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func componentNames(schemas openapi3.Schemas) []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// snakeName lowers a component name such as "HeadingBlock" or "HTMLBlock" to
// "heading_block" or "htmlblock".
func snakeName(name string) string {
	var b strings.Builder
	var prev rune
	for _, r := range name {
		switch {
		case r == ' ' || r == '-':
			r = '_'
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9') {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}
