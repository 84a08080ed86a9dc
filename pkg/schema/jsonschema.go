package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema describes the definition document format. Spec is recursive, so
// nested nodes are emitted as references into $defs.
func JSONSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{}
	s := r.Reflect(new(Spec))
	s.Title = "Block definition"
	s.Description = "A block tree definition: fields, structs, lists and streams."
	return s
}

// JSONSchemaBytes returns JSONSchema() indented for output.
func JSONSchemaBytes() ([]byte, error) {
	return json.MarshalIndent(JSONSchema(), "", "  ")
}
