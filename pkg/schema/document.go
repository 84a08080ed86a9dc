package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-streamfield/pkg/blocks"
)

// Document is a parsed definition file together with its origin.
type Document struct {
	source Source
	raw    []byte
	spec   Spec
}

// Parse decodes a JSON or YAML definition document. JSON is tried first.
func Parse(data []byte, src Source) (Document, error) {
	if src == nil {
		return Document{}, errors.New("schema: source is required")
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return Document{}, fmt.Errorf("schema: document %s is empty", src.Location())
	}

	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		spec = Spec{}
		if yerr := yaml.Unmarshal(data, &spec); yerr != nil {
			return Document{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", src.Location(), yerr)
		}
	}
	return Document{source: src, raw: append([]byte(nil), data...), spec: spec}, nil
}

// MustParse panics if the document cannot be parsed. Useful for tests.
func MustParse(data []byte, src Source) Document {
	doc, err := Parse(data, src)
	if err != nil {
		panic(err)
	}
	return doc
}

// LoadFS reads and parses path from fsys.
func LoadFS(fsys fs.FS, path string) (Document, error) {
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
	return Parse(data, SourceFromFS(path))
}

// IsDefinitionFile reports whether path has a supported extension.
func IsDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Source returns the origin metadata for the document.
func (d Document) Source() Source { return d.source }

// Location returns the string identifier for the origin.
func (d Document) Location() string {
	if d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Raw returns a copy of the payload.
func (d Document) Raw() []byte { return append([]byte(nil), d.raw...) }

// Spec returns the root spec node.
func (d Document) Spec() Spec { return d.spec }

// Build constructs the root definition with b.
func (d Document) Build(b *Builder) (blocks.Definition, error) {
	if b == nil {
		b = NewBuilder(nil)
	}
	def, err := b.Build(d.spec)
	if err != nil {
		return nil, fmt.Errorf("schema: %s: %w", d.Location(), err)
	}
	return def, nil
}
