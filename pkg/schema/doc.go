// Package schema loads block definitions from JSON or YAML documents.
//
// A document is a tree of Spec nodes. Each node's type selects a Factory from
// a Registry that the caller injects into a Builder, so applications can add
// their own block types (or rebind the built-in field, struct, list and
// stream types) without touching package state.
package schema
