// Package widgets provides the leaf inputs used by field blocks and a
// registry that picks one from schema hints. Widgets render into the surface
// package's node tree; ParagraphWidget additionally splits its content into a
// new sibling through the enclosing container's split capability.
package widgets
