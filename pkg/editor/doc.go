// Package editor is the entry point for embedding a block tree: it loads or
// accepts a definition, mounts it with state and errors, and exposes the
// submission, error projection, path lookup and rendering of the mounted
// document.
package editor
