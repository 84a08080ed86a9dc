// Package blocks is the block tree editor: immutable definitions (field,
// struct, list, stream) render into a surface and produce live blocks that
// keep the in-memory tree, the rendered nodes and the hidden submission
// fields in step. Lists and streams wrap each item in a SequenceChild that
// owns its index, identity and soft-delete flag; containers publish
// add/duplicate/split/delete availability through a CapabilityRegistry shared
// by reference with every child. Validation errors arrive as a recursive
// FieldError/StructError/SequenceError shape and are projected onto the tree
// with SetError.
//
// All mutations run to completion on the calling goroutine; a tree is not
// safe for concurrent mutation.
package blocks
