// Package validation turns server-side error payloads into the recursive
// blocks.ErrorList shape that block trees accept in SetError.
//
// Two payload styles are supported: the nested JSON form
// {"messages", "non_block_errors", "block_errors"} via Decode, and flat maps
// keyed by dotted or JSON pointer paths via MapPayload. Both walk either a
// definition or a live block to decide which error variant each level gets.
package validation
