// Package form reads and writes the submission side of a block tree: it
// collects name/value pairs from a rendered surface, manages extra hidden
// fields, and decodes the prefix-count / prefix-i-{id,type,deleted,order}
// sequence fields back into ordered entries and block state.
package form
