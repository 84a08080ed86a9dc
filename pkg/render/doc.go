// Package render defines the Renderer contract for serializing a block
// surface and a Registry for looking renderers up by name.
package render
