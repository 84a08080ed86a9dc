// Package html renders a block surface as HTML markup through embedded pongo2
// templates. The surface is flattened into one token per line first, so the
// templates stay free of recursion.
package html
