// Package pongo implements template.TemplateRenderer on top of a pongo2
// template set loaded from an fs.FS.
package pongo
