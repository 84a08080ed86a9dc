// Package tui edits a mounted block tree from the terminal. A Session prints
// an outline addressed by dotted paths and applies edit, add, move,
// duplicate, delete and split actions through a PromptDriver; the default
// driver is backed by survey.
package tui
