package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNotEditable is returned when a path does not address a field whose
	// widget accepts input.
	ErrNotEditable = errors.New("tui: block is not an editable field")
	// ErrWrongKind is returned when an action targets a block of the wrong
	// kind, e.g. appending to a stream.
	ErrWrongKind = errors.New("tui: action does not apply to block")
)

// promptError marks failures of the driver itself; they end the session
// instead of being reported and retried.
type promptError struct {
	err error
}

func (e *promptError) Error() string { return e.err.Error() }
func (e *promptError) Unwrap() error { return e.err }
