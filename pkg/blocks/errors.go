package blocks

import "errors"

var (
	// ErrIndexOutOfRange is returned when an index does not address an active
	// child (or a valid insertion point).
	ErrIndexOutOfRange = errors.New("blocks: index out of range")
	// ErrLimitReached is returned when an operation would violate minNum/maxNum
	// or a per-type block count.
	ErrLimitReached = errors.New("blocks: block count limit reached")
	// ErrUnknownBlockType is returned when a stream is asked for a child type
	// it does not declare.
	ErrUnknownBlockType = errors.New("blocks: unknown block type")
	// ErrUnknownChild is returned at construction when a layout references an
	// undeclared child name.
	ErrUnknownChild = errors.New("blocks: unknown child block")
	// ErrDuplicateChild is returned at construction when two children share a
	// name.
	ErrDuplicateChild = errors.New("blocks: duplicate child block")
	// ErrCapabilityDisabled is returned by Capabilities.Invoke when the
	// capability is missing or disabled.
	ErrCapabilityDisabled = errors.New("blocks: capability disabled")
	// ErrMountRequired is returned by Render when no mount point is supplied.
	ErrMountRequired = errors.New("blocks: mount point is required")
)

// MessageRenderFailed is shown on a field whose widget failed to render.
const MessageRenderFailed = "This field failed to render"
