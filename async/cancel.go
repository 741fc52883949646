package async

import "errors"

// ErrAborted is reported through the normal completion path by
// operations that observe a terminal cancellation before finishing.
var ErrAborted = errors.New("operation aborted")

// CancelKind is the cancellation signal associated with an in-flight
// operation. Kinds only escalate: once Terminal has been observed the
// operation must not initiate further suspending sub-operations and may
// only unwind to completion.
type CancelKind int32

const (
	// CancelNone means the operation proceeds normally.
	CancelNone CancelKind = iota
	// CancelPartial asks for a graceful, in-place wind-down.
	CancelPartial
	// CancelTerminal demands the operation abort as soon as the result
	// of its current suspension point is known.
	CancelTerminal
)

func (k CancelKind) String() string {
	switch k {
	case CancelNone:
		return "none"
	case CancelPartial:
		return "partial"
	case CancelTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}
