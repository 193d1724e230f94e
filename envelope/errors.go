package envelope

import "errors"

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind rather than matching error strings; Error()
// text is for humans and may evolve.
type Kind string

const (
	// KindSeed: unresolvable seed identifier.
	KindSeed Kind = "Seed"
	// KindFormat: malformed binary or JSON envelope (bad magic, truncated
	// buffer, invalid field encoding).
	KindFormat Kind = "Format"
	// KindMode: unrecognized or unusable envelope mode.
	KindMode Kind = "Mode"
	// KindChecksum: reconstructed bytes do not match the stored checksum.
	KindChecksum Kind = "Checksum"
	// KindDelta: corrupt, truncated, or wrong-size delta payload.
	KindDelta Kind = "Delta"
	// KindCatalog: catalog lookup miss or misuse.
	KindCatalog Kind = "Catalog"
)

// Error is the structured error type shared by the envelope, codec, and
// catalog layers.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError constructs a structured error with no cause.
func NewError(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// WrapError constructs a structured error wrapping a cause.
func WrapError(kind Kind, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, msg)
	}
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
