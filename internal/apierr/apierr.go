// Package apierr defines the closed set of error kinds every tool operation
// and internal component reports through, and the *Error type that carries
// one kind plus a human message and optional structured details.
package apierr

import "fmt"

// Kind is a closed sum type naming why an operation failed. Callers branch
// on Kind, never on Message text.
type Kind string

const (
	InvalidArgument Kind = "InvalidArgument"
	TenantNotFound  Kind = "TenantNotFound"
	TenantNotReady  Kind = "TenantNotReady"
	NotFound        Kind = "NotFound"
	NotSupported    Kind = "NotSupported"
	IndexMissing    Kind = "IndexMissing"
	IndexCorrupt    Kind = "IndexCorrupt"
	FetchFailed     Kind = "FetchFailed"
	SyncFailed      Kind = "SyncFailed"
	Throttled       Kind = "Throttled"
	Cancelled       Kind = "Cancelled"
)

// Error is the error type every exported operation in this module returns
// for expected, classifiable failures. Unexpected failures are wrapped with
// fmt.Errorf("%w", ...) the way the rest of this codebase wraps errors, not
// forced into an apierr.Kind.
type Error struct {
	Kind    Kind
	Message string
	// Details carries operation-specific context, e.g. the list of known
	// codenames for a TenantNotFound error.
	Details map[string]any
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New constructs an *Error with no details.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an *Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails returns a copy of e with Details set.
func (e *Error) WithDetails(details map[string]any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// As reports whether err (or something it wraps) is an *Error, and if so
// returns it. This is a small convenience over errors.As so callers at the
// transport boundary don't need to import "errors" just to unwrap a Kind.
func As(err error) (*Error, bool) {
	var target *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return target, false
}

// KindOf returns the Kind of err if it is (or wraps) an *Error, or "" if
// not.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}
