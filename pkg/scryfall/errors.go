package scryfall

import (
	"fmt"
	"strings"
)

// ErrorKind classifies failures surfaced by the client.
type ErrorKind string

const (
	KindTransport             ErrorKind = "transport"
	KindTypeMismatch          ErrorKind = "type_mismatch"
	KindInvalidPayload        ErrorKind = "invalid_payload"
	KindNoMorePages           ErrorKind = "no_more_pages"
	KindMissingArgument       ErrorKind = "missing_argument"
	KindUnrecognizedFormat    ErrorKind = "unrecognized_format"
	KindUnrecognizedImageType ErrorKind = "unrecognized_image_type"
	KindImageNotFound         ErrorKind = "image_not_found"
)

// Error is the error descriptor returned by every operation in this package.
// Status is only set for transport failures that reached the API.
type Error struct {
	Kind     ErrorKind
	Message  string
	Status   int
	Code     string
	Details  map[string]any
	Warnings []string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that the
// exported sentinels can be used with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is checks.
var (
	ErrTransport             = &Error{Kind: KindTransport, Message: "request failed"}
	ErrTypeMismatch          = &Error{Kind: KindTypeMismatch, Message: "unexpected object type"}
	ErrInvalidPayload        = &Error{Kind: KindInvalidPayload, Message: "invalid payload"}
	ErrNoMorePages           = &Error{Kind: KindNoMorePages, Message: "No additional pages."}
	ErrMissingArgument       = &Error{Kind: KindMissingArgument, Message: "missing argument"}
	ErrUnrecognizedFormat    = &Error{Kind: KindUnrecognizedFormat, Message: "unrecognized format"}
	ErrUnrecognizedImageType = &Error{Kind: KindUnrecognizedImageType, Message: "unrecognized image type"}
	ErrImageNotFound         = &Error{Kind: KindImageNotFound, Message: "image not found"}
)

func typeMismatch(want, got string) *Error {
	return &Error{
		Kind:    KindTypeMismatch,
		Message: fmt.Sprintf("Object type must be %q", want),
		Details: map[string]any{"expected": want, "actual": got},
	}
}

func invalidPayload(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidPayload, Message: fmt.Sprintf(format, args...)}
}

func noMorePages() *Error {
	return &Error{Kind: KindNoMorePages, Message: ErrNoMorePages.Message}
}

func missingFormat() *Error {
	return &Error{
		Kind:    KindMissingArgument,
		Message: "Must provide format for checking legality. Use one of " + backtickList(Formats) + ".",
	}
}

func unrecognizedFormat(format string) *Error {
	return &Error{
		Kind:    KindUnrecognizedFormat,
		Message: fmt.Sprintf("Format %q is not recognized. Use one of %s.", format, backtickList(Formats)),
		Details: map[string]any{"format": format},
	}
}

func unrecognizedImageType(kind string) *Error {
	return &Error{
		Kind:    KindUnrecognizedImageType,
		Message: fmt.Sprintf("`%s` is not a valid type. Must be one of %s.", kind, backtickList(ImageTypes)),
		Details: map[string]any{"type": kind},
	}
}

func imageNotFound(msg string) *Error {
	return &Error{Kind: KindImageNotFound, Message: msg}
}

// backtickList renders values as "`a`, `b`, `c`".
func backtickList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "`" + v + "`"
	}
	return strings.Join(quoted, ", ")
}
