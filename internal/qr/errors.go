package qr

import (
	"errors"
	"fmt"
)

// Kind classifies a generation or construction failure.
type Kind string

const (
	// KindInvalidConfig is returned when a generator is built with unusable settings.
	KindInvalidConfig Kind = "INVALID_CONFIG"
	// KindContentTooLarge means the content does not fit any symbol version at the requested level.
	KindContentTooLarge Kind = "CONTENT_TOO_LARGE"
	// KindLogoPreparation is raised only while constructing a generator.
	KindLogoPreparation Kind = "LOGO_PREPARATION_FAILED"
	// KindEncoding marks a buffer or geometry inconsistency during PNG serialization.
	KindEncoding Kind = "ENCODING_FAILED"
)

// Reason narrows down why a logo could not be prepared.
type Reason string

const (
	ReasonIO                Reason = "io"
	ReasonParse             Reason = "parse"
	ReasonUnsupportedFormat Reason = "unsupported_format"
)

// Error is the single error type returned by this package.
type Error struct {
	Kind    Kind
	Reason  Reason // set only for KindLogoPreparation
	Message string
	Cause   error
}

func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Reason != "" {
		prefix += "(" + string(e.Reason) + ")"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func logoError(reason Reason, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    KindLogoPreparation,
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ReasonOf extracts the logo preparation reason, or "" if err has none.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}
