// Package merrors defines the tagged error kinds used throughout the
// mission pipeline so callers can branch on failure class with
// errors.Is/errors.As instead of matching strings.
package merrors

import "fmt"

// Kind identifies one of the error classes from the error handling design.
type Kind string

const (
	// ConfigurationRequired is raised when a required model name, API key,
	// or provider is missing at first access.
	ConfigurationRequired Kind = "configuration_required"
	// TransientProvider covers rate limits and network hiccups; retriable.
	TransientProvider Kind = "transient_provider"
	// AuthenticationFailed is non-retriable and surfaces to the user.
	AuthenticationFailed Kind = "authentication_failed"
	// ToolInputInvalid is a schema violation on a tool call's arguments.
	ToolInputInvalid Kind = "tool_input_invalid"
	// ParseFailure is raised when an LLM returned non-JSON where JSON was
	// required and no targeted extraction succeeded.
	ParseFailure Kind = "parse_failure"
	// OutlineInvalid marks an outline the validator could not fix.
	OutlineInvalid Kind = "outline_invalid"
	// StorageUnavailable marks a vector-store health-check failure.
	StorageUnavailable Kind = "storage_unavailable"
	// Cancelled marks cooperative cancellation; usually not surfaced.
	Cancelled Kind = "cancelled"
)

// Error wraps an underlying cause with a Kind and a short message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, merrors.New(kind, "")) match on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// New constructs an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// OfKind reports whether err (or something it wraps) is a *Error of kind.
func OfKind(err error, kind Kind) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else if err == nil {
		return false
	} else if u, ok := err.(interface{ Unwrap() error }); ok {
		return OfKind(u.Unwrap(), kind)
	} else {
		return false
	}
	return e.Kind == kind
}
