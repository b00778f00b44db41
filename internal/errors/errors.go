package errors

import "fmt"

// Category represents the type of error.
type Category string

const (
	CategoryRuntime  Category = "runtime"
	CategoryTeardown Category = "teardown"
	CategoryHost     Category = "host"
	CategoryConfig   Category = "config"
)

// WeftError is a structured error with a stable code, a suggestion and a
// documentation link. Codes let callers and tests match on error identity
// without string comparison.
type WeftError struct {
	// Code is a unique error identifier (e.g., "W001").
	Code string

	// Category is the error type (runtime, teardown, host, config).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation, filled from the code registry.
	Detail string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *WeftError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is / errors.As.
func (e *WeftError) Unwrap() error {
	return e.Wrapped
}

// Is matches two WeftErrors by code, so sentinel instances created with
// New can be compared against wrapped occurrences.
func (e *WeftError) Is(target error) bool {
	t, ok := target.(*WeftError)
	if !ok {
		return false
	}
	return t.Code != "" && t.Code == e.Code
}

// New creates an error from a registered code. Unknown codes still produce
// a usable error with the message alone.
func New(code string, message string) *WeftError {
	e := &WeftError{Code: code, Message: message}
	if tmpl, ok := registry[code]; ok {
		e.Category = tmpl.Category
		if message == "" {
			e.Message = tmpl.Message
		}
		e.Detail = tmpl.Detail
		e.Suggestion = tmpl.Suggestion
		e.DocURL = tmpl.DocURL
	}
	return e
}

// Newf creates an error from a registered code with a formatted message.
func Newf(code string, format string, args ...any) *WeftError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates a coded error wrapping an underlying one.
func Wrap(code string, message string, err error) *WeftError {
	e := New(code, message)
	e.Wrapped = err
	return e
}
