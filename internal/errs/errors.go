// Package errs defines the shared error taxonomy for the qforge core.
// Every failure that crosses a package boundary carries a stable code,
// and validation failures carry field-tagged issues so callers can
// drive field-level feedback instead of showing one opaque message.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Code classifies an error for callers.
type Code string

const (
	CodeParse             Code = "PARSE_ERROR"
	CodeUnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeNotFound          Code = "NOT_FOUND"
	CodeExportFailed      Code = "EXPORT_FAILED"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// Issue is one field-tagged validation problem.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Validation is the outcome of validating a mapping or an input shape.
// A partial-but-correctable state is representable here without being
// an error; only a save attempt turns !OK into a rejection.
type Validation struct {
	OK     bool    `json:"ok"`
	Issues []Issue `json:"issues"`
}

// Err is the concrete error type used across the core.
type Err struct {
	Code    Code
	Message string
	Issues  []Issue // populated for CodeValidation
	cause   error
}

func (e *Err) Error() string {
	if len(e.Issues) > 0 {
		parts := make([]string, 0, len(e.Issues))
		for _, is := range e.Issues {
			if is.Field != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", is.Field, is.Message))
			} else {
				parts = append(parts, is.Message)
			}
		}
		return fmt.Sprintf("%s: %s", e.Code, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Err) Unwrap() error { return e.cause }

// New creates an error with the given code and message.
func New(code Code, message string) *Err {
	return &Err{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Err {
	return &Err{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, message string, cause error) *Err {
	return &Err{Code: code, Message: message, cause: cause}
}

// NewValidation creates a validation error from field-tagged issues.
func NewValidation(issues ...Issue) *Err {
	return &Err{Code: CodeValidation, Message: "validation failed", Issues: issues}
}

// CodeOf extracts the taxonomy code from err, or CodeInternal when the
// error did not originate in this core.
func CodeOf(err error) Code {
	var e *Err
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// IssuesOf returns the field-tagged issues attached to err, if any.
func IssuesOf(err error) []Issue {
	var e *Err
	if errors.As(err, &e) {
		return e.Issues
	}
	return nil
}
