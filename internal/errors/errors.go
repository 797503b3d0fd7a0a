// Package errors defines the typed error kinds used across the pipeline.
//
// Three kinds cover the failure modes of a batch run:
//
//   - KindExtraction: an image could not be decoded or analyzed. Recovered
//     at the batch level by skipping the image.
//   - KindValidation: the caller supplied malformed input (e.g. an empty
//     record sequence). Aborts the operation.
//   - KindExport: the output document could not be written. Aborts the
//     operation.
//
// Errors created here support errors.Is/errors.As and unwrap to their cause.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes a pipeline error.
type Kind string

const (
	KindExtraction Kind = "extraction"
	KindValidation Kind = "validation"
	KindExport     Kind = "export"
)

// Error is a categorized pipeline error with an optional underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates an extraction-kind error.
func NewExtractionError(message string, cause error) *Error {
	return &Error{Kind: KindExtraction, Message: message, Cause: cause}
}

// NewValidationError creates a validation-kind error.
func NewValidationError(message string, cause error) *Error {
	return &Error{Kind: KindValidation, Message: message, Cause: cause}
}

// NewExportError creates an export-kind error.
func NewExportError(message string, cause error) *Error {
	return &Error{Kind: KindExport, Message: message, Cause: cause}
}

// IsKind reports whether err, or any error it wraps, is a pipeline error
// of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
