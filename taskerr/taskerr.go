// Package taskerr carries the stable error codes reported to task callers.
// All failures inside a task are classified into one of these codes at the
// point the failure is detected; callers check with errors.As or CodeOf.
package taskerr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class in task responses.
type Code string

const (
	CodeValidation         Code = "ValidationError"
	CodeInsufficientCycles Code = "InsufficientCyclesError"
	CodeInvalidCycle       Code = "InvalidCycleError"
	CodeMissingCycleSource Code = "MissingCycleSourceError"
	CodeProbe              Code = "ProbeError"
	CodeExport             Code = "ExportError"
	CodePayloadTooLarge    Code = "PayloadTooLargeError"
	CodeStorage            Code = "StorageError"
	CodeInternal           Code = "InternalError"
)

// Error is a classified task failure. Message is safe to return to the
// caller; Err keeps the full chain (including subprocess diagnostics) for
// logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a formatted message.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error, keeping it on the chain.
func Wrap(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf returns the code of the outermost classified error in the chain,
// or CodeInternal when the error was never classified.
func CodeOf(err error) Code {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-facing message for err. Unclassified errors
// expose their full text; they were produced by our own code, not by user
// input.
func MessageOf(err error) string {
	var te *Error
	if errors.As(err, &te) {
		if te.Err != nil {
			return fmt.Sprintf("%s: %v", te.Message, te.Err)
		}
		return te.Message
	}
	return err.Error()
}

// HTTPStatus maps an error code onto a response status. Request and
// planning precondition failures are the caller's fault; subprocess and
// storage failures are ours.
func HTTPStatus(code Code) int {
	switch code {
	case CodeValidation, CodeInsufficientCycles, CodeInvalidCycle, CodeMissingCycleSource:
		return http.StatusBadRequest
	case CodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeStorage:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
