// Package domainerrors defines the fatal error taxonomy of a landscape run.
//
// Every fatal failure carries a Code so the CLI can pick an exit status and
// the operator gets a message with enough context (identifier, path, HTTP
// status) to diagnose the run without a debugger.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a fatal error.
type Code string

const (
	// CodeConfig covers a bad or missing category map, input file or option.
	CodeConfig Code = "config_error"

	// CodeRegistryUnavailable means the registry could not be reached within
	// the retry budget.
	CodeRegistryUnavailable Code = "registry_unavailable"

	// CodeRegistryResponse means the registry answered with something we do
	// not understand (malformed JSON, unexpected shape, 4xx status).
	CodeRegistryResponse Code = "registry_response_error"

	// CodeInvalidRecord means a fetched record failed validation.
	CodeInvalidRecord Code = "invalid_record"

	// CodeUnmappedProject means the reject policy found projects without a
	// category mapping.
	CodeUnmappedProject Code = "unmapped_project"

	// CodeWrite means the output document could not be persisted.
	CodeWrite Code = "write_error"

	// CodeInternal is the catch-all for programming errors.
	CodeInternal Code = "internal"
)

// Error is a classified domain error.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	for err != nil {
		if !errors.As(err, &de) {
			return false
		}
		if de.Code == code {
			return true
		}
		err = de.Err
	}
	return false
}

// CodeOf returns the outermost code in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
