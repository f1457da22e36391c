// Package errors gives pipeline failures a machine-readable [Code].
//
// Engine packages return plain sentinel errors. The pipeline classifies
// them into codes once, and each surface maps codes to its own vocabulary:
// the server to HTTP statuses, the CLI to exit statuses.
//
//	err := errors.New(errors.ErrCodeEmptyInput, "no sequences given")
//	err = errors.Wrap(errors.ErrCodeCyclicGraph, dagErr, "chain edges rejected")
//	if errors.GetCode(err).Caller() {
//	    // the request, not the engine, is at fault
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error category.
type Code string

// Error codes.
const (
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInvalidConfig        Code = "INVALID_CONFIG"
	ErrCodeInvalidNodeReference Code = "INVALID_NODE_REFERENCE"
	ErrCodeEmptyInput           Code = "EMPTY_INPUT"
	ErrCodeInputTooLarge        Code = "INPUT_TOO_LARGE"
	ErrCodeCyclicGraph          Code = "CYCLIC_GRAPH"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Caller reports whether c blames the caller's input or configuration
// rather than the engine.
func (c Code) Caller() bool {
	switch c {
	case ErrCodeInvalidInput, ErrCodeInvalidConfig, ErrCodeInvalidNodeReference,
		ErrCodeEmptyInput, ErrCodeInputTooLarge, ErrCodeCyclicGraph:
		return true
	}
	return false
}

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by error types that carry their own code.
type coder interface{ Code() Code }

// Is reports whether the first code found in err's chain is code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error or coder in err's
// chain, or "" if there is none.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns the message of the outermost *Error, without the
// code prefix or cause, or err.Error() if there is none.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// LimitError reports an input that exceeds a configured bound. Its code is
// always [ErrCodeInputTooLarge].
type LimitError struct {
	What  string // "sequence count" or "sequence length"
	Limit int
	Got   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s %d exceeds limit %d", e.What, e.Got, e.Limit)
}

// Code implements coder.
func (e *LimitError) Code() Code { return ErrCodeInputTooLarge }
