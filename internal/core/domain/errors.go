// Package domain defines the core domain models for ECIGate.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure surfaced to callers.
type ErrorKind string

// Error kinds.
const (
	// KindConnection indicates the transport could not be opened or closed.
	KindConnection ErrorKind = "ConnectionError"
	// KindEncoding indicates a malformed request spec.
	KindEncoding ErrorKind = "EncodingError"
	// KindExecution indicates an operation-code failure, a remote rejection,
	// or a wrapped transport failure while running a request.
	KindExecution ErrorKind = "ExecutionError"
)

// Error is the single tagged failure value returned by ECIGate operations.
//
// Code carries the gateway operation code or the ECI return code when the
// failure came from the gateway; it is zero otherwise.
type Error struct {
	Kind    ErrorKind
	Message string
	Code    int
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind. A target with a
// non-zero Code additionally requires an equal code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == 0 || t.Code == e.Code
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Kind:    e.Kind,
		Message: e.Message,
		Code:    e.Code,
		Cause:   cause,
	}
}

// Kind sentinels for errors.Is comparisons.
var (
	ErrConnection = &Error{Kind: KindConnection}
	ErrEncoding   = &Error{Kind: KindEncoding}
	ErrExecution  = &Error{Kind: KindExecution}
)

// Reasons carried as the cause of execution errors.
var (
	// ErrOperationFailed indicates the gateway returned a non-zero operation code.
	ErrOperationFailed = errors.New("operation failed")

	// ErrRemoteRejected indicates the CICS server returned an error return code.
	ErrRemoteRejected = errors.New("remote rejected")

	// ErrShortCommArea indicates the gateway reported more COMMAREA bytes than it sent.
	ErrShortCommArea = errors.New("commarea shorter than reported length")

	// ErrConnectionClosed indicates a request was attempted on a closed connection.
	ErrConnectionClosed = errors.New("gateway connection is closed")
)

// NewConnectionError creates a ConnectionError.
func NewConnectionError(message string, cause error) *Error {
	return &Error{Kind: KindConnection, Message: message, Cause: cause}
}

// NewEncodingError creates an EncodingError.
func NewEncodingError(message string) *Error {
	return &Error{Kind: KindEncoding, Message: message}
}

// NewExecutionError creates an ExecutionError.
func NewExecutionError(message string, code int, cause error) *Error {
	return &Error{Kind: KindExecution, Message: message, Code: code, Cause: cause}
}

// OperationFailed builds the error for a non-zero gateway operation code.
func OperationFailed(code int) *Error {
	return NewExecutionError(
		fmt.Sprintf("Error occurred while executing the operation, response code: %d", code),
		code, ErrOperationFailed)
}

// RemoteRejected builds the error for a CICS error return code.
func RemoteRejected(code int) *Error {
	return NewExecutionError(
		fmt.Sprintf("Received error response from CICS server, response code: %d (%s)", code, ReturnCodeName(code)),
		code, ErrRemoteRejected)
}

// ExecutionFailed wraps an unexpected failure raised while running a request.
func ExecutionFailed(cause error) *Error {
	return NewExecutionError(
		fmt.Sprintf("Error occurred while executing the operation: %v", cause),
		0, cause)
}

// KindOf extracts the error kind, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// CodeOf extracts the gateway/ECI code from an error, or 0.
func CodeOf(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return 0
}
