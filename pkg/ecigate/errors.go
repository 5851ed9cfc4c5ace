package ecigate

import "github.com/yndnr/ecigate-go/internal/core/domain"

// Error is the failure type of every client operation. Use errors.As to
// inspect Kind and Code, or errors.Is with the kind sentinels below.
type Error = domain.Error

// ErrorKind classifies an Error.
type ErrorKind = domain.ErrorKind

// Error kinds.
const (
	KindConnection = domain.KindConnection
	KindEncoding   = domain.KindEncoding
	KindExecution  = domain.KindExecution
)

// Kind sentinels for errors.Is.
var (
	ErrConnection = domain.ErrConnection
	ErrEncoding   = domain.ErrEncoding
	ErrExecution  = domain.ErrExecution
)

// Causes wrapped by Errors.
var (
	ErrOperationFailed  = domain.ErrOperationFailed
	ErrRemoteRejected   = domain.ErrRemoteRejected
	ErrShortCommArea    = domain.ErrShortCommArea
	ErrConnectionClosed = domain.ErrConnectionClosed
)

// KindOf returns the kind of err, or "" if err is not an Error.
func KindOf(err error) ErrorKind {
	return domain.KindOf(err)
}

// CodeOf returns the gateway operation code or ECI return code carried by
// err, or 0.
func CodeOf(err error) int {
	return domain.CodeOf(err)
}

// ReturnCodeName returns the symbolic name of an ECI return code, such as
// ECI_ERR_SECURITY_ERROR.
func ReturnCodeName(rc int) string {
	return domain.ReturnCodeName(rc)
}
