// Package service provides the execution engine for ECIGate.
//
// The Executor takes an encoded request and an open Transport, runs the
// call on a shared worker Pool, and resolves a Future with the outcome:
//
//   - transport failure: ExecutionError wrapping the cause
//   - non-zero operation code: ExecutionError, code = operation code
//   - ECI error return code: ExecutionError, code = return code
//   - zero-length COMMAREA: empty success
//   - otherwise: success carrying a copy of the returned COMMAREA
//
// Every Future is resolved exactly once.
package service
