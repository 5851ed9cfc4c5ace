// Package domain defines the core domain models for ECIGate.
//
// This package contains the value types shared by every layer:
//
//   - config.go: ConnectionConfig, Credentials, TLSConfig
//   - request.go: RequestSpec, the Encode operation and COMMAREA sizing
//   - codes.go: ECI call constants and return codes
//   - errors.go: tagged Error values (ConnectionError, EncodingError, ExecutionError)
//
// Domain types perform no I/O.
package domain
