// Package logger provides structured logging for ECIGate.
//
//   - logger.go: slog based Logger with JSON and text output and a
//     process wide level that can be changed at runtime
//   - context.go: request IDs carried on a context.Context
//   - redact.go: masking of passwords, private keys and user IDs
//
// Components that only need a *slog.Logger take one directly; Slog and
// SetDefault bridge the two.
package logger
