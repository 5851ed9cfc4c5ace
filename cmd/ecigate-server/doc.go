// Command ecigate-server is an ECI gateway daemon.
//
// It accepts ecigate wire protocol sessions, authenticates each program
// call against its user table and runs the call against a registry of
// built-in programs (ECHO, UPPER, EMPTY, ABEND, SLEEP, TIME). It is meant
// as a test double for CICS and as a reference implementation of the
// daemon side of the protocol.
//
// When server.metrics_addr is set it also serves /metrics, /health, /ready
// and the admin API (/admin/v1/status, /admin/v1/journal).
//
// Usage:
//
//	ecigate-server -config /etc/ecigate/server.yaml
//	ecigate-server -config server.yaml -journal-tail 20
//	ecigate-server -version
//
// Every setting can be overridden with ECIGATE_ variables, for example
// ECIGATE_SERVER__ADDR=0.0.0.0:2006.
package main
