// Package gatewayserver implements ecigate-server, a development gateway
// daemon that speaks the ECIGate wire protocol.
//
// The daemon authenticates each flow against its user table, checks the
// target CICS server name, applies a per-user rate limit and runs the
// requested program from an in-process Registry under the ECI timeout.
// Outcomes are reported with ECI return codes:
//
//	unknown server            operation code ECI_ERR_UNKNOWN_SERVER
//	rate limited              operation code ECI_ERR_RESOURCE_SHORTAGE
//	bad call envelope         operation code ECI_ERR_INVALID_*
//	bad user or password      return code ECI_ERR_SECURITY_ERROR
//	unknown program or abend  return code ECI_ERR_TRANSACTION_ABEND
//	timeout                   return code ECI_ERR_RESPONSE_TIMEOUT
//
// Served flows can be recorded in a journal.
package gatewayserver
