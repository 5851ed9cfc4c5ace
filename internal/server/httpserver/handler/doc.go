// Package handler provides the HTTP handlers of the ECIGate admin API.
//
// Endpoints:
//
//   - GET /health, GET /ready
//   - GET /admin/v1/status
//   - GET /admin/v1/journal, GET /admin/v1/journal/{id}
//
// Every JSON body uses the Response envelope.
package handler
