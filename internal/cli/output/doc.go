// Package output renders ecigate-cli results.
//
// Structured results (responses, ping reports, configs) go through a
// Formatter chosen by --output: table, json or yaml. Commarea payloads can
// also be written as a hex dump or as raw bytes. Spinner and ProgressBar
// draw on stderr while calls are running.
package output
