// Package repl implements the interactive shell of ecigate-cli.
//
// The shell keeps one gateway connection open and runs a program per
// line:
//
//	ecigate> ECHO hello
//	ecigate> :hex SLEEP 250
//	ecigate> :history
//	ecigate> exit
//
// Lines are recorded in ~/.ecigate/history.
package repl
