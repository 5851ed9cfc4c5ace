// Command ecigate-cli runs CICS programs through an ECI gateway.
//
// Usage:
//
//	ecigate-cli --host gw.example.com --cics-server CICSA --user CICSUSER exec PROG1 --data "input"
//	ecigate-cli -o hex exec PROG1 --data-file request.bin
//	ecigate-cli ping --program ECHO
//	ecigate-cli bench ECHO -n 1000 -C 16
//	ecigate-cli shell
//	ecigate-cli config init
//
// Connection settings come from ~/.ecigate/cli.yaml, ECIGATE_* variables
// and flags. The exit status is 2 for connection failures, 3 for invalid
// requests and 4 for failed calls.
package main
