// Package command defines the ecigate-cli commands on urfave/cli/v2.
//
//	ecigate-cli [global flags] exec PROGRAM [--data TEXT | --data-hex HEX | --data-file PATH]
//	ecigate-cli [global flags] ping
//	ecigate-cli [global flags] bench PROGRAM --count N --concurrency C
//	ecigate-cli [global flags] shell
//	ecigate-cli [global flags] config show|init|validate
//	ecigate-cli version
//
// Global flags override ECIGATE_* environment variables, which override
// the configuration file.
package command
