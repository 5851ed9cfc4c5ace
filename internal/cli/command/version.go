package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecigate-go/internal/cli/output"
	"github.com/yndnr/ecigate-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			format := outputFormat(c)
			if format == output.FormatHex || format == output.FormatRaw {
				format = output.FormatTable
			}
			return output.NewFormatter(format).Format(stdout(c), buildinfo.Get())
		},
	}
}
