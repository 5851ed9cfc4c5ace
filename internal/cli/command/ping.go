package command

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecigate-go/internal/cli/output"
	"github.com/yndnr/ecigate-go/pkg/ecigate"
)

// PingReport describes a connection check.
type PingReport struct {
	URL         string `json:"url" yaml:"url"`
	CICSServer  string `json:"cics_server" yaml:"cics_server"`
	TLS         bool   `json:"tls" yaml:"tls"`
	ConnectTime string `json:"connect_time" yaml:"connect_time"`
	Program     string `json:"program,omitempty" yaml:"program,omitempty"`
	CallTime    string `json:"call_time,omitempty" yaml:"call_time,omitempty"`
}

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Open a gateway connection and report how long it took",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "program", Usage: "also run this program with an empty commarea"},
		},
		Action: pingAction,
	}
}

func pingAction(c *cli.Context) error {
	start := time.Now()
	client, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	cfg := client.Config()
	report := PingReport{
		URL:         client.URL(),
		CICSServer:  cfg.ServerName,
		TLS:         cfg.TLS != nil,
		ConnectTime: time.Since(start).Round(time.Microsecond).String(),
	}

	if program := c.String("program"); program != "" {
		callStart := time.Now()
		_, err := client.Execute(c.Context, ecigate.RequestSpec{
			ProgramName:  program,
			CommAreaSize: ecigate.IntPtr(0),
		})
		if err != nil {
			return err
		}
		report.Program = program
		report.CallTime = time.Since(callStart).Round(time.Microsecond).String()
	}

	format := outputFormat(c)
	if format == output.FormatHex || format == output.FormatRaw {
		format = output.FormatTable
	}
	return output.NewFormatter(format).Format(stdout(c), report)
}
