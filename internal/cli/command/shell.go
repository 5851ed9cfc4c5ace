package command

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecigate-go/internal/cli/output"
	"github.com/yndnr/ecigate-go/internal/cli/repl"
	"github.com/yndnr/ecigate-go/pkg/ecigate"
)

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run programs interactively over one connection",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history", Value: repl.DefaultHistoryPath(), Usage: "history file, empty to disable"},
			&cli.StringSliceFlag{Name: "programs", Usage: "program names offered by :complete"},
			&cli.IntFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "program timeout in seconds"},
		},
		Action: shellAction,
	}
}

func shellAction(c *cli.Context) error {
	client, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Fprintf(stdout(c), "connected to %s (%s), :help for commands\n", client.URL(), client.Config().ServerName)

	timeout := c.Int("timeout")
	call := func(ctx context.Context, program string, commarea []byte, mode repl.Mode) error {
		start := time.Now()
		resp, err := client.Execute(ctx, ecigate.RequestSpec{
			ProgramName: program,
			CommArea:    commarea,
			Timeout:     timeout,
		})
		if err != nil {
			return err
		}

		switch mode {
		case repl.ModeHex:
			return output.WritePayload(stdout(c), output.FormatHex, resp.Payload)
		case repl.ModeRaw:
			if err := output.WritePayload(stdout(c), output.FormatRaw, resp.Payload); err != nil {
				return err
			}
			_, err := fmt.Fprintln(stdout(c))
			return err
		}
		enc, text := encodeCommArea(resp.Payload)
		_, err = fmt.Fprintf(stdout(c), "%s (%d bytes, %s, %s)\n",
			text, len(resp.Payload), enc, time.Since(start).Round(time.Microsecond))
		return err
	}

	r := repl.New(c.App.Reader, stdout(c), call,
		repl.NewHistory(c.String("history")),
		repl.NewCompleter(c.StringSlice("programs")...))
	return r.Run(c.Context)
}
