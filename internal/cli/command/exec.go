package command

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecigate-go/internal/cli/output"
	"github.com/yndnr/ecigate-go/pkg/ecigate"
)

// CallResult is the printable outcome of one program call.
type CallResult struct {
	Program  string `json:"program" yaml:"program"`
	Length   int    `json:"length" yaml:"length"`
	Duration string `json:"duration" yaml:"duration"`
	Encoding string `json:"encoding" yaml:"encoding"`
	CommArea string `json:"commarea" yaml:"commarea"`
}

func newCallResult(program string, payload []byte, elapsed time.Duration) CallResult {
	enc, text := encodeCommArea(payload)
	return CallResult{
		Program:  program,
		Length:   len(payload),
		Duration: elapsed.Round(time.Microsecond).String(),
		Encoding: enc,
		CommArea: text,
	}
}

// encodeCommArea renders a commarea as text when it is printable UTF-8
// once trailing NULs are dropped, and as hex otherwise.
func encodeCommArea(p []byte) (encoding, text string) {
	trimmed := bytes.TrimRight(p, "\x00")
	if utf8.Valid(trimmed) && printable(trimmed) {
		return "text", string(trimmed)
	}
	return "hex", hex.EncodeToString(p)
}

func printable(p []byte) bool {
	for _, r := range string(p) {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
		if r == 0x7F {
			return false
		}
	}
	return true
}

// ExecCommand returns the exec command.
func ExecCommand() *cli.Command {
	return &cli.Command{
		Name:      "exec",
		Usage:     "Run a CICS program and print its commarea",
		ArgsUsage: "PROGRAM",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "commarea as text"},
			&cli.StringFlag{Name: "data-hex", Usage: "commarea as hex"},
			&cli.StringFlag{Name: "data-file", Aliases: []string{"f"}, Usage: "read the commarea from a file, - for stdin"},
			&cli.IntFlag{Name: "size", Usage: "commarea size when no data is given (default 50, max 32500)"},
			&cli.IntFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "program timeout in seconds, 0 for none"},
			&cli.BoolFlag{Name: "progress", Usage: "show a spinner while waiting"},
		},
		Action: execAction,
	}
}

func execAction(c *cli.Context) error {
	program := c.Args().First()
	if program == "" {
		return errors.New("program name required")
	}

	spec, err := requestSpec(c, program)
	if err != nil {
		return err
	}

	client, err := connect(c)
	if err != nil {
		return err
	}
	defer client.Close()

	var spinner *output.Spinner
	if c.Bool("progress") {
		spinner = output.NewSpinner(stderr(c), "calling "+program)
		spinner.Start()
	}

	start := time.Now()
	resp, err := client.Execute(c.Context, spec)
	elapsed := time.Since(start)

	if spinner != nil {
		if err != nil {
			spinner.Fail(program + " failed")
		} else {
			spinner.Success(fmt.Sprintf("%s completed in %s", program, elapsed.Round(time.Millisecond)))
		}
	}
	if err != nil {
		return err
	}

	return printCall(c, program, resp.Payload, elapsed)
}

func printCall(c *cli.Context, program string, payload []byte, elapsed time.Duration) error {
	switch format := outputFormat(c); format {
	case output.FormatHex, output.FormatRaw:
		return output.WritePayload(stdout(c), format, payload)
	default:
		return output.NewFormatter(format).Format(stdout(c), newCallResult(program, payload, elapsed))
	}
}

func requestSpec(c *cli.Context, program string) (ecigate.RequestSpec, error) {
	spec := ecigate.RequestSpec{
		ProgramName: program,
		Timeout:     c.Int("timeout"),
	}
	if c.IsSet("size") {
		spec.CommAreaSize = ecigate.IntPtr(c.Int("size"))
	}

	commarea, err := readCommArea(c)
	if err != nil {
		return spec, err
	}
	spec.CommArea = commarea
	return spec, nil
}

func readCommArea(c *cli.Context) ([]byte, error) {
	sources := 0
	for _, name := range []string{"data", "data-hex", "data-file"} {
		if c.IsSet(name) {
			sources++
		}
	}
	if sources > 1 {
		return nil, errors.New("use only one of --data, --data-hex and --data-file")
	}

	switch {
	case c.IsSet("data"):
		return []byte(c.String("data")), nil
	case c.IsSet("data-hex"):
		b, err := hex.DecodeString(c.String("data-hex"))
		if err != nil {
			return nil, fmt.Errorf("decode --data-hex: %w", err)
		}
		return b, nil
	case c.IsSet("data-file"):
		path := c.String("data-file")
		if path == "-" {
			return io.ReadAll(c.App.Reader)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read --data-file: %w", err)
		}
		return b, nil
	}
	return nil, nil
}
