package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompt is printed before each line.
const Prompt = "ecigate> "

// Mode selects how a call's commarea is printed.
type Mode string

// Output modes.
const (
	ModeText Mode = "text"
	ModeHex  Mode = "hex"
	ModeRaw  Mode = "raw"
)

// Call runs program with commarea and prints the result in mode.
type Call func(ctx context.Context, program string, commarea []byte, mode Mode) error

// REPL reads program calls line by line.
type REPL struct {
	input     io.Reader
	output    io.Writer
	call      Call
	completer *Completer
	history   *History
}

// New creates a shell reading from in and writing to out.
func New(in io.Reader, out io.Writer, call Call, history *History, completer *Completer) *REPL {
	if history == nil {
		history = NewHistory("")
	}
	if completer == nil {
		completer = NewCompleter()
	}
	return &REPL{
		input:     in,
		output:    out,
		call:      call,
		completer: completer,
		history:   history,
	}
}

// Run reads lines until exit, EOF or the end of ctx. A failed call is
// printed and the shell continues.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.history.Load(); err != nil {
		fmt.Fprintf(r.output, "warning: load history: %v\n", err)
	}
	defer func() {
		if err := r.history.Save(); err != nil {
			fmt.Fprintf(r.output, "warning: save history: %v\n", err)
		}
	}()

	reader := bufio.NewReader(r.input)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(r.output, Prompt)

		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(r.output)
			return nil
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.history.Add(line)

		if line == "exit" || line == "quit" {
			return nil
		}
		if err := r.execute(ctx, line); err != nil {
			fmt.Fprintf(r.output, "error: %v\n", err)
		}
	}
}

func (r *REPL) execute(ctx context.Context, line string) error {
	mode := ModeText
	cmd, rest, _ := strings.Cut(line, " ")

	switch cmd {
	case ":help":
		r.help()
		return nil
	case ":history":
		for i, e := range r.history.Entries() {
			fmt.Fprintf(r.output, "%4d  %s\n", i+1, e)
		}
		return nil
	case ":complete":
		fmt.Fprintln(r.output, strings.Join(r.completer.Complete(strings.TrimSpace(rest)), " "))
		return nil
	case ":hex":
		mode = ModeHex
		line = strings.TrimSpace(rest)
	case ":raw":
		mode = ModeRaw
		line = strings.TrimSpace(rest)
	default:
		if strings.HasPrefix(cmd, ":") {
			return fmt.Errorf("unknown command %q, try :help", cmd)
		}
	}

	program, data, _ := strings.Cut(line, " ")
	if program == "" {
		return errors.New("program name required")
	}

	var commarea []byte
	if data != "" {
		commarea = []byte(data)
	}
	return r.call(ctx, program, commarea, mode)
}

func (r *REPL) help() {
	fmt.Fprint(r.output, `PROGRAM [DATA]       run PROGRAM with DATA as the commarea
:hex PROGRAM [DATA]  print the commarea as a hex dump
:raw PROGRAM [DATA]  print the commarea bytes unchanged
:history             list previous lines
:complete PREFIX     list matching programs and commands
exit, quit           leave the shell
`)
}
