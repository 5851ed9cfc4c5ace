package command

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecigate-go/internal/cli/output"
)

// BenchReport summarises a bench run.
type BenchReport struct {
	Program     string  `json:"program" yaml:"program"`
	Requests    int     `json:"requests" yaml:"requests"`
	Failed      int     `json:"failed" yaml:"failed"`
	Concurrency int     `json:"concurrency" yaml:"concurrency"`
	Elapsed     string  `json:"elapsed" yaml:"elapsed"`
	PerSecond   float64 `json:"per_second" yaml:"per_second"`
	P50         string  `json:"p50" yaml:"p50"`
	P90         string  `json:"p90" yaml:"p90"`
	P99         string  `json:"p99" yaml:"p99"`
	Max         string  `json:"max" yaml:"max"`
	FirstError  string  `json:"first_error,omitempty" yaml:"first_error,omitempty"`
}

// BenchCommand returns the bench command.
func BenchCommand() *cli.Command {
	return &cli.Command{
		Name:      "bench",
		Usage:     "Run a program repeatedly over one connection and report latencies",
		ArgsUsage: "PROGRAM",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Value: 100, Usage: "number of calls"},
			&cli.IntFlag{Name: "concurrency", Aliases: []string{"C"}, Value: 8, Usage: "calls in flight"},
			&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "commarea as text"},
			&cli.StringFlag{Name: "data-hex", Usage: "commarea as hex"},
			&cli.StringFlag{Name: "data-file", Aliases: []string{"f"}, Usage: "read the commarea from a file, - for stdin"},
			&cli.IntFlag{Name: "size", Usage: "commarea size when no data is given"},
			&cli.IntFlag{Name: "timeout", Aliases: []string{"t"}, Usage: "program timeout in seconds"},
			&cli.BoolFlag{Name: "progress", Usage: "draw a progress bar"},
		},
		Action: benchAction,
	}
}

func benchAction(c *cli.Context) error {
	program := c.Args().First()
	if program == "" {
		return errors.New("program name required")
	}
	count, concurrency := c.Int("count"), c.Int("concurrency")
	if count <= 0 || concurrency <= 0 {
		return errors.New("--count and --concurrency must be positive")
	}
	if concurrency > count {
		concurrency = count
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

	var bar *output.ProgressBar
	if c.Bool("progress") {
		bar = output.NewProgressBar(stderr(c), program, int64(count))
	}

	var (
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, count)
		failed    int
		firstErr  error
	)
	jobs := make(chan struct{})
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				callStart := time.Now()
				_, err := client.Execute(c.Context, spec)
				elapsed := time.Since(callStart)

				mu.Lock()
				latencies = append(latencies, elapsed)
				if err != nil {
					failed++
					if firstErr == nil {
						firstErr = err
					}
				}
				mu.Unlock()
				if bar != nil {
					bar.Done(err != nil)
				}
			}
		}()
	}
	for i := 0; i < count; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()
	total := time.Since(start)

	if bar != nil {
		bar.Finish()
	}

	report := summarize(program, latencies, failed, concurrency, total)
	if firstErr != nil {
		report.FirstError = firstErr.Error()
	}

	format := outputFormat(c)
	if format == output.FormatHex || format == output.FormatRaw {
		format = output.FormatTable
	}
	if err := output.NewFormatter(format).Format(stdout(c), report); err != nil {
		return err
	}
	if failed == count {
		return fmt.Errorf("all %d calls failed: %w", count, firstErr)
	}
	return nil
}

func summarize(program string, latencies []time.Duration, failed, concurrency int, total time.Duration) BenchReport {
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	r := BenchReport{
		Program:     program,
		Requests:    len(latencies),
		Failed:      failed,
		Concurrency: concurrency,
		Elapsed:     total.Round(time.Millisecond).String(),
		P50:         percentile(latencies, 50).String(),
		P90:         percentile(latencies, 90).String(),
		P99:         percentile(latencies, 99).String(),
		Max:         percentile(latencies, 100).String(),
	}
	if total > 0 {
		r.PerSecond = float64(len(latencies)) / total.Seconds()
	}
	return r
}

// percentile returns the nearest-rank percentile of sorted latencies.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1].Round(time.Microsecond)
}
