package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// ProgressBar tracks completed calls out of a known total.
type ProgressBar struct {
	w       io.Writer
	title   string
	total   int64
	current int64
	failed  int64
	width   int
	mu      sync.Mutex
}

// NewProgressBar creates a progress bar for total calls.
func NewProgressBar(w io.Writer, title string, total int64) *ProgressBar {
	return &ProgressBar{
		w:     w,
		title: title,
		total: total,
		width: 40,
	}
}

// Done records one finished call. It is safe for concurrent use.
func (p *ProgressBar) Done(failed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	if failed {
		p.failed++
	}
	p.render()
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.render()
	fmt.Fprintln(p.w)
}

func (p *ProgressBar) render() {
	percent := 1.0
	if p.total > 0 {
		percent = float64(p.current) / float64(p.total)
	}
	if percent > 1 {
		percent = 1
	}

	filled := int(float64(p.width) * percent)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", p.width-filled)

	fmt.Fprintf(p.w, "\r%s [%s] %3.0f%% (%d/%d, %d failed)",
		p.title, bar, percent*100, p.current, p.total, p.failed)
}
