package benchmark

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yndnr/ecigate-go/internal/storage/journal"
)

// BenchmarkJournalAppend benchmarks recording served flows.
func BenchmarkJournalAppend(b *testing.B) {
	tests := []struct {
		name string
		cfg  journal.Config
	}{
		{"memory", journal.Config{InMemory: true}},
		{"disk", journal.Config{Dir: b.TempDir()}},
		{"disk-sync", journal.Config{Dir: b.TempDir(), SyncWrites: true}},
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	for _, tt := range tests {
		b.Run(tt.name, func(b *testing.B) {
			j, err := journal.Open(tt.cfg, log)
			if err != nil {
				b.Fatalf("Open() error = %v", err)
			}
			defer j.Close()

			ctx := context.Background()
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := j.Append(ctx, &journal.Entry{
					Remote:         "127.0.0.1:50000",
					Server:         "CICSA",
					UserID:         "BENCH",
					Program:        "ECHO",
					RequestLength:  100,
					ResponseLength: 100,
					Duration:       time.Millisecond,
				}); err != nil {
					b.Fatalf("Append() error = %v", err)
				}
			}
		})
	}
}

// BenchmarkJournalList benchmarks reading the newest entries.
func BenchmarkJournalList(b *testing.B) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	j, err := journal.Open(journal.Config{InMemory: true}, log)
	if err != nil {
		b.Fatalf("Open() error = %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	for i := 0; i < 10000; i++ {
		j.Append(ctx, &journal.Entry{Server: "CICSA", Program: "ECHO"})
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := j.List(ctx, journal.ListOptions{Limit: 100, Newest: true}); err != nil {
			b.Fatalf("List() error = %v", err)
		}
	}
}
