package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func openTest(t *testing.T, cfg Config) *Journal {
	t.Helper()
	j, err := Open(cfg, slog.Default())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_AppendGet(t *testing.T) {
	j := openTest(t, Config{Dir: t.TempDir()})
	ctx := context.Background()

	in := &Entry{
		Remote:         "127.0.0.1:40000",
		Server:         "CICSA",
		UserID:         "CICSUSER",
		Program:        "ECHO",
		OperationCode:  0,
		ReturnCode:     -7,
		AbendCode:      "ASRA",
		RequestLength:  100,
		ResponseLength: 0,
		Duration:       3 * time.Millisecond,
	}
	if err := j.Append(ctx, in); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if in.ID == "" || in.Time.IsZero() {
		t.Fatalf("Append() should assign ID and Time, got %+v", in)
	}

	got, err := j.Get(ctx, in.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != in.ID || got.Program != "ECHO" || got.ReturnCode != -7 ||
		got.AbendCode != "ASRA" || got.RequestLength != 100 || got.Duration != in.Duration {
		t.Errorf("Get() = %+v, want %+v", got, in)
	}
	if !got.Time.Equal(in.Time) {
		t.Errorf("Time = %v, want %v", got.Time, in.Time)
	}
	if !got.Failed() {
		t.Error("Failed() should be true for a non-zero return code")
	}
}

func TestJournal_GetNotFound(t *testing.T) {
	j := openTest(t, Config{InMemory: true})

	_, err := j.Get(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
	if _, err := j.Get(context.Background(), "not-a-ulid"); err == nil {
		t.Error("Get() should reject malformed ids")
	}
}

func TestJournal_List(t *testing.T) {
	j := openTest(t, Config{InMemory: true})
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		program := "ECHO"
		if i%2 == 1 {
			program = "ABEND"
		}
		e := &Entry{Time: base.Add(time.Duration(i) * time.Minute), Program: program, UserID: fmt.Sprintf("u%d", i)}
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	tests := []struct {
		name      string
		opts      ListOptions
		wantUsers []string
	}{
		{"oldest first", ListOptions{Limit: 3}, []string{"u0", "u1", "u2"}},
		{"newest first", ListOptions{Limit: 3, Newest: true}, []string{"u9", "u8", "u7"}},
		{"since", ListOptions{Since: base.Add(7 * time.Minute)}, []string{"u7", "u8", "u9"}},
		{"since newest", ListOptions{Since: base.Add(8 * time.Minute), Newest: true}, []string{"u9", "u8"}},
		{"program", ListOptions{Program: "ABEND", Limit: 2}, []string{"u1", "u3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := j.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(got) != len(tt.wantUsers) {
				t.Fatalf("List() returned %d entries, want %d", len(got), len(tt.wantUsers))
			}
			for i, e := range got {
				if e.UserID != tt.wantUsers[i] {
					t.Errorf("entry %d = %s, want %s", i, e.UserID, tt.wantUsers[i])
				}
			}
		})
	}
}

func TestJournal_Reopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	j, err := Open(Config{Dir: dir}, slog.Default())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	e := &Entry{Program: "ECHO"}
	if err := j.Append(ctx, e); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	j = openTest(t, Config{Dir: dir})
	got, err := j.Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if got.Program != "ECHO" {
		t.Errorf("Program = %q", got.Program)
	}
}

func TestJournal_AppendAfterClose(t *testing.T) {
	j, err := Open(Config{InMemory: true}, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if err := j.Append(context.Background(), &Entry{Program: "ECHO"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Append() error = %v, want %v", err, ErrClosed)
	}
}

func TestJournal_RequiresDir(t *testing.T) {
	if _, err := Open(Config{}, nil); err == nil {
		t.Error("Open() should require a dir")
	}
}

func TestJournal_Metrics(t *testing.T) {
	j := openTest(t, Config{InMemory: true})
	reg := prometheus.NewRegistry()
	j.RegisterMetrics(reg)

	for i := 0; i < 3; i++ {
		if err := j.Append(context.Background(), &Entry{Program: "ECHO"}); err != nil {
			t.Fatal(err)
		}
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "ecigate_journal_entries_appended_total" {
			found = true
			if v := mf.GetMetric()[0].GetCounter().GetValue(); v != 3 {
				t.Errorf("appended = %v, want 3", v)
			}
		}
	}
	if !found {
		t.Error("appended counter not registered")
	}
}

func TestEntry_Encoding(t *testing.T) {
	in := &Entry{ID: "x", Time: time.Unix(0, 12345), OperationCode: -22, Duration: time.Second}
	out, err := unmarshalEntry(in.marshal())
	if err != nil {
		t.Fatalf("unmarshalEntry() error = %v", err)
	}
	if out.ID != "x" || out.OperationCode != -22 || !out.Time.Equal(in.Time) || out.Duration != time.Second {
		t.Errorf("decoded = %+v", out)
	}
	if _, err := unmarshalEntry([]byte{0x0A, 0x05, 'a'}); err == nil {
		t.Error("unmarshalEntry() should fail on truncated input")
	}
}
