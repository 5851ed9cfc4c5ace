package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yndnr/ecigate-go/internal/server/gatewayserver"
	"github.com/yndnr/ecigate-go/internal/storage/journal"
	"github.com/yndnr/ecigate-go/internal/telemetry/logger"
)

type fakeStatus struct {
	st gatewayserver.Status
}

func (f *fakeStatus) Status() gatewayserver.Status { return f.st }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(journal.Config{InMemory: true}, discardLogger())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func doRequest(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("X-Request-ID", "req-test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, rec.Body.String())
	}
	return rec, resp
}

func decodeData(t *testing.T, resp Response, v any) {
	t.Helper()
	b, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func TestHandler_Health(t *testing.T) {
	h := New(nil, nil, discardLogger())

	rec, resp := doRequest(t, h, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if resp.Code != CodeOK || resp.RequestID != "req-test" {
		t.Errorf("envelope = %+v", resp)
	}
}

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		ctxID  string
		want   string
	}{
		{"none", "", "", ""},
		{"header only", "req-header", "", "req-header"},
		{"context only", "", "req-ctx", "req-ctx"},
		{"context wins", "req-header", "req-ctx", "req-ctx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.header != "" {
				r.Header.Set("X-Request-ID", tt.header)
			}
			if tt.ctxID != "" {
				r = r.WithContext(logger.WithRequestID(r.Context(), tt.ctxID))
			}
			if got := getRequestID(r); got != tt.want {
				t.Errorf("getRequestID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandler_Ready(t *testing.T) {
	status := &fakeStatus{}
	h := New(status, nil, discardLogger())

	rec, resp := doRequest(t, h, "/ready")
	if rec.Code != http.StatusServiceUnavailable || resp.Code != CodeNotReady {
		t.Errorf("not running: status = %d code = %s", rec.Code, resp.Code)
	}
	if rec.Header().Get("X-Error-Code") != CodeNotReady {
		t.Errorf("X-Error-Code = %q", rec.Header().Get("X-Error-Code"))
	}

	status.st.Running = true
	rec, _ = doRequest(t, h, "/ready")
	if rec.Code != http.StatusOK {
		t.Errorf("running: status = %d, want 200", rec.Code)
	}
}

func TestHandler_Status(t *testing.T) {
	status := &fakeStatus{st: gatewayserver.Status{
		Name:              "gw1",
		Addr:              "127.0.0.1:2006",
		Running:           true,
		Servers:           []string{"CICSA"},
		Programs:          []string{"ECHO"},
		ActiveConnections: 3,
	}}
	h := New(status, openJournal(t), discardLogger())

	rec, resp := doRequest(t, h, "/admin/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got StatusResponse
	decodeData(t, resp, &got)
	if got.Gateway.Name != "gw1" || got.Gateway.ActiveConnections != 3 || !got.Journal {
		t.Errorf("status = %+v", got)
	}
	if got.Version == "" {
		t.Error("version should be set")
	}
}

func TestHandler_JournalDisabled(t *testing.T) {
	h := New(&fakeStatus{}, nil, discardLogger())

	for _, target := range []string{"/admin/v1/journal", "/admin/v1/journal/01ARZ3NDEKTSV4RRFFQ69G5FAV"} {
		rec, resp := doRequest(t, h, target)
		if rec.Code != http.StatusNotFound || resp.Code != CodeJournalDisabled {
			t.Errorf("%s: status = %d code = %s", target, rec.Code, resp.Code)
		}
	}
}

func TestHandler_ListJournal(t *testing.T) {
	j := openJournal(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Minute)
	for i, prog := range []string{"ECHO", "ABEND", "ECHO"} {
		e := &journal.Entry{
			Time:    base.Add(time.Duration(i) * time.Second),
			Server:  "CICSA",
			UserID:  "CICSUSER",
			Program: prog,
		}
		if prog == "ABEND" {
			e.ReturnCode = -7
			e.AbendCode = "ASRA"
		}
		if err := j.Append(ctx, e); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}
	h := New(&fakeStatus{}, j, discardLogger())

	tests := []struct {
		name      string
		target    string
		wantCount int
		wantFirst string
	}{
		{"all newest first", "/admin/v1/journal", 3, "ECHO"},
		{"oldest first", "/admin/v1/journal?order=oldest&limit=2", 2, "ECHO"},
		{"by program", "/admin/v1/journal?program=abend", 1, "ABEND"},
		{"limit", "/admin/v1/journal?limit=1", 1, "ECHO"},
		{"since future", "/admin/v1/journal?since=" + time.Now().Add(time.Hour).UTC().Format(time.RFC3339), 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := doRequest(t, h, tt.target)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var got ListJournalResponse
			decodeData(t, resp, &got)
			if got.Count != tt.wantCount || len(got.Entries) != tt.wantCount {
				t.Fatalf("count = %d, want %d", got.Count, tt.wantCount)
			}
			if tt.wantCount > 0 && got.Entries[0].Program != tt.wantFirst {
				t.Errorf("first program = %q, want %q", got.Entries[0].Program, tt.wantFirst)
			}
		})
	}

	rec, resp := doRequest(t, h, "/admin/v1/journal?program=ABEND")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var abends ListJournalResponse
	decodeData(t, resp, &abends)
	if e := abends.Entries[0]; !e.Failed || e.AbendCode != "ASRA" || e.ReturnCode != -7 {
		t.Errorf("abend entry = %+v", e)
	}
}

func TestHandler_ListJournal_InvalidArguments(t *testing.T) {
	h := New(&fakeStatus{}, openJournal(t), discardLogger())

	for _, q := range []string{"limit=0", "limit=abc", "since=yesterday", "order=random"} {
		rec, resp := doRequest(t, h, "/admin/v1/journal?"+q)
		if rec.Code != http.StatusBadRequest || resp.Code != CodeInvalidArgument {
			t.Errorf("%s: status = %d code = %s", q, rec.Code, resp.Code)
		}
	}
}

func TestHandler_GetJournal(t *testing.T) {
	j := openJournal(t)
	e := &journal.Entry{Server: "CICSA", Program: "ECHO", RequestLength: 10, ResponseLength: 10, Duration: 1500 * time.Microsecond}
	if err := j.Append(context.Background(), e); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	h := New(&fakeStatus{}, j, discardLogger())

	rec, resp := doRequest(t, h, "/admin/v1/journal/"+e.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got JournalEntryResponse
	decodeData(t, resp, &got)
	if got.ID != e.ID || got.Program != "ECHO" || got.DurationMs != 1.5 || got.Failed {
		t.Errorf("entry = %+v", got)
	}

	rec, resp = doRequest(t, h, "/admin/v1/journal/01ARZ3NDEKTSV4RRFFQ69G5FAV")
	if rec.Code != http.StatusNotFound || resp.Code != CodeNotFound {
		t.Errorf("missing: status = %d code = %s", rec.Code, resp.Code)
	}

	rec, resp = doRequest(t, h, "/admin/v1/journal/not-a-ulid")
	if rec.Code != http.StatusBadRequest || resp.Code != CodeInvalidArgument {
		t.Errorf("invalid: status = %d code = %s", rec.Code, resp.Code)
	}
}
