package command

import (
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/ecigate-go/internal/cli/config"
	"github.com/yndnr/ecigate-go/pkg/ecigate"
)

func TestExec_Formats(t *testing.T) {
	s := testGateway(t)
	flags := gatewayFlags(t, s)

	tests := []struct {
		name  string
		args  []string
		stdin string
		check func(t *testing.T, out string)
	}{
		{
			name: "json text",
			args: []string{"-o", "json", "exec", "UPPER", "--data", "hello"},
			check: func(t *testing.T, out string) {
				var res CallResult
				if err := json.Unmarshal([]byte(out), &res); err != nil {
					t.Fatalf("output is not JSON: %v\n%s", err, out)
				}
				if res.Program != "UPPER" || res.CommArea != "HELLO" || res.Length != 5 || res.Encoding != "text" {
					t.Errorf("result = %+v", res)
				}
			},
		},
		{
			name: "hex dump",
			args: []string{"-o", "hex", "exec", "ECHO", "--data-hex", "00c1c2"},
			check: func(t *testing.T, out string) {
				if !strings.HasPrefix(out, "00000000  00 c1 c2") {
					t.Errorf("output = %q", out)
				}
			},
		},
		{
			name:  "raw from stdin",
			args:  []string{"-o", "raw", "exec", "ECHO", "--data-file", "-"},
			stdin: "piped",
			check: func(t *testing.T, out string) {
				if out != "piped" {
					t.Errorf("output = %q", out)
				}
			},
		},
		{
			name: "table with default commarea",
			args: []string{"exec", "ECHO"},
			check: func(t *testing.T, out string) {
				for _, want := range []string{"program", "ECHO", "length", "50"} {
					if !strings.Contains(out, want) {
						t.Errorf("output missing %q:\n%s", want, out)
					}
				}
			},
		},
		{
			name: "yaml with size",
			args: []string{"-o", "yaml", "exec", "ECHO", "--size", "4"},
			check: func(t *testing.T, out string) {
				if !strings.Contains(out, "length: 4") {
					t.Errorf("output = %q", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", tt.stdin, append(append([]string{}, flags...), tt.args...)...)
			if res.err != nil {
				t.Fatalf("run error = %v\nstderr: %s", res.err, res.stderr)
			}
			tt.check(t, res.stdout)
		})
	}
}

func TestExec_DataFile(t *testing.T) {
	s := testGateway(t)
	path := filepath.Join(t.TempDir(), "in.bin")
	if err := os.WriteFile(path, []byte("from file"), 0600); err != nil {
		t.Fatal(err)
	}

	args := append(gatewayFlags(t, s), "-o", "raw", "exec", "UPPER", "-f", path)
	res := run(t, "", "", args...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	if res.stdout != "FROM FILE" {
		t.Errorf("output = %q", res.stdout)
	}
}

func TestExec_Progress(t *testing.T) {
	s := testGateway(t)
	args := append(gatewayFlags(t, s), "-o", "raw", "exec", "SLEEP", "--data", "30", "--progress")
	res := run(t, "", "", args...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	if !strings.Contains(res.stderr, "✓ SLEEP completed") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestExec_Errors(t *testing.T) {
	s := testGateway(t)
	flags := gatewayFlags(t, s)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	closedPort := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	ln.Close()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantText string
	}{
		{"no program", append(flags, "exec"), ExitFailure, "program name required"},
		{"two sources", append(flags, "exec", "ECHO", "--data", "a", "--data-hex", "00"), ExitFailure, "only one"},
		{"bad hex", append(flags, "exec", "ECHO", "--data-hex", "zz"), ExitFailure, "decode --data-hex"},
		{"negative size", append(flags, "exec", "ECHO", "--size", "-1"), ExitEncoding, ""},
		{"abend", append(flags, "exec", "ABEND", "--data", "AB12"), ExitExecution, "abend code: AB12"},
		{"unknown program", append(flags, "exec", "NOPE"), ExitExecution, "abend code: AEI0"},
		{
			"refused",
			[]string{"--host", "127.0.0.1", "--port", closedPort, "--cics-server", "CICSA", "--user", "u", "--password", "p", "exec", "ECHO"},
			ExitConnection, "initializing the gateway connection",
		},
		{"bad output", append(flags, "-o", "xml", "exec", "ECHO"), ExitFailure, "unknown output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := run(t, "", "", append([]string{}, tt.args...)...)
			if res.err == nil {
				t.Fatalf("run should fail, stdout: %s", res.stdout)
			}
			if got := ExitCode(res.err); got != tt.wantCode {
				t.Errorf("ExitCode() = %d, want %d (%v)", got, tt.wantCode, res.err)
			}
			if !strings.Contains(res.err.Error(), tt.wantText) {
				t.Errorf("error = %v, want %q", res.err, tt.wantText)
			}
		})
	}
}

func TestExec_EnvAndFlagPriority(t *testing.T) {
	s := testGateway(t)
	flags := gatewayFlags(t, s)

	// Without --cics-server the environment value applies.
	var noServer []string
	for i := 0; i < len(flags); i += 2 {
		if flags[i] != "--cics-server" {
			noServer = append(noServer, flags[i], flags[i+1])
		}
	}

	t.Setenv("ECIGATE_GATEWAY__CICS_SERVER", "CICSZ")
	res := run(t, "", "", append(noServer, "exec", "ECHO")...)
	if !errors.Is(res.err, ecigate.ErrOperationFailed) || ecigate.CodeOf(res.err) != -22 {
		t.Errorf("env server: error = %v, want operation failed -22", res.err)
	}

	res = run(t, "", "", append(flags, "exec", "ECHO")...)
	if res.err != nil {
		t.Errorf("flag should override env: %v", res.err)
	}
}

func TestExec_ConfigFile(t *testing.T) {
	s := testGateway(t)
	addr := s.Addr().(*net.TCPAddr)

	cfg := config.Default()
	cfg.Gateway.Host = "127.0.0.1"
	cfg.Gateway.Port = addr.Port
	cfg.Gateway.CICSServer = "CICSA"
	cfg.Gateway.Auth = config.AuthConfig{UserID: testUser, Password: testPassword}
	cfg.Output = "raw"

	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := config.Save(cfg, path); err != nil {
		t.Fatal(err)
	}

	res := run(t, path, "", "exec", "UPPER", "--data", "cfg")
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	if res.stdout != "CFG" {
		t.Errorf("output = %q", res.stdout)
	}
}

func TestPing(t *testing.T) {
	s := testGateway(t)
	args := append(gatewayFlags(t, s), "-o", "json", "ping", "--program", "EMPTY")
	res := run(t, "", "", args...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}

	var report PingReport
	if err := json.Unmarshal([]byte(res.stdout), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, res.stdout)
	}
	if !strings.HasPrefix(report.URL, "tcp://127.0.0.1:") || report.TLS || report.CICSServer != "CICSA" {
		t.Errorf("report = %+v", report)
	}
	if report.Program != "EMPTY" || report.CallTime == "" || report.ConnectTime == "" {
		t.Errorf("report = %+v", report)
	}
}

func TestBench(t *testing.T) {
	s := testGateway(t)
	args := append(gatewayFlags(t, s), "-o", "json", "bench", "ECHO", "-n", "20", "-C", "4", "--data", "x", "--progress")
	res := run(t, "", "", args...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}

	var report BenchReport
	if err := json.Unmarshal([]byte(res.stdout), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, res.stdout)
	}
	if report.Requests != 20 || report.Failed != 0 || report.Concurrency != 4 {
		t.Errorf("report = %+v", report)
	}
	if !strings.Contains(res.stderr, "(20/20, 0 failed)") {
		t.Errorf("stderr = %q", res.stderr)
	}
}

func TestBench_AllFail(t *testing.T) {
	s := testGateway(t)
	args := append(gatewayFlags(t, s), "bench", "ABEND", "-n", "3")
	res := run(t, "", "", args...)
	if ExitCode(res.err) != ExitExecution {
		t.Errorf("error = %v, want execution failure", res.err)
	}
	if !strings.Contains(res.stdout, "ASRA") {
		t.Errorf("report should carry the first error:\n%s", res.stdout)
	}

	res = run(t, "", "", append(gatewayFlags(t, s), "bench", "ECHO", "-n", "0")...)
	if res.err == nil {
		t.Error("bench with -n 0 should fail")
	}
}

func TestShell(t *testing.T) {
	s := testGateway(t)
	stdin := "UPPER abc\n:hex ECHO hi\n:raw ECHO raw\nABEND\nexit\n"
	args := append(gatewayFlags(t, s), "shell", "--history", "")
	res := run(t, "", stdin, args...)
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}

	for _, want := range []string{
		"connected to tcp://127.0.0.1:",
		"ABC (3 bytes, text,",
		"00000000  68 69",
		"raw\n",
		"error: [ExecutionError]",
	} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("output missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestConfig_InitShowValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	flags := []string{"--host", "gw", "--cics-server", "CICSA", "--user", "u", "--password", "topsecret"}

	res := run(t, path, "", append(flags, "config", "init")...)
	if res.err != nil {
		t.Fatalf("config init error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "wrote "+path) {
		t.Errorf("stdout = %q", res.stdout)
	}

	res = run(t, path, "", "config", "init")
	if res.err == nil || !strings.Contains(res.err.Error(), "already exists") {
		t.Errorf("second init error = %v", res.err)
	}
	if res = run(t, path, "", "config", "init", "--force"); res.err != nil {
		t.Errorf("init --force error = %v", res.err)
	}

	res = run(t, path, "", "config", "show")
	if res.err != nil {
		t.Fatalf("config show error = %v", res.err)
	}
	if !strings.Contains(res.stdout, "host: gw") || strings.Contains(res.stdout, "topsecret") {
		t.Errorf("show output:\n%s", res.stdout)
	}

	res = run(t, path, "", "-o", "json", "config", "show", "--reveal")
	if !strings.Contains(res.stdout, `"password": "topsecret"`) {
		t.Errorf("reveal output:\n%s", res.stdout)
	}

	if res = run(t, path, "", "config", "validate"); res.err != nil {
		t.Errorf("validate error = %v", res.err)
	}
	res = run(t, path, "", "--cics-server", "", "config", "validate")
	if res.err == nil || !strings.Contains(res.err.Error(), "cics_server") {
		t.Errorf("validate error = %v, want cics_server", res.err)
	}
}

func TestVersion(t *testing.T) {
	res := run(t, "", "", "-o", "json", "version")
	if res.err != nil {
		t.Fatalf("run error = %v", res.err)
	}
	var info map[string]string
	if err := json.Unmarshal([]byte(res.stdout), &info); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if info["version"] == "" || info["go_version"] == "" {
		t.Errorf("info = %v", info)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New("plain"), ExitFailure},
		{&ecigate.Error{Kind: ecigate.KindConnection}, ExitConnection},
		{&ecigate.Error{Kind: ecigate.KindEncoding}, ExitEncoding},
		{&ecigate.Error{Kind: ecigate.KindExecution}, ExitExecution},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestEncodeCommArea(t *testing.T) {
	tests := []struct {
		in       []byte
		wantEnc  string
		wantText string
	}{
		{[]byte("HELLO"), "text", "HELLO"},
		{[]byte("HI\x00\x00\x00"), "text", "HI"},
		{make([]byte, 3), "text", ""},
		{[]byte{0xC1, 0xC2}, "hex", "c1c2"},
		{[]byte("A\x01B"), "hex", "410142"},
	}
	for _, tt := range tests {
		enc, text := encodeCommArea(tt.in)
		if enc != tt.wantEnc || text != tt.wantText {
			t.Errorf("encodeCommArea(%q) = %q, %q; want %q, %q", tt.in, enc, text, tt.wantEnc, tt.wantText)
		}
	}
}

func TestPercentile(t *testing.T) {
	var lat []time.Duration
	for i := 1; i <= 10; i++ {
		lat = append(lat, time.Duration(i)*time.Millisecond)
	}
	tests := []struct {
		p    int
		want time.Duration
	}{
		{50, 5 * time.Millisecond},
		{90, 9 * time.Millisecond},
		{99, 10 * time.Millisecond},
		{100, 10 * time.Millisecond},
		{0, time.Millisecond},
	}
	for _, tt := range tests {
		if got := percentile(lat, tt.p); got != tt.want {
			t.Errorf("percentile(%d) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("percentile(nil) should be 0")
	}
}
