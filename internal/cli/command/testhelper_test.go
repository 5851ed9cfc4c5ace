package command

import (
	"bytes"
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/ecigate-go/internal/server/gatewayserver"
)

const (
	testUser     = "CICSUSER"
	testPassword = "secret"
)

// testGateway runs a gateway daemon for the duration of the test.
func testGateway(t *testing.T) *gatewayserver.Server {
	t.Helper()
	s := gatewayserver.New(gatewayserver.Config{
		Addr:    "127.0.0.1:0",
		Servers: []string{"CICSA"},
		Users:   map[string]string{testUser: testPassword},
	})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

// gatewayFlags returns the global flags that point the CLI at s.
func gatewayFlags(t *testing.T, s *gatewayserver.Server) []string {
	t.Helper()
	addr := s.Addr().String()
	i := strings.LastIndex(addr, ":")
	port, err := strconv.Atoi(addr[i+1:])
	if err != nil {
		t.Fatal(err)
	}
	return []string{
		"--host", addr[:i],
		"--port", strconv.Itoa(port),
		"--cics-server", "CICSA",
		"--user", testUser,
		"--password", testPassword,
	}
}

type runResult struct {
	stdout string
	stderr string
	err    error
}

// run executes the CLI with a config file in a temp dir. args are
// global flags followed by the command.
func run(t *testing.T, configPath, stdin string, args ...string) runResult {
	t.Helper()
	if configPath == "" {
		configPath = filepath.Join(t.TempDir(), "cli.yaml")
	}

	var out, errOut bytes.Buffer
	app := App()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.Reader = strings.NewReader(stdin)

	argv := append([]string{ProgramName, "--config", configPath}, args...)
	err := app.Run(argv)
	return runResult{stdout: out.String(), stderr: errOut.String(), err: err}
}
