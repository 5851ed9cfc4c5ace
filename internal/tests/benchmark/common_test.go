package benchmark

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/yndnr/ecigate-go/internal/server/gatewayserver"
	"github.com/yndnr/ecigate-go/pkg/ecigate"
)

// CommAreaSizes are the payload sizes used by the flow benchmarks.
var CommAreaSizes = []int{0, 100, 4096, 32500}

var benchCreds = ecigate.Credentials{UserID: "BENCH", Password: "bench"}

// startGateway starts a loopback daemon serving the built-in programs.
func startGateway(b *testing.B) *gatewayserver.Server {
	b.Helper()
	s := gatewayserver.New(gatewayserver.Config{
		Addr:    "127.0.0.1:0",
		Name:    "bench-gateway",
		Servers: []string{"CICSA"},
		Users:   map[string]string{benchCreds.UserID: benchCreds.Password},
	})
	if err := s.Start(context.Background()); err != nil {
		b.Fatalf("Start() error = %v", err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.Shutdown(ctx)
	})
	return s
}

// newClient connects a client to s.
func newClient(b *testing.B, s *gatewayserver.Server, opts ...ecigate.Option) *ecigate.Client {
	b.Helper()
	host, port, err := net.SplitHostPort(s.Addr().String())
	if err != nil {
		b.Fatal(err)
	}
	p, _ := strconv.Atoi(port)

	c, err := ecigate.Init(context.Background(), ecigate.Config{
		Host:           host,
		Port:           p,
		ServerName:     "CICSA",
		ConnectTimeout: 5,
		Credentials:    benchCreds,
	}, opts...)
	if err != nil {
		b.Fatalf("Init() error = %v", err)
	}
	b.Cleanup(func() { c.Close() })
	return c
}

func sizeName(n int) string {
	return "commarea=" + strconv.Itoa(n)
}
