package connection

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/ecigate-go/internal/core/domain"
	"github.com/yndnr/ecigate-go/internal/gateway/wire"
	"github.com/yndnr/ecigate-go/internal/infra/keyring"
	"github.com/yndnr/ecigate-go/internal/telemetry/logger"
	"github.com/yndnr/ecigate-go/internal/telemetry/metric"
)

// DefaultClientName is announced in the Hello frame.
const DefaultClientName = "ecigate-go"

// Gateway is a connection to an ECI gateway.
//
// Flow may be called from many goroutines. Requests are multiplexed over a
// single socket: writes are serialized and one reader goroutine routes
// replies to their callers by correlation ID.
type Gateway struct {
	cfg     domain.ConnectionConfig
	logger  *slog.Logger
	metrics *metric.Registry
	client  string

	mu         sync.Mutex
	conn       net.Conn
	pending    map[uint64]chan flowOutcome
	readerDone chan struct{}
	open       atomic.Bool

	writeMu sync.Mutex
	nextID  atomic.Uint64
}

type flowOutcome struct {
	reply *wire.FlowReply
	err   error
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		g.logger = logger
	}
}

// WithMetrics enables connection metrics.
func WithMetrics(m *metric.Registry) Option {
	return func(g *Gateway) {
		g.metrics = m
	}
}

// WithClientName sets the client name announced to the gateway.
func WithClientName(name string) Option {
	return func(g *Gateway) {
		g.client = name
	}
}

// New creates a closed gateway handle for cfg. The configuration is copied.
func New(cfg domain.ConnectionConfig, opts ...Option) *Gateway {
	g := &Gateway{
		cfg:    cfg.Clone(),
		logger: slog.Default(),
		client: DefaultClientName,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Config returns a copy of the connection configuration.
func (g *Gateway) Config() domain.ConnectionConfig {
	return g.cfg.Clone()
}

// Addr returns the host:port of the gateway.
func (g *Gateway) Addr() string {
	return net.JoinHostPort(g.cfg.Host, strconv.Itoa(g.cfg.Port))
}

// URL returns the gateway endpoint as tcp://host:port or ssl://host:port.
func (g *Gateway) URL() string {
	if g.cfg.Secure() {
		return "ssl://" + g.Addr()
	}
	return "tcp://" + g.Addr()
}

// IsOpen reports whether the gateway is open.
func (g *Gateway) IsOpen() bool {
	return g.open.Load()
}

// Open dials the gateway and performs the session handshake. Opening an
// open gateway does nothing. Dial and handshake together are bounded by
// the configured connect timeout.
func (g *Gateway) Open(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.conn != nil {
		return nil
	}

	if g.cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(g.cfg.ConnectTimeout)*time.Second)
		defer cancel()
	}

	conn, err := g.dial(ctx)
	if err != nil {
		return openError(err)
	}

	if err := g.handshake(ctx, conn); err != nil {
		conn.Close()
		return openError(err)
	}

	g.conn = conn
	g.pending = make(map[uint64]chan flowOutcome)
	g.readerDone = make(chan struct{})
	g.open.Store(true)
	go g.readLoop(conn, g.readerDone)

	if g.metrics != nil {
		g.metrics.ConnectionsOpen.Inc()
	}
	g.logger.Info("gateway connection opened",
		"url", g.URL(),
		"server", g.cfg.ServerName,
		"cipher_suites", g.cfg.TLS.CipherSuiteList(),
	)
	return nil
}

func openError(err error) error {
	return domain.NewConnectionError(
		fmt.Sprintf("Error occurred while initializing the gateway connection: %v", err), err)
}

func (g *Gateway) dial(ctx context.Context) (net.Conn, error) {
	dialer := &net.Dialer{}
	if !g.cfg.Secure() {
		return dialer.DialContext(ctx, "tcp", g.Addr())
	}

	ring, err := keyring.Load(g.cfg.TLS.Keyring, g.cfg.TLS.KeyringPassword)
	if err != nil {
		return nil, err
	}
	tlsCfg, err := ring.ClientConfig(g.cfg.Host, g.cfg.TLS.CipherSuites)
	if err != nil {
		return nil, err
	}

	td := &tls.Dialer{NetDialer: dialer, Config: tlsCfg}
	return td.DialContext(ctx, "tcp", g.Addr())
}

func (g *Gateway) handshake(ctx context.Context, conn net.Conn) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("set handshake deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	hello := &wire.Hello{Version: wire.ProtocolVersion, Client: g.client}
	if err := wire.WriteFrame(conn, wire.FrameHello, hello.Marshal()); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	typ, payload, err := wire.ReadFrame(conn)
	if err != nil {
		return fmt.Errorf("read hello ack: %w", err)
	}
	if typ != wire.FrameHelloAck {
		return fmt.Errorf("%w: got %s, want %s", wire.ErrUnexpectedFrame, typ, wire.FrameHelloAck)
	}

	var ack wire.HelloAck
	if err := ack.Unmarshal(payload); err != nil {
		return fmt.Errorf("decode hello ack: %w", err)
	}
	if ack.Code != domain.ECINoError {
		return fmt.Errorf("session rejected by gateway %q: %d (%s)",
			ack.Gateway, ack.Code, domain.ReturnCodeName(int(ack.Code)))
	}
	if ack.Version != wire.ProtocolVersion {
		return fmt.Errorf("unsupported protocol version %d", ack.Version)
	}

	// Once the expiry callback has run, the conn may carry a past deadline.
	if !stop() {
		return fmt.Errorf("handshake: %w", context.Cause(ctx))
	}
	return conn.SetDeadline(time.Time{})
}

// Close closes the gateway. Pending flows fail with
// domain.ErrConnectionClosed. Closing a closed gateway does nothing.
func (g *Gateway) Close() error {
	g.mu.Lock()
	conn := g.conn
	if conn == nil {
		g.mu.Unlock()
		return nil
	}
	done := g.readerDone
	g.detachLocked(domain.ErrConnectionClosed)
	g.mu.Unlock()

	err := conn.Close()
	<-done

	g.logger.Info("gateway connection closed", "url", g.URL())
	if err != nil {
		return domain.NewConnectionError(
			fmt.Sprintf("Error occurred while closing the gateway connection: %v", err), err)
	}
	return nil
}

// detachLocked moves the gateway to closed and fails every pending flow
// with err. g.mu must be held.
func (g *Gateway) detachLocked(err error) {
	g.conn = nil
	g.open.Store(false)
	for id, ch := range g.pending {
		ch <- flowOutcome{err: err}
		delete(g.pending, id)
	}
	if g.metrics != nil {
		g.metrics.ConnectionsOpen.Dec()
	}
}

// fail closes conn after a transport error, unless it was already
// replaced or closed.
func (g *Gateway) fail(conn net.Conn, err error) {
	g.mu.Lock()
	if g.conn != conn {
		g.mu.Unlock()
		return
	}
	g.detachLocked(fmt.Errorf("gateway connection lost: %w", err))
	g.mu.Unlock()

	conn.Close()
	g.logger.Warn("gateway connection lost", "url", g.URL(), "error", err)
}

func (g *Gateway) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	for {
		typ, payload, err := wire.ReadFrame(conn)
		if err != nil {
			g.fail(conn, err)
			return
		}
		if typ != wire.FrameFlowReply {
			g.logger.Warn("ignoring unexpected frame", "type", typ.String())
			continue
		}

		var reply wire.FlowReply
		if err := reply.Unmarshal(payload); err != nil {
			g.fail(conn, err)
			return
		}

		g.mu.Lock()
		ch, ok := g.pending[reply.ID]
		delete(g.pending, reply.ID)
		g.mu.Unlock()

		if !ok {
			g.logger.Warn("dropping reply for unknown flow", "id", reply.ID)
			continue
		}
		ch <- flowOutcome{reply: &reply}
	}
}

// Flow sends req to the gateway and waits for its reply. A cancelled ctx
// abandons the wait; the request itself is not recalled.
func (g *Gateway) Flow(ctx context.Context, req *domain.Request) (*domain.FlowResult, error) {
	id := g.nextID.Add(1)
	frame, err := wire.EncodeFrame(wire.FrameFlowRequest, wire.NewFlowRequest(id, req).Marshal())
	if err != nil {
		return nil, err
	}

	ch := make(chan flowOutcome, 1)

	g.mu.Lock()
	conn := g.conn
	if conn == nil {
		g.mu.Unlock()
		return nil, domain.ErrConnectionClosed
	}
	g.pending[id] = ch
	g.mu.Unlock()

	g.writeMu.Lock()
	_, err = conn.Write(frame)
	g.writeMu.Unlock()
	if err != nil {
		// A partial frame leaves the stream unusable.
		g.fail(conn, err)
		out := <-ch
		g.logger.Debug("flow request not sent",
			"flow", id, "request_id", logger.RequestIDFromContext(ctx), "error", err)
		return nil, out.err
	}

	select {
	case out := <-ch:
		if out.err != nil {
			g.logger.Debug("flow failed",
				"flow", id, "request_id", logger.RequestIDFromContext(ctx), "error", out.err)
			return nil, out.err
		}
		return out.reply.Result(), nil
	case <-ctx.Done():
		g.forget(id)
		g.logger.Debug("flow abandoned",
			"flow", id, "request_id", logger.RequestIDFromContext(ctx), "error", ctx.Err())
		return nil, ctx.Err()
	}
}

func (g *Gateway) forget(id uint64) {
	g.mu.Lock()
	delete(g.pending, id)
	g.mu.Unlock()
}
