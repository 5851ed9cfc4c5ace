package gatewayserver

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/ecigate-go/internal/core/domain"
	"github.com/yndnr/ecigate-go/internal/gateway/wire"
	"github.com/yndnr/ecigate-go/internal/storage/journal"
	"github.com/yndnr/ecigate-go/internal/telemetry/metric"
)

// Default timeouts.
const (
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 30 * time.Second
)

// Config holds the gateway daemon configuration.
type Config struct {
	// Addr is the listen address.
	Addr string
	// TLSConfig enables TLS on the listener when set.
	TLSConfig *tls.Config
	// Name is reported to clients in HelloAck.
	Name string
	// Servers lists the CICS server names accepted in flow requests.
	Servers []string
	// Users maps user IDs to passwords.
	Users map[string]string
	// RequestsPerSecond limits each user. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
	// DefaultTimeout bounds calls that carry no ECI timeout. Zero means
	// no bound.
	DefaultTimeout time.Duration
	// MaxConnections caps concurrent client sessions. Zero means no cap.
	MaxConnections int
	// IdleTimeout closes sessions with no flow in progress and no traffic
	// for the given time.
	// Zero disables it.
	IdleTimeout      time.Duration
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// Journal records served flows.
type Journal interface {
	Append(ctx context.Context, e *journal.Entry) error
}

// Pool runs flow handlers.
type Pool interface {
	Go(task func()) error
}

// Server is the ECI gateway daemon.
//
// Each client session is served by one reader goroutine. Flow requests of
// a session are handled concurrently on the pool and their replies are
// written back in completion order.
type Server struct {
	cfg      Config
	programs *Registry
	logger   *slog.Logger
	metrics  *metric.Registry
	journal  Journal
	pool     Pool

	servers map[string]struct{}
	limiter *limiterRegistry

	usersMu sync.RWMutex
	users   map[string]string

	ln      net.Listener
	running atomic.Bool
	active  atomic.Int64
	wg      sync.WaitGroup

	connsMu sync.Mutex
	conns   map[*conn]struct{}

	baseCtx context.Context
	cancel  context.CancelFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics enables flow and connection metrics.
func WithMetrics(m *metric.Registry) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithJournal records every served flow.
func WithJournal(j Journal) Option {
	return func(s *Server) {
		s.journal = j
	}
}

// WithPool runs flow handlers on p instead of fresh goroutines.
func WithPool(p Pool) Option {
	return func(s *Server) {
		s.pool = p
	}
}

// WithPrograms serves the programs in r. By default all builtins are
// installed.
func WithPrograms(r *Registry) Option {
	return func(s *Server) {
		s.programs = r
	}
}

// New creates a gateway daemon.
func New(cfg Config, opts ...Option) *Server {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}

	s := &Server{
		cfg:     cfg,
		logger:  slog.Default(),
		servers: make(map[string]struct{}, len(cfg.Servers)),
		limiter: newLimiterRegistry(cfg.RequestsPerSecond, cfg.Burst),
		conns:   make(map[*conn]struct{}),
	}
	for _, name := range cfg.Servers {
		s.servers[name] = struct{}{}
	}
	s.SetUsers(cfg.Users)

	for _, opt := range opts {
		opt(s)
	}
	if s.programs == nil {
		s.programs = NewRegistry()
		InstallAllBuiltins(s.programs)
	}
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	return s
}

// SetUsers replaces the user table. Sessions already open keep running;
// the new table applies to the next flow.
func (s *Server) SetUsers(users map[string]string) {
	table := make(map[string]string, len(users))
	for user, password := range users {
		table[user] = password
	}
	s.usersMu.Lock()
	s.users = table
	s.usersMu.Unlock()
}

// Start binds the listener and serves clients in the background.
func (s *Server) Start(ctx context.Context) error {
	var (
		ln  net.Listener
		err error
	)
	if s.cfg.TLSConfig != nil {
		ln, err = tls.Listen("tcp", s.cfg.Addr, s.cfg.TLSConfig)
	} else {
		ln, err = net.Listen("tcp", s.cfg.Addr)
	}
	if err != nil {
		return fmt.Errorf("gatewayserver: listen %s: %w", s.cfg.Addr, err)
	}

	s.ln = ln
	s.running.Store(true)

	s.logger.Info("gateway server listening",
		"address", ln.Addr().String(),
		"tls", s.cfg.TLSConfig != nil,
		"servers", s.cfg.Servers,
		"programs", s.programs.Names())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil && s.running.Load() {
			s.logger.Error("gateway server accept error", "error", err)
		}
	}()
	return nil
}

// Status is a point-in-time view of the daemon.
type Status struct {
	Name              string   `json:"name"`
	Addr              string   `json:"addr"`
	TLS               bool     `json:"tls"`
	Running           bool     `json:"running"`
	Servers           []string `json:"servers"`
	Programs          []string `json:"programs"`
	ActiveConnections int64    `json:"active_connections"`
	MaxConnections    int      `json:"max_connections"`
}

// Status reports the daemon state.
func (s *Server) Status() Status {
	st := Status{
		Name:              s.cfg.Name,
		TLS:               s.cfg.TLSConfig != nil,
		Running:           s.running.Load(),
		Servers:           append([]string(nil), s.cfg.Servers...),
		Programs:          s.programs.Names(),
		ActiveConnections: s.active.Load(),
		MaxConnections:    s.cfg.MaxConnections,
	}
	if addr := s.Addr(); addr != nil {
		st.Addr = addr.String()
	}
	return st
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown stops accepting, closes every session and cancels running
// programs, then waits for the session goroutines to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}

	s.cancel()

	s.connsMu.Lock()
	for c := range s.conns {
		c.close()
	}
	s.connsMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	return firstErr
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		c := &conn{nc: nc, remote: nc.RemoteAddr().String()}
		if !s.track(c) {
			nc.Close()
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(c)
			s.serveConn(c)
		}()
	}
}

func (s *Server) track(c *conn) bool {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	if !s.running.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c *conn) {
	s.connsMu.Lock()
	delete(s.conns, c)
	s.connsMu.Unlock()
}

// conn is one client session.
type conn struct {
	nc     net.Conn
	remote string

	writeMu  sync.Mutex
	closed   atomic.Bool
	inflight sync.WaitGroup

	// busy counts flows being served; lastActive is the unix nano time of
	// the last frame read or reply written.
	busy       atomic.Int64
	lastActive atomic.Int64
}

func (c *conn) touch() {
	c.lastActive.Store(time.Now().UnixNano())
}

func (c *conn) close() {
	if c.closed.CompareAndSwap(false, true) {
		c.nc.Close()
	}
}

func (c *conn) writeFrame(typ wire.FrameType, payload []byte, timeout time.Duration) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.nc.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return wire.WriteFrame(c.nc, typ, payload)
}

func (s *Server) serveConn(c *conn) {
	defer c.close()

	n := s.active.Add(1)
	defer s.active.Add(-1)
	if s.metrics != nil {
		s.metrics.ServerConnections.Inc()
		defer s.metrics.ServerConnections.Dec()
	}

	log := s.logger.With("remote", c.remote)

	code := s.handshake(c, n, log)
	if code != domain.ECINoError {
		return
	}
	log.Debug("session opened")

	defer c.inflight.Wait()

	if err := c.nc.SetReadDeadline(time.Time{}); err != nil {
		return
	}
	c.touch()
	if s.cfg.IdleTimeout > 0 {
		done := make(chan struct{})
		defer close(done)
		go s.watchIdle(c, done, log)
	}

	for {
		typ, payload, err := wire.ReadFrame(c.nc)
		if err != nil {
			s.logReadError(log, err)
			return
		}
		if typ != wire.FrameFlowRequest {
			log.Warn("protocol violation", "frame", typ.String())
			return
		}

		req := &wire.FlowRequest{}
		if err := req.Unmarshal(payload); err != nil {
			log.Warn("malformed flow request", "error", err)
			return
		}

		c.touch()
		c.inflight.Add(1)
		c.busy.Add(1)
		task := func() {
			defer c.inflight.Done()
			defer c.busy.Add(-1)
			defer c.touch()
			s.serveFlow(c, req, log)
		}
		if err := s.spawn(task); err != nil {
			c.busy.Add(-1)
			c.inflight.Done()
			log.Warn("flow rejected", "id", req.ID, "error", err)
			reply := &wire.FlowReply{ID: req.ID, OperationCode: domain.ECIErrResourceShortage}
			if err := c.writeFrame(wire.FrameFlowReply, reply.Marshal(), s.cfg.WriteTimeout); err != nil {
				return
			}
		}
	}
}

// watchIdle closes c once it has had no flow in progress and no traffic
// for IdleTimeout. It returns when done is closed.
func (s *Server) watchIdle(c *conn, done <-chan struct{}, log *slog.Logger) {
	tick := time.NewTicker(max(s.cfg.IdleTimeout/4, time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-done:
			return
		case <-tick.C:
			if c.busy.Load() > 0 {
				continue
			}
			if time.Since(time.Unix(0, c.lastActive.Load())) >= s.cfg.IdleTimeout {
				log.Debug("session idle timeout", "idle_timeout", s.cfg.IdleTimeout)
				c.close()
				return
			}
		}
	}
}

// handshake answers the client's Hello. It returns the code sent in
// HelloAck; any non-zero code ends the session.
func (s *Server) handshake(c *conn, active int64, log *slog.Logger) int32 {
	if err := c.nc.SetReadDeadline(time.Now().Add(s.cfg.HandshakeTimeout)); err != nil {
		return domain.ECIErrSystemError
	}

	typ, payload, err := wire.ReadFrame(c.nc)
	if err != nil {
		s.logReadError(log, err)
		return domain.ECIErrSystemError
	}
	if typ != wire.FrameHello {
		log.Warn("expected hello", "frame", typ.String())
		return domain.ECIErrSystemError
	}

	var hello wire.Hello
	if err := hello.Unmarshal(payload); err != nil {
		log.Warn("malformed hello", "error", err)
		return domain.ECIErrSystemError
	}

	var code int32 = domain.ECINoError
	switch {
	case hello.Version != wire.ProtocolVersion:
		code = domain.ECIErrInvalidVersion
	case s.cfg.MaxConnections > 0 && active > int64(s.cfg.MaxConnections):
		code = domain.ECIErrMaxSessions
	}

	ack := &wire.HelloAck{Version: wire.ProtocolVersion, Gateway: s.cfg.Name, Code: code}
	if err := c.writeFrame(wire.FrameHelloAck, ack.Marshal(), s.cfg.WriteTimeout); err != nil {
		log.Debug("hello ack write failed", "error", err)
		return domain.ECIErrSystemError
	}
	if code != domain.ECINoError {
		log.Warn("session rejected",
			"client", hello.Client,
			"version", hello.Version,
			"code", domain.ReturnCodeName(int(code)))
	}
	return code
}

func (s *Server) logReadError(log *slog.Logger, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		log.Debug("session closed")
	case errors.As(err, &netErr) && netErr.Timeout():
		log.Debug("session timed out")
	case errors.Is(err, wire.ErrChecksumMismatch), errors.Is(err, wire.ErrFrameTooLarge),
		errors.Is(err, wire.ErrCorruptedFrame):
		log.Warn("protocol error", "error", err)
	default:
		log.Debug("session read error", "error", err)
	}
}

func (s *Server) spawn(task func()) error {
	if s.pool == nil {
		go task()
		return nil
	}
	return s.pool.Go(task)
}

func (s *Server) serveFlow(c *conn, req *wire.FlowRequest, log *slog.Logger) {
	reply := s.handleFlow(s.baseCtx, c.remote, req)
	if err := c.writeFrame(wire.FrameFlowReply, reply.Marshal(), s.cfg.WriteTimeout); err != nil {
		log.Debug("flow reply write failed", "id", req.ID, "error", err)
		c.close()
	}
}
