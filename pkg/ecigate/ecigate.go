package ecigate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yndnr/ecigate-go/internal/core/domain"
	"github.com/yndnr/ecigate-go/internal/core/service"
	"github.com/yndnr/ecigate-go/internal/gateway/connection"
	"github.com/yndnr/ecigate-go/internal/infra/workpool"
	"github.com/yndnr/ecigate-go/internal/telemetry/metric"
)

// Configuration and request types.
type (
	Config      = domain.ConnectionConfig
	Credentials = domain.Credentials
	TLSConfig   = domain.TLSConfig
	RequestSpec = domain.RequestSpec
	Response    = domain.Response
	Future      = service.Future
	Metrics     = metric.Registry
)

// Pool runs submitted requests. *SharedPool implements it.
type Pool = service.Pool

// SharedPool is an unbounded pool of reusable workers that can serve many
// clients. Idle workers exit after a minute.
type SharedPool = workpool.Cached

// NewSharedPool creates a pool to share between clients with WithPool.
// The caller shuts it down.
func NewSharedPool(logger *slog.Logger, metrics *Metrics) *SharedPool {
	opts := []workpool.Option{}
	if logger != nil {
		opts = append(opts, workpool.WithLogger(logger))
	}
	if metrics != nil {
		opts = append(opts, workpool.WithMetrics(metrics))
	}
	return workpool.NewCached(opts...)
}

// NewMetrics creates a Prometheus registry for WithMetrics. Serve it with
// its Handler method.
func NewMetrics() *Metrics {
	return metric.NewRegistry()
}

// IntPtr returns a pointer to v, for RequestSpec.CommAreaSize.
func IntPtr(v int) *int {
	return domain.IntPtr(v)
}

// Option configures a Client.
type Option func(*options)

type options struct {
	pool       Pool
	logger     *slog.Logger
	metrics    *Metrics
	clientName string
}

// WithPool runs requests on p. Without it the client owns a private pool
// that Close shuts down.
func WithPool(p Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics records client metrics in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithClientName sets the name announced to the gateway.
func WithClientName(name string) Option {
	return func(o *options) {
		o.clientName = name
	}
}

// Client runs CICS programs through one gateway connection. It is safe for
// concurrent use.
type Client struct {
	gateway    *connection.Gateway
	creds      Credentials
	serverName string
	executor   *service.Executor
	ownedPool  *workpool.Cached
	logger     *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// Init validates cfg, opens the gateway connection and returns a client
// bound to it. Every failure is a ConnectionError.
func Init(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	o := options{
		logger:     slog.Default(),
		clientName: connection.DefaultClientName,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, domain.NewConnectionError(
			fmt.Sprintf("Error occurred while initializing the gateway connection: %v", err), err)
	}

	gwOpts := []connection.Option{
		connection.WithLogger(o.logger),
		connection.WithClientName(o.clientName),
	}
	if o.metrics != nil {
		gwOpts = append(gwOpts, connection.WithMetrics(o.metrics))
	}
	gw := connection.New(cfg, gwOpts...)
	if err := gw.Open(ctx); err != nil {
		return nil, err
	}

	c := &Client{
		gateway:    gw,
		creds:      cfg.Credentials,
		serverName: cfg.ServerName,
		logger:     o.logger,
	}

	pool := o.pool
	if pool == nil {
		c.ownedPool = NewSharedPool(o.logger, o.metrics)
		pool = c.ownedPool
	}

	execOpts := []service.ExecutorOption{service.WithLogger(o.logger)}
	if o.metrics != nil {
		execOpts = append(execOpts, service.WithMetrics(o.metrics))
	}
	c.executor = service.NewExecutor(pool, execOpts...)

	return c, nil
}

// Execute runs the program described by spec and waits for its outcome.
// Cancelling ctx stops the wait; the call itself runs to completion.
func (c *Client) Execute(ctx context.Context, spec RequestSpec) (*Response, error) {
	f, err := c.ExecuteAsync(ctx, spec)
	if err != nil {
		return nil, err
	}
	return f.Wait(ctx)
}

// ExecuteAsync encodes spec and submits it without waiting. Encoding
// failures are returned directly as EncodingErrors; everything later is
// delivered through the Future.
func (c *Client) ExecuteAsync(ctx context.Context, spec RequestSpec) (*Future, error) {
	req, err := domain.Encode(c.serverName, c.creds, spec)
	if err != nil {
		return nil, err
	}
	return c.executor.Submit(ctx, c.gateway, req), nil
}

// Close closes the gateway connection and, when the client owns its pool,
// waits for the pool to drain. Calls after the first return the same
// result.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.gateway.Close()
		if c.ownedPool != nil {
			if err := c.ownedPool.Shutdown(context.Background()); err != nil {
				c.logger.Warn("client pool shutdown failed", "error", err)
			}
		}
	})
	return c.closeErr
}

// IsOpen reports whether the gateway connection is open. A connection the
// gateway dropped reports false.
func (c *Client) IsOpen() bool {
	return c.gateway.IsOpen()
}

// URL returns the gateway endpoint, tcp://host:port or ssl://host:port.
func (c *Client) URL() string {
	return c.gateway.URL()
}

// Config returns a copy of the client's connection configuration.
func (c *Client) Config() Config {
	return c.gateway.Config()
}
