// Package service provides the execution engine for ECIGate.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/ecigate-go/internal/core/domain"
	"github.com/yndnr/ecigate-go/internal/infra/workpool"
	"github.com/yndnr/ecigate-go/internal/telemetry/logger"
	"github.com/yndnr/ecigate-go/internal/telemetry/metric"
)

// Transport flows encoded requests to a CICS server.
// *connection.Gateway implements it.
type Transport interface {
	IsOpen() bool
	Flow(ctx context.Context, req *domain.Request) (*domain.FlowResult, error)
}

// Pool runs tasks asynchronously. *workpool.Cached implements it.
type Pool interface {
	Go(task func()) error
}

// Executor runs encoded requests on a pool and maps transport results to
// responses or errors.
//
// Executor holds no locks; each submission owns its Future.
type Executor struct {
	pool    Pool
	logger  *slog.Logger
	metrics *metric.Registry
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithMetrics enables request metrics.
func WithMetrics(m *metric.Registry) ExecutorOption {
	return func(e *Executor) {
		e.metrics = m
	}
}

// NewExecutor creates an executor scheduling work on pool.
func NewExecutor(pool Pool, opts ...ExecutorOption) *Executor {
	e := &Executor{
		pool:   pool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit schedules req on conn and returns its Future without waiting.
//
// The request runs detached from ctx cancellation: once scheduled it runs
// to completion. A closed conn resolves the future at once with a
// ConnectionError, as does a stopped pool. The future's ID is attached to
// the context passed to conn.Flow.
func (e *Executor) Submit(ctx context.Context, conn Transport, req *domain.Request) *Future {
	f := newFuture(ulid.Make().String())
	ctx = logger.WithRequestID(ctx, f.ID())
	log := e.logger.With("request_id", f.ID(), "program", req.ProgramName)

	if conn == nil || !conn.IsOpen() {
		e.finish(f, log, time.Now(), nil,
			domain.NewConnectionError("gateway connection is not open", domain.ErrConnectionClosed),
			metric.OutcomeError)
		return f
	}

	start := time.Now()
	if e.metrics != nil {
		e.metrics.ClientInflight.Inc()
	}

	ctx = context.WithoutCancel(ctx)
	err := e.pool.Go(func() {
		e.run(ctx, conn, req, f, log, start)
	})
	if err != nil {
		if e.metrics != nil {
			e.metrics.ClientInflight.Dec()
		}
		e.finish(f, log, start, nil, poolError(err), metric.OutcomeError)
	}
	return f
}

// poolError maps a rejected submission. A stopped pool means the client
// was closed.
func poolError(err error) error {
	if errors.Is(err, workpool.ErrPoolStopped) {
		return domain.NewConnectionError("gateway connection is not open", err)
	}
	return domain.ExecutionFailed(err)
}

// Execute submits req and waits for its outcome.
func (e *Executor) Execute(ctx context.Context, conn Transport, req *domain.Request) (*domain.Response, error) {
	return e.Submit(ctx, conn, req).Wait(ctx)
}

func (e *Executor) run(ctx context.Context, conn Transport, req *domain.Request, f *Future, log *slog.Logger, start time.Time) {
	if e.metrics != nil {
		defer e.metrics.ClientInflight.Dec()
	}
	defer func() {
		if r := recover(); r != nil {
			e.finish(f, log, start, nil, domain.ExecutionFailed(fmt.Errorf("panic: %v", r)), metric.OutcomeError)
		}
	}()

	res, err := conn.Flow(ctx, req)
	if err != nil {
		e.finish(f, log, start, nil, domain.ExecutionFailed(err), metric.OutcomeError)
		return
	}

	if res.OperationCode != 0 {
		e.finish(f, log, start, nil, domain.OperationFailed(res.OperationCode), metric.OutcomeOperationFailed)
		return
	}

	if res.CICSReturnCode != domain.ECINoError {
		rejected := domain.RemoteRejected(res.CICSReturnCode)
		if res.AbendCode != "" {
			rejected.Message += ", abend code: " + res.AbendCode
		}
		e.finish(f, log, start, nil, rejected, metric.OutcomeRemoteRejected)
		return
	}

	if res.CommAreaLength == 0 {
		e.finish(f, log, start, &domain.Response{}, nil, metric.OutcomeEmpty)
		return
	}

	if res.CommAreaLength < 0 || len(res.CommArea) < res.CommAreaLength {
		e.finish(f, log, start, nil, domain.NewExecutionError(
			fmt.Sprintf("Error occurred while executing the operation: reported length %d, received %d bytes",
				res.CommAreaLength, len(res.CommArea)),
			0, domain.ErrShortCommArea), metric.OutcomeError)
		return
	}

	payload := make([]byte, res.CommAreaLength)
	copy(payload, res.CommArea)
	e.finish(f, log, start, &domain.Response{Payload: payload}, nil, metric.OutcomeSuccess)
}

// finish resolves f and records the outcome. Only the first call for a
// future has any effect.
func (e *Executor) finish(f *Future, log *slog.Logger, start time.Time, resp *domain.Response, err error, outcome string) {
	if !f.resolve(resp, err) {
		return
	}

	elapsed := time.Since(start)
	if e.metrics != nil {
		e.metrics.ClientRequests.WithLabelValues(outcome).Inc()
		e.metrics.ClientDuration.Observe(elapsed.Seconds())
	}

	if err != nil {
		log.Warn("program call failed",
			"outcome", outcome,
			"code", domain.CodeOf(err),
			"duration", elapsed,
			"error", err,
		)
		return
	}
	log.Debug("program call completed",
		"outcome", outcome,
		"length", len(resp.Payload),
		"duration", elapsed,
	)
}
