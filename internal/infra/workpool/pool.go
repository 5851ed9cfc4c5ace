package workpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yndnr/ecigate-go/internal/telemetry/metric"
)

// DefaultIdleTimeout is how long an idle worker waits for a task before
// exiting.
const DefaultIdleTimeout = 60 * time.Second

var (
	// ErrPoolStopped is returned when a task is submitted after Shutdown.
	ErrPoolStopped = errors.New("workpool: pool stopped")
	// ErrNilTask is returned when a nil task is submitted.
	ErrNilTask = errors.New("workpool: nil task")
)

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers   int64
	Idle      int64
	Submitted int64
	Completed int64
	Panicked  int64
}

// Cached is an unbounded worker pool. A task is handed to an idle worker
// when one is waiting and starts a new worker otherwise. Workers idle for
// longer than the idle timeout exit, so the pool shrinks to zero when
// unused.
type Cached struct {
	idleTimeout time.Duration
	logger      *slog.Logger
	metrics     *metric.Registry

	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup

	lifecycleMu sync.Mutex
	stopped     bool

	workers   atomic.Int64
	idle      atomic.Int64
	submitted atomic.Int64
	completed atomic.Int64
	panicked  atomic.Int64
}

// Option configures a Cached pool.
type Option func(*Cached)

// WithIdleTimeout sets how long idle workers are kept.
func WithIdleTimeout(d time.Duration) Option {
	return func(p *Cached) {
		if d > 0 {
			p.idleTimeout = d
		}
	}
}

// WithLogger sets the logger used to report task panics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Cached) {
		p.logger = logger
	}
}

// WithMetrics enables pool metrics.
func WithMetrics(m *metric.Registry) Option {
	return func(p *Cached) {
		p.metrics = m
	}
}

// NewCached creates a cached pool. No workers are started until the first
// task arrives.
func NewCached(opts ...Option) *Cached {
	p := &Cached{
		idleTimeout: DefaultIdleTimeout,
		logger:      slog.Default(),
		tasks:       make(chan func()),
		quit:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Go schedules task. It never blocks on task execution.
func (p *Cached) Go(task func()) error {
	if task == nil {
		return ErrNilTask
	}

	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.stopped {
		return ErrPoolStopped
	}

	p.submitted.Add(1)
	if p.metrics != nil {
		p.metrics.PoolTasks.Inc()
	}

	select {
	case p.tasks <- task:
		// An idle worker took it.
	default:
		p.wg.Add(1)
		p.workers.Add(1)
		if p.metrics != nil {
			p.metrics.PoolWorkers.Inc()
		}
		go p.worker(task)
	}
	return nil
}

func (p *Cached) worker(task func()) {
	defer func() {
		p.workers.Add(-1)
		if p.metrics != nil {
			p.metrics.PoolWorkers.Dec()
		}
		p.wg.Done()
	}()

	timer := time.NewTimer(p.idleTimeout)
	defer timer.Stop()

	for {
		p.run(task)

		timer.Reset(p.idleTimeout)
		p.setIdle(1)

		select {
		case task = <-p.tasks:
			p.setIdle(-1)
		case <-timer.C:
			p.setIdle(-1)
			return
		case <-p.quit:
			p.setIdle(-1)
			return
		}
	}
}

func (p *Cached) setIdle(delta int64) {
	p.idle.Add(delta)
	if p.metrics != nil {
		p.metrics.PoolIdleWorkers.Add(float64(delta))
	}
}

func (p *Cached) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			p.logger.Error("workpool task panicked", "panic", fmt.Sprint(r))
		}
		p.completed.Add(1)
	}()
	task()
}

// Shutdown stops accepting tasks and waits for running tasks to finish or
// for ctx to end. Idle workers exit immediately.
func (p *Cached) Shutdown(ctx context.Context) error {
	p.lifecycleMu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.quit)
	}
	p.lifecycleMu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("workpool: shutdown: %w", ctx.Err())
	}
}

// Stats returns current pool statistics.
func (p *Cached) Stats() Stats {
	return Stats{
		Workers:   p.workers.Load(),
		Idle:      p.idle.Load(),
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
	}
}
