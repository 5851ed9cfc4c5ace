package service

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/yndnr/ecigate-go/internal/core/domain"
)

// ErrPending is returned by Result before the future is resolved.
var ErrPending = errors.New("service: result not ready")

// Future is the completion handle of a submitted request. It is resolved
// exactly once; later resolutions are ignored.
type Future struct {
	id       string
	done     chan struct{}
	resolved atomic.Bool
	resp     *domain.Response
	err      error
}

func newFuture(id string) *Future {
	return &Future{id: id, done: make(chan struct{})}
}

// ID returns the request ID assigned at submission.
func (f *Future) ID() string {
	return f.id
}

// resolve completes the future. It reports false if the future was
// already resolved, in which case resp and err are discarded.
func (f *Future) resolve(resp *domain.Response, err error) bool {
	if !f.resolved.CompareAndSwap(false, true) {
		return false
	}
	f.resp = resp
	f.err = err
	close(f.done)
	return true
}

// Done returns a channel closed when the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is resolved or ctx ends. Ending ctx stops
// the wait only; the request keeps running.
func (f *Future) Wait(ctx context.Context) (*domain.Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the outcome without blocking, or ErrPending.
func (f *Future) Result() (*domain.Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	default:
		return nil, ErrPending
	}
}
