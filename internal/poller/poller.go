// Package poller runs a function on a fixed interval until cancelled.
package poller

import (
	"context"
	"sync"
	"time"
)

// TickerFunc returns a channel delivering ticks every d and a function that
// stops it.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

type Option func(*options)

type options struct {
	ticker TickerFunc
}

// WithTicker replaces the wall-clock ticker, mainly for tests.
func WithTicker(f TickerFunc) Option {
	return func(o *options) {
		if f != nil {
			o.ticker = f
		}
	}
}

// Handle controls a running task.
type Handle struct {
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

// Start calls fn on every tick, one call at a time, until the handle is
// cancelled or parent is done. fn receives a context that is cancelled with
// the task. The first call happens after one interval.
func Start(parent context.Context, interval time.Duration, fn func(ctx context.Context), opts ...Option) *Handle {
	o := options{ticker: systemTicker}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(parent)
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	ticks, stop := o.ticker(interval)
	go func() {
		defer close(h.done)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
	return h
}

// Cancel stops the task. It does not wait for a running tick to return and is
// safe to call more than once, on a nil handle, or after the task ended.
func (h *Handle) Cancel() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
}

// Done is closed once the task loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task loop has exited.
func (h *Handle) Wait() {
	if h == nil {
		return
	}
	<-h.done
}
