package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (m *manualTicker) ticker(time.Duration) (<-chan time.Time, func()) {
	return m.ch, func() { m.stopped.Store(true) }
}

func TestStart_TicksSequentially(t *testing.T) {
	mt := newManualTicker()
	var calls, running, overlap atomic.Int32

	h := Start(context.Background(), time.Second, func(ctx context.Context) {
		if running.Add(1) > 1 {
			overlap.Add(1)
		}
		calls.Add(1)
		time.Sleep(time.Millisecond)
		running.Add(-1)
	}, WithTicker(mt.ticker))

	for i := 0; i < 5; i++ {
		mt.ch <- time.Now()
	}
	assert.Eventually(t, func() bool { return calls.Load() == 5 }, time.Second, time.Millisecond)
	h.Cancel()
	h.Wait()

	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, int32(0), overlap.Load())
	assert.True(t, mt.stopped.Load())
}

func TestHandle_CancelIdempotent(t *testing.T) {
	mt := newManualTicker()
	h := Start(context.Background(), time.Second, func(ctx context.Context) {}, WithTicker(mt.ticker))

	assert.NotPanics(t, func() {
		h.Cancel()
		h.Cancel()
		h.Cancel()
	})

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not stop")
	}

	var nilHandle *Handle
	assert.NotPanics(t, func() {
		nilHandle.Cancel()
		nilHandle.Wait()
	})
}

func TestHandle_CancelAfterParentDone(t *testing.T) {
	mt := newManualTicker()
	parent, cancel := context.WithCancel(context.Background())
	h := Start(parent, time.Second, func(ctx context.Context) {}, WithTicker(mt.ticker))

	cancel()
	h.Wait()
	assert.NotPanics(t, h.Cancel)
}

func TestStart_TickContextCancelled(t *testing.T) {
	mt := newManualTicker()
	entered := make(chan struct{})
	observed := make(chan error, 1)

	h := Start(context.Background(), time.Second, func(ctx context.Context) {
		close(entered)
		<-ctx.Done()
		observed <- ctx.Err()
	}, WithTicker(mt.ticker))

	mt.ch <- time.Now()
	<-entered
	h.Cancel()

	select {
	case err := <-observed:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("tick context was not cancelled")
	}
	h.Wait()
}

func TestStart_SystemTicker(t *testing.T) {
	var calls atomic.Int32
	h := Start(context.Background(), 5*time.Millisecond, func(ctx context.Context) {
		calls.Add(1)
	})
	defer h.Cancel()

	assert.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
}
