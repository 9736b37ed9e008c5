package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func(ctx context.Context) error
}

func (m *mockService) Start(ctx context.Context) error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn(ctx)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
		return nil
	}
}

func TestLifecycle_CancelStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1 := &mockService{}
	svc2 := &mockService{}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	require.Eventually(t, func() bool {
		return svc1.started.Load() && svc2.started.Load()
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	assert.NoError(t, wait(t, done))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycle_FinishedJobEndsRun(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	server := &mockService{}
	job := &mockService{startFn: func(context.Context) error { return nil }}
	lc.Add("metrics", server)
	lc.Add("job", job)

	assert.NoError(t, wait(t, runAsync(lc, context.Background())))
	assert.True(t, server.stopped.Load())
	assert.True(t, job.stopped.Load())
}

func TestLifecycle_FailureIsReturned(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	lc.Add("idle", &mockService{})
	lc.Add("broken", &mockService{startFn: func(context.Context) error { return boom }})

	err := wait(t, runAsync(lc, context.Background()))
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "service broken")
}

func TestLifecycle_NoServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, NewLifecycle(zaptest.NewLogger(t)).Run(ctx))
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func(context.Context) error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start(context.Background())
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)

	assert.NotPanics(t, (&FuncService{}).Stop)
}
