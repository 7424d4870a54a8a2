package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestNewProbeWorker_Defaults(t *testing.T) {
	w := NewProbeWorker(new(MockPinger), nil)
	assert.Equal(t, 30*time.Second, w.interval)
	assert.Equal(t, 5*time.Second, w.timeout)
	assert.True(t, w.healthy.Load())

	short := 100 * time.Millisecond
	w = NewProbeWorker(new(MockPinger), &short)
	assert.Equal(t, short, w.interval)
	assert.Equal(t, short, w.timeout)

	zero := time.Duration(0)
	w = NewProbeWorker(new(MockPinger), &zero)
	assert.Equal(t, 30*time.Second, w.interval)
}

func TestProbeWorker_Check(t *testing.T) {
	store := new(MockPinger)
	down := errors.New("connection refused")
	store.On("HealthCheck", mock.Anything).Return(nil).Once()
	store.On("HealthCheck", mock.Anything).Return(down).Twice()
	store.On("HealthCheck", mock.Anything).Return(nil).Once()

	w := NewProbeWorker(store, nil)
	ctx := context.Background()

	assert.True(t, w.Check(ctx))
	assert.True(t, w.healthy.Load())

	assert.False(t, w.Check(ctx))
	assert.False(t, w.Check(ctx))
	assert.False(t, w.healthy.Load())
	assert.Equal(t, int64(2), w.failures.Load())

	assert.True(t, w.Check(ctx))
	assert.True(t, w.healthy.Load())
	assert.Equal(t, int64(0), w.failures.Load())

	store.AssertExpectations(t)
}

func TestProbeWorker_CheckHasDeadline(t *testing.T) {
	store := new(MockPinger)
	store.On("HealthCheck", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(nil)

	w := NewProbeWorker(store, nil)
	require.True(t, w.Check(context.Background()))
	store.AssertExpectations(t)
}

type countingPinger struct {
	mtx   sync.Mutex
	calls int
}

func (p *countingPinger) HealthCheck(ctx context.Context) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.calls++
	return nil
}

func (p *countingPinger) Calls() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.calls
}

func TestProbeWorker_StartStops(t *testing.T) {
	store := &countingPinger{}
	interval := 10 * time.Millisecond
	w := NewProbeWorker(store, &interval)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Calls() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker не остановился после отмены контекста")
	}
}
