package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/infrastructure/browser/fake"
	"signup-e2e/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingFactory struct {
	mu       sync.Mutex
	browsers []*fake.Browser
	err      error
}

func (f *countingFactory) New(ctx context.Context) (output.BrowserPort, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b := fake.New()
	f.browsers = append(f.browsers, b)
	return b, nil
}

func (f *countingFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.browsers)
}

func newTestManager() (*SessionManager, *countingFactory) {
	f := &countingFactory{}
	m := NewSessionManager(f.New, logger.NewNop())
	m.SetProbeTimeout(50 * time.Millisecond)
	return m, f
}

func TestSessionManager_ReusesLiveSession(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	m, f := newTestManager()
	defer m.Close()

	s1, err := m.Acquire(ctx, 0)
	require.NoError(t, err)
	m.Release(s1)

	s2, err := m.Acquire(ctx, 0)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
	assert.Equal(t, 2, s2.Uses())
	assert.Equal(t, 1, f.count())
}

func TestSessionManager_ReplacesUnresponsiveSession(t *testing.T) {
	ctx := context.Background()
	m, f := newTestManager()
	defer m.Close()

	s1, err := m.Acquire(ctx, 0)
	require.NoError(t, err)
	m.Release(s1)
	f.browsers[0].URLErr = errors.New("target closed")

	s2, err := m.Acquire(ctx, 0)
	require.NoError(t, err)
	assert.NotSame(t, s1, s2)
	assert.True(t, f.browsers[0].Closed())
	assert.Equal(t, SessionStats{Provisioned: 2, Disposed: 1, Replaced: 1}, m.Stats())
}

func TestSessionManager_OneSessionPerWorker(t *testing.T) {
	ctx := context.Background()
	m, f := newTestManager()
	defer m.Close()

	s0, err := m.Acquire(ctx, 0)
	require.NoError(t, err)
	s1, err := m.Acquire(ctx, 1)
	require.NoError(t, err)
	assert.NotSame(t, s0.Browser, s1.Browser)
	assert.Equal(t, []int{0, 1}, m.Active())
	assert.Equal(t, 2, f.count())

	_, err = m.Acquire(ctx, 0)
	assert.ErrorIs(t, err, ErrSessionBusy)
}

func TestSessionManager_DisposeForcesFreshBrowser(t *testing.T) {
	ctx := context.Background()
	m, f := newTestManager()
	defer m.Close()

	s, err := m.Acquire(ctx, 3)
	require.NoError(t, err)
	require.NoError(t, m.Dispose(s))
	require.NoError(t, m.Dispose(s))
	assert.Empty(t, m.Active())

	_, err = m.Acquire(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count())
	assert.Equal(t, 1, m.Stats().Disposed)
}

func TestSessionManager_ResetClearsState(t *testing.T) {
	ctx := context.Background()
	m, f := newTestManager()
	defer m.Close()

	s, err := m.Acquire(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, m.Reset(ctx, s))
	assert.Equal(t, 1, f.browsers[0].CookieClears())
	assert.Equal(t, 1, f.browsers[0].StorageClears())
}

func TestSessionManager_ProvisionError(t *testing.T) {
	m, f := newTestManager()
	f.err = errors.New("no chrome")

	_, err := m.Acquire(context.Background(), 0)
	assert.ErrorContains(t, err, "no chrome")
	assert.Empty(t, m.Active())
}

func TestSessionManager_CloseDisposesAll(t *testing.T) {
	ctx := context.Background()
	m, f := newTestManager()

	for w := 0; w < 3; w++ {
		_, err := m.Acquire(ctx, w)
		require.NoError(t, err)
	}
	require.NoError(t, m.Close())
	for _, b := range f.browsers {
		assert.True(t, b.Closed())
	}

	_, err := m.Acquire(ctx, 0)
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestSessionManager_ConcurrentWorkers(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx := context.Background()
	m, f := newTestManager()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				s, err := m.Acquire(ctx, worker)
				if !assert.NoError(t, err) {
					return
				}
				m.Release(s)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 8, f.count())
	require.NoError(t, m.Close())
}
