package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/trends"
)

type fakeSession struct {
	id       uint64
	closeErr error

	mu     sync.Mutex
	closed int
}

func (f *fakeSession) ID() uint64 { return f.id }

func (f *fakeSession) Navigate(context.Context, string) error { return nil }

func (f *fakeSession) AwaitElement(_ context.Context, locator string, _ time.Duration) (trends.Element, error) {
	return trends.Element{Locator: locator}, nil
}

func (f *fakeSession) SendKeys(context.Context, trends.Element, string) error { return nil }

func (f *fakeSession) Texts(context.Context, trends.Element, string) ([]string, error) { return nil, nil }

func (f *fakeSession) close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return f.closeErr
}

func (f *fakeSession) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeLauncher struct {
	mu       sync.Mutex
	launched []*fakeSession
	err      error
	closeErr error
}

func (l *fakeLauncher) launch(_ context.Context, id uint64) (liveSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	s := &fakeSession{id: id, closeErr: l.closeErr}
	l.launched = append(l.launched, s)
	return s, nil
}

func (l *fakeLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.launched)
}

func TestManagerAcquireReusesSession(t *testing.T) {
	t.Parallel()

	fl := &fakeLauncher{}
	m := newManager(fl.launch, zap.NewNop())

	first, err := m.Acquire(context.Background())
	require.NoError(t, err)
	second, err := m.Acquire(context.Background())
	require.NoError(t, err)

	require.Equal(t, first.ID(), second.ID())
	require.Equal(t, 1, fl.count())
}

func TestManagerAcquireConcurrentCreatesOnce(t *testing.T) {
	t.Parallel()

	fl := &fakeLauncher{}
	m := newManager(fl.launch, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.Acquire(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, fl.count())
}

func TestManagerResetRecreatesSession(t *testing.T) {
	t.Parallel()

	fl := &fakeLauncher{}
	m := newManager(fl.launch, zap.NewNop())

	first, err := m.Acquire(context.Background())
	require.NoError(t, err)
	m.Reset()
	second, err := m.Acquire(context.Background())
	require.NoError(t, err)

	require.NotEqual(t, first.ID(), second.ID())
	require.Equal(t, 1, fl.launched[0].closeCount())
	require.Equal(t, 0, fl.launched[1].closeCount())
}

func TestManagerResetSwallowsTeardownErrors(t *testing.T) {
	t.Parallel()

	fl := &fakeLauncher{closeErr: errors.New("browser already gone")}
	m := newManager(fl.launch, zap.NewNop())

	_, err := m.Acquire(context.Background())
	require.NoError(t, err)
	m.Reset()

	require.Nil(t, m.current)
	m.Reset()
	require.Equal(t, 1, fl.launched[0].closeCount())
}

func TestManagerAcquireCreationError(t *testing.T) {
	t.Parallel()

	fl := &fakeLauncher{err: errors.New("chrome not found")}
	m := newManager(fl.launch, zap.NewNop())

	_, err := m.Acquire(context.Background())
	require.ErrorIs(t, err, trends.ErrSessionCreation)
	require.Nil(t, m.current)

	fl.mu.Lock()
	fl.err = nil
	fl.mu.Unlock()
	sess, err := m.Acquire(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(2), sess.ID())
}

func TestManagerResetWithoutSession(t *testing.T) {
	t.Parallel()

	m := newManager((&fakeLauncher{}).launch, nil)
	m.Reset()
	require.Nil(t, m.current)
}

func TestAllocatorOptions(t *testing.T) {
	t.Parallel()

	base := len(Config{}.allocatorOptions())
	full := Config{
		Headless:     true,
		NoSandbox:    true,
		Proxy:        "http://proxy:3128",
		UserAgent:    "agent",
		WindowWidth:  800,
		WindowHeight: 600,
	}
	require.Equal(t, base+4, len(full.allocatorOptions()))
}

func TestStartupTimeoutDefault(t *testing.T) {
	t.Parallel()

	require.Equal(t, 30*time.Second, Config{}.startupTimeout())
	require.Equal(t, time.Second, Config{StartupTimeout: time.Second}.startupTimeout())
}

func TestForwardCancel(t *testing.T) {
	t.Parallel()

	parent, cancelParent := context.WithCancel(context.Background())
	child, cancelChild := context.WithCancel(context.Background())
	defer cancelChild()

	stop := forwardCancel(parent, cancelChild)
	defer stop()
	cancelParent()

	select {
	case <-child.Done():
	case <-time.After(time.Second):
		t.Fatal("expected parent cancellation to propagate")
	}
}
