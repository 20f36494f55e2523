// Package session owns the lifetime of the single remote browser session.
package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/logging"
	"github.com/JakeFAU/trendwatch/internal/metrics"
	"github.com/JakeFAU/trendwatch/internal/trends"
)

type liveSession interface {
	trends.Session
	close() error
}

// launcher starts a new live session with the given id.
type launcher func(ctx context.Context, id uint64) (liveSession, error)

// Manager lazily creates, reuses, and tears down one browser session.
// All access to the handle is serialized by mu.
type Manager struct {
	mu      sync.Mutex
	launch  launcher
	current liveSession
	nextID  uint64
	logger  *zap.Logger
}

// NewManager constructs a Manager that launches headless Chrome via chromedp.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	return newManager(chromedpLauncher(cfg), logger)
}

func newManager(launch launcher, logger *zap.Logger) *Manager {
	return &Manager{
		launch: launch,
		logger: logging.Named(logger, "session"),
	}
}

// Acquire returns the live session, creating one if absent.
func (m *Manager) Acquire(ctx context.Context) (trends.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return m.current, nil
	}
	m.nextID++
	id := m.nextID
	sess, err := m.launch(ctx, id)
	metrics.ObserveSessionCreation(err == nil)
	if err != nil {
		m.logger.Error("session creation failed", zap.Uint64("session_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", trends.ErrSessionCreation, err)
	}
	m.logger.Info("session created", zap.Uint64("session_id", id))
	m.current = sess
	return sess, nil
}

// Reset tears down the live session, if any. Teardown errors are logged and
// the handle is discarded regardless.
func (m *Manager) Reset() {
	m.mu.Lock()
	sess := m.current
	m.current = nil
	m.mu.Unlock()

	if sess == nil {
		return
	}
	metrics.ObserveSessionReset()
	if err := sess.close(); err != nil {
		m.logger.Warn("session teardown failed", zap.Uint64("session_id", sess.ID()), zap.Error(err))
		return
	}
	m.logger.Info("session closed", zap.Uint64("session_id", sess.ID()))
}
