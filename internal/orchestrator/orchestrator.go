// Package orchestrator coordinates background fetches against concurrent readers.
//
// State machine:
//
//	Idle --Trigger--> Fetching --outcome--> Completed
//	Completed|Fetching|Idle --Reset--> Fetching
//
// All state lives behind one mutex. Every fetch gets a monotonically increasing
// attempt number; a completion is accepted only if its attempt is still the
// latest, so a run superseded by Reset can never overwrite a newer outcome.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/trendwatch/internal/logging"
	"github.com/JakeFAU/trendwatch/internal/metrics"
	"github.com/JakeFAU/trendwatch/internal/trends"
)

// ErrClosed is returned by Await once the orchestrator has shut down.
var ErrClosed = errors.New("orchestrator closed")

var errSuperseded = errors.New("fetch superseded before extraction")

// Preflighter is implemented by extractors that can reject a run before a
// session is acquired.
type Preflighter interface {
	Preflight() error
}

// Config bounds background work.
type Config struct {
	// FetchTimeout is the hard upper bound on one extraction.
	FetchTimeout time.Duration
	// PersistTimeout bounds one store write.
	PersistTimeout time.Duration
}

// Orchestrator implements the single-flight fetch state machine.
type Orchestrator struct {
	sessions  trends.SessionProvider
	extractor trends.Extractor
	store     trends.RecordStore
	cfg       Config
	logger    *zap.Logger

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	// sessionMu orders session teardown against acquisition across runs.
	sessionMu sync.Mutex

	mu      sync.Mutex
	status  trends.Status
	attempt uint64
	outcome *trends.Outcome
	changed chan struct{}
	closed  bool
}

// New constructs an Orchestrator in the Idle state.
func New(
	sessions trends.SessionProvider,
	extractor trends.Extractor,
	store trends.RecordStore,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 150 * time.Second
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		sessions:  sessions,
		extractor: extractor,
		store:     store,
		cfg:       cfg,
		logger:    logging.Named(logger, "orchestrator"),
		baseCtx:   ctx,
		cancel:    cancel,
		status:    trends.StatusIdle,
		changed:   make(chan struct{}),
	}
}

// Snapshot returns the current state without side effects.
func (o *Orchestrator) Snapshot() trends.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Trigger starts a fetch when Idle. In any other state it only reports the
// current state.
func (o *Orchestrator) Trigger() trends.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.status == trends.StatusIdle && !o.closed {
		o.startLocked(false)
	}
	return o.snapshotLocked()
}

// Reset discards the cached outcome, schedules a session teardown, and starts
// a new fetch immediately. Teardowns run in the background, one at a time, and
// are skipped by attempts that are already superseded. A fetch still in flight is superseded, not
// interrupted; its late completion is discarded.
func (o *Orchestrator) Reset() trends.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return o.snapshotLocked()
	}
	if o.status == trends.StatusFetching {
		o.logger.Info("reset supersedes in-flight fetch", zap.Uint64("attempt", o.attempt))
	}
	o.outcome = nil
	o.startLocked(true)
	return o.snapshotLocked()
}

// Await blocks until the orchestrator reaches Completed or ctx ends.
func (o *Orchestrator) Await(ctx context.Context) (trends.Snapshot, error) {
	for {
		o.mu.Lock()
		snap := o.snapshotLocked()
		changed := o.changed
		closed := o.closed
		o.mu.Unlock()

		if snap.Status == trends.StatusCompleted {
			return snap, nil
		}
		if closed {
			return snap, ErrClosed
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return snap, fmt.Errorf("await fetch: %w", ctx.Err())
		}
	}
}

// Close stops accepting triggers, waits for background work until ctx ends,
// and tears down the live session. Teardown errors are logged by the session
// provider; Close itself only reports a wait timeout.
func (o *Orchestrator) Close(ctx context.Context) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.notifyLocked()
	o.mu.Unlock()

	o.cancel()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("wait for background fetches: %w", ctx.Err())
	}
	o.sessionMu.Lock()
	o.sessions.Reset()
	o.sessionMu.Unlock()
	return err
}

func (o *Orchestrator) startLocked(resetSession bool) {
	o.attempt++
	o.status = trends.StatusFetching
	o.notifyLocked()
	metrics.ObserveFetchStarted()
	o.logger.Info("fetch started", zap.Uint64("attempt", o.attempt), zap.Bool("session_reset", resetSession))

	o.wg.Add(1)
	go o.run(o.attempt, resetSession)
}

func (o *Orchestrator) run(attempt uint64, resetSession bool) {
	defer o.wg.Done()
	start := time.Now()

	ctx, cancel := context.WithTimeout(o.baseCtx, o.cfg.FetchTimeout)
	defer cancel()

	outcome := o.execute(ctx, attempt, resetSession)
	if !o.complete(attempt, outcome, time.Since(start)) {
		return
	}
	if outcome.OK() {
		o.persist(*outcome.Record)
	}
}

func (o *Orchestrator) execute(ctx context.Context, attempt uint64, resetSession bool) trends.Outcome {
	if p, ok := o.extractor.(Preflighter); ok {
		if err := p.Preflight(); err != nil {
			return trends.Failure(err.Error())
		}
	}
	sess, err := o.prepareSession(ctx, attempt, resetSession)
	if err != nil {
		return trends.Failure(err.Error())
	}
	return o.extractor.Run(ctx, sess)
}

// prepareSession tears down the old session when asked and acquires one, but
// only while attempt is still the latest. A superseded run never touches the
// session a newer attempt may already be using.
func (o *Orchestrator) prepareSession(ctx context.Context, attempt uint64, resetSession bool) (trends.Session, error) {
	o.sessionMu.Lock()
	defer o.sessionMu.Unlock()

	if !o.isCurrent(attempt) {
		return nil, errSuperseded
	}
	if resetSession {
		o.sessions.Reset()
		if !o.isCurrent(attempt) {
			return nil, errSuperseded
		}
	}
	sess, err := o.sessions.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !o.isCurrent(attempt) {
		return nil, errSuperseded
	}
	return sess, nil
}

// complete records outcome if attempt is still the latest and reports whether
// it was accepted.
func (o *Orchestrator) complete(attempt uint64, outcome trends.Outcome, took time.Duration) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if attempt != o.attempt {
		metrics.ObserveStaleCompletion()
		o.logger.Info("discarding stale fetch outcome",
			zap.Uint64("attempt", attempt),
			zap.Uint64("current_attempt", o.attempt),
		)
		return false
	}
	o.status = trends.StatusCompleted
	o.outcome = &outcome
	o.notifyLocked()
	metrics.ObserveFetchCompleted(outcome.OK(), took)
	if outcome.OK() {
		o.logger.Info("fetch completed", zap.Uint64("attempt", attempt), zap.Duration("took", took))
	} else {
		o.logger.Warn("fetch failed", zap.Uint64("attempt", attempt), zap.String("reason", outcome.Reason))
	}
	return true
}

// persist is best-effort; failures never touch the served outcome.
func (o *Orchestrator) persist(record trends.FetchRecord) {
	if o.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), o.cfg.PersistTimeout)
	defer cancel()
	if err := o.store.Persist(ctx, record); err != nil {
		o.logger.Error("persist record failed", zap.String("record_id", record.ID), zap.Error(err))
		return
	}
	o.logger.Info("record persisted", zap.String("record_id", record.ID))
}

func (o *Orchestrator) isCurrent(attempt uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return attempt == o.attempt
}

func (o *Orchestrator) notifyLocked() {
	close(o.changed)
	o.changed = make(chan struct{})
}

func (o *Orchestrator) snapshotLocked() trends.Snapshot {
	snap := trends.Snapshot{Status: o.status, Attempt: o.attempt}
	if o.status == trends.StatusCompleted && o.outcome != nil {
		outcome := *o.outcome
		snap.Outcome = &outcome
	}
	return snap
}
