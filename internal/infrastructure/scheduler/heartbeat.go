package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/storedesk/storedesk/internal/domain/session"
	"github.com/storedesk/storedesk/internal/infrastructure/metrics"
	"github.com/storedesk/storedesk/internal/shared/biztime"
	"github.com/storedesk/storedesk/internal/shared/errors"
	"github.com/storedesk/storedesk/internal/shared/goroutine"
	"github.com/storedesk/storedesk/internal/shared/logger"
)

// DefaultHeartbeatInterval is used when the configured interval is not positive.
const DefaultHeartbeatInterval = 10 * time.Second

// HeartbeatState is the lifecycle of the heartbeat loop.
type HeartbeatState string

const (
	HeartbeatStopped HeartbeatState = "stopped"
	HeartbeatRunning HeartbeatState = "running"
	// HeartbeatHalted is terminal for the process lifetime.
	HeartbeatHalted HeartbeatState = "halted"
)

// HeartbeatScheduler keeps the current session's last_activity fresh.
// - At most one loop runs; Start while running replaces the loop
// - The first tick runs immediately, then every interval
// - A schema error halts the scheduler permanently
// - Stop does not wait for an in-flight update
type HeartbeatScheduler struct {
	sessions session.Repository
	identity session.IdentityCache
	metrics  *metrics.Metrics
	logger   logger.Interface
	interval time.Duration
	timeout  time.Duration

	mu          sync.Mutex
	state       HeartbeatState
	generation  uint64
	stopChan    chan struct{}
	principalID string

	wg sync.WaitGroup
}

func NewHeartbeatScheduler(
	sessions session.Repository,
	identity session.IdentityCache,
	interval time.Duration,
	m *metrics.Metrics,
	log logger.Interface,
) *HeartbeatScheduler {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	return &HeartbeatScheduler{
		sessions: sessions,
		identity: identity,
		metrics:  m,
		logger:   log.With("component", "heartbeat"),
		interval: interval,
		timeout:  interval,
		state:    HeartbeatStopped,
	}
}

func (s *HeartbeatScheduler) State() HeartbeatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start begins heartbeating for principalID, replacing any running loop.
func (s *HeartbeatScheduler) Start(principalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == HeartbeatHalted {
		s.logger.Warnw("heartbeat halted after schema error, ignoring start",
			"employee_id", principalID,
		)
		return
	}
	if s.state == HeartbeatRunning {
		close(s.stopChan)
	}

	s.generation++
	gen := s.generation
	stop := make(chan struct{})
	s.stopChan = stop
	s.state = HeartbeatRunning
	s.principalID = principalID

	s.logger.Debugw("heartbeat started", "employee_id", principalID, "interval", s.interval)
	goroutine.SafeGoWait(&s.wg, s.logger, "heartbeat", func() {
		s.run(gen, stop)
	})
}

// Stop cancels the running loop. Idempotent.
func (s *HeartbeatScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *HeartbeatScheduler) stopLocked() {
	if s.state != HeartbeatRunning {
		return
	}
	close(s.stopChan)
	s.generation++
	s.state = HeartbeatStopped
	s.logger.Debugw("heartbeat stopped", "employee_id", s.principalID)
}

// OnVisibilityChange pauses the heartbeat while the page is hidden and
// resumes it for the cached principal when it becomes visible again.
func (s *HeartbeatScheduler) OnVisibilityChange(ctx context.Context, hidden bool) {
	if hidden {
		s.Stop()
		return
	}
	identity, ok := s.identity.Load(ctx)
	if !ok {
		return
	}
	s.Start(identity.Employee.ID)
}

// OnUnload stops the heartbeat when the page goes away.
func (s *HeartbeatScheduler) OnUnload() {
	s.Stop()
}

// Wait blocks until every loop goroutine has returned. Call after Stop.
func (s *HeartbeatScheduler) Wait() {
	s.wg.Wait()
}

func (s *HeartbeatScheduler) run(gen uint64, stop <-chan struct{}) {
	if !s.tick(gen) {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.tick(gen) {
				return
			}
		}
	}
}

// tick performs one update and reports whether the loop should continue.
func (s *HeartbeatScheduler) tick(gen uint64) bool {
	if !s.isCurrent(gen) {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	identity, ok := s.identity.Load(ctx)
	if !ok {
		s.metrics.HeartbeatTick(metrics.OutcomeNoSession)
		s.logger.Debugw("no cached session, stopping heartbeat")
		s.stopIfCurrent(gen)
		return false
	}

	err := s.sessions.MarkActive(ctx, identity.SessionID, biztime.Now())
	switch {
	case err == nil:
		s.metrics.HeartbeatTick(metrics.OutcomeOK)
		return true
	case errors.IsSchemaError(err):
		s.metrics.HeartbeatTick(metrics.OutcomeSchemaError)
		s.logger.Errorw("session table schema mismatch, heartbeat halted",
			"session_id", identity.SessionID,
			"error", err,
		)
		s.halt()
		return false
	default:
		s.metrics.HeartbeatTick(metrics.OutcomeTransientError)
		s.logger.Warnw("heartbeat update failed",
			"session_id", identity.SessionID,
			"error", err,
		)
		return true
	}
}

func (s *HeartbeatScheduler) isCurrent(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == HeartbeatRunning && s.generation == gen
}

func (s *HeartbeatScheduler) stopIfCurrent(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.stopLocked()
	}
}

func (s *HeartbeatScheduler) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.state = HeartbeatHalted
}
