package tally

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/history"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/voice"
)

// ErrSessionActive is returned when a user starts a session while another
// one is still in progress.
var ErrSessionActive = errors.New("a voice session is already in progress")

// DefaultUserID owns sessions started without an explicit user.
const DefaultUserID = "local"

// sessionRetention is how long finished sessions stay pollable, and how long
// a rejected session may sit in responded before it is cancelled.
const sessionRetention = 10 * time.Minute

// VoiceOptions tunes sessions created by a VoiceService.
type VoiceOptions struct {
	Limits voice.CaptureLimits
	// Routes restricts navigate targets, see voice.Validator.
	Routes []string
}

// VoiceService creates voice sessions and enforces one active session per
// user. Finished sessions are recorded to history.
type VoiceService struct {
	deps    sessionDeps
	history history.Store
	metrics *Metrics
	log     zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*VoiceSession
	active   map[string]*VoiceSession
}

// NewVoiceService creates a VoiceService. hist and metrics may be nil.
func NewVoiceService(
	oracle voice.Oracle,
	snapshots SnapshotSource,
	executor *Executor,
	hist history.Store,
	bus *eventbus.EventBus,
	metrics *Metrics,
	opts VoiceOptions,
) *VoiceService {
	return &VoiceService{
		deps: sessionDeps{
			oracle:    oracle,
			snapshots: snapshots,
			validator: voice.Validator{Routes: opts.Routes},
			executor:  executor,
			limits:    opts.Limits,
			bus:       bus,
			now:       time.Now,
		},
		history:  hist,
		metrics:  metrics,
		log:      logging.Component("voice-service"),
		sessions: make(map[string]*VoiceSession),
		active:   make(map[string]*VoiceSession),
	}
}

// StartSession creates a session for userID and starts recording with rec.
// A previous session left idle or responded is cancelled and replaced; any
// other unfinished session yields ErrSessionActive.
func (s *VoiceService) StartSession(ctx context.Context, userID string, desk voice.Desk, rec voice.Recorder) (*VoiceSession, error) {
	if userID == "" {
		userID = DefaultUserID
	}

	s.mu.Lock()
	parked := s.sweepLocked()

	stale := s.active[userID]
	if stale != nil && stale.busy() {
		s.mu.Unlock()
		cancelAll(parked)
		return nil, ErrSessionActive
	}

	sess := newVoiceSession(ctx, uuid.NewString(), userID, desk, rec, s.deps, s.finish)
	s.sessions[sess.id] = sess
	s.active[userID] = sess
	s.mu.Unlock()

	cancelAll(parked)
	if stale != nil {
		_ = stale.Cancel()
	}

	s.log.Info().Ctx(sess.ctx).Msg("voice session started")

	if err := sess.Start(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

// Get returns a session by id, including recently finished ones.
func (s *VoiceService) Get(id string) (*VoiceSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Active returns the user's unfinished session, if any.
func (s *VoiceService) Active(userID string) (*VoiceSession, bool) {
	if userID == "" {
		userID = DefaultUserID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.active[userID]
	return sess, ok
}

// Shutdown cancels every unfinished session.
func (s *VoiceService) Shutdown() {
	s.mu.Lock()
	sessions := make([]*VoiceSession, 0, len(s.active))
	for _, sess := range s.active {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.Cancel()
	}
}

// finish runs once per session when it reaches a terminal state.
func (s *VoiceService) finish(sess *VoiceSession, view voice.SessionView) {
	s.mu.Lock()
	if s.active[sess.userID] == sess {
		delete(s.active, sess.userID)
	}
	s.mu.Unlock()

	var kind voice.Kind
	if view.Failure != nil {
		kind = view.Failure.Kind
	}
	s.metrics.SessionFinished(view.State, kind)

	s.log.Info().Ctx(sess.ctx).
		Str("state", string(view.State)).
		Str("kind", string(kind)).
		Dur("elapsed", view.UpdatedAt.Sub(view.StartedAt)).
		Msg("voice session finished")

	if s.history == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.Record(ctx, history.FromView(sess.userID, view)); err != nil {
		s.log.Error().Err(err).Str("session_id", sess.id).Msg("failed to record voice history")
	}
}

// Sweep cancels sessions left in responded past the retention window and
// forgets sessions that finished before it.
func (s *VoiceService) Sweep() {
	s.mu.Lock()
	parked := s.sweepLocked()
	s.mu.Unlock()

	cancelAll(parked)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *VoiceService) RunSweeper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// sweepLocked forgets sessions that finished long ago and returns the
// rejected sessions that waited too long. They must be cancelled after s.mu
// is released. s.mu must be held.
func (s *VoiceService) sweepLocked() []*VoiceSession {
	cutoff := s.deps.now().Add(-sessionRetention)

	var parked []*VoiceSession
	for id, sess := range s.sessions {
		switch {
		case sess.finishedBefore(cutoff):
			delete(s.sessions, id)
		case sess.parkedBefore(cutoff):
			parked = append(parked, sess)
		}
	}
	return parked
}

func cancelAll(sessions []*VoiceSession) {
	for _, sess := range sessions {
		_ = sess.Cancel()
	}
}
