package tally

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/snapshot"
	"github.com/colonyops/tally/internal/core/voice"
)

// ErrInvalidState is returned when an operation is not allowed in the
// session's current state.
var ErrInvalidState = errors.New("operation not allowed in current session state")

// SnapshotSource loads the context a session is grounded on.
type SnapshotSource interface {
	Load(ctx context.Context) (*snapshot.Snapshot, error)
}

type sessionDeps struct {
	oracle    voice.Oracle
	snapshots SnapshotSource
	validator voice.Validator
	executor  *Executor
	limits    voice.CaptureLimits
	bus       *eventbus.EventBus
	now       func() time.Time
}

// VoiceSession drives one utterance from capture to a terminal state. Start,
// Stop and Confirm each run one stage to completion; Cancel may be called at
// any time from any goroutine.
type VoiceSession struct {
	id       string
	userID   string
	desk     voice.Desk
	recorder voice.Recorder
	deps     sessionDeps
	log      zerolog.Logger
	onFinish func(*VoiceSession, voice.SessionView)

	// stage serializes Start, Stop and Confirm.
	stage sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu            sync.Mutex
	state         voice.State
	recordingAt   time.Time
	transcription string
	message       string
	action        *voice.Action
	snap          *snapshot.Snapshot
	pending       *voice.PendingCreate
	result        *voice.ExecutionResult
	failure       *voice.Failure
	startedAt     time.Time
	updatedAt     time.Time
}

func newVoiceSession(parent context.Context, id, userID string, desk voice.Desk, rec voice.Recorder, deps sessionDeps, onFinish func(*VoiceSession, voice.SessionView)) *VoiceSession {
	// The session outlives the request that created it but keeps its values.
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	ctx = logging.WithUserID(logging.WithSessionID(ctx, id), userID)
	if desk.PrimaryListID != "" {
		ctx = logging.WithListID(ctx, desk.PrimaryListID)
	}

	now := deps.now()
	return &VoiceSession{
		id:        id,
		userID:    userID,
		desk:      desk,
		recorder:  rec,
		deps:      deps,
		log:       logging.Component("voice-session"),
		onFinish:  onFinish,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		state:     voice.StateIdle,
		startedAt: now,
		updatedAt: now,
	}
}

// ID returns the session id.
func (s *VoiceSession) ID() string { return s.id }

// UserID returns the owning user.
func (s *VoiceSession) UserID() string { return s.userID }

// Recorder returns the recorder the session captures with.
func (s *VoiceSession) Recorder() voice.Recorder { return s.recorder }

// Done is closed when the session reaches a terminal state.
func (s *VoiceSession) Done() <-chan struct{} { return s.done }

// State returns the current state.
func (s *VoiceSession) State() voice.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start requests recording permission and begins capture.
func (s *VoiceSession) Start(ctx context.Context) error {
	s.stage.Lock()
	defer s.stage.Unlock()
	defer context.AfterFunc(ctx, s.abort)()

	if !s.transition(voice.StateIdle, voice.StatePreparing, nil) {
		return s.stateError("start")
	}

	granted, err := s.recorder.RequestPermission(s.ctx)
	if err != nil || !granted {
		if err == nil {
			err = errors.New("recording permission denied")
		}
		s.fail(voice.StatePreparing, voice.NewError(voice.KindPermissionDenied, err))
		return nil
	}

	if err := s.recorder.Start(s.ctx); err != nil {
		s.fail(voice.StatePreparing, voice.AsError(err, voice.KindCorruptCapture))
		return nil
	}

	s.transition(voice.StatePreparing, voice.StateRecording, func() {
		s.recordingAt = s.deps.now()
	})
	return nil
}

// Stop ends capture and resolves the utterance. The session ends up
// confirming a create, completed, or failed.
func (s *VoiceSession) Stop(ctx context.Context) error {
	s.stage.Lock()
	defer s.stage.Unlock()
	defer context.AfterFunc(ctx, s.abort)()

	if !s.transition(voice.StateRecording, voice.StateProcessing, nil) {
		return s.stateError("stop")
	}

	s.process()
	return nil
}

// Confirm executes the pending create.
func (s *VoiceSession) Confirm(ctx context.Context) error {
	s.stage.Lock()
	defer s.stage.Unlock()
	defer context.AfterFunc(ctx, s.abort)()

	if !s.transition(voice.StateConfirmingCreate, voice.StateExecuting, func() { s.failure = nil }) {
		return s.stateError("confirm")
	}

	s.execute()
	return nil
}

// Reject declines the pending create. Nothing is written.
func (s *VoiceSession) Reject() error {
	if !s.transition(voice.StateConfirmingCreate, voice.StateResponded, func() {
		s.pending = nil
		s.failure = nil
	}) {
		return s.stateError("reject")
	}
	return nil
}

// Cancel aborts the session from any non-terminal state. In-flight oracle
// calls are abandoned and their results discarded. Cancelling a finished
// session is a no-op.
func (s *VoiceSession) Cancel() error {
	s.mu.Lock()
	from := s.state
	if from.IsTerminal() {
		s.mu.Unlock()
		return nil
	}
	s.state = voice.StateCancelled
	s.failure = &voice.Failure{Kind: voice.KindCancelled, Message: voice.KindCancelled.UserMessage()}
	s.updatedAt = s.deps.now()
	view := s.viewLocked()
	s.mu.Unlock()

	s.cancel()

	if from == voice.StateRecording {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(s.ctx), 2*time.Second)
		if _, err := s.recorder.Stop(ctx); err != nil {
			s.log.Debug().Ctx(s.ctx).Err(err).Msg("stop recorder after cancel")
		}
		cancel()
	}

	s.afterTransition(from, view)
	return nil
}

// View returns a copy of the session's current state.
func (s *VoiceSession) View() voice.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *VoiceSession) abort() { _ = s.Cancel() }

// busy reports whether the session still holds the user's attention.
// Sessions left in responded after a reject do not.
func (s *VoiceSession) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.state.IsTerminal() && s.state != voice.StateIdle && s.state != voice.StateResponded
}

// finishedBefore reports whether the session ended before t.
func (s *VoiceSession) finishedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsTerminal() && s.updatedAt.Before(t)
}

// parkedBefore reports whether the session has waited in responded since
// before t.
func (s *VoiceSession) parkedBefore(t time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == voice.StateResponded && s.updatedAt.Before(t)
}

func (s *VoiceSession) process() {
	s.mu.Lock()
	recordingAt := s.recordingAt
	s.mu.Unlock()
	elapsed := s.deps.now().Sub(recordingAt)

	capture, err := s.recorder.Stop(s.ctx)
	if err != nil {
		s.fail(voice.StateProcessing, voice.AsError(err, voice.KindCorruptCapture))
		return
	}

	duration := capture.Duration
	if duration <= 0 {
		duration = elapsed
	}
	if err := s.deps.limits.CheckDuration(duration); err != nil {
		s.fail(voice.StateProcessing, err)
		return
	}
	if err := s.deps.limits.CheckPayload(capture); err != nil {
		s.fail(voice.StateProcessing, err)
		return
	}

	snap, err := s.deps.snapshots.Load(s.ctx)
	if err != nil {
		s.fail(voice.StateProcessing, s.contextError(err, voice.KindStorage))
		return
	}

	raw, err := s.deps.oracle.ResolveIntent(s.ctx, voice.IntentRequest{
		Audio:    capture.Data,
		MIMEType: capture.MIMEType,
		Context:  snap.Serialize(),
		Desk:     s.desk,
		Now:      s.deps.now(),
	})
	if err != nil {
		s.fail(voice.StateProcessing, s.contextError(err, voice.KindServiceError))
		return
	}

	action, err := s.deps.validator.Validate(raw.Action, snap, s.desk)
	if err != nil {
		s.failWith(voice.StateProcessing, err, func() {
			s.transcription = raw.Transcription
			s.message = raw.Message
		})
		return
	}

	if !s.transition(voice.StateProcessing, voice.StateResponded, func() {
		s.transcription = raw.Transcription
		s.message = raw.Message
		s.action = action
		s.snap = snap
	}) {
		s.log.Debug().Ctx(s.ctx).Msg("oracle result discarded")
		return
	}

	s.route(action, snap)
}

// route moves a responded session on according to its action.
func (s *VoiceSession) route(action *voice.Action, snap *snapshot.Snapshot) {
	switch {
	case action == nil:
		s.transition(voice.StateResponded, voice.StateCompleted, func() {
			s.result = &voice.ExecutionResult{}
		})
	case action.Type == voice.ActionCreateTodo:
		target, _ := snap.List(action.Target)
		s.transition(voice.StateResponded, voice.StateConfirmingCreate, func() {
			s.pending = &voice.PendingCreate{
				ListID:   target.ID,
				ListName: target.Name,
				Phrases:  append([]string(nil), action.Data.Texts...),
			}
		})
	default:
		if s.transition(voice.StateResponded, voice.StateExecuting, nil) {
			s.execute()
		}
	}
}

func (s *VoiceSession) execute() {
	s.mu.Lock()
	action, snap := s.action, s.snap
	s.mu.Unlock()

	result, err := s.deps.executor.Execute(s.ctx, action, snap)
	if err != nil {
		verr := s.contextError(err, voice.KindStorage)
		switch verr.Kind {
		case voice.KindCancelled:
			return
		case voice.KindSynthesisFailure:
			s.log.Warn().Ctx(s.ctx).Err(verr.Err).Msg("synthesis failed, awaiting retry")
			s.transition(voice.StateExecuting, voice.StateConfirmingCreate, func() {
				s.failure = &voice.Failure{Kind: verr.Kind, Message: verr.Message}
			})
		default:
			s.fail(voice.StateExecuting, verr)
		}
		return
	}

	if !s.transition(voice.StateExecuting, voice.StateCompleted, func() {
		s.result = &result
		s.pending = nil
	}) {
		s.log.Warn().Ctx(s.ctx).Int("count", result.Count).Msg("session ended while executing")
	}
}

// contextError classifies err, treating any failure after cancellation as
// a cancellation.
func (s *VoiceSession) contextError(err error, fallback voice.Kind) *voice.Error {
	if s.ctx.Err() != nil {
		return voice.NewError(voice.KindCancelled, err)
	}
	return voice.AsError(err, fallback)
}

func (s *VoiceSession) fail(from voice.State, err error) {
	s.failWith(from, err, nil)
}

func (s *VoiceSession) failWith(from voice.State, err error, mutate func()) {
	verr := voice.AsError(err, voice.KindServiceError)
	if verr.Kind == voice.KindCancelled {
		return
	}

	message := verr.Message
	if message == "" {
		message = verr.Kind.UserMessage()
	}

	if s.transition(from, voice.StateFailed, func() {
		if mutate != nil {
			mutate()
		}
		s.failure = &voice.Failure{Kind: verr.Kind, Message: message}
	}) {
		s.log.Warn().Ctx(s.ctx).Err(verr.Err).Str("kind", string(verr.Kind)).Str("from", string(from)).Msg("voice session failed")
	}
}

// transition moves from → to if the session is still in from. mutate runs
// under the state lock. It reports whether the move happened.
func (s *VoiceSession) transition(from, to voice.State, mutate func()) bool {
	s.mu.Lock()
	if s.state != from || !voice.CanTransition(from, to) {
		s.mu.Unlock()
		return false
	}
	s.state = to
	if mutate != nil {
		mutate()
	}
	s.updatedAt = s.deps.now()
	view := s.viewLocked()
	s.mu.Unlock()

	s.afterTransition(from, view)
	return true
}

func (s *VoiceSession) afterTransition(from voice.State, view voice.SessionView) {
	s.log.Debug().Ctx(s.ctx).Str("from", string(from)).Str("to", string(view.State)).Msg("session transition")

	if s.deps.bus != nil {
		s.deps.bus.PublishSessionStateChanged(eventbus.SessionStateChangedPayload{
			UserID: s.userID,
			From:   from,
			To:     view.State,
			View:   view,
		})
	}

	if view.State.IsTerminal() {
		s.cancel()
		close(s.done)
		if s.onFinish != nil {
			s.onFinish(s, view)
		}
	}
}

func (s *VoiceSession) stateError(op string) error {
	return fmt.Errorf("%s in state %s: %w", op, s.State(), ErrInvalidState)
}
