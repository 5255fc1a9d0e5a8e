package tally

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tally/internal/core/voice"
)

func TestVoiceService_OneActiveSessionPerUser(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	first := h.record(t, "u1", validCapture())

	_, err := h.svc.StartSession(ctx, "u1", voice.Desk{}, &BufferRecorder{})
	require.ErrorIs(t, err, ErrSessionActive)

	other := h.record(t, "u2", validCapture())
	assert.NotEqual(t, first.ID(), other.ID())

	active, ok := h.svc.Active("u1")
	require.True(t, ok)
	assert.Equal(t, first.ID(), active.ID())

	require.NoError(t, first.Cancel())
	_, ok = h.svc.Active("u1")
	assert.False(t, ok)

	again := h.record(t, "u1", validCapture())
	assert.NotEqual(t, first.ID(), again.ID())
}

func TestVoiceService_GetKeepsFinishedSessions(t *testing.T) {
	h := newHarness(t)
	h.oracle.resp = respond("hi", nil)

	sess := h.record(t, "u1", validCapture())
	require.NoError(t, sess.Stop(context.Background()))

	got, ok := h.svc.Get(sess.ID())
	require.True(t, ok)
	assert.Equal(t, voice.StateCompleted, got.State())

	_, ok = h.svc.Get("missing")
	assert.False(t, ok)
}

func TestVoiceService_DefaultUser(t *testing.T) {
	h := newHarness(t)

	sess, err := h.svc.StartSession(context.Background(), "", voice.Desk{}, &BufferRecorder{})
	require.NoError(t, err)
	assert.Equal(t, DefaultUserID, sess.UserID())
}

func TestVoiceService_Shutdown(t *testing.T) {
	h := newHarness(t)

	a := h.record(t, "u1", validCapture())
	b := h.record(t, "u2", validCapture())

	h.svc.Shutdown()

	assert.Equal(t, voice.StateCancelled, a.State())
	assert.Equal(t, voice.StateCancelled, b.State())

	entries, err := h.history.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestVoiceService_DeskReachesOracle(t *testing.T) {
	h := newHarness(t)
	h.oracle.resp = respond("add milk", &voice.RawAction{Type: "create_todo", Target: "", Data: map[string]any{"texts": []any{"milk"}}})

	rec := &BufferRecorder{}
	sess, err := h.svc.StartSession(context.Background(), "u1", voice.Desk{PrimaryListID: h.list.ID}, rec)
	require.NoError(t, err)
	rec.Put(validCapture())
	require.NoError(t, sess.Stop(context.Background()))

	assert.Equal(t, h.list.ID, h.oracle.last.Desk.PrimaryListID)
	view := sess.View()
	require.Equal(t, voice.StateConfirmingCreate, view.State)
	assert.Equal(t, h.list.ID, view.Pending.ListID, "falls back to the desk's primary list")
}

func TestVoiceService_SweepCancelsRejectedSessions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.oracle.resp = respond("add milk", &voice.RawAction{
		Type:   "create_todo",
		Target: h.list.ID,
		Data:   map[string]any{"texts": []any{"milk"}},
	})

	sess := h.record(t, "u1", validCapture())
	require.NoError(t, sess.Stop(ctx))
	require.NoError(t, sess.Reject())
	require.Equal(t, voice.StateResponded, sess.State())

	h.svc.Sweep()
	assert.Equal(t, voice.StateResponded, sess.State(), "recently rejected sessions stay pollable")

	h.svc.deps.now = func() time.Time { return time.Now().Add(sessionRetention + time.Minute) }
	h.svc.Sweep()
	assert.Equal(t, voice.StateCancelled, sess.State())

	_, ok := h.svc.Active("u1")
	assert.False(t, ok)

	entries, err := h.history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, voice.StateCancelled, entries[0].Outcome)
}

func TestVoiceService_RunSweeperStops(t *testing.T) {
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.svc.RunSweeper(ctx, time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
