package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/colonyops/tally/internal/core/list"
	"github.com/colonyops/tally/internal/core/voice"
	"github.com/colonyops/tally/internal/tally"
	"github.com/colonyops/tally/pkg/iojson"
)

type startRequest struct {
	Desk voice.Desk `json:"desk"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(io.LimitReader(r.Body, 64<<10)).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	sess, err := s.voice.StartSession(r.Context(), userID(r), req.Desk, &tally.BufferRecorder{})
	if err != nil {
		if errors.Is(err, tally.ErrSessionActive) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeView(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeView(w, http.StatusOK, sess)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	rec, ok := sess.Recorder().(*tally.BufferRecorder)
	if !ok {
		writeError(w, http.StatusConflict, errors.New("session does not accept uploads"))
		return
	}

	limit := int64(s.opts.MaxAudioBytes)
	if limit <= 0 {
		limit = int64(voice.DefaultCaptureLimits().MaxBytes)
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var duration time.Duration
	if ms := r.Header.Get(DurationHeader); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, errors.New("invalid "+DurationHeader))
			return
		}
		duration = time.Duration(n) * time.Millisecond
	}

	rec.Put(voice.Capture{Data: data, MIMEType: r.Header.Get("Content-Type"), Duration: duration})

	if err := sess.Stop(r.Context()); err != nil {
		writeStateError(w, err)
		return
	}
	writeView(w, http.StatusOK, sess)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Confirm(r.Context()); err != nil {
		writeStateError(w, err)
		return
	}
	writeView(w, http.StatusOK, sess)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Reject(); err != nil {
		writeStateError(w, err)
		return
	}
	writeView(w, http.StatusOK, sess)
}

func (s *Server) handleCancelSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	_ = sess.Cancel()
	writeView(w, http.StatusOK, sess)
}

func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.lists.Lists(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if lists == nil {
		lists = []list.List{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (s *Server) handleShowList(w http.ResponseWriter, r *http.Request) {
	l, todos, err := s.lists.Show(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, list.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if todos == nil {
		todos = []list.Todo{}
	}
	writeJSON(w, http.StatusOK, struct {
		list.List
		Todos []list.Todo `json:"todos"`
	}{l, todos})
}

// session resolves the {id} parameter to a session owned by the caller.
// Sessions of other users are reported as missing.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*tally.VoiceSession, bool) {
	sess, ok := s.voice.Get(chi.URLParam(r, "id"))
	if !ok || sess.UserID() != userID(r) {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return nil, false
	}
	return sess, true
}

func writeStateError(w http.ResponseWriter, err error) {
	if errors.Is(err, tally.ErrInvalidState) {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = iojson.WriteLine(w, v)
}
