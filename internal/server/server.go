// Package server exposes voice sessions and lists over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/colonyops/tally/internal/core/doctor"
	"github.com/colonyops/tally/internal/core/logging"
	"github.com/colonyops/tally/internal/core/voice"
	"github.com/colonyops/tally/internal/tally"
)

// UserHeader carries the caller's user id. Requests without it act as
// tally.DefaultUserID.
const UserHeader = "X-User-ID"

// DurationHeader optionally carries the recording length in milliseconds.
const DurationHeader = "X-Audio-Duration-Ms"

// Options configures a Server.
type Options struct {
	Addr     string
	Gatherer prometheus.Gatherer
	// Health is pinged by /healthz when set.
	Health doctor.Pinger
	// Pprof mounts net/http/pprof under /debug/pprof.
	Pprof bool
	// MaxAudioBytes bounds upload reads. Larger bodies still reach the
	// session so it can reject them as too large.
	MaxAudioBytes int
}

// Server is the HTTP surface.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	voice      *tally.VoiceService
	lists      *tally.ListService
	opts       Options
	log        zerolog.Logger
}

// New creates a Server. Call Start to begin serving.
func New(voiceSvc *tally.VoiceService, lists *tally.ListService, opts Options) *Server {
	s := &Server{
		addr:  opts.Addr,
		voice: voiceSvc,
		lists: lists,
		opts:  opts,
		log:   logging.Component("server"),
	}
	s.httpServer = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes returns the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.opts.Pprof {
		r.HandleFunc("/debug/pprof/", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
		r.Handle("/debug/pprof/{name}", http.HandlerFunc(pprof.Index))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleCancelSession)
				r.Put("/audio", s.handleAudio)
				r.Post("/confirm", s.handleConfirm)
				r.Post("/reject", s.handleReject)
			})
		})
		r.Get("/lists", s.handleLists)
		r.Get("/lists/{id}", s.handleShowList)
	})

	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	s.log.Info().Str("addr", listener.Addr().String()).Msg("starting server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting requests and cancels open voice sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down server")
	s.voice.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		ctx := logging.WithUserID(r.Context(), userID(r))
		next.ServeHTTP(ww, r.WithContext(ctx))

		s.log.Debug().Ctx(ctx).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func userID(r *http.Request) string {
	if id := r.Header.Get(UserHeader); id != "" {
		return id
	}
	return tally.DefaultUserID
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Health != nil {
		if err := s.opts.Health.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// viewResponse wraps a session view with the owning user.
type viewResponse struct {
	voice.SessionView
	UserID string `json:"user_id"`
}

func writeView(w http.ResponseWriter, status int, sess *tally.VoiceSession) {
	writeJSON(w, status, viewResponse{SessionView: sess.View(), UserID: sess.UserID()})
}
