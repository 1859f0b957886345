// Package inspect serves a scene player over HTTP: the rendered tree, the
// op log, Prometheus metrics and a websocket stream of mutations as they
// happen.
//
// Routes:
//
//	GET  /healthz        liveness
//	GET  /metrics        Prometheus metrics
//	GET  /tree           container HTML
//	GET  /ops?format=    op log (text, json or msgpack)
//	POST /frames/next    play the next frame
//	POST /frames/reset   unmount and rewind
//	GET  /ws             op stream
package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	vrterrors "github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/metrics"
	"github.com/vango-dev/vrt/pkg/oplog"
	"github.com/vango-dev/vrt/pkg/scene"
)

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address. Default: ":7070".
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithLogger sets the server logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// WithMetrics sets the collector served on /metrics.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithShutdownTimeout bounds graceful shutdown. Default: 5s.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = d
	}
}

// Server exposes a scene player over HTTP.
type Server struct {
	// mu serialises every access to the player and its renderer, which are
	// single-threaded.
	mu     sync.Mutex
	player *scene.Player

	hub     *hub
	metrics *metrics.Collector
	logger  *slog.Logger
	router  chi.Router

	addr            string
	shutdownTimeout time.Duration
	cancelOps       func()
}

// New creates a Server for player. Ops recorded by the player's document
// are pushed to websocket subscribers.
func New(player *scene.Player, opts ...Option) *Server {
	s := &Server{
		player:          player,
		hub:             newHub(),
		addr:            ":7070",
		shutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.cancelOps = player.Document().OnOp(func(op oplog.Op) {
		s.hub.broadcast(Message{Type: MessageOp, Frame: player.Index(), Op: &op})
	})
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/tree", s.handleTree)
	r.Get("/ops", s.handleOps)
	r.Route("/frames", func(r chi.Router) {
		r.Post("/next", s.handleNext)
		r.Post("/reset", s.handleReset)
	})
	r.Get("/ws", s.handleWebSocket)
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Subscribers returns the number of connected websocket clients.
func (s *Server) Subscribers() int {
	return s.hub.count()
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return vrterrors.New("I400").Wrap(err).WithDetailf("listen on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		s.close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("inspector shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
		return nil
	}
}

func (s *Server) close() {
	s.hub.close()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelOps != nil {
		s.cancelOps()
		s.cancelOps = nil
	}
}

// frameResponse is returned by the frame endpoints.
type frameResponse struct {
	Frame int        `json:"frame"`
	Done  bool       `json:"done"`
	Ops   []oplog.Op `json:"ops"`
	HTML  string     `json:"html"`
}

// locked runs fn while holding mu. The lock is released even when fn
// panics, so a frame that panics does not wedge later requests.
func (s *Server) locked(fn func(p *scene.Player)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.player)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	var html string
	s.locked(func(p *scene.Player) {
		html = p.HTML()
	})

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

func (s *Server) handleOps(w http.ResponseWriter, r *http.Request) {
	format, err := oplog.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, vrterrors.New("I402").Wrap(err))
		return
	}

	var ops []oplog.Op
	s.locked(func(p *scene.Player) {
		ops = p.Document().Ops()
	})

	w.Header().Set("Content-Type", format.ContentType())
	if err := oplog.Encode(w, ops, format); err != nil {
		s.logger.Error("encode ops", "error", err)
	}
}

func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	var (
		resp frameResponse
		err  error
	)
	s.locked(func(p *scene.Player) {
		var ops []oplog.Op
		ops, err = p.Next()
		resp = s.frameLocked(ops)
	})

	switch {
	case errors.Is(err, io.EOF):
		s.writeError(w, http.StatusConflict, vrterrors.New("S204").WithDetail("The last frame is already on screen."))
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, vrterrors.New("I401").Wrap(err))
		return
	}

	s.hub.broadcast(Message{Type: MessageFrame, Frame: resp.Frame, Done: resp.Done})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var (
		resp frameResponse
		err  error
	)
	s.locked(func(p *scene.Player) {
		var ops []oplog.Op
		ops, err = p.Reset()
		resp = s.frameLocked(ops)
	})

	if err != nil {
		s.writeError(w, http.StatusInternalServerError, vrterrors.New("I401").Wrap(err))
		return
	}

	s.hub.broadcast(Message{Type: MessageFrame, Frame: resp.Frame})
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) frameLocked(ops []oplog.Op) frameResponse {
	if ops == nil {
		ops = []oplog.Op{}
	}
	return frameResponse{
		Frame: s.player.Index(),
		Done:  s.player.Done(),
		Ops:   ops,
		HTML:  s.player.HTML(),
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var hello Message
	s.locked(func(p *scene.Player) {
		hello = Message{Type: MessageHello, Frame: p.Index(), Done: p.Done()}
	})

	s.hub.serve(w, r, hello)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err *vrterrors.Error) {
	s.logger.Warn(err.Message, "code", err.Code, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, err.FormatJSON())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
