package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"settlers/internal/auth"
	"settlers/internal/config"
	"settlers/internal/engine"
	"settlers/internal/engine/cards"
	"settlers/internal/lobby"
)

const shutdownGrace = 10 * time.Second

// Archive is the optional result store.
type Archive interface {
	ResultRecorder
	History
}

// Server ties together HTTP serving and WebSocket handling.
type Server struct {
	cfg     config.Config
	matches *lobby.Manager
	tokens  *auth.Issuer
	archive Archive
	game    engine.GameConfig
	router  chi.Router

	// hubs live until the server closes, not per request.
	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the server. archive may be nil.
func New(cfg config.Config, tokens *auth.Issuer, archive Archive) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     cfg,
		matches: lobby.NewManager(),
		tokens:  tokens,
		archive: archive,
		game:    engine.DefaultConfig(),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", s.HandleHealth)
	r.Get("/ws", s.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Post("/matches", s.HandleCreateMatch)
		r.Get("/matches", s.HandleListMatches)
		r.Get("/matches/{id}/qr", s.HandleQR)
		r.Get("/history", s.HandleHistory)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

func (s *Server) Handler() http.Handler { return s.router }

// CreateMatch registers a new match and starts its hub.
func (s *Server) CreateMatch() *Hub {
	m := s.matches.Create(func(id string) lobby.Match {
		game := engine.NewGame(id, s.game, cards.NewRegistry())
		deps := HubDeps{Tokens: s.tokens, OnEmpty: s.matches.Remove}
		if s.archive != nil {
			deps.Recorder = s.archive
		}
		return NewHub(game, deps)
	})
	hub := m.(*Hub)
	go hub.Run(s.ctx)
	log.Info().Str("match", hub.ID()).Msg("match created")
	return hub
}

func (s *Server) hub(id string) (*Hub, bool) {
	m, ok := s.matches.Get(id)
	if !ok {
		return nil, false
	}
	return m.(*Hub), true
}

// Close stops every hub.
func (s *Server) Close() { s.cancel() }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info().Int("port", s.cfg.Port).Msg("settlers server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		s.Close()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return eg.Wait()
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("http")
	})
}
