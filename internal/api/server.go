package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/fadedpez/blackjack/internal/logging"
	"github.com/fadedpez/blackjack/pkg/repositories/ledger"
	"github.com/fadedpez/blackjack/pkg/services/statistics"
	"github.com/fadedpez/blackjack/pkg/services/table"
)

// Options wires the server to the services it exposes
type Options struct {
	Tables     *table.Manager
	Statistics *statistics.Service
	Ledger     ledger.Repository // optional
	StaticDir  string            // optional
	Logger     *logging.Logger
}

// Server is the JSON and websocket front door to the tables
type Server struct {
	tables    *table.Manager
	stats     *statistics.Service
	ledger    ledger.Repository
	staticDir string
	logger    *logging.Logger
	upgrader  websocket.Upgrader
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default
	}
	return &Server{
		tables:    opts.Tables,
		stats:     opts.Statistics,
		ledger:    opts.Ledger,
		staticDir: opts.StaticDir,
		logger:    logger.WithPrefix("api"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the HTTP routes
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/new_game", s.handleNewGame)
		r.Post("/bet", s.handleBet)
		r.Post("/hit", s.command(s.tables.Hit))
		r.Post("/stand", s.command(s.tables.Stand))
		r.Post("/doubledown", s.command(s.tables.DoubleDown))
		r.Post("/split", s.command(s.tables.Split))
		r.Get("/game_state", s.handleGameState)
		r.Get("/ws", s.handleWebSocket)

		r.Get("/stats/leaderboard", s.handleLeaderboard)
		r.Get("/stats/{name}", s.handlePlayerStats)
		r.Get("/history", s.handleHistory)
		r.Get("/ledger", s.handleLedger)
	})

	if s.staticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.staticDir)))
	}
	return r
}

// Serve runs an HTTP server on addr until ctx is cancelled, then shuts it down
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// requestLogger logs each request at debug level
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"status", ww.Status(),
			"duration", time.Since(start),
		).Debug("%s %s", r.Method, r.URL.Path)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "tables": s.tables.Count()})
}
