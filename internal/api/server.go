package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"tradeJournal/internal/app"
	"tradeJournal/internal/ports"
)

// UserHeader carries the caller identity. Authentication happens upstream.
const UserHeader = "X-User-ID"

type ctxKey int

const userKey ctxKey = iota

// Server exposes the journal over HTTP.
type Server struct {
	journal  *app.JournalService
	stats    *app.StatsService
	logger   ports.Logger
	upgrader websocket.Upgrader
	now      func() time.Time

	streams      context.Context
	closeStreams context.CancelFunc
}

// NewServer creates the HTTP adapter.
func NewServer(journal *app.JournalService, stats *app.StatsService, logger ports.Logger) (*Server, error) {
	if journal == nil || stats == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for API server")
	}
	streams, closeStreams := context.WithCancel(context.Background())
	return &Server{
		journal: journal,
		stats:   stats,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		now:          time.Now,
		streams:      streams,
		closeStreams: closeStreams,
	}, nil
}

// CloseStreams ends every open statistics stream. http.Server.Shutdown does not
// track hijacked connections, so register this with RegisterOnShutdown.
func (s *Server) CloseStreams() {
	s.closeStreams()
}

// Router builds the chi router with every route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			s.logger.Error(r.Context(), err, "healthcheck write failed")
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(requireUser)

		r.Route("/trades", func(r chi.Router) {
			r.Get("/", s.listTrades)
			r.Post("/", s.createTrade)
			r.Get("/export.csv", s.exportCSV)
			r.Post("/import", s.importCSV)
			r.Get("/{id}", s.getTrade)
			r.Put("/{id}", s.updateTrade)
			r.Delete("/{id}", s.deleteTrade)
			r.Post("/{id}/close", s.closeTrade)
		})

		r.Route("/strategies", func(r chi.Router) {
			r.Get("/", s.listStrategies)
			r.Post("/", s.createStrategy)
			r.Get("/{id}", s.getStrategy)
			r.Put("/{id}", s.updateStrategy)
			r.Delete("/{id}", s.deleteStrategy)
			r.Get("/{id}/performance", s.strategyPerformance)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/", s.getStats)
			r.Get("/calendar", s.getCalendar)
			r.Get("/dashboard", s.getDashboard)
			r.Get("/stream", s.streamStats)
		})
	})
	return r
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			writeError(w, fmt.Errorf("missing %s header: %w", UserHeader, ports.ErrInvalidRequest))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, userID)))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userKey).(string)
	return id
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "HTTP request", ports.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"duration":  time.Since(start).String(),
			"requestID": middleware.GetReqID(r.Context()),
		})
	})
}
