package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"tradeJournal/internal/ports"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := s.stats.Statistics(r.Context(), userID(r), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) getCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year, err := intParam(r, "year", now.Year())
	if err != nil {
		writeError(w, err)
		return
	}
	month, err := intParam(r, "month", int(now.Month()))
	if err != nil {
		writeError(w, err)
		return
	}
	cal, err := s.stats.Calendar(r.Context(), userID(r), year, month)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cal)
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dash, err := s.stats.Dashboard(r.Context(), userID(r), q.Get("from"), q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// streamStats upgrades to a websocket and pushes Statistics JSON whenever the
// user's trades change. Client messages are read only to detect disconnects.
func (s *Server) streamStats(w http.ResponseWriter, r *http.Request) {
	user := userID(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "Websocket upgrade failed", ports.Fields{"error": err.Error()})
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(s.streams)
	defer cancel()

	updates, err := s.stats.Watch(ctx, user)
	if err != nil {
		s.logger.Error(ctx, err, "Failed to start statistics watch", ports.Fields{"userID": user})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "watch failed"),
			time.Now().Add(writeWait))
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	s.logger.Info(ctx, "Statistics stream opened", ports.Fields{"userID": user})
	for {
		select {
		case stats, ok := <-updates:
			if !ok {
				s.logger.Info(ctx, "Statistics stream closed", ports.Fields{"userID": user})
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(stats); err != nil {
				s.logger.Debug(ctx, "Statistics stream write failed", ports.Fields{"userID": user, "error": err.Error()})
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer: %w", name, ports.ErrInvalidRequest)
	}
	return n, nil
}
