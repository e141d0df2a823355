package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tradeJournal/internal/domain"
)

func (s *Server) listStrategies(w http.ResponseWriter, r *http.Request) {
	list, err := s.journal.ListStrategies(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createStrategy(w http.ResponseWriter, r *http.Request) {
	var in domain.Strategy
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	st, err := s.journal.CreateStrategy(r.Context(), userID(r), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (s *Server) getStrategy(w http.ResponseWriter, r *http.Request) {
	st, err := s.journal.GetStrategy(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) updateStrategy(w http.ResponseWriter, r *http.Request) {
	var in domain.Strategy
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	st, err := s.journal.UpdateStrategy(r.Context(), userID(r), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) deleteStrategy(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeleteStrategy(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) strategyPerformance(w http.ResponseWriter, r *http.Request) {
	perf, err := s.journal.StrategyPerformance(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}
