package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

type closeRequest struct {
	ExitPrice decimal.Decimal                  `json:"exitPrice"`
	PnL       optional.Option[decimal.Decimal] `json:"pnl"`
}

func (s *Server) listTrades(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ports.TradeFilter{
		From:       q.Get("from"),
		To:         q.Get("to"),
		Symbol:     q.Get("symbol"),
		StrategyID: q.Get("strategyId"),
		Status:     domain.TradeStatus(q.Get("status")),
	}
	trades, err := s.journal.ListTrades(r.Context(), userID(r), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) createTrade(w http.ResponseWriter, r *http.Request) {
	var in domain.Trade
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	trade, err := s.journal.CreateTrade(r.Context(), userID(r), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) getTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := s.journal.GetTrade(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) updateTrade(w http.ResponseWriter, r *http.Request) {
	var in domain.Trade
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	trade, err := s.journal.UpdateTrade(r.Context(), userID(r), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) deleteTrade(w http.ResponseWriter, r *http.Request) {
	if err := s.journal.DeleteTrade(r.Context(), userID(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) closeTrade(w http.ResponseWriter, r *http.Request) {
	var in closeRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	trade, err := s.journal.CloseTrade(r.Context(), userID(r), chi.URLParam(r, "id"), in.ExitPrice, in.PnL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trade)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="trades.csv"`)
	if err := s.journal.ExportCSV(r.Context(), userID(r), w); err != nil {
		// Headers may already be sent; the error is only logged.
		s.logger.Error(r.Context(), err, "CSV export failed", ports.Fields{"userID": userID(r)})
	}
}

func (s *Server) importCSV(w http.ResponseWriter, r *http.Request) {
	res, err := s.journal.ImportCSV(r.Context(), userID(r), r.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
