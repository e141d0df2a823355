package analytics

import (
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// DashboardSummary holds the headline figures of the journal dashboard.
// Losses are reported as positive magnitudes.
type DashboardSummary struct {
	Wins         int             `json:"wins" yaml:"wins"`
	Losses       int             `json:"losses" yaml:"losses"`
	OpenTrades   int             `json:"openTrades" yaml:"open_trades"`
	ClosedTrades int             `json:"closedTrades" yaml:"closed_trades"`
	TotalProfit  decimal.Decimal `json:"totalProfit" yaml:"total_profit"`
	TotalLoss    decimal.Decimal `json:"totalLoss" yaml:"total_loss"`
	AvgProfit    decimal.Decimal `json:"avgProfit" yaml:"avg_profit"`
	AvgLoss      decimal.Decimal `json:"avgLoss" yaml:"avg_loss"`
	ClosedPnL    decimal.Decimal `json:"closedPnl" yaml:"closed_pnl"`
}

// Dashboard summarises wins, losses and closed PnL of the snapshot.
func Dashboard(trades []*domain.Trade) *DashboardSummary {
	var tally outcomeTally
	open := 0
	for _, t := range trades {
		if t == nil {
			continue
		}
		if !t.IsClosed() {
			open++
			continue
		}
		tally.add(t)
	}
	totalLoss := tally.lossPnL.Abs()
	return &DashboardSummary{
		Wins:         tally.wins,
		Losses:       tally.losses,
		OpenTrades:   open,
		ClosedTrades: tally.closed,
		TotalProfit:  tally.winPnL,
		TotalLoss:    totalLoss,
		AvgProfit:    ratio(tally.winPnL, tally.wins),
		AvgLoss:      ratio(totalLoss, tally.losses),
		ClosedPnL:    tally.closedPnL,
	}
}

// FilterByDateRange keeps trades dated within [from, to]. Empty bounds are open.
// Bounds and trade dates are compared as calendar dates.
func FilterByDateRange(trades []*domain.Trade, from, to string) []*domain.Trade {
	out := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		if t == nil {
			continue
		}
		day := parseDate(t.Date)
		if from != "" && day.Before(parseDate(from)) {
			continue
		}
		if to != "" && day.After(parseDate(to)) {
			continue
		}
		out = append(out, t)
	}
	return out
}
