package analytics

import (
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// StrategySummary describes the trades linked to one strategy.
type StrategySummary struct {
	StrategyID    string          `json:"strategyId" yaml:"strategy_id"`
	TotalTrades   int             `json:"totalTrades" yaml:"total_trades"`
	WinningTrades int             `json:"winningTrades" yaml:"winning_trades"`
	TotalPnL      decimal.Decimal `json:"totalPnl" yaml:"total_pnl"`
	WinRate       Ratio           `json:"winRate" yaml:"win_rate"`
}

// StrategyPerformance summarises the trades linked to strategyID. Every linked
// trade counts, open or closed, and a win is any trade with positive pnl.
func StrategyPerformance(trades []*domain.Trade, strategyID string) *StrategySummary {
	s := &StrategySummary{StrategyID: strategyID, TotalPnL: decimal.Zero}
	for _, t := range trades {
		if t == nil || !t.HasStrategy(strategyID) {
			continue
		}
		s.TotalTrades++
		s.TotalPnL = s.TotalPnL.Add(t.PnL)
		if t.PnL.IsPositive() {
			s.WinningTrades++
		}
	}
	rate := ratio(decimal.NewFromInt(int64(s.WinningTrades)), s.TotalTrades)
	s.WinRate = Ratio(rate.Mul(decimal.NewFromInt(100)).InexactFloat64())
	return s
}
