package analytics

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// Ratio is a dimensionless figure that may be +Inf. JSON has no infinity, so
// infinite values are encoded as the strings "Infinity" and "-Infinity".
type Ratio float64

// IsInf reports whether the ratio is +Inf.
func (r Ratio) IsInf() bool {
	return math.IsInf(float64(r), 1)
}

// MarshalJSON implements json.Marshaler.
func (r Ratio) MarshalJSON() ([]byte, error) {
	f := float64(r)
	switch {
	case math.IsInf(f, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(f):
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Infinity"`:
		*r = Ratio(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*r = Ratio(math.Inf(-1))
		return nil
	case "null":
		*r = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

// Statistics holds the derived metrics and chart series of a trade snapshot.
type Statistics struct {
	// Counters
	TotalTrades   int             `json:"totalTrades" yaml:"total_trades"`
	OpenTrades    int             `json:"openTrades" yaml:"open_trades"`
	ClosedTrades  int             `json:"closedTrades" yaml:"closed_trades"`
	WinningTrades int             `json:"winningTrades" yaml:"winning_trades"`
	LosingTrades  int             `json:"losingTrades" yaml:"losing_trades"`
	ClosedPnL     decimal.Decimal `json:"closedPnl" yaml:"closed_pnl"`

	// Summary
	WinRate       Ratio           `json:"winRate" yaml:"win_rate"` // percent, 0-100
	Expectancy    decimal.Decimal `json:"expectancy" yaml:"expectancy"`
	ProfitFactor  Ratio           `json:"profitFactor" yaml:"profit_factor"`
	AvgWin        decimal.Decimal `json:"avgWin" yaml:"avg_win"`
	AvgLoss       decimal.Decimal `json:"avgLoss" yaml:"avg_loss"`
	MaxWinStreak  int             `json:"maxWinStreak" yaml:"max_win_streak"`
	MaxLossStreak int             `json:"maxLossStreak" yaml:"max_loss_streak"`
	TopWin        decimal.Decimal `json:"topWin" yaml:"top_win"`
	TopLoss       decimal.Decimal `json:"topLoss" yaml:"top_loss"`
	MaxDrawdown   decimal.Decimal `json:"maxDrawdown" yaml:"max_drawdown"`

	// Series
	EquityCurve    []EquityPoint `json:"equityCurve" yaml:"equity_curve"`
	PnLByDayOfWeek []Bucket      `json:"pnlByDayOfWeek" yaml:"pnl_by_day_of_week"`
	PnLByHour      []Bucket      `json:"pnlByHour" yaml:"pnl_by_hour"`
	PnLByMonth     []MonthlyPnL  `json:"pnlByMonth" yaml:"pnl_by_month"`
	Drawdowns      []Drawdown    `json:"drawdowns" yaml:"drawdowns"`

	// Groupings
	PerformanceByTag    map[string]Performance `json:"performanceByTag" yaml:"performance_by_tag"`
	PerformanceBySymbol map[string]Performance `json:"performanceBySymbol" yaml:"performance_by_symbol"`
}

// Compute derives the full statistics set from a trade snapshot.
// The input is never modified; nil entries are ignored. An empty snapshot yields
// zero scalars, empty curve and groupings, and zero-valued day and hour series.
func Compute(trades []*domain.Trade) *Statistics {
	var (
		tally    outcomeTally
		streaks  streakCounter
		equity   equityCurve
		byMonth  monthlyTable
		byTag    performanceTable
		bySymbol performanceTable
		byDay    = newBucketSeries(weekdayNames)
		byHour   = newBucketSeries(hourNames())
		total    int
	)

	for _, t := range sortedByDate(trades) {
		total++
		streaks.observe(t)
		equity.add(t)

		if len(t.Tags) == 0 {
			byTag.add(NoTagsBucket, t)
		}
		for _, tag := range t.Tags {
			byTag.add(tag, t)
		}
		bySymbol.add(t.Symbol, t)

		if !t.IsClosed() {
			continue
		}
		tally.add(t)
		day := parseDate(t.Date)
		byDay.add(int(day.Weekday()), t.PnL)
		byHour.add(entryHour(t), t.PnL)
		byMonth.add(day.Format("2006-01"), t.PnL)
	}

	avgWin := ratio(tally.winPnL, tally.wins)
	avgLoss := ratio(tally.lossPnL, tally.losses)
	winShare := ratio(decimal.NewFromInt(int64(tally.wins)), tally.closed)
	lossShare := ratio(decimal.NewFromInt(int64(tally.losses)), tally.closed)

	return &Statistics{
		TotalTrades:   total,
		OpenTrades:    total - tally.closed,
		ClosedTrades:  tally.closed,
		WinningTrades: tally.wins,
		LosingTrades:  tally.losses,
		ClosedPnL:     tally.closedPnL,

		WinRate: Ratio(winShare.Mul(decimal.NewFromInt(100)).InexactFloat64()),
		// avgLoss is already negative, so the loss term is added.
		Expectancy:    winShare.Mul(avgWin).Add(lossShare.Mul(avgLoss)),
		ProfitFactor:  profitFactor(tally.winPnL, tally.lossPnL),
		AvgWin:        avgWin,
		AvgLoss:       avgLoss,
		MaxWinStreak:  streaks.maxWin,
		MaxLossStreak: streaks.maxLoss,
		TopWin:        tally.topWin,
		TopLoss:       tally.topLoss,
		MaxDrawdown:   equity.maxDrawdown,

		EquityCurve:    equityPoints(equity.points),
		PnLByDayOfWeek: byDay,
		PnLByHour:      byHour,
		PnLByMonth:     byMonth.result(),
		Drawdowns:      Drawdowns(equity.points),

		PerformanceByTag:    byTag.result(),
		PerformanceBySymbol: bySymbol.result(),
	}
}

// profitFactor is |gross profit / gross loss|. Without losses it is +Inf when
// there is any profit and 0 otherwise.
func profitFactor(grossProfit, grossLoss decimal.Decimal) Ratio {
	if grossLoss.IsZero() {
		if grossProfit.IsPositive() {
			return Ratio(math.Inf(1))
		}
		return 0
	}
	return Ratio(grossProfit.Div(grossLoss).Abs().InexactFloat64())
}

func equityPoints(points []EquityPoint) []EquityPoint {
	if points == nil {
		return []EquityPoint{}
	}
	return points
}
