package analytics

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// NoTagsBucket collects trades that carry no tags.
const NoTagsBucket = "NO TAGS"

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// Performance aggregates the trades of one group (a tag or a symbol).
type Performance struct {
	Trades      int             `json:"trades" yaml:"trades"`
	PnL         decimal.Decimal `json:"pnl" yaml:"pnl"`
	WeightedPnL decimal.Decimal `json:"weightedPnl" yaml:"weighted_pnl"`
}

// add folds one trade into the group. WeightedPnL is pnl per unit of quantity;
// a zero quantity counts as one unit.
func (p Performance) add(t *domain.Trade) Performance {
	qty := t.Quantity
	if qty == 0 {
		qty = 1
	}
	return Performance{
		Trades:      p.Trades + 1,
		PnL:         p.PnL.Add(t.PnL),
		WeightedPnL: p.WeightedPnL.Add(t.PnL.Div(decimal.NewFromInt(qty))),
	}
}

// performanceTable groups Performance rows by key. The zero value is ready to use.
type performanceTable struct {
	rows map[string]Performance
}

func (pt *performanceTable) add(key string, t *domain.Trade) {
	if pt.rows == nil {
		pt.rows = make(map[string]Performance)
	}
	pt.rows[key] = pt.rows[key].add(t)
}

func (pt *performanceTable) result() map[string]Performance {
	out := make(map[string]Performance, len(pt.rows))
	for k, v := range pt.rows {
		out[k] = v
	}
	return out
}

// Bucket is one named point of a fixed-size PnL series.
type Bucket struct {
	Name string          `json:"name" yaml:"name"`
	PnL  decimal.Decimal `json:"pnl" yaml:"pnl"`
}

// bucketSeries is a fixed, ordered set of buckets. Every bucket starts at zero.
type bucketSeries []Bucket

func newBucketSeries(names []string) bucketSeries {
	s := make(bucketSeries, len(names))
	for i, n := range names {
		s[i] = Bucket{Name: n, PnL: decimal.Zero}
	}
	return s
}

func (s bucketSeries) add(i int, pnl decimal.Decimal) {
	if i < 0 || i >= len(s) {
		return
	}
	s[i].PnL = s[i].PnL.Add(pnl)
}

func hourNames() []string {
	names := make([]string, 24)
	for h := range names {
		names[h] = strconv.Itoa(h) + ":00"
	}
	return names
}

// streakCounter tracks consecutive wins and losses over closed trades in date order.
// Break-even closed trades and open trades leave both runs untouched.
type streakCounter struct {
	win, loss       int
	maxWin, maxLoss int
}

func (s *streakCounter) observe(t *domain.Trade) {
	if !t.IsClosed() {
		return
	}
	switch t.PnL.Sign() {
	case 1:
		s.win++
		s.loss = 0
	case -1:
		s.loss++
		s.win = 0
	}
	if s.win > s.maxWin {
		s.maxWin = s.win
	}
	if s.loss > s.maxLoss {
		s.maxLoss = s.loss
	}
}

// EquityPoint is the cumulative PnL after a trade.
type EquityPoint struct {
	Date          string          `json:"date" yaml:"date"`
	CumulativePnL decimal.Decimal `json:"cumulativePnl" yaml:"cumulative_pnl"`
}

// equityCurve accumulates a running PnL starting at zero, with drawdown tracking.
type equityCurve struct {
	points      []EquityPoint
	balance     decimal.Decimal
	peak        decimal.Decimal
	maxDrawdown decimal.Decimal
}

func (e *equityCurve) add(t *domain.Trade) {
	e.balance = e.balance.Add(t.PnL)
	if e.balance.GreaterThan(e.peak) {
		e.peak = e.balance
	}
	if dd := e.peak.Sub(e.balance); dd.GreaterThan(e.maxDrawdown) {
		e.maxDrawdown = dd
	}
	e.points = append(e.points, EquityPoint{Date: t.Date, CumulativePnL: e.balance})
}

// MonthlyPnL is the closed PnL of one calendar month.
type MonthlyPnL struct {
	Month string          `json:"month" yaml:"month"`
	PnL   decimal.Decimal `json:"pnl" yaml:"pnl"`
}

type monthlyTable struct {
	months map[string]decimal.Decimal
}

func (m *monthlyTable) add(month string, pnl decimal.Decimal) {
	if m.months == nil {
		m.months = make(map[string]decimal.Decimal)
	}
	m.months[month] = m.months[month].Add(pnl)
}

// result returns the months in ascending order.
func (m *monthlyTable) result() []MonthlyPnL {
	out := make([]MonthlyPnL, 0, len(m.months))
	for month, pnl := range m.months {
		out = append(out, MonthlyPnL{Month: month, PnL: pnl})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month < out[j].Month
	})
	return out
}

// outcomeTally counts closed trades and sums their wins and losses.
type outcomeTally struct {
	closed, wins, losses int
	closedPnL            decimal.Decimal
	winPnL, lossPnL      decimal.Decimal
	topWin, topLoss      decimal.Decimal
}

func (o *outcomeTally) add(t *domain.Trade) {
	o.closed++
	o.closedPnL = o.closedPnL.Add(t.PnL)
	switch t.PnL.Sign() {
	case 1:
		if o.wins == 0 || t.PnL.GreaterThan(o.topWin) {
			o.topWin = t.PnL
		}
		o.wins++
		o.winPnL = o.winPnL.Add(t.PnL)
	case -1:
		if o.losses == 0 || t.PnL.LessThan(o.topLoss) {
			o.topLoss = t.PnL
		}
		o.losses++
		o.lossPnL = o.lossPnL.Add(t.PnL)
	}
}

// ratio divides a by b, returning zero when b is zero.
func ratio(a decimal.Decimal, b int) decimal.Decimal {
	if b == 0 {
		return decimal.Zero
	}
	return a.Div(decimal.NewFromInt(int64(b)))
}
