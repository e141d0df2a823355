package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// DaySummary is the trade count and PnL recorded on one date.
type DaySummary struct {
	Count int             `json:"count" yaml:"count"`
	PnL   decimal.Decimal `json:"pnl" yaml:"pnl"`
}

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date string `json:"date" yaml:"date"`
	Day  int    `json:"day" yaml:"day"`

	DaySummary `yaml:",inline"`
}

// CalendarMonth lays out a month of daily summaries. LeadingBlanks is the weekday
// of the 1st (Sunday = 0), i.e. the number of empty cells before it.
type CalendarMonth struct {
	Year          int             `json:"year" yaml:"year"`
	Month         int             `json:"month" yaml:"month"`
	LeadingBlanks int             `json:"leadingBlanks" yaml:"leading_blanks"`
	Days          []CalendarDay   `json:"days" yaml:"days"`
	PnL           decimal.Decimal `json:"pnl" yaml:"pnl"`
	TradeDays     int             `json:"tradeDays" yaml:"trade_days"`
}

// DailySummaries groups every trade (open or closed) by its date string.
func DailySummaries(trades []*domain.Trade) map[string]DaySummary {
	days := make(map[string]DaySummary)
	for _, t := range trades {
		if t == nil {
			continue
		}
		d := days[t.Date]
		d.Count++
		d.PnL = d.PnL.Add(t.PnL)
		days[t.Date] = d
	}
	return days
}

// Calendar builds the month grid for year/month (1-12) from the snapshot.
// Out-of-range months are normalised the way time.Date does.
func Calendar(trades []*domain.Trade, year, month int) *CalendarMonth {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()
	summaries := DailySummaries(trades)

	cal := &CalendarMonth{
		Year:          first.Year(),
		Month:         int(first.Month()),
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]CalendarDay, 0, daysInMonth),
		PnL:           decimal.Zero,
	}
	for day := 1; day <= daysInMonth; day++ {
		date := first.AddDate(0, 0, day-1).Format(domain.DateLayout)
		s, ok := summaries[date]
		if !ok {
			s = DaySummary{PnL: decimal.Zero}
		} else {
			cal.TradeDays++
			cal.PnL = cal.PnL.Add(s.PnL)
		}
		cal.Days = append(cal.Days, CalendarDay{Date: date, Day: day, DaySummary: s})
	}
	return cal
}
