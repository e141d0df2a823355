package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"tradeJournal/internal/domain"
)

// epoch is used for trade dates that cannot be parsed.
var epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

// parseDate reads a YYYY-MM-DD trade date, falling back to the epoch.
func parseDate(s string) time.Time {
	d, err := time.Parse(domain.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return epoch
	}
	return d
}

// entryHour returns the hour of the first order's HH:MM time, or 0 when there are
// no orders or the time is unusable.
func entryHour(t *domain.Trade) int {
	if len(t.Orders) == 0 {
		return 0
	}
	raw := strings.TrimSpace(t.Orders[0].Time)
	if len(raw) < 2 {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSuffix(raw[:2], ":"))
	if err != nil || h < 0 || h > 23 {
		return 0
	}
	return h
}

// sortedByDate returns a copy of trades stable-sorted by date ascending.
func sortedByDate(trades []*domain.Trade) []*domain.Trade {
	type dated struct {
		trade *domain.Trade
		day   time.Time
	}
	rows := make([]dated, 0, len(trades))
	for _, t := range trades {
		if t != nil {
			rows = append(rows, dated{trade: t, day: parseDate(t.Date)})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].day.Before(rows[j].day)
	})
	sorted := make([]*domain.Trade, len(rows))
	for i, r := range rows {
		sorted[i] = r.trade
	}
	return sorted
}
