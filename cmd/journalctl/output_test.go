package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/app"
	"tradeJournal/internal/domain"
)

func closed(date, symbol, pnl string) *domain.Trade {
	return &domain.Trade{
		Date:     date,
		Symbol:   symbol,
		Quantity: 1,
		Status:   domain.StatusClosed,
		PnL:      decimal.RequireFromString(pnl),
	}
}

func TestPrintStatistics(t *testing.T) {
	stats := analytics.Compute([]*domain.Trade{
		closed("2025-07-01", "BTCUSDT", "50"),
		closed("2025-07-02", "ETHUSDT", "-20"),
		closed("2025-07-03", "BTCUSDT", "10"),
	})

	var buf bytes.Buffer
	require.NoError(t, printStatistics(&buf, stats))
	out := buf.String()

	assert.Contains(t, out, "Closed PnL")
	assert.Contains(t, out, "40.00")
	assert.Contains(t, out, "66.67%")
	assert.Contains(t, out, "## By symbol")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("BTCUSDT")), bytes.Index(buf.Bytes(), []byte("ETHUSDT")),
		"groups are ordered by PnL")
	assert.Contains(t, out, "2025-07")
}

func TestFormatRatio(t *testing.T) {
	stats := analytics.Compute([]*domain.Trade{closed("2025-07-01", "BTCUSDT", "5")})
	assert.Equal(t, "inf", formatRatio(stats.ProfitFactor))
	assert.Equal(t, "1.50", formatRatio(analytics.Ratio(1.5)))
}

func TestPrintCalendar(t *testing.T) {
	cal := analytics.Calendar([]*domain.Trade{closed("2025-07-01", "BTCUSDT", "12.5")}, 2025, 7)

	var buf bytes.Buffer
	require.NoError(t, printCalendar(&buf, cal))
	out := buf.String()

	assert.Contains(t, out, "2025-07  1 trade days, PnL 12.50")
	assert.Contains(t, out, "1*")
	assert.Contains(t, out, "31")
	assert.Contains(t, out, "2025-07-01")
}

func TestPrintImportResult(t *testing.T) {
	var buf bytes.Buffer
	printImportResult(&buf, &app.ImportResult{Imported: 3, Duplicates: 1, Skipped: 2})
	assert.Equal(t, "imported 3, duplicates 1, skipped 2\n", buf.String())
}
