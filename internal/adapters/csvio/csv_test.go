package csvio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/domain"
)

func TestParse_Defaults(t *testing.T) {
	input := "symbol,entryPrice,quantity,type,tags\n" +
		"BTCUSDT,42000.5,2,Buy,\"breakout, A+\"\n" +
		",,,,\n"

	res, err := Parse(strings.NewReader(input), "2025-07-01")
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Empty(t, res.Skipped)

	first := res.Trades[0]
	assert.Equal(t, "BTCUSDT", first.Symbol)
	assert.True(t, first.EntryPrice.Equal(decimal.RequireFromString("42000.5")))
	assert.Equal(t, int64(2), first.Quantity)
	assert.Equal(t, domain.Buy, first.Type)
	assert.Equal(t, domain.StatusOpen, first.Status)
	assert.True(t, first.PnL.IsZero())
	assert.Equal(t, "2025-07-01", first.Date)
	assert.Empty(t, first.Market)
	assert.Equal(t, domain.DefaultConfidence, first.Confidence)
	assert.Equal(t, []string{"breakout", "A+"}, first.Tags)
	assert.True(t, first.ExitPrice.IsNone())

	empty := res.Trades[1]
	assert.Equal(t, "UNKNOWN", empty.Symbol)
	assert.Equal(t, domain.Sell, empty.Type, "anything but Buy imports as Sell")
	assert.Equal(t, int64(0), empty.Quantity)
	assert.Empty(t, empty.Tags)
}

func TestParse_SkipsMalformedRows(t *testing.T) {
	input := "symbol,quantity\n" +
		"ETHUSDT,1\n" +
		"SOLUSDT,1,extra\n" +
		"\n" +
		"ADAUSDT,3\n"

	res, err := Parse(strings.NewReader(input), "2025-07-01")
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, "ETHUSDT", res.Trades[0].Symbol)
	assert.Equal(t, "ADAUSDT", res.Trades[1].Symbol)
	assert.Equal(t, []int{3}, res.Skipped)
}

func TestParse_Empty(t *testing.T) {
	res, err := Parse(strings.NewReader(""), "2025-07-01")
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
}

func TestExportThenParse(t *testing.T) {
	closed := &domain.Trade{
		ID:         "t1",
		Date:       "2025-07-02",
		Symbol:     "BTCUSDT",
		Type:       domain.Sell,
		Status:     domain.StatusClosed,
		Market:     "SPOT",
		EntryPrice: decimal.RequireFromString("100"),
		ExitPrice:  optional.Some(decimal.RequireFromString("90")),
		Quantity:   3,
		PnL:        decimal.RequireFromString("30"),
		StrategyID: optional.Some("s1"),
		Tags:       []string{"fade", "news"},
		Notes:      "faded the spike, then covered",
		Confidence: 8,
	}
	open := &domain.Trade{
		ID: "t2", Date: "2025-07-03", Symbol: "ETHUSDT", Type: domain.Buy, Status: domain.StatusOpen,
		EntryPrice: decimal.RequireFromString("10"), Quantity: 1, PnL: decimal.Zero,
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, []*domain.Trade{closed, open}))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(Columns, ",")+"\n"))

	res, err := Parse(&buf, "2025-01-01")
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)

	back := res.Trades[0]
	assert.Equal(t, domain.StatusClosed, back.Status)
	assert.True(t, back.PnL.Equal(decimal.RequireFromString("30")))
	assert.True(t, back.ExitPrice.Unwrap().Equal(decimal.RequireFromString("90")))
	assert.Equal(t, []string{"fade", "news"}, back.Tags)
	assert.Equal(t, "faded the spike, then covered", back.Notes)
	assert.Equal(t, 8, back.Confidence)
	assert.True(t, back.HasStrategy("s1"))
	assert.Equal(t, "SPOT", back.Market)

	assert.Equal(t, domain.StatusOpen, res.Trades[1].Status)
	assert.True(t, res.Trades[1].StrategyID.IsNone())
}
