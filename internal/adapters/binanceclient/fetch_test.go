package binanceclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/ports"
)

// fakeUserTrades serves /fapi/v1/userTrades with the exchange's selection
// rules: startTime and endTime are inclusive, fromId excludes a time range and
// results are ordered by id and cut at limit.
func fakeUserTrades(t *testing.T, fills []*futures.AccountTrade) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/userTrades" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		param := func(name string) (int64, bool) {
			v := q.Get(name)
			if v == "" {
				return 0, false
			}
			n, err := strconv.ParseInt(v, 10, 64)
			require.NoError(t, err)
			return n, true
		}
		startMs, hasStart := param("startTime")
		endMs, hasEnd := param("endTime")
		fromID, hasFrom := param("fromId")
		limit, hasLimit := param("limit")
		if !hasLimit {
			limit = 500
		}
		if hasFrom && (hasStart || hasEnd) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code":-1128,"msg":"Combination of optional parameters invalid."}`))
			return
		}

		var out []*futures.AccountTrade
		for _, f := range fills {
			switch {
			case hasFrom && f.ID < fromID:
				continue
			case hasStart && f.Time < startMs:
				continue
			case hasEnd && f.Time > endMs:
				continue
			}
			out = append(out, f)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		if int64(len(out)) > limit {
			out = out[:limit]
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(out))
	}))
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "k", SecretKey: "s", Logger: &mockLogger{}})
	require.NoError(t, err)
	c.futuresClient.BaseURL = baseURL
	return c
}

func TestFetchTrades_FillOnWindowBoundaryCountsOnce(t *testing.T) {
	week := maxWindow.Milliseconds()
	ts := fakeUserTrades(t, []*futures.AccountTrade{
		fill(1, 50, futures.SideTypeSell, "110", "1", "10", "0", week),
	})
	defer ts.Close()
	c := newTestClient(t, ts.URL)

	trades, err := c.FetchTrades(context.Background(), "btcusdt", baseTime(), baseTime().Add(2*maxWindow))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.True(t, trades[0].PnL.Equal(decimal.RequireFromString("10")), "got %s", trades[0].PnL)
	require.Len(t, trades[0].Orders, 1)
}

func TestFetchTrades_PagesByTradeID(t *testing.T) {
	ts := fakeUserTrades(t, []*futures.AccountTrade{
		// three fills in the same millisecond straddle the first page
		fill(1, 11, futures.SideTypeSell, "110", "1", "1", "0", 1_000),
		fill(2, 12, futures.SideTypeSell, "110", "1", "2", "0", 1_000),
		fill(3, 13, futures.SideTypeSell, "110", "1", "3", "0", 1_000),
		fill(4, 14, futures.SideTypeSell, "110", "1", "4", "0", 5_000),
		// past the requested range
		fill(5, 15, futures.SideTypeSell, "110", "1", "5", "0", 120_000),
	})
	defer ts.Close()
	c := newTestClient(t, ts.URL)
	c.pageSize = 2

	trades, err := c.FetchTrades(context.Background(), "BTCUSDT", baseTime(), baseTime().Add(time.Minute))
	require.NoError(t, err)

	ids := make([]string, 0, len(trades))
	for _, tr := range trades {
		ids = append(ids, tr.ID)
	}
	assert.Equal(t, []string{
		"binance-BTCUSDT-11",
		"binance-BTCUSDT-12",
		"binance-BTCUSDT-13",
		"binance-BTCUSDT-14",
	}, ids)
}

func TestFetchTrades_APIErrorIsMapped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"code":-1003,"msg":"Too many requests."}`))
	}))
	defer ts.Close()
	c := newTestClient(t, ts.URL)

	_, err := c.FetchTrades(context.Background(), "BTCUSDT", baseTime(), baseTime().Add(time.Hour))
	assert.ErrorIs(t, err, ports.ErrRateLimited)
}
