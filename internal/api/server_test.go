package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/analytics"
	"tradeJournal/internal/app"
	"tradeJournal/internal/domain"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	_, ts := newTestServer(t)
	return ts
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	log := logger.Nop()
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: filepath.Join(t.TempDir(), "api.db"), Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	journal, err := app.NewJournalService(repo, repo, log)
	require.NoError(t, err)
	stats, err := app.NewStatsService(repo, log)
	require.NoError(t, err)
	srv, err := NewServer(journal, stats, log)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func do(t *testing.T, ts *httptest.Server, method, path, user string, body io.Reader) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)
	if user != "" {
		req.Header.Set(UserHeader, user)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

const tradeJSON = `{
	"symbol": "BTCUSDT",
	"entryPrice": "100",
	"quantity": 2,
	"type": "Buy",
	"date": "2025-07-01",
	"tags": ["breakout"],
	"orders": [{"action": "BUY", "date": "2025-07-01", "time": "14:05", "quantity": 2, "price": "100", "fee": "0"}]
}`

func createTrade(t *testing.T, ts *httptest.Server, user string) domain.Trade {
	t.Helper()
	resp := do(t, ts, http.MethodPost, "/trades", user, strings.NewReader(tradeJSON))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[domain.Trade](t, resp)
}

func TestHealthcheck(t *testing.T) {
	ts := setupServer(t)
	resp := do(t, ts, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequiresUserHeader(t *testing.T) {
	ts := setupServer(t)
	resp := do(t, ts, http.MethodGet, "/trades", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[errorBody](t, resp)
	assert.Contains(t, body.Error, UserHeader)
}

func TestTradeLifecycle(t *testing.T) {
	ts := setupServer(t)

	created := createTrade(t, ts, "u1")
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, domain.StatusOpen, created.Status)

	resp := do(t, ts, http.MethodGet, "/trades/"+created.ID, "u2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "trades are private to their owner")

	resp = do(t, ts, http.MethodPost, "/trades/"+created.ID+"/close", "u1", strings.NewReader(`{"exitPrice": "125"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decode[domain.Trade](t, resp)
	assert.Equal(t, domain.StatusClosed, closed.Status)
	assert.Equal(t, "50", closed.PnL.String())

	resp = do(t, ts, http.MethodGet, "/trades?status=Closed", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]domain.Trade](t, resp)
	require.Len(t, list, 1)
	require.Len(t, list[0].Orders, 1)

	resp = do(t, ts, http.MethodGet, "/stats", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decode[analytics.Statistics](t, resp)
	assert.Equal(t, 1, stats.WinningTrades)
	assert.True(t, stats.ProfitFactor.IsInf())
	assert.Equal(t, "50", stats.PnLByHour[14].PnL.String())

	resp = do(t, ts, http.MethodDelete, "/trades/"+created.ID, "u1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, ts, http.MethodDelete, "/trades/"+created.ID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateTradeValidation(t *testing.T) {
	ts := setupServer(t)

	resp := do(t, ts, http.MethodPost, "/trades", "u1", strings.NewReader(`{"symbol": "", "quantity": 1, "type": "Buy", "date": "2025-07-01"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodPost, "/trades", "u1", strings.NewReader(`{not json`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStrategyRoutes(t *testing.T) {
	ts := setupServer(t)

	resp := do(t, ts, http.MethodPost, "/strategies", "u1", strings.NewReader(`{"name": "Breakout"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	st := decode[domain.Strategy](t, resp)

	body := strings.Replace(tradeJSON, `"tags"`, `"strategyId": "`+st.ID+`", "tags"`, 1)
	resp = do(t, ts, http.MethodPost, "/trades", "u1", strings.NewReader(body))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/strategies/"+st.ID+"/performance", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	perf := decode[analytics.StrategySummary](t, resp)
	assert.Equal(t, 1, perf.TotalTrades)

	resp = do(t, ts, http.MethodPut, "/strategies/"+st.ID, "u1", strings.NewReader(`{"name": "Breakout v2"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/strategies", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]domain.Strategy](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "Breakout v2", list[0].Name)

	resp = do(t, ts, http.MethodDelete, "/strategies/"+st.ID, "u1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp = do(t, ts, http.MethodGet, "/strategies/"+st.ID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCalendarAndDashboard(t *testing.T) {
	ts := setupServer(t)
	createTrade(t, ts, "u1")

	resp := do(t, ts, http.MethodGet, "/stats/calendar?year=2025&month=7", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cal := decode[analytics.CalendarMonth](t, resp)
	assert.Equal(t, 1, cal.Days[0].Count)

	resp = do(t, ts, http.MethodGet, "/stats/calendar?month=abc", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, ts, http.MethodGet, "/stats/dashboard?from=2025-07-01&to=2025-07-31", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dash := decode[analytics.DashboardSummary](t, resp)
	assert.Equal(t, 1, dash.OpenTrades)
}

func TestCSVRoundTrip(t *testing.T) {
	ts := setupServer(t)
	createTrade(t, ts, "u1")

	resp := do(t, ts, http.MethodGet, "/trades/export.csv", "u1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	resp = do(t, ts, http.MethodPost, "/trades/import", "u2", bytes.NewReader(exported))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[app.ImportResult](t, resp)
	assert.Equal(t, 1, res.Imported)

	resp = do(t, ts, http.MethodGet, "/trades", "u2", nil)
	list := decode[[]domain.Trade](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "BTCUSDT", list[0].Symbol)
}

func dialStream(t *testing.T, ts *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set(UserHeader, user)
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/stats/stream", header)
	require.NoError(t, err)
	t.Cleanup(func() {
		resp.Body.Close()
		conn.Close()
	})
	return conn
}

func TestStatsStream(t *testing.T) {
	ts := setupServer(t)
	conn := dialStream(t, ts, "u1")

	read := func() analytics.Statistics {
		t.Helper()
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var st analytics.Statistics
		require.NoError(t, conn.ReadJSON(&st))
		return st
	}

	assert.Equal(t, 0, read().TotalTrades)

	createTrade(t, ts, "u1")
	assert.Equal(t, 1, read().TotalTrades)
}

func TestCloseStreams(t *testing.T) {
	srv, ts := newTestServer(t)
	conn := dialStream(t, ts, "u1")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var st analytics.Statistics
	require.NoError(t, conn.ReadJSON(&st))

	srv.CloseStreams()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "stream should be closed by the server, not time out")
	}
}
