package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

const (
	// Base URLs
	baseURLProduction = "https://fapi.binance.com"
	baseURLTestnet    = "https://testnet.binancefuture.com"

	// The account trade endpoint rejects windows longer than 7 days.
	maxWindow = 7 * 24 * time.Hour
	pageLimit = 1000
)

// Client implements the ports.TradeImporter interface using the go-binance library.
type Client struct {
	futuresClient *futures.Client
	logger        ports.Logger
	pageSize      int
}

// Config holds configuration specific to the Binance client adapter.
type Config struct {
	APIKey     string
	SecretKey  string
	UseTestnet bool
	Logger     ports.Logger
}

// New creates a new Binance client adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("binance API key and secret are required to import trades: %w", ports.ErrInvalidAPIKeys)
	}

	client := futures.NewClient(cfg.APIKey, cfg.SecretKey)

	// Set BaseURL directly instead of using global futures.UseTestnet
	if cfg.UseTestnet {
		client.BaseURL = baseURLTestnet
		cfg.Logger.Info(context.Background(), "Binance client configured for Testnet", ports.Fields{"baseURL": client.BaseURL})
	} else {
		client.BaseURL = baseURLProduction
		cfg.Logger.Info(context.Background(), "Binance client configured for Production", ports.Fields{"baseURL": client.BaseURL})
	}

	return &Client{futuresClient: client, logger: cfg.Logger, pageSize: pageLimit}, nil
}

// handleError translates common Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := ports.Fields{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrRateLimited
		case -1021: // Timestamp for this request is outside of the recvWindow
			mappedErr = ports.ErrTimeout
		case -1022: // Signature for this request is not valid
			mappedErr = ports.ErrAuthenticationFailed
		case -1101, -1102, -1103, -1104, -1105, -1106, -1111, -1115, -1116, -1117, -1120, -1121, -1125, -1127, -1128, -1130: // Parameter/Request format errors
			mappedErr = ports.ErrInvalidRequest
		case -2014, -2015: // API-key format invalid / Invalid API-key, IP, or permissions
			mappedErr = ports.ErrInvalidAPIKeys
		default:
			mappedErr = ports.ErrUnknown
		}
		c.logger.Error(ctx, err, fmt.Sprintf("%s failed with API error", operation), fields)
		return fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
	}

	// Handle non-API errors (network, context cancellation, etc.)
	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrTimeout, err)
	case strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"),
		strings.Contains(err.Error(), "no such host"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrExchangeUnavailable, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrUnknown, err)
	}

	c.logger.Error(ctx, err, fmt.Sprintf("%s failed", operation), fields)
	return finalErr
}

// FetchTrades downloads the account's futures fills for symbol in [start, end]
// and turns every order that realized PnL into a closed journal trade.
func (c *Client) FetchTrades(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Trade, error) {
	op := "FetchTrades"
	symbol = strings.ToUpper(symbol)
	if symbol == "" || !end.After(start) {
		return nil, fmt.Errorf("%s: symbol and a non-empty time range are required: %w", op, ports.ErrInvalidRequest)
	}

	// Both ends of a window are inclusive, so the next window starts one
	// millisecond after the previous one ends.
	var fills []*futures.AccountTrade
	endMs := end.UnixMilli()
	for windowStart := start.UnixMilli(); windowStart <= endMs; {
		windowEnd := min(windowStart+maxWindow.Milliseconds(), endMs)
		page, err := c.fetchWindow(ctx, symbol, windowStart, windowEnd)
		if err != nil {
			return nil, c.handleError(ctx, err, op)
		}
		fills = append(fills, page...)
		windowStart = windowEnd + 1
	}

	trades, err := ConvertFills(symbol, fills)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}
	c.logger.Info(ctx, "Fetched Binance futures fills", ports.Fields{
		"symbol": symbol, "fills": len(fills), "trades": len(trades),
	})
	return trades, nil
}

// fetchWindow returns every fill in [startMs, endMs]. The first page is
// selected by time; fromId cannot be combined with a time range, so later pages
// continue by trade id and stop at the first fill past the window.
func (c *Client) fetchWindow(ctx context.Context, symbol string, startMs, endMs int64) ([]*futures.AccountTrade, error) {
	page, err := c.futuresClient.NewListAccountTradeService().
		Symbol(symbol).
		StartTime(startMs).
		EndTime(endMs).
		Limit(c.pageSize).
		Do(ctx)
	if err != nil {
		return nil, err
	}
	out := page

	for len(page) == c.pageSize {
		page, err = c.futuresClient.NewListAccountTradeService().
			Symbol(symbol).
			FromID(page[len(page)-1].ID + 1).
			Limit(c.pageSize).
			Do(ctx)
		if err != nil {
			return nil, err
		}
		for i, f := range page {
			if f.Time > endMs {
				return append(out, page[:i]...), nil
			}
		}
		out = append(out, page...)
	}
	return out, nil
}

// ConvertFills groups fills by order and maps each order with realized PnL to a
// closed trade. Opening orders carry no realized PnL and are left out, and a
// fill repeated under the same id counts once. The trade direction is the
// position that was closed: a SELL order closes a long. Trades come out in
// order of their first fill, ties broken by order id.
func ConvertFills(symbol string, fills []*futures.AccountTrade) ([]*domain.Trade, error) {
	byOrder := make(map[int64][]*futures.AccountTrade)
	seenFills := make(map[int64]bool, len(fills))
	var orderIDs []int64
	for _, f := range fills {
		if f == nil || seenFills[f.ID] {
			continue
		}
		seenFills[f.ID] = true
		if _, seen := byOrder[f.OrderID]; !seen {
			orderIDs = append(orderIDs, f.OrderID)
		}
		byOrder[f.OrderID] = append(byOrder[f.OrderID], f)
	}
	sort.Slice(orderIDs, func(i, j int) bool {
		ti, tj := byOrder[orderIDs[i]][0].Time, byOrder[orderIDs[j]][0].Time
		if ti != tj {
			return ti < tj
		}
		return orderIDs[i] < orderIDs[j]
	})

	trades := make([]*domain.Trade, 0, len(orderIDs))
	for _, id := range orderIDs {
		trade, err := tradeFromOrder(symbol, id, byOrder[id])
		if err != nil {
			return nil, err
		}
		if trade != nil {
			trades = append(trades, trade)
		}
	}
	return trades, nil
}

func tradeFromOrder(symbol string, orderID int64, fills []*futures.AccountTrade) (*domain.Trade, error) {
	var (
		qty, notional, realized, fees decimal.Decimal
		orders                        []domain.TradeOrder
	)
	for _, f := range fills {
		price, err := decimal.NewFromString(f.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price '%s' of fill %d: %w", f.Price, f.ID, err)
		}
		q, err := decimal.NewFromString(f.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to parse quantity '%s' of fill %d: %w", f.Quantity, f.ID, err)
		}
		pnl, err := decimal.NewFromString(f.RealizedPnl)
		if err != nil {
			return nil, fmt.Errorf("failed to parse realized pnl '%s' of fill %d: %w", f.RealizedPnl, f.ID, err)
		}
		fee, err := decimal.NewFromString(f.Commission)
		if err != nil {
			return nil, fmt.Errorf("failed to parse commission '%s' of fill %d: %w", f.Commission, f.ID, err)
		}

		qty = qty.Add(q)
		notional = notional.Add(price.Mul(q))
		realized = realized.Add(pnl)
		fees = fees.Add(fee)

		at := time.UnixMilli(f.Time).UTC()
		orders = append(orders, domain.TradeOrder{
			Action:   orderAction(f),
			Date:     at.Format(domain.DateLayout),
			Time:     at.Format(domain.TimeLayout),
			Quantity: wholeUnits(q),
			Price:    price,
			Fee:      fee,
		})
	}
	if realized.IsZero() || qty.IsZero() {
		return nil, nil
	}

	exit := notional.Div(qty)
	perUnit := realized.Div(qty)
	tradeType := domain.Buy
	entry := exit.Sub(perUnit)
	if orders[0].Action == domain.ActionBuy {
		// Buying back closes a short.
		tradeType = domain.Sell
		entry = exit.Add(perUnit)
	}

	return &domain.Trade{
		ID:         fmt.Sprintf("binance-%s-%d", symbol, orderID),
		Symbol:     symbol,
		EntryPrice: entry,
		ExitPrice:  optional.Some(exit),
		Quantity:   wholeUnits(qty),
		Type:       tradeType,
		Status:     domain.StatusClosed,
		PnL:        realized.Sub(fees),
		Date:       orders[0].Date,
		Orders:     orders,
		Market:     domain.DefaultMarket,
		Tags:       []string{"binance"},
		Notes:      fmt.Sprintf("Imported from Binance futures order %d", orderID),
		Confidence: domain.DefaultConfidence,
	}, nil
}

func orderAction(f *futures.AccountTrade) domain.OrderAction {
	if f.Side == futures.SideTypeBuy || (f.Side == "" && f.Buyer) {
		return domain.ActionBuy
	}
	return domain.ActionSell
}

// wholeUnits rounds a fractional contract quantity to the journal's integer
// quantity, never below one.
func wholeUnits(q decimal.Decimal) int64 {
	n := q.Round(0).IntPart()
	if n < 1 {
		return 1
	}
	return n
}

var _ ports.TradeImporter = (*Client)(nil)
