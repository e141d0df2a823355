package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
)

// Columns is the header written by Export. Parse accepts any subset, in any order.
var Columns = []string{
	"id", "date", "symbol", "type", "status", "market", "entryPrice", "exitPrice", "quantity", "pnl",
	"target", "stopLoss", "strategyId", "tags", "notes", "confidence", "imageUrls",
}

// ParseResult holds the imported trades and the 1-based line numbers of skipped rows.
type ParseResult struct {
	Trades  []*domain.Trade
	Skipped []int
}

// Parse reads a header row followed by trade rows. Rows whose field count differs
// from the header are skipped. Missing values fall back to journal defaults and
// trades without a date are dated today (YYYY-MM-DD). An empty market is left
// for the caller to default.
func Parse(r io.Reader, today string) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &ParseResult{Trades: []*domain.Trade{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	res := &ParseResult{Trades: []*domain.Trade{}}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Skipped = append(res.Skipped, parseErr.StartLine)
				continue
			}
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if len(record) != len(header) {
			line, _ := reader.FieldPos(0)
			res.Skipped = append(res.Skipped, line)
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			row[h] = strings.TrimSpace(record[i])
		}
		res.Trades = append(res.Trades, tradeFromRow(row, today))
	}
	return res, nil
}

func tradeFromRow(row map[string]string, today string) *domain.Trade {
	t := &domain.Trade{
		Symbol:     orDefault(row["symbol"], "UNKNOWN"),
		EntryPrice: decimalOrZero(row["entryPrice"]),
		ExitPrice:  optionalDecimal(row["exitPrice"]),
		Quantity:   intOrZero(row["quantity"]),
		Type:       domain.Sell,
		Status:     domain.StatusOpen,
		PnL:        decimal.Zero,
		Date:       orDefault(row["date"], today),
		Market:     row["market"],
		Target:     optionalDecimal(row["target"]),
		StopLoss:   optionalDecimal(row["stopLoss"]),
		Tags:       splitList(row["tags"]),
		Notes:      row["notes"],
		Confidence: domain.DefaultConfidence,
		ImageURLs:  splitList(row["imageUrls"]),
		Orders:     []domain.TradeOrder{},
	}
	if row["type"] == string(domain.Buy) {
		t.Type = domain.Buy
	}
	if c, err := strconv.Atoi(row["confidence"]); err == nil {
		t.Confidence = c
	}
	if id := row["strategyId"]; id != "" {
		t.StrategyID = optional.Some(id)
	}
	// Exported files carry the outcome; plain imports start Open with zero pnl.
	if row["status"] == string(domain.StatusClosed) {
		t.Status = domain.StatusClosed
		t.PnL = decimalOrZero(row["pnl"])
	}
	return t
}

// Export writes trades with the Columns header. Lists are joined with commas.
func Export(w io.Writer, trades []*domain.Trade) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range trades {
		record := []string{
			t.ID,
			t.Date,
			t.Symbol,
			string(t.Type),
			string(t.Status),
			t.Market,
			t.EntryPrice.String(),
			optionString(t.ExitPrice),
			strconv.FormatInt(t.Quantity, 10),
			t.PnL.String(),
			optionString(t.Target),
			optionString(t.StopLoss),
			t.StrategyID.TakeOr(""),
			strings.Join(t.Tags, ","),
			t.Notes,
			strconv.Itoa(t.Confidence),
			strings.Join(t.ImageURLs, ","),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write trade %s: %w", t.ID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func decimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func optionalDecimal(s string) optional.Option[decimal.Decimal] {
	d, err := decimal.NewFromString(s)
	if s == "" || err != nil {
		return optional.None[decimal.Decimal]()
	}
	return optional.Some(d)
}

func intOrZero(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// "2.0" style quantities
		if d, derr := decimal.NewFromString(s); derr == nil {
			return d.IntPart()
		}
		return 0
	}
	return n
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func optionString(o optional.Option[decimal.Decimal]) string {
	if o.IsNone() {
		return ""
	}
	return o.Unwrap().String()
}
