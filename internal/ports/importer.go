package ports

import (
	"context"
	"time"

	"tradeJournal/internal/domain"
)

// TradeImporter fetches executed trades from an external venue and converts them into
// closed journal trades (without IDs or owner).
type TradeImporter interface {
	FetchTrades(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Trade, error)
}
