package ports

import (
	"context"

	"tradeJournal/internal/domain"
)

// TradeFilter narrows a trade listing. Zero values mean "no constraint".
type TradeFilter struct {
	From       string // inclusive YYYY-MM-DD
	To         string // inclusive YYYY-MM-DD
	Symbol     string
	StrategyID string
	Status     domain.TradeStatus
}

// SnapshotFunc receives the full, current trade list of a user.
type SnapshotFunc func(trades []*domain.Trade)

// TradeStore defines the interface for storing and retrieving journal trades.
type TradeStore interface {
	// Create saves a new trade and returns its assigned ID.
	Create(ctx context.Context, trade *domain.Trade) (string, error)
	// Update replaces an existing trade (orders included).
	Update(ctx context.Context, trade *domain.Trade) error
	// Delete removes a trade owned by the user.
	Delete(ctx context.Context, userID, id string) error
	// FindByID retrieves a trade by its ID.
	// Returns nil, nil if not found.
	FindByID(ctx context.Context, userID, id string) (*domain.Trade, error)
	// List retrieves the user's trades matching the filter, ordered by date then creation.
	List(ctx context.Context, userID string, filter TradeFilter) ([]*domain.Trade, error)
	// Subscribe registers fn for the user's snapshots. The current snapshot is
	// delivered immediately, then again after every change. The returned func unsubscribes.
	Subscribe(ctx context.Context, userID string, fn SnapshotFunc) (unsubscribe func(), err error)
}

// StrategyRepository defines the interface for storing and retrieving strategies.
type StrategyRepository interface {
	CreateStrategy(ctx context.Context, s *domain.Strategy) (string, error)
	UpdateStrategy(ctx context.Context, s *domain.Strategy) error
	// DeleteStrategy removes the strategy and clears the reference on linked trades.
	DeleteStrategy(ctx context.Context, userID, id string) error
	// FindStrategyByID returns nil, nil if not found.
	FindStrategyByID(ctx context.Context, userID, id string) (*domain.Strategy, error)
	ListStrategies(ctx context.Context, userID string) ([]*domain.Strategy, error)
}
