package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/adapters/csvio"
	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// JournalService orchestrates the trade and strategy lifecycles of the journal.
type JournalService struct {
	trades     ports.TradeStore
	strategies ports.StrategyRepository
	logger     ports.Logger
	validate   *validator.Validate
	now        func() time.Time

	defaultMarket string
}

// Option customises a JournalService.
type Option func(*JournalService)

// WithDefaultMarket sets the market assigned to trades that do not name one.
func WithDefaultMarket(market string) Option {
	return func(s *JournalService) {
		if market != "" {
			s.defaultMarket = market
		}
	}
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Imported   int `json:"imported" yaml:"imported"`
	Duplicates int `json:"duplicates" yaml:"duplicates"`
	Skipped    int `json:"skipped" yaml:"skipped"`
}

// NewJournalService creates a new journal service instance.
func NewJournalService(trades ports.TradeStore, strategies ports.StrategyRepository, logger ports.Logger, opts ...Option) (*JournalService, error) {
	if trades == nil || strategies == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for JournalService")
	}
	s := &JournalService{
		trades:        trades,
		strategies:    strategies,
		logger:        logger,
		validate:      newValidator(),
		now:           time.Now,
		defaultMarket: domain.DefaultMarket,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *JournalService) today() string {
	return s.now().Format(domain.DateLayout)
}

// CreateTrade records a new trade for userID. New trades always start Open
// with zero pnl and no exit price; use CloseTrade to close them.
func (s *JournalService) CreateTrade(ctx context.Context, userID string, t *domain.Trade) (*domain.Trade, error) {
	trade := t.Clone()
	trade.ID = ""
	trade.UserID = userID
	trade.Status = domain.StatusOpen
	trade.PnL = decimal.Zero
	trade.ExitPrice = optional.None[decimal.Decimal]()
	s.applyDefaults(trade)

	if err := s.validate.Struct(trade); err != nil {
		return nil, invalid("trade", err)
	}
	if err := s.checkStrategy(ctx, userID, trade.StrategyID); err != nil {
		return nil, err
	}

	if _, err := s.trades.Create(ctx, trade); err != nil {
		s.logger.Error(ctx, err, "Failed to create trade", ports.Fields{"userID": userID, "symbol": trade.Symbol})
		return nil, err
	}
	s.logger.Info(ctx, "Trade created", ports.Fields{"tradeID": trade.ID, "symbol": trade.Symbol, "type": trade.Type})
	return trade, nil
}

// GetTrade returns one trade or ports.ErrNotFound.
func (s *JournalService) GetTrade(ctx context.Context, userID, id string) (*domain.Trade, error) {
	trade, err := s.trades.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if trade == nil {
		return nil, fmt.Errorf("trade %s: %w", id, ports.ErrNotFound)
	}
	return trade, nil
}

// ListTrades returns the user's trades matching filter in date order.
func (s *JournalService) ListTrades(ctx context.Context, userID string, filter ports.TradeFilter) ([]*domain.Trade, error) {
	return s.trades.List(ctx, userID, filter)
}

// UpdateTrade replaces the editable fields of an existing trade. Identity,
// ownership and creation time are kept from the stored trade, and so is the
// status when the edit leaves it empty.
func (s *JournalService) UpdateTrade(ctx context.Context, userID, id string, t *domain.Trade) (*domain.Trade, error) {
	existing, err := s.GetTrade(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	trade := t.Clone()
	trade.ID = existing.ID
	trade.UserID = existing.UserID
	trade.CreatedAt = existing.CreatedAt
	if trade.Status == "" {
		trade.Status = existing.Status
	}
	s.applyDefaults(trade)

	if err := s.validate.Struct(trade); err != nil {
		return nil, invalid("trade", err)
	}
	if err := s.checkStrategy(ctx, userID, trade.StrategyID); err != nil {
		return nil, err
	}
	if err := s.trades.Update(ctx, trade); err != nil {
		s.logger.Error(ctx, err, "Failed to update trade", ports.Fields{"tradeID": id})
		return nil, err
	}
	s.logger.Info(ctx, "Trade updated", ports.Fields{"tradeID": id, "status": trade.Status})
	return trade, nil
}

// CloseTrade closes an open trade at exitPrice. Without an explicit pnl the
// realized PnL is computed from the entry, exit, quantity, direction and fees.
func (s *JournalService) CloseTrade(ctx context.Context, userID, id string, exitPrice decimal.Decimal, pnl optional.Option[decimal.Decimal]) (*domain.Trade, error) {
	if exitPrice.IsNegative() {
		return nil, fmt.Errorf("exit price must not be negative: %w", ports.ErrInvalidRequest)
	}
	trade, err := s.GetTrade(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if trade.IsClosed() {
		return nil, fmt.Errorf("trade %s is already closed: %w", id, ports.ErrInvalidRequest)
	}

	trade.Status = domain.StatusClosed
	trade.ExitPrice = optional.Some(exitPrice)
	trade.PnL = pnl.TakeOr(trade.RealizedPnL(exitPrice))

	if err := s.trades.Update(ctx, trade); err != nil {
		s.logger.Error(ctx, err, "Failed to close trade", ports.Fields{"tradeID": id})
		return nil, err
	}
	s.logger.Info(ctx, "Trade closed", ports.Fields{"tradeID": id, "pnl": trade.PnL.String()})
	return trade, nil
}

// DeleteTrade removes a trade.
func (s *JournalService) DeleteTrade(ctx context.Context, userID, id string) error {
	if err := s.trades.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "Trade deleted", ports.Fields{"tradeID": id})
	return nil
}

// ImportCSV parses r and stores every usable row as a new trade.
func (s *JournalService) ImportCSV(ctx context.Context, userID string, r io.Reader) (*ImportResult, error) {
	parsed, err := csvio.Parse(r, s.today())
	if err != nil {
		return nil, invalid("CSV", err)
	}
	res := s.importTrades(ctx, userID, parsed.Trades)
	res.Skipped += len(parsed.Skipped)
	s.logger.Info(ctx, "CSV import finished", ports.Fields{
		"userID": userID, "imported": res.Imported, "skipped": res.Skipped, "duplicates": res.Duplicates,
	})
	return res, nil
}

// ExportCSV writes all of the user's trades as CSV.
func (s *JournalService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	trades, err := s.trades.List(ctx, userID, ports.TradeFilter{})
	if err != nil {
		return err
	}
	return csvio.Export(w, trades)
}

// ImportFromExchange pulls closed trades from an exchange. Trades already in the
// journal keep their exchange-derived IDs and are counted as duplicates.
func (s *JournalService) ImportFromExchange(ctx context.Context, userID string, importer ports.TradeImporter, symbol string, start, end time.Time) (*ImportResult, error) {
	trades, err := importer.FetchTrades(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	res := s.importTrades(ctx, userID, trades)
	s.logger.Info(ctx, "Exchange import finished", ports.Fields{
		"userID": userID, "symbol": symbol, "imported": res.Imported, "duplicates": res.Duplicates,
	})
	return res, nil
}

// importTrades stores trades as given, status and pnl included. Imports may
// carry a zero quantity, which is otherwise rejected.
func (s *JournalService) importTrades(ctx context.Context, userID string, trades []*domain.Trade) *ImportResult {
	res := &ImportResult{}
	for _, t := range trades {
		t.UserID = userID
		s.applyDefaults(t)
		if err := s.validate.StructExcept(t, "Quantity"); err != nil {
			s.logger.Warn(ctx, "Skipping invalid imported trade", ports.Fields{"symbol": t.Symbol, "date": t.Date, "error": err.Error()})
			res.Skipped++
			continue
		}
		if _, err := s.trades.Create(ctx, t); err != nil {
			if errors.Is(err, ports.ErrDuplicateEntry) {
				res.Duplicates++
				continue
			}
			s.logger.Error(ctx, err, "Failed to store imported trade", ports.Fields{"symbol": t.Symbol})
			res.Skipped++
			continue
		}
		res.Imported++
	}
	return res
}

func (s *JournalService) applyDefaults(t *domain.Trade) {
	t.Symbol = strings.TrimSpace(t.Symbol)
	if t.Date == "" {
		t.Date = s.today()
	}
	if t.Market == "" {
		t.Market = s.defaultMarket
	}
	if t.Confidence == 0 {
		t.Confidence = domain.DefaultConfidence
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if t.ImageURLs == nil {
		t.ImageURLs = []string{}
	}
	if t.StrategyID.IsSome() && t.StrategyID.Unwrap() == "" {
		t.StrategyID = optional.None[string]()
	}
}

func (s *JournalService) checkStrategy(ctx context.Context, userID string, id optional.Option[string]) error {
	if id.IsNone() {
		return nil
	}
	st, err := s.strategies.FindStrategyByID(ctx, userID, id.Unwrap())
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("strategy %s does not exist: %w", id.Unwrap(), ports.ErrInvalidRequest)
	}
	return nil
}

// --- Strategies ---

// CreateStrategy stores a new strategy.
func (s *JournalService) CreateStrategy(ctx context.Context, userID string, st *domain.Strategy) (*domain.Strategy, error) {
	strategy := *st
	strategy.ID = ""
	strategy.UserID = userID
	if err := s.validate.Struct(&strategy); err != nil {
		return nil, invalid("strategy", err)
	}
	if _, err := s.strategies.CreateStrategy(ctx, &strategy); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Strategy created", ports.Fields{"strategyID": strategy.ID, "name": strategy.Name})
	return &strategy, nil
}

// GetStrategy returns one strategy or ports.ErrNotFound.
func (s *JournalService) GetStrategy(ctx context.Context, userID, id string) (*domain.Strategy, error) {
	st, err := s.strategies.FindStrategyByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, fmt.Errorf("strategy %s: %w", id, ports.ErrNotFound)
	}
	return st, nil
}

// ListStrategies returns the user's strategies.
func (s *JournalService) ListStrategies(ctx context.Context, userID string) ([]*domain.Strategy, error) {
	return s.strategies.ListStrategies(ctx, userID)
}

// UpdateStrategy replaces the editable fields of a strategy.
func (s *JournalService) UpdateStrategy(ctx context.Context, userID, id string, st *domain.Strategy) (*domain.Strategy, error) {
	existing, err := s.GetStrategy(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	strategy := *st
	strategy.ID = existing.ID
	strategy.UserID = existing.UserID
	strategy.CreatedAt = existing.CreatedAt
	if err := s.validate.Struct(&strategy); err != nil {
		return nil, invalid("strategy", err)
	}
	if err := s.strategies.UpdateStrategy(ctx, &strategy); err != nil {
		return nil, err
	}
	return &strategy, nil
}

// DeleteStrategy removes a strategy; its trades stay in the journal, unlinked.
func (s *JournalService) DeleteStrategy(ctx context.Context, userID, id string) error {
	if err := s.strategies.DeleteStrategy(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "Strategy deleted", ports.Fields{"strategyID": id})
	return nil
}

// StrategyPerformance summarises the trades linked to a strategy.
func (s *JournalService) StrategyPerformance(ctx context.Context, userID, id string) (*analytics.StrategySummary, error) {
	if _, err := s.GetStrategy(ctx, userID, id); err != nil {
		return nil, err
	}
	trades, err := s.trades.List(ctx, userID, ports.TradeFilter{StrategyID: id})
	if err != nil {
		return nil, err
	}
	return analytics.StrategyPerformance(trades, id), nil
}
