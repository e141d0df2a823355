package app

import (
	"context"
	"fmt"
	"time"

	"tradeJournal/internal/analytics"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// StatsService computes journal statistics from the trade store.
type StatsService struct {
	trades ports.TradeStore
	logger ports.Logger
	now    func() time.Time
}

// NewStatsService creates a new statistics service instance.
func NewStatsService(trades ports.TradeStore, logger ports.Logger) (*StatsService, error) {
	if trades == nil || logger == nil {
		return nil, fmt.Errorf("missing required dependencies for StatsService")
	}
	return &StatsService{trades: trades, logger: logger, now: time.Now}, nil
}

// Statistics computes the full statistics set over the user's trades dated
// within [from, to]. Empty bounds are open.
func (s *StatsService) Statistics(ctx context.Context, userID, from, to string) (*analytics.Statistics, error) {
	trades, err := s.trades.List(ctx, userID, ports.TradeFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	return analytics.Compute(trades), nil
}

// Calendar lays out one month of daily results.
func (s *StatsService) Calendar(ctx context.Context, userID string, year, month int) (*analytics.CalendarMonth, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d out of range: %w", month, ports.ErrInvalidRequest)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	trades, err := s.trades.List(ctx, userID, ports.TradeFilter{
		From: first.Format(domain.DateLayout),
		To:   first.AddDate(0, 1, -1).Format(domain.DateLayout),
	})
	if err != nil {
		return nil, err
	}
	return analytics.Calendar(trades, year, month), nil
}

// Dashboard summarises the user's trades dated within [from, to].
func (s *StatsService) Dashboard(ctx context.Context, userID, from, to string) (*analytics.DashboardSummary, error) {
	trades, err := s.trades.List(ctx, userID, ports.TradeFilter{})
	if err != nil {
		return nil, err
	}
	return analytics.Dashboard(analytics.FilterByDateRange(trades, from, to)), nil
}

// Report wraps Statistics with its provenance for persisting.
func (s *StatsService) Report(ctx context.Context, userID, from, to string) (*analytics.Report, error) {
	stats, err := s.Statistics(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return &analytics.Report{
		UserID:      userID,
		GeneratedAt: s.now().UTC(),
		From:        from,
		To:          to,
		Statistics:  stats,
	}, nil
}

// Watch streams statistics for userID: one value for the current trades, then
// one after every change. Snapshots that arrive while a computation is running
// replace each other, and a result the reader has not taken yet is replaced by
// a newer one. The channel closes when ctx is done.
func (s *StatsService) Watch(ctx context.Context, userID string) (<-chan *analytics.Statistics, error) {
	mailbox := make(chan []*domain.Trade, 1)
	unsubscribe, err := s.trades.Subscribe(ctx, userID, func(trades []*domain.Trade) {
		replaceLatest(mailbox, trades)
	})
	if err != nil {
		return nil, err
	}

	out := make(chan *analytics.Statistics, 1)
	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				s.logger.Debug(ctx, "Statistics watch stopped", ports.Fields{"userID": userID})
				return
			case trades := <-mailbox:
				replaceLatest(out, analytics.Compute(trades))
			}
		}
	}()
	s.logger.Debug(ctx, "Statistics watch started", ports.Fields{"userID": userID})
	return out, nil
}

// replaceLatest puts v into a one-slot channel, discarding any value still
// waiting there. ch must have a single sender.
func replaceLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
