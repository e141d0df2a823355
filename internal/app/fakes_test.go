package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// Mock implementations
type mockLogger struct {
	mu        sync.Mutex
	infoMsgs  []string
	warnMsgs  []string
	errorMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...ports.Fields) {}

func (m *mockLogger) Info(ctx context.Context, msg string, fields ...ports.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infoMsgs = append(m.infoMsgs, msg)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...ports.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warnMsgs = append(m.warnMsgs, msg)
}

func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...ports.Fields) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorMsgs = append(m.errorMsgs, msg)
}

// memoryStore is an in-memory TradeStore and StrategyRepository.
type memoryStore struct {
	mu         sync.Mutex
	seq        int
	trades     map[string]*domain.Trade
	strategies map[string]*domain.Strategy
	subs       map[int]subscriber
	createErr  error
}

type subscriber struct {
	userID string
	fn     ports.SnapshotFunc
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		trades:     make(map[string]*domain.Trade),
		strategies: make(map[string]*domain.Strategy),
		subs:       make(map[int]subscriber),
	}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return prefix + strconv.Itoa(m.seq)
}

func (m *memoryStore) snapshotLocked(userID string) []*domain.Trade {
	out := make([]*domain.Trade, 0)
	for _, t := range m.trades {
		if t.UserID == userID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memoryStore) publishLocked(userID string) {
	for _, s := range m.subs {
		if s.userID == userID {
			s.fn(m.snapshotLocked(userID))
		}
	}
}

func (m *memoryStore) Create(ctx context.Context, trade *domain.Trade) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	if trade.ID == "" {
		trade.ID = m.nextID("t")
	}
	if _, exists := m.trades[trade.ID]; exists {
		return "", fmt.Errorf("trade %s: %w", trade.ID, ports.ErrDuplicateEntry)
	}
	trade.CreatedAt = time.Now()
	m.trades[trade.ID] = trade.Clone()
	m.publishLocked(trade.UserID)
	return trade.ID, nil
}

func (m *memoryStore) Update(ctx context.Context, trade *domain.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.trades[trade.ID]
	if !ok || existing.UserID != trade.UserID {
		return ports.ErrNotFound
	}
	m.trades[trade.ID] = trade.Clone()
	m.publishLocked(trade.UserID)
	return nil
}

func (m *memoryStore) Delete(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.trades[id]
	if !ok || existing.UserID != userID {
		return ports.ErrNotFound
	}
	delete(m.trades, id)
	m.publishLocked(userID)
	return nil
}

func (m *memoryStore) FindByID(ctx context.Context, userID, id string) (*domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trades[id]
	if !ok || t.UserID != userID {
		return nil, nil
	}
	return t.Clone(), nil
}

func (m *memoryStore) List(ctx context.Context, userID string, filter ports.TradeFilter) ([]*domain.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Trade, 0)
	for _, t := range m.snapshotLocked(userID) {
		if filter.From != "" && t.Date < filter.From {
			continue
		}
		if filter.To != "" && t.Date > filter.To {
			continue
		}
		if filter.StrategyID != "" && !t.HasStrategy(filter.StrategyID) {
			continue
		}
		if filter.Symbol != "" && t.Symbol != filter.Symbol {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryStore) Subscribe(ctx context.Context, userID string, fn ports.SnapshotFunc) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.seq
	m.seq++
	m.subs[id] = subscriber{userID: userID, fn: fn}
	fn(m.snapshotLocked(userID))
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}, nil
}

func (m *memoryStore) subscriberCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func (m *memoryStore) CreateStrategy(ctx context.Context, s *domain.Strategy) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = m.nextID("s")
	c := *s
	m.strategies[s.ID] = &c
	return s.ID, nil
}

func (m *memoryStore) UpdateStrategy(ctx context.Context, s *domain.Strategy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.strategies[s.ID]; !ok {
		return ports.ErrNotFound
	}
	c := *s
	m.strategies[s.ID] = &c
	return nil
}

func (m *memoryStore) DeleteStrategy(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.strategies[id]
	if !ok || st.UserID != userID {
		return ports.ErrNotFound
	}
	delete(m.strategies, id)
	return nil
}

func (m *memoryStore) FindStrategyByID(ctx context.Context, userID, id string) (*domain.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.strategies[id]
	if !ok || st.UserID != userID {
		return nil, nil
	}
	c := *st
	return &c, nil
}

func (m *memoryStore) ListStrategies(ctx context.Context, userID string) ([]*domain.Strategy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Strategy, 0)
	for _, st := range m.strategies {
		if st.UserID == userID {
			c := *st
			out = append(out, &c)
		}
	}
	return out, nil
}

type stubImporter struct {
	trades []*domain.Trade
	err    error
}

func (s *stubImporter) FetchTrades(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Trade, error) {
	return s.trades, s.err
}
