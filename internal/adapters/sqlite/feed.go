package sqlite

import (
	"context"
	"fmt"
	"sync"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// feed keeps the snapshot subscribers of each user.
type feed struct {
	// publishMu orders deliveries so a subscriber never sees an older
	// snapshot after a newer one.
	publishMu sync.Mutex
	mu        sync.Mutex
	nextID    int
	subs      map[string]map[int]ports.SnapshotFunc
}

func newFeed() *feed {
	return &feed{subs: make(map[string]map[int]ports.SnapshotFunc)}
}

func (f *feed) add(userID string, fn ports.SnapshotFunc) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	if f.subs[userID] == nil {
		f.subs[userID] = make(map[int]ports.SnapshotFunc)
	}
	f.subs[userID][f.nextID] = fn
	return f.nextID
}

func (f *feed) remove(userID string, id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subs[userID], id)
	if len(f.subs[userID]) == 0 {
		delete(f.subs, userID)
	}
}

func (f *feed) listeners(userID string) []ports.SnapshotFunc {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ports.SnapshotFunc, 0, len(f.subs[userID]))
	for _, fn := range f.subs[userID] {
		out = append(out, fn)
	}
	return out
}

// Subscribe registers fn for the user's trade snapshots. fn receives the
// current snapshot before Subscribe returns and again after every change.
// fn runs on the writer's goroutine, so it must not block or call back into
// the repository. The subscription ends on unsubscribe or when ctx is done.
func (r *Repository) Subscribe(ctx context.Context, userID string, fn ports.SnapshotFunc) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("snapshot callback is required: %w", ports.ErrInvalidRequest)
	}

	r.feed.publishMu.Lock()
	trades, err := r.List(ctx, userID, ports.TradeFilter{})
	if err != nil {
		r.feed.publishMu.Unlock()
		return nil, fmt.Errorf("failed to load initial snapshot: %w", err)
	}
	id := r.feed.add(userID, fn)
	fn(trades)
	r.feed.publishMu.Unlock()

	r.logger.Debug(ctx, "Snapshot subscriber added", ports.Fields{"userID": userID, "subscription": id})

	var once sync.Once
	remove := func() {
		once.Do(func() {
			r.feed.remove(userID, id)
			r.logger.Debug(context.Background(), "Snapshot subscriber removed", ports.Fields{"userID": userID, "subscription": id})
		})
	}
	stop := context.AfterFunc(ctx, remove)
	unsubscribe := func() {
		stop()
		remove()
	}
	return unsubscribe, nil
}

// publish sends a fresh snapshot to every subscriber of userID.
func (r *Repository) publish(ctx context.Context, userID string) {
	r.feed.publishMu.Lock()
	defer r.feed.publishMu.Unlock()

	listeners := r.feed.listeners(userID)
	if len(listeners) == 0 {
		return
	}
	// The write already succeeded; a cancelled request must not suppress the snapshot.
	trades, err := r.List(context.WithoutCancel(ctx), userID, ports.TradeFilter{})
	if err != nil {
		r.logger.Error(ctx, err, "Failed to load snapshot for subscribers", ports.Fields{"userID": userID})
		return
	}
	for _, fn := range listeners {
		fn(cloneAll(trades))
	}
}

// cloneAll gives each subscriber its own copy of the snapshot.
func cloneAll(trades []*domain.Trade) []*domain.Trade {
	out := make([]*domain.Trade, len(trades))
	for i, t := range trades {
		out[i] = t.Clone()
	}
	return out
}
