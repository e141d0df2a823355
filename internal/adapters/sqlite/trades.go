package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

var tradeColumns = []string{
	"id", "user_id", "symbol", "entry_price", "exit_price", "quantity", "type", "status", "pnl", "date",
	"market", "target", "stop_loss", "tags", "strategy_id", "notes", "confidence", "image_urls",
	"created_at", "updated_at",
}

var orderColumns = []string{"trade_id", "seq", "action", "date", "time", "quantity", "price", "fee"}

// Create saves a new trade with its orders and returns its assigned ID.
// An empty trade ID is replaced by a fresh UUID.
func (r *Repository) Create(ctx context.Context, trade *domain.Trade) (string, error) {
	if trade.ID == "" {
		trade.ID = uuid.NewString()
	}
	now := r.now()
	trade.CreatedAt, trade.UpdatedAt = now, now

	tags, images, err := encodeLists(trade)
	if err != nil {
		return "", err
	}

	const query = `
	INSERT INTO trades (id, user_id, symbol, entry_price, exit_price, quantity, type, status, pnl, date,
	                    market, target, stop_loss, tags, strategy_id, notes, confidence, image_urls,
	                    created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			trade.ID, trade.UserID, trade.Symbol, trade.EntryPrice, nullDecimal(trade.ExitPrice), trade.Quantity,
			string(trade.Type), string(trade.Status), trade.PnL, trade.Date,
			trade.Market, nullDecimal(trade.Target), nullDecimal(trade.StopLoss), tags,
			nullString(trade.StrategyID), trade.Notes, trade.Confidence, images,
			trade.CreatedAt, trade.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert trade for symbol %s: %w: %w", trade.Symbol, classify(err, ports.ErrQueryFailed), err)
		}
		return r.insertOrders(ctx, tx, trade.ID, trade.Orders)
	})
	if err != nil {
		return "", err
	}

	r.logger.Debug(ctx, "Trade created", ports.Fields{"tradeID": trade.ID, "symbol": trade.Symbol, "userID": trade.UserID})
	r.publish(ctx, trade.UserID)
	return trade.ID, nil
}

// Update replaces an existing trade and its orders. The creation time is kept.
func (r *Repository) Update(ctx context.Context, trade *domain.Trade) error {
	trade.UpdatedAt = r.now()

	tags, images, err := encodeLists(trade)
	if err != nil {
		return err
	}

	const query = `
	UPDATE trades
	SET symbol = ?, entry_price = ?, exit_price = ?, quantity = ?, type = ?, status = ?, pnl = ?, date = ?,
	    market = ?, target = ?, stop_loss = ?, tags = ?, strategy_id = ?, notes = ?, confidence = ?,
	    image_urls = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`

	err = r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			trade.Symbol, trade.EntryPrice, nullDecimal(trade.ExitPrice), trade.Quantity,
			string(trade.Type), string(trade.Status), trade.PnL, trade.Date,
			trade.Market, nullDecimal(trade.Target), nullDecimal(trade.StopLoss), tags,
			nullString(trade.StrategyID), trade.Notes, trade.Confidence, images, trade.UpdatedAt,
			trade.ID, trade.UserID)
		if err != nil {
			return fmt.Errorf("failed to update trade ID %s: %w: %w", trade.ID, ports.ErrUpdateFailed, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected for update trade ID %s: %w", trade.ID, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("trade ID %s not found for update: %w", trade.ID, ports.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM trade_orders WHERE trade_id = ?`, trade.ID); err != nil {
			return fmt.Errorf("failed to replace orders of trade ID %s: %w: %w", trade.ID, ports.ErrUpdateFailed, err)
		}
		return r.insertOrders(ctx, tx, trade.ID, trade.Orders)
	})
	if err != nil {
		return err
	}

	r.logger.Debug(ctx, "Trade updated", ports.Fields{"tradeID": trade.ID, "status": trade.Status})
	r.publish(ctx, trade.UserID)
	return nil
}

// Delete removes a trade and its orders.
func (r *Repository) Delete(ctx context.Context, userID, id string) error {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM trades WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete trade ID %s: %w: %w", id, ports.ErrDeleteFailed, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected for delete trade ID %s: %w", id, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("trade ID %s not found for delete: %w", id, ports.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM trade_orders WHERE trade_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete orders of trade ID %s: %w: %w", id, ports.ErrDeleteFailed, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug(ctx, "Trade deleted", ports.Fields{"tradeID": id, "userID": userID})
	r.publish(ctx, userID)
	return nil
}

// FindByID retrieves a trade by its ID, orders included.
func (r *Repository) FindByID(ctx context.Context, userID, id string) (*domain.Trade, error) {
	query, args, err := r.sq.
		Select(tradeColumns...).
		From("trades").
		Where(squirrel.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trade query: %w", err)
	}

	trade, err := scanTrade(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found by ID", ports.Fields{"tradeID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade by ID %s: %w: %w", id, ports.ErrQueryFailed, err)
	}
	if err := r.loadOrders(ctx, []*domain.Trade{trade}); err != nil {
		return nil, err
	}
	return trade, nil
}

// List retrieves the user's trades matching the filter, ordered by date then creation.
func (r *Repository) List(ctx context.Context, userID string, filter ports.TradeFilter) ([]*domain.Trade, error) {
	q := r.sq.Select(tradeColumns...).From("trades").Where(squirrel.Eq{"user_id": userID})
	if filter.From != "" {
		q = q.Where(squirrel.GtOrEq{"date": filter.From})
	}
	if filter.To != "" {
		q = q.Where(squirrel.LtOrEq{"date": filter.To})
	}
	if filter.Symbol != "" {
		q = q.Where(squirrel.Eq{"symbol": filter.Symbol})
	}
	if filter.StrategyID != "" {
		q = q.Where(squirrel.Eq{"strategy_id": filter.StrategyID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(filter.Status)})
	}

	query, args, err := q.OrderBy("date ASC", "created_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build trade list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for user %s: %w: %w", userID, ports.ErrQueryFailed, err)
	}
	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan trade during List: %w", err)
		}
		trades = append(trades, trade)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}

	// Rows must be closed before the orders query: the pool holds one connection.
	if err := r.loadOrders(ctx, trades); err != nil {
		return nil, err
	}
	return trades, nil
}

func (r *Repository) insertOrders(ctx context.Context, tx *sql.Tx, tradeID string, orders []domain.TradeOrder) error {
	if len(orders) == 0 {
		return nil
	}
	ins := r.sq.Insert("trade_orders").Columns(orderColumns...)
	for i, o := range orders {
		ins = ins.Values(tradeID, i, string(o.Action), o.Date, o.Time, o.Quantity, o.Price, o.Fee)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order insert: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert orders for trade ID %s: %w: %w", tradeID, classify(err, ports.ErrQueryFailed), err)
	}
	return nil
}

// loadOrders fills Orders of every trade with one query.
func (r *Repository) loadOrders(ctx context.Context, trades []*domain.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	byID := make(map[string]*domain.Trade, len(trades))
	ids := make([]string, 0, len(trades))
	for _, t := range trades {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	query, args, err := r.sq.
		Select(orderColumns...).
		From("trade_orders").
		Where(squirrel.Eq{"trade_id": ids}).
		OrderBy("trade_id", "seq").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build order query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query trade orders: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			tradeID, action string
			seq             int
			o               domain.TradeOrder
		)
		if err := rows.Scan(&tradeID, &seq, &action, &o.Date, &o.Time, &o.Quantity, &o.Price, &o.Fee); err != nil {
			return fmt.Errorf("failed to scan trade order: %w", err)
		}
		o.Action = domain.OrderAction(action)
		if t, ok := byID[tradeID]; ok {
			t.Orders = append(t.Orders, o)
		}
	}
	return rows.Err()
}

// scanTrade scans a row into a domain.Trade struct, without orders.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var (
		exitPrice, target, stopLoss decimal.NullDecimal
		tradeType, status           string
		tags, images                string
		strategyID                  sql.NullString
	)
	err := s.Scan(
		&t.ID, &t.UserID, &t.Symbol, &t.EntryPrice, &exitPrice, &t.Quantity, &tradeType, &status, &t.PnL, &t.Date,
		&t.Market, &target, &stopLoss, &tags, &strategyID, &t.Notes, &t.Confidence, &images,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Type = domain.TradeType(tradeType)
	t.Status = domain.TradeStatus(status)
	t.ExitPrice = optionDecimal(exitPrice)
	t.Target = optionDecimal(target)
	t.StopLoss = optionDecimal(stopLoss)
	if strategyID.Valid {
		t.StrategyID = optional.Some(strategyID.String)
	}
	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of trade %s: %w", t.ID, err)
	}
	if err := json.Unmarshal([]byte(images), &t.ImageURLs); err != nil {
		return nil, fmt.Errorf("failed to decode image urls of trade %s: %w", t.ID, err)
	}
	return t, nil
}

func encodeLists(t *domain.Trade) (tags, images string, err error) {
	tagBytes, err := json.Marshal(nonNil(t.Tags))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tags: %w", err)
	}
	imageBytes, err := json.Marshal(nonNil(t.ImageURLs))
	if err != nil {
		return "", "", fmt.Errorf("failed to encode image urls: %w", err)
	}
	return string(tagBytes), string(imageBytes), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullDecimal(o optional.Option[decimal.Decimal]) decimal.NullDecimal {
	if o.IsSome() {
		return decimal.NullDecimal{Decimal: o.Unwrap(), Valid: true}
	}
	return decimal.NullDecimal{}
}

func optionDecimal(n decimal.NullDecimal) optional.Option[decimal.Decimal] {
	if n.Valid {
		return optional.Some(n.Decimal)
	}
	return optional.None[decimal.Decimal]()
}

func nullString(o optional.Option[string]) sql.NullString {
	if o.IsSome() {
		return sql.NullString{String: o.Unwrap(), Valid: true}
	}
	return sql.NullString{}
}
