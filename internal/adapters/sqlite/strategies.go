package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
)

// CreateStrategy saves a new strategy and returns its assigned ID.
func (r *Repository) CreateStrategy(ctx context.Context, s *domain.Strategy) (string, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := r.now()
	s.CreatedAt, s.UpdatedAt = now, now

	const query = `
	INSERT INTO strategies (id, user_id, name, description, rules, risk_management, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Name, s.Description, s.Rules, s.RiskManagement, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to insert strategy %s: %w: %w", s.Name, classify(err, ports.ErrQueryFailed), err)
	}
	r.logger.Debug(ctx, "Strategy created", ports.Fields{"strategyID": s.ID, "name": s.Name})
	return s.ID, nil
}

// UpdateStrategy modifies an existing strategy based on its ID.
func (r *Repository) UpdateStrategy(ctx context.Context, s *domain.Strategy) error {
	s.UpdatedAt = r.now()

	const query = `
	UPDATE strategies
	SET name = ?, description = ?, rules = ?, risk_management = ?, updated_at = ?
	WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		s.Name, s.Description, s.Rules, s.RiskManagement, s.UpdatedAt, s.ID, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to update strategy ID %s: %w: %w", s.ID, ports.ErrUpdateFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for update strategy ID %s: %w", s.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("strategy ID %s not found for update: %w", s.ID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Strategy updated", ports.Fields{"strategyID": s.ID})
	return nil
}

// DeleteStrategy removes the strategy and unlinks the trades that referenced it.
func (r *Repository) DeleteStrategy(ctx context.Context, userID, id string) error {
	var unlinked int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM strategies WHERE id = ? AND user_id = ?`, id, userID)
		if err != nil {
			return fmt.Errorf("failed to delete strategy ID %s: %w: %w", id, ports.ErrDeleteFailed, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected for delete strategy ID %s: %w", id, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("strategy ID %s not found for delete: %w", id, ports.ErrNotFound)
		}

		result, err = tx.ExecContext(ctx,
			`UPDATE trades SET strategy_id = NULL, updated_at = ? WHERE user_id = ? AND strategy_id = ?`,
			r.now(), userID, id)
		if err != nil {
			return fmt.Errorf("failed to unlink trades from strategy ID %s: %w: %w", id, ports.ErrUpdateFailed, err)
		}
		unlinked, _ = result.RowsAffected()
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug(ctx, "Strategy deleted", ports.Fields{"strategyID": id, "unlinkedTrades": unlinked})
	if unlinked > 0 {
		r.publish(ctx, userID)
	}
	return nil
}

// FindStrategyByID retrieves a strategy by its ID.
func (r *Repository) FindStrategyByID(ctx context.Context, userID, id string) (*domain.Strategy, error) {
	const query = `
	SELECT id, user_id, name, description, rules, risk_management, created_at, updated_at
	FROM strategies
	WHERE id = ? AND user_id = ?`

	s, err := scanStrategy(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query strategy by ID %s: %w: %w", id, ports.ErrQueryFailed, err)
	}
	return s, nil
}

// ListStrategies retrieves the user's strategies ordered by name.
func (r *Repository) ListStrategies(ctx context.Context, userID string) ([]*domain.Strategy, error) {
	const query = `
	SELECT id, user_id, name, description, rules, risk_management, created_at, updated_at
	FROM strategies
	WHERE user_id = ?
	ORDER BY name ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategies: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	strategies := make([]*domain.Strategy, 0)
	for rows.Next() {
		s, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy during ListStrategies: %w", err)
		}
		strategies = append(strategies, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating strategy rows: %w", err)
	}
	return strategies, nil
}

func scanStrategy(s scanner) (*domain.Strategy, error) {
	st := &domain.Strategy{}
	err := s.Scan(&st.ID, &st.UserID, &st.Name, &st.Description, &st.Rules, &st.RiskManagement, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return st, nil
}
