package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/namidia/namidia/internal/model"
)

const confirmationUniqueConstraint = "confirmations_event_user_key"

// ConfirmationRepository handles confirmation data operations
type ConfirmationRepository struct {
	db DBExecutor
}

// NewConfirmationRepository creates a new confirmation repository
func NewConfirmationRepository(db DBExecutor) *ConfirmationRepository {
	return &ConfirmationRepository{db: db}
}

// FindConfirmation returns the confirmation for (eventID, userName), or nil
// when there is none.
func (r *ConfirmationRepository) FindConfirmation(ctx context.Context, eventID, userName string) (*model.Confirmation, error) {
	query := `
		SELECT id, event_id, user_name, user_email, user_phone, created_at
		FROM confirmations
		WHERE event_id = $1 AND user_name = $2
		LIMIT 1
	`

	var confirmation model.Confirmation
	err := r.db.GetContext(ctx, &confirmation, query, eventID, userName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &confirmation, nil
}

// CreateConfirmation inserts a confirmation. A clash on (event_id, user_name)
// yields ErrConfirmationExists.
func (r *ConfirmationRepository) CreateConfirmation(ctx context.Context, c *model.Confirmation) error {
	query := `
		INSERT INTO confirmations (id, event_id, user_name, user_email, user_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.EventID, c.UserName, c.UserEmail, c.UserPhone, c.CreatedAt)
	if err != nil {
		return translateUnique(err, confirmationUniqueConstraint, ErrConfirmationExists)
	}

	return nil
}

// GetEventStats counts confirmations and coupons for an event
func (r *ConfirmationRepository) GetEventStats(ctx context.Context, eventID string) (*model.EventStats, error) {
	query := `
		SELECT
			$1::text AS event_id,
			(SELECT COUNT(*) FROM confirmations WHERE event_id = $1) AS confirmations,
			(SELECT COUNT(*) FROM coupons WHERE event_id = $1) AS coupons_issued,
			(SELECT COUNT(*) FROM coupons WHERE event_id = $1 AND used) AS coupons_used
	`

	var stats model.EventStats
	if err := r.db.GetContext(ctx, &stats, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}

	return &stats, nil
}
