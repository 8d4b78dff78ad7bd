package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/namidia/namidia/internal/model"
)

const couponCodeConstraint = "coupons_code_key"

const couponColumns = `id, code, event_id, confirmation_id, discount_percent, used, used_at, created_at`

// CouponRepository handles coupon data operations
type CouponRepository struct {
	db DBExecutor
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db DBExecutor) *CouponRepository {
	return &CouponRepository{db: db}
}

// CreateCoupon inserts a coupon. A clash on the code yields ErrCouponCodeTaken
// so the caller can retry with a fresh code.
func (r *CouponRepository) CreateCoupon(ctx context.Context, c *model.Coupon) error {
	query := `
		INSERT INTO coupons (id, code, event_id, confirmation_id, discount_percent, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Code, c.EventID, c.ConfirmationID, c.DiscountPercent, c.Used, c.CreatedAt)
	if err != nil {
		return translateUnique(err, couponCodeConstraint, ErrCouponCodeTaken)
	}

	return nil
}

// GetCouponByCode retrieves a coupon by its code
func (r *CouponRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`

	var coupon model.Coupon
	if err := r.db.GetContext(ctx, &coupon, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}

	return &coupon, nil
}

// MarkCouponAsUsed flips a coupon from unused to used
func (r *CouponRepository) MarkCouponAsUsed(ctx context.Context, code string) (*model.Coupon, error) {
	query := `
		UPDATE coupons
		SET used = true, used_at = $1
		WHERE code = $2 AND used = false
		RETURNING ` + couponColumns

	var coupon model.Coupon
	err := r.db.GetContext(ctx, &coupon, query, time.Now().UTC(), code)
	if err == nil {
		return &coupon, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to mark coupon as used: %w", err)
	}

	// Nothing updated: either the code is unknown or it was already redeemed
	if _, err := r.GetCouponByCode(ctx, code); err != nil {
		return nil, err
	}
	return nil, model.ErrCouponAlreadyUsed
}

// ListEventCouponCodes returns the codes issued for an event, oldest first
func (r *CouponRepository) ListEventCouponCodes(ctx context.Context, eventID string) ([]string, error) {
	query := `
		SELECT code
		FROM coupons
		WHERE event_id = $1
		ORDER BY created_at ASC
	`

	var codes []string
	if err := r.db.SelectContext(ctx, &codes, query, eventID); err != nil {
		return nil, fmt.Errorf("failed to list coupon codes: %w", err)
	}

	return codes, nil
}
