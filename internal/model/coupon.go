package model

import (
	"time"

	"github.com/google/uuid"
)

// Confirmation is one attendee's pledge to attend one event
type Confirmation struct {
	ID        uuid.UUID `db:"id" json:"id"`
	EventID   string    `db:"event_id" json:"event_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	UserEmail *string   `db:"user_email" json:"user_email,omitempty"`
	UserPhone *string   `db:"user_phone" json:"user_phone,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Coupon is a single-use discount code issued for a confirmation
type Coupon struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Code            string     `db:"code" json:"code"`
	EventID         string     `db:"event_id" json:"event_id"`
	ConfirmationID  uuid.UUID  `db:"confirmation_id" json:"confirmation_id"`
	DiscountPercent int        `db:"discount_percent" json:"discount_percent"`
	Used            bool       `db:"used" json:"used"`
	UsedAt          *time.Time `db:"used_at" json:"used_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// EventStats aggregates confirmation and coupon counts for an event
type EventStats struct {
	EventID       string `db:"event_id" json:"event_id"`
	Confirmations int64  `db:"confirmations" json:"confirmations"`
	CouponsIssued int64  `db:"coupons_issued" json:"coupons_issued"`
	CouponsUsed   int64  `db:"coupons_used" json:"coupons_used"`
}
