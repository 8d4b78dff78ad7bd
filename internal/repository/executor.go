package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// DBExecutor interface for database operations (can be *sqlx.DB or *sqlx.Tx)
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Store-level uniqueness violations the services react to
var (
	ErrConfirmationExists = errors.New("confirmation already exists for this event and name")
	ErrCouponCodeTaken    = errors.New("coupon code already taken")
)

const uniqueViolation = pq.ErrorCode("23505")

// uniqueConstraint returns the violated constraint name when err is a
// Postgres unique violation.
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}

// translateUnique maps a unique violation on constraint to sentinel. Every
// other error is returned untouched so callers see the store's own message.
func translateUnique(err error, constraint string, sentinel error) error {
	if name, ok := uniqueConstraint(err); ok && name == constraint {
		return fmt.Errorf("%w (%s)", sentinel, name)
	}
	return err
}
