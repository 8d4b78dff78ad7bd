package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/namidia/namidia/internal/coupon"
	"github.com/namidia/namidia/internal/metrics"
	"github.com/namidia/namidia/internal/model"
	"github.com/namidia/namidia/internal/repository"
)

const (
	minEventIDLength  = 10
	minUserNameLength = 2

	// DefaultMaxCouponAttempts bounds the coupon code retry loop
	DefaultMaxCouponAttempts = 5
)

// FailureKind classifies a failed confirmation
type FailureKind string

const (
	KindInvalidInput    FailureKind = "invalid_input"
	KindDuplicate       FailureKind = "duplicate_confirmation"
	KindStoreError      FailureKind = "store_error"
	KindCouponExhausted FailureKind = "coupon_generation_exhausted"
)

const resultSuccessLabel = "success"

// ConfirmationStore is the persistence the confirmation flow needs
type ConfirmationStore interface {
	FindConfirmation(ctx context.Context, eventID, userName string) (*model.Confirmation, error)
	CreateConfirmation(ctx context.Context, c *model.Confirmation) error
	GetEventStats(ctx context.Context, eventID string) (*model.EventStats, error)
}

// CouponStore is the coupon persistence
type CouponStore interface {
	CreateCoupon(ctx context.Context, c *model.Coupon) error
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	MarkCouponAsUsed(ctx context.Context, code string) (*model.Coupon, error)
	ListEventCouponCodes(ctx context.Context, eventID string) ([]string, error)
}

// ConfirmInput is a presence confirmation request
type ConfirmInput struct {
	EventID   string
	UserName  string
	UserEmail *string
	UserPhone *string
}

// ConfirmResult is the outcome of ConfirmPresence. Failures are values, not errors.
type ConfirmResult struct {
	OK       bool
	Code     string
	Error    string
	Kind     FailureKind
	Attempts int
}

func succeeded(code string, attempts int) *ConfirmResult {
	return &ConfirmResult{OK: true, Code: code, Attempts: attempts}
}

func failed(kind FailureKind, err error, attempts int) *ConfirmResult {
	return &ConfirmResult{Kind: kind, Error: err.Error(), Attempts: attempts}
}

func (r *ConfirmResult) label() string {
	if r.OK {
		return resultSuccessLabel
	}
	return string(r.Kind)
}

// ConfirmationService records presence confirmations and issues their coupons
type ConfirmationService struct {
	confirmations   ConfirmationStore
	coupons         CouponStore
	codes           coupon.Generator
	maxAttempts     int
	discountPercent int
	logger          *zap.Logger
}

// ConfirmationOptions carries the coupon policy
type ConfirmationOptions struct {
	MaxAttempts     int
	DiscountPercent int
}

// NewConfirmationService creates a new ConfirmationService
func NewConfirmationService(
	confirmations ConfirmationStore,
	coupons CouponStore,
	codes coupon.Generator,
	opts ConfirmationOptions,
	logger *zap.Logger,
) *ConfirmationService {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = DefaultMaxCouponAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmationService{
		confirmations:   confirmations,
		coupons:         coupons,
		codes:           codes,
		maxAttempts:     opts.MaxAttempts,
		discountPercent: opts.DiscountPercent,
		logger:          logger.Named("confirmation"),
	}
}

// ConfirmPresence records that the attendee will be at the event and issues a
// discount coupon. The confirmation is kept even when no coupon could be issued.
func (s *ConfirmationService) ConfirmPresence(ctx context.Context, in ConfirmInput) (res *ConfirmResult) {
	start := time.Now()
	defer func() {
		metrics.RecordConfirmPresence(res.label(), time.Since(start).Seconds())
	}()

	eventID := strings.TrimSpace(in.EventID)
	userName := strings.TrimSpace(in.UserName)
	if len(eventID) < minEventIDLength {
		return failed(KindInvalidInput, model.ErrInvalidEventID, 0)
	}
	if utf8.RuneCountInString(userName) < minUserNameLength {
		return failed(KindInvalidInput, model.ErrInvalidUserName, 0)
	}

	log := s.logger.With(zap.String("event_id", eventID), zap.String("user_name", userName))

	existing, err := s.confirmations.FindConfirmation(ctx, eventID, userName)
	if err != nil {
		log.Error("confirmation lookup failed", zap.Error(err))
		return failed(KindStoreError, err, 0)
	}
	if existing != nil {
		return failed(KindDuplicate, model.ErrAlreadyConfirmed, 0)
	}

	confirmation := &model.Confirmation{
		ID:        uuid.New(),
		EventID:   eventID,
		UserName:  userName,
		UserEmail: optional(in.UserEmail),
		UserPhone: optional(in.UserPhone),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.confirmations.CreateConfirmation(ctx, confirmation); err != nil {
		// A concurrent submission won the race past the lookup above
		if errors.Is(err, repository.ErrConfirmationExists) {
			return failed(KindDuplicate, model.ErrAlreadyConfirmed, 0)
		}
		log.Error("confirmation insert failed", zap.Error(err))
		return failed(KindStoreError, err, 0)
	}

	code, attempts, err := s.issueCoupon(ctx, confirmation, log)
	if err != nil {
		if errors.Is(err, model.ErrCouponExhausted) {
			log.Warn("coupon generation exhausted, confirmation kept without coupon",
				zap.String("confirmation_id", confirmation.ID.String()),
				zap.Int("attempts", attempts))
			return failed(KindCouponExhausted, err, attempts)
		}
		log.Error("coupon insert failed", zap.Error(err), zap.Int("attempts", attempts))
		return failed(KindStoreError, err, attempts)
	}

	log.Info("presence confirmed", zap.String("code", code), zap.Int("attempts", attempts))
	return succeeded(code, attempts)
}

// issueCoupon inserts a coupon for the confirmation, drawing a new code after
// every duplicate-code rejection. Any other store error stops the loop.
func (s *ConfirmationService) issueCoupon(ctx context.Context, c *model.Confirmation, log *zap.Logger) (string, int, error) {
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return "", attempt, fmt.Errorf("failed to generate coupon code: %w", err)
		}

		err = s.coupons.CreateCoupon(ctx, &model.Coupon{
			ID:              uuid.New(),
			Code:            code,
			EventID:         c.EventID,
			ConfirmationID:  c.ID,
			DiscountPercent: s.discountPercent,
			Used:            false,
			CreatedAt:       time.Now().UTC(),
		})
		if err == nil {
			return code, attempt, nil
		}
		if !errors.Is(err, repository.ErrCouponCodeTaken) {
			return "", attempt, err
		}

		metrics.RecordCouponCollision()
		log.Debug("coupon code collision", zap.String("code", code), zap.Int("attempt", attempt))
	}

	return "", s.maxAttempts, model.ErrCouponExhausted
}

// RedeemCoupon marks a coupon as used
func (s *ConfirmationService) RedeemCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	code = coupon.Normalize(code)
	if code == "" {
		metrics.RecordRedemption("invalid")
		return nil, model.ErrInvalidCouponCode
	}

	redeemed, err := s.coupons.MarkCouponAsUsed(ctx, code)
	switch {
	case err == nil:
		metrics.RecordRedemption("redeemed")
		s.logger.Info("coupon redeemed", zap.String("code", code), zap.String("event_id", redeemed.EventID))
		return redeemed, nil
	case errors.Is(err, model.ErrCouponNotFound):
		metrics.RecordRedemption("not_found")
	case errors.Is(err, model.ErrCouponAlreadyUsed):
		metrics.RecordRedemption("already_used")
	default:
		metrics.RecordRedemption("error")
		s.logger.Error("coupon redemption failed", zap.String("code", code), zap.Error(err))
	}
	return nil, err
}

// GetCoupon looks a coupon up by code
func (s *ConfirmationService) GetCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	code = coupon.Normalize(code)
	if code == "" {
		return nil, model.ErrInvalidCouponCode
	}
	return s.coupons.GetCouponByCode(ctx, code)
}

// GetEventStats returns the counts for an event, with the issued codes when
// includeCodes is set.
func (s *ConfirmationService) GetEventStats(ctx context.Context, eventID string, includeCodes bool) (*model.EventStats, []string, error) {
	eventID = strings.TrimSpace(eventID)
	if len(eventID) < minEventIDLength {
		return nil, nil, model.ErrInvalidEventID
	}

	stats, err := s.confirmations.GetEventStats(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	if !includeCodes {
		return stats, nil, nil
	}

	codes, err := s.coupons.ListEventCouponCodes(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return stats, codes, nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
