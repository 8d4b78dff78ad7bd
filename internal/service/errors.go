package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/namidia/namidia/internal/model"
)

// toConnectError maps domain errors to Connect codes. Anything unrecognized
// is internal.
func toConnectError(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidEventID),
		errors.Is(err, model.ErrInvalidUserName),
		errors.Is(err, model.ErrInvalidCouponCode),
		errors.Is(err, model.ErrInvalidSession),
		errors.Is(err, model.ErrInvalidCheckout):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, model.ErrCouponNotFound),
		errors.Is(err, model.ErrProductNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, model.ErrCouponAlreadyUsed),
		errors.Is(err, model.ErrEmptyCart):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
