package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/namidia/namidia/internal/api"
	"github.com/namidia/namidia/internal/model"
)

// ConfirmationServer implements the confirmation RPC service
type ConfirmationServer struct {
	svc *ConfirmationService
}

var _ api.ConfirmationServiceHandler = (*ConfirmationServer)(nil)

// NewConfirmationServer creates a new ConfirmationServer instance
func NewConfirmationServer(svc *ConfirmationService) *ConfirmationServer {
	return &ConfirmationServer{svc: svc}
}

// ConfirmPresence registers an attendee and issues a coupon. Business
// failures travel in the response body.
func (s *ConfirmationServer) ConfirmPresence(
	ctx context.Context,
	req *connect.Request[api.ConfirmPresenceRequest],
) (*connect.Response[api.ConfirmPresenceResponse], error) {
	res := s.svc.ConfirmPresence(ctx, ConfirmInput{
		EventID:   req.Msg.EventID,
		UserName:  req.Msg.UserName,
		UserEmail: req.Msg.UserEmail,
		UserPhone: req.Msg.UserPhone,
	})

	return connect.NewResponse(&api.ConfirmPresenceResponse{
		OK:    res.OK,
		Code:  res.Code,
		Error: res.Error,
		Kind:  string(res.Kind),
	}), nil
}

// RedeemCoupon marks a coupon as used
func (s *ConfirmationServer) RedeemCoupon(
	ctx context.Context,
	req *connect.Request[api.RedeemCouponRequest],
) (*connect.Response[api.RedeemCouponResponse], error) {
	c, err := s.svc.RedeemCoupon(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RedeemCouponResponse{Coupon: toAPICoupon(c)}), nil
}

// GetCoupon returns a coupon by code
func (s *ConfirmationServer) GetCoupon(
	ctx context.Context,
	req *connect.Request[api.GetCouponRequest],
) (*connect.Response[api.GetCouponResponse], error) {
	c, err := s.svc.GetCoupon(ctx, req.Msg.Code)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetCouponResponse{Coupon: toAPICoupon(c)}), nil
}

// GetEventStats returns confirmation and coupon counts for an event
func (s *ConfirmationServer) GetEventStats(
	ctx context.Context,
	req *connect.Request[api.GetEventStatsRequest],
) (*connect.Response[api.GetEventStatsResponse], error) {
	stats, codes, err := s.svc.GetEventStats(ctx, req.Msg.EventID, req.Msg.IncludeCodes)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetEventStatsResponse{
		EventID:           stats.EventID,
		Confirmations:     stats.Confirmations,
		CouponsIssued:     stats.CouponsIssued,
		CouponsUsed:       stats.CouponsUsed,
		IssuedCouponCodes: codes,
	}), nil
}

func toAPICoupon(c *model.Coupon) *api.Coupon {
	return &api.Coupon{
		Code:            c.Code,
		EventID:         c.EventID,
		DiscountPercent: c.DiscountPercent,
		Used:            c.Used,
		UsedAt:          c.UsedAt,
		CreatedAt:       c.CreatedAt,
	}
}
