package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/namidia/namidia/internal/api"
	"github.com/namidia/namidia/internal/cart"
)

// CartServer implements the cart RPC service
type CartServer struct {
	svc *CartService
}

var _ api.CartServiceHandler = (*CartServer)(nil)

// NewCartServer creates a new CartServer instance
func NewCartServer(svc *CartService) *CartServer {
	return &CartServer{svc: svc}
}

func (s *CartServer) GetCart(ctx context.Context, req *connect.Request[api.GetCartRequest]) (*connect.Response[api.CartResponse], error) {
	return cartResponse(s.svc.GetCart(ctx, req.Msg.SessionID))
}

func (s *CartServer) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.CartResponse], error) {
	return cartResponse(s.svc.AddItem(ctx, req.Msg.SessionID, req.Msg.ProductID, req.Msg.Quantity))
}

func (s *CartServer) UpdateQuantity(ctx context.Context, req *connect.Request[api.UpdateQuantityRequest]) (*connect.Response[api.CartResponse], error) {
	return cartResponse(s.svc.UpdateQuantity(ctx, req.Msg.SessionID, req.Msg.ProductID, req.Msg.Quantity))
}

func (s *CartServer) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.CartResponse], error) {
	return cartResponse(s.svc.RemoveItem(ctx, req.Msg.SessionID, req.Msg.ProductID))
}

func (s *CartServer) ClearCart(ctx context.Context, req *connect.Request[api.ClearCartRequest]) (*connect.Response[api.CartResponse], error) {
	return cartResponse(s.svc.ClearCart(ctx, req.Msg.SessionID))
}

func (s *CartServer) SetScheduledTime(ctx context.Context, req *connect.Request[api.SetScheduledTimeRequest]) (*connect.Response[api.CartResponse], error) {
	return cartResponse(s.svc.SetScheduledTime(ctx, req.Msg.SessionID, req.Msg.ScheduledTime))
}

// ValidateCart reports what would block a checkout right now
func (s *CartServer) ValidateCart(ctx context.Context, req *connect.Request[api.ValidateCartRequest]) (*connect.Response[api.ValidateCartResponse], error) {
	state, problems, err := s.svc.ValidateCart(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ValidateCartResponse{
		Cart:     toAPICart(state),
		Valid:    len(problems) == 0,
		Problems: problems,
	}), nil
}

// Checkout places the order or returns the stock problems blocking it
func (s *CartServer) Checkout(ctx context.Context, req *connect.Request[api.CheckoutRequest]) (*connect.Response[api.CheckoutResponse], error) {
	res, err := s.svc.Checkout(ctx, req.Msg.SessionID, CheckoutInput{
		CustomerName:  req.Msg.CustomerName,
		CustomerPhone: req.Msg.CustomerPhone,
		Address:       req.Msg.Address,
		PaymentMethod: req.Msg.PaymentMethod,
		Notes:         req.Msg.Notes,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	if res.Order == nil {
		return connect.NewResponse(&api.CheckoutResponse{Problems: res.Problems}), nil
	}
	return connect.NewResponse(&api.CheckoutResponse{
		OrderID:      res.Order.ID.String(),
		Total:        res.Order.Total.StringFixed(2),
		TotalDisplay: cart.FormatBRL(res.Order.Total),
	}), nil
}

func cartResponse(state cart.State, err error) (*connect.Response[api.CartResponse], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CartResponse{Cart: toAPICart(state)}), nil
}

func toAPICart(state cart.State) *api.Cart {
	items := make([]api.CartItem, 0, len(state.Items))
	for _, item := range state.Items {
		var original *string
		if item.OriginalPrice != nil {
			v := item.OriginalPrice.StringFixed(2)
			original = &v
		}
		items = append(items, api.CartItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			ImageURL:        item.ImageURL,
			Unit:            item.Unit,
			Stock:           item.Stock,
			Price:           item.Price.StringFixed(2),
			PriceDisplay:    cart.FormatBRL(item.Price),
			OriginalPrice:   original,
			DiscountPercent: item.DiscountPercent,
			Quantity:        item.Quantity,
			LineTotal:       item.LineTotal().StringFixed(2),
		})
	}

	return &api.Cart{
		Items:              items,
		Subtotal:           state.Subtotal.StringFixed(2),
		DeliveryFee:        state.DeliveryFee.StringFixed(2),
		Total:              state.Total.StringFixed(2),
		SubtotalDisplay:    cart.FormatBRL(state.Subtotal),
		DeliveryFeeDisplay: cart.FormatBRL(state.DeliveryFee),
		TotalDisplay:       cart.FormatBRL(state.Total),
		ItemCount:          state.ItemCount,
		TotalQuantity:      state.TotalQuantity,
		ScheduledTime:      state.ScheduledTime,
	}
}
