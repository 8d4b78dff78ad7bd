package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	// ConfirmationServiceName is the fully-qualified name of the ConfirmationService
	ConfirmationServiceName = "namidia.v1.ConfirmationService"
	// CartServiceName is the fully-qualified name of the CartService
	CartServiceName = "namidia.v1.CartService"
)

// Procedure paths, as they appear in the URL
const (
	ConfirmationServiceConfirmPresenceProcedure = "/namidia.v1.ConfirmationService/ConfirmPresence"
	ConfirmationServiceRedeemCouponProcedure    = "/namidia.v1.ConfirmationService/RedeemCoupon"
	ConfirmationServiceGetCouponProcedure       = "/namidia.v1.ConfirmationService/GetCoupon"
	ConfirmationServiceGetEventStatsProcedure   = "/namidia.v1.ConfirmationService/GetEventStats"

	CartServiceGetCartProcedure          = "/namidia.v1.CartService/GetCart"
	CartServiceAddItemProcedure          = "/namidia.v1.CartService/AddItem"
	CartServiceUpdateQuantityProcedure   = "/namidia.v1.CartService/UpdateQuantity"
	CartServiceRemoveItemProcedure       = "/namidia.v1.CartService/RemoveItem"
	CartServiceClearCartProcedure        = "/namidia.v1.CartService/ClearCart"
	CartServiceSetScheduledTimeProcedure = "/namidia.v1.CartService/SetScheduledTime"
	CartServiceValidateCartProcedure     = "/namidia.v1.CartService/ValidateCart"
	CartServiceCheckoutProcedure         = "/namidia.v1.CartService/Checkout"
)

// ConfirmationServiceHandler is implemented by the confirmation server
type ConfirmationServiceHandler interface {
	ConfirmPresence(context.Context, *connect.Request[ConfirmPresenceRequest]) (*connect.Response[ConfirmPresenceResponse], error)
	RedeemCoupon(context.Context, *connect.Request[RedeemCouponRequest]) (*connect.Response[RedeemCouponResponse], error)
	GetCoupon(context.Context, *connect.Request[GetCouponRequest]) (*connect.Response[GetCouponResponse], error)
	GetEventStats(context.Context, *connect.Request[GetEventStatsRequest]) (*connect.Response[GetEventStatsResponse], error)
}

// CartServiceHandler is implemented by the cart server
type CartServiceHandler interface {
	GetCart(context.Context, *connect.Request[GetCartRequest]) (*connect.Response[CartResponse], error)
	AddItem(context.Context, *connect.Request[AddItemRequest]) (*connect.Response[CartResponse], error)
	UpdateQuantity(context.Context, *connect.Request[UpdateQuantityRequest]) (*connect.Response[CartResponse], error)
	RemoveItem(context.Context, *connect.Request[RemoveItemRequest]) (*connect.Response[CartResponse], error)
	ClearCart(context.Context, *connect.Request[ClearCartRequest]) (*connect.Response[CartResponse], error)
	SetScheduledTime(context.Context, *connect.Request[SetScheduledTimeRequest]) (*connect.Response[CartResponse], error)
	ValidateCart(context.Context, *connect.Request[ValidateCartRequest]) (*connect.Response[ValidateCartResponse], error)
	Checkout(context.Context, *connect.Request[CheckoutRequest]) (*connect.Response[CheckoutResponse], error)
}

// NewConfirmationServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewConfirmationServiceHandler(svc ConfirmationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return route(ConfirmationServiceName, map[string]http.Handler{
		ConfirmationServiceConfirmPresenceProcedure: connect.NewUnaryHandler(ConfirmationServiceConfirmPresenceProcedure, svc.ConfirmPresence, opts...),
		ConfirmationServiceRedeemCouponProcedure:    connect.NewUnaryHandler(ConfirmationServiceRedeemCouponProcedure, svc.RedeemCoupon, opts...),
		ConfirmationServiceGetCouponProcedure:       connect.NewUnaryHandler(ConfirmationServiceGetCouponProcedure, svc.GetCoupon, opts...),
		ConfirmationServiceGetEventStatsProcedure:   connect.NewUnaryHandler(ConfirmationServiceGetEventStatsProcedure, svc.GetEventStats, opts...),
	})
}

// NewCartServiceHandler builds an HTTP handler from the service implementation
func NewCartServiceHandler(svc CartServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = withCodec(opts)
	return route(CartServiceName, map[string]http.Handler{
		CartServiceGetCartProcedure:          connect.NewUnaryHandler(CartServiceGetCartProcedure, svc.GetCart, opts...),
		CartServiceAddItemProcedure:          connect.NewUnaryHandler(CartServiceAddItemProcedure, svc.AddItem, opts...),
		CartServiceUpdateQuantityProcedure:   connect.NewUnaryHandler(CartServiceUpdateQuantityProcedure, svc.UpdateQuantity, opts...),
		CartServiceRemoveItemProcedure:       connect.NewUnaryHandler(CartServiceRemoveItemProcedure, svc.RemoveItem, opts...),
		CartServiceClearCartProcedure:        connect.NewUnaryHandler(CartServiceClearCartProcedure, svc.ClearCart, opts...),
		CartServiceSetScheduledTimeProcedure: connect.NewUnaryHandler(CartServiceSetScheduledTimeProcedure, svc.SetScheduledTime, opts...),
		CartServiceValidateCartProcedure:     connect.NewUnaryHandler(CartServiceValidateCartProcedure, svc.ValidateCart, opts...),
		CartServiceCheckoutProcedure:         connect.NewUnaryHandler(CartServiceCheckoutProcedure, svc.Checkout, opts...),
	})
}

func withCodec(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSONCodec()}, opts...)
}

func route(service string, procedures map[string]http.Handler) (string, http.Handler) {
	return "/" + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := procedures[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
