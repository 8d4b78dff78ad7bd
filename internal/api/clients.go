package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// ConfirmationServiceClient calls namidia.v1.ConfirmationService
type ConfirmationServiceClient struct {
	confirmPresence *connect.Client[ConfirmPresenceRequest, ConfirmPresenceResponse]
	redeemCoupon    *connect.Client[RedeemCouponRequest, RedeemCouponResponse]
	getCoupon       *connect.Client[GetCouponRequest, GetCouponResponse]
	getEventStats   *connect.Client[GetEventStatsRequest, GetEventStatsResponse]
}

// NewConfirmationServiceClient constructs a client for the service at baseURL
// (e.g. http://localhost:8080, without the service path).
func NewConfirmationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ConfirmationServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &ConfirmationServiceClient{
		confirmPresence: connect.NewClient[ConfirmPresenceRequest, ConfirmPresenceResponse](httpClient, baseURL+ConfirmationServiceConfirmPresenceProcedure, opts...),
		redeemCoupon:    connect.NewClient[RedeemCouponRequest, RedeemCouponResponse](httpClient, baseURL+ConfirmationServiceRedeemCouponProcedure, opts...),
		getCoupon:       connect.NewClient[GetCouponRequest, GetCouponResponse](httpClient, baseURL+ConfirmationServiceGetCouponProcedure, opts...),
		getEventStats:   connect.NewClient[GetEventStatsRequest, GetEventStatsResponse](httpClient, baseURL+ConfirmationServiceGetEventStatsProcedure, opts...),
	}
}

func (c *ConfirmationServiceClient) ConfirmPresence(ctx context.Context, req *connect.Request[ConfirmPresenceRequest]) (*connect.Response[ConfirmPresenceResponse], error) {
	return c.confirmPresence.CallUnary(ctx, req)
}

func (c *ConfirmationServiceClient) RedeemCoupon(ctx context.Context, req *connect.Request[RedeemCouponRequest]) (*connect.Response[RedeemCouponResponse], error) {
	return c.redeemCoupon.CallUnary(ctx, req)
}

func (c *ConfirmationServiceClient) GetCoupon(ctx context.Context, req *connect.Request[GetCouponRequest]) (*connect.Response[GetCouponResponse], error) {
	return c.getCoupon.CallUnary(ctx, req)
}

func (c *ConfirmationServiceClient) GetEventStats(ctx context.Context, req *connect.Request[GetEventStatsRequest]) (*connect.Response[GetEventStatsResponse], error) {
	return c.getEventStats.CallUnary(ctx, req)
}

// CartServiceClient calls namidia.v1.CartService
type CartServiceClient struct {
	getCart          *connect.Client[GetCartRequest, CartResponse]
	addItem          *connect.Client[AddItemRequest, CartResponse]
	updateQuantity   *connect.Client[UpdateQuantityRequest, CartResponse]
	removeItem       *connect.Client[RemoveItemRequest, CartResponse]
	clearCart        *connect.Client[ClearCartRequest, CartResponse]
	setScheduledTime *connect.Client[SetScheduledTimeRequest, CartResponse]
	validateCart     *connect.Client[ValidateCartRequest, ValidateCartResponse]
	checkout         *connect.Client[CheckoutRequest, CheckoutResponse]
}

// NewCartServiceClient constructs a client for the service at baseURL
func NewCartServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CartServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = withClientCodec(opts)
	return &CartServiceClient{
		getCart:          connect.NewClient[GetCartRequest, CartResponse](httpClient, baseURL+CartServiceGetCartProcedure, opts...),
		addItem:          connect.NewClient[AddItemRequest, CartResponse](httpClient, baseURL+CartServiceAddItemProcedure, opts...),
		updateQuantity:   connect.NewClient[UpdateQuantityRequest, CartResponse](httpClient, baseURL+CartServiceUpdateQuantityProcedure, opts...),
		removeItem:       connect.NewClient[RemoveItemRequest, CartResponse](httpClient, baseURL+CartServiceRemoveItemProcedure, opts...),
		clearCart:        connect.NewClient[ClearCartRequest, CartResponse](httpClient, baseURL+CartServiceClearCartProcedure, opts...),
		setScheduledTime: connect.NewClient[SetScheduledTimeRequest, CartResponse](httpClient, baseURL+CartServiceSetScheduledTimeProcedure, opts...),
		validateCart:     connect.NewClient[ValidateCartRequest, ValidateCartResponse](httpClient, baseURL+CartServiceValidateCartProcedure, opts...),
		checkout:         connect.NewClient[CheckoutRequest, CheckoutResponse](httpClient, baseURL+CartServiceCheckoutProcedure, opts...),
	}
}

func (c *CartServiceClient) GetCart(ctx context.Context, req *connect.Request[GetCartRequest]) (*connect.Response[CartResponse], error) {
	return c.getCart.CallUnary(ctx, req)
}

func (c *CartServiceClient) AddItem(ctx context.Context, req *connect.Request[AddItemRequest]) (*connect.Response[CartResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *CartServiceClient) UpdateQuantity(ctx context.Context, req *connect.Request[UpdateQuantityRequest]) (*connect.Response[CartResponse], error) {
	return c.updateQuantity.CallUnary(ctx, req)
}

func (c *CartServiceClient) RemoveItem(ctx context.Context, req *connect.Request[RemoveItemRequest]) (*connect.Response[CartResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *CartServiceClient) ClearCart(ctx context.Context, req *connect.Request[ClearCartRequest]) (*connect.Response[CartResponse], error) {
	return c.clearCart.CallUnary(ctx, req)
}

func (c *CartServiceClient) SetScheduledTime(ctx context.Context, req *connect.Request[SetScheduledTimeRequest]) (*connect.Response[CartResponse], error) {
	return c.setScheduledTime.CallUnary(ctx, req)
}

func (c *CartServiceClient) ValidateCart(ctx context.Context, req *connect.Request[ValidateCartRequest]) (*connect.Response[ValidateCartResponse], error) {
	return c.validateCart.CallUnary(ctx, req)
}

func (c *CartServiceClient) Checkout(ctx context.Context, req *connect.Request[CheckoutRequest]) (*connect.Response[CheckoutResponse], error) {
	return c.checkout.CallUnary(ctx, req)
}

func withClientCodec(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSONCodec()}, opts...)
}
