package api

import "time"

// ConfirmPresenceRequest registers an attendee for an event
type ConfirmPresenceRequest struct {
	EventID   string  `json:"eventId"`
	UserName  string  `json:"userName"`
	UserEmail *string `json:"userEmail,omitempty"`
	UserPhone *string `json:"userPhone,omitempty"`
}

// ConfirmPresenceResponse carries the coupon code on success, or the failure
// message and its kind. Failures are not transport errors.
type ConfirmPresenceResponse struct {
	OK    bool   `json:"ok"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

type Coupon struct {
	Code            string     `json:"code"`
	EventID         string     `json:"eventId"`
	DiscountPercent int        `json:"discountPercent"`
	Used            bool       `json:"used"`
	UsedAt          *time.Time `json:"usedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type RedeemCouponRequest struct {
	Code string `json:"code"`
}

type RedeemCouponResponse struct {
	Coupon *Coupon `json:"coupon"`
}

type GetCouponRequest struct {
	Code string `json:"code"`
}

type GetCouponResponse struct {
	Coupon *Coupon `json:"coupon"`
}

type GetEventStatsRequest struct {
	EventID      string `json:"eventId"`
	IncludeCodes bool   `json:"includeCodes,omitempty"`
}

type GetEventStatsResponse struct {
	EventID           string   `json:"eventId"`
	Confirmations     int64    `json:"confirmations"`
	CouponsIssued     int64    `json:"couponsIssued"`
	CouponsUsed       int64    `json:"couponsUsed"`
	IssuedCouponCodes []string `json:"issuedCouponCodes,omitempty"`
}

// Cart is the client view of a session cart. Amounts are decimal strings;
// the *Display fields are formatted in reais.
type Cart struct {
	Items              []CartItem `json:"items"`
	Subtotal           string     `json:"subtotal"`
	DeliveryFee        string     `json:"deliveryFee"`
	Total              string     `json:"total"`
	SubtotalDisplay    string     `json:"subtotalDisplay"`
	DeliveryFeeDisplay string     `json:"deliveryFeeDisplay"`
	TotalDisplay       string     `json:"totalDisplay"`
	ItemCount          int        `json:"itemCount"`
	TotalQuantity      int        `json:"totalQuantity"`
	ScheduledTime      *string    `json:"scheduledTime"`
}

type CartItem struct {
	ProductID       string  `json:"productId"`
	Name            string  `json:"name"`
	ImageURL        string  `json:"imageUrl,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	Stock           int     `json:"stock"`
	Price           string  `json:"price"`
	PriceDisplay    string  `json:"priceDisplay"`
	OriginalPrice   *string `json:"originalPrice,omitempty"`
	DiscountPercent *int    `json:"discountPercent,omitempty"`
	Quantity        int     `json:"quantity"`
	LineTotal       string  `json:"lineTotal"`
}

// CartResponse is returned by every cart read and mutation
type CartResponse struct {
	Cart *Cart `json:"cart"`
}

type GetCartRequest struct {
	SessionID string `json:"sessionId"`
}

type AddItemRequest struct {
	SessionID string `json:"sessionId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequest struct {
	SessionID string `json:"sessionId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type RemoveItemRequest struct {
	SessionID string `json:"sessionId"`
	ProductID string `json:"productId"`
}

type ClearCartRequest struct {
	SessionID string `json:"sessionId"`
}

// SetScheduledTimeRequest sets the delivery slot; null or "" clears it and
// "asap" asks for the earliest delivery.
type SetScheduledTimeRequest struct {
	SessionID     string  `json:"sessionId"`
	ScheduledTime *string `json:"scheduledTime"`
}

type ValidateCartRequest struct {
	SessionID string `json:"sessionId"`
}

type ValidateCartResponse struct {
	Cart     *Cart    `json:"cart"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

type CheckoutRequest struct {
	SessionID     string `json:"sessionId"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Address       string `json:"address"`
	PaymentMethod string `json:"paymentMethod"`
	Notes         string `json:"notes,omitempty"`
}

// CheckoutResponse has an order id when the order was placed, problems otherwise
type CheckoutResponse struct {
	OrderID      string   `json:"orderId,omitempty"`
	Total        string   `json:"total,omitempty"`
	TotalDisplay string   `json:"totalDisplay,omitempty"`
	Problems     []string `json:"problems,omitempty"`
}
