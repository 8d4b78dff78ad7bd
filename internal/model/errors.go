package model

import "errors"

// Domain errors
var (
	// Confirmation errors
	ErrInvalidEventID   = errors.New("invalid event id")
	ErrInvalidUserName  = errors.New("name must have at least 2 characters")
	ErrAlreadyConfirmed = errors.New("already confirmed")
	ErrCouponExhausted  = errors.New("could not generate coupon, try again")

	// Coupon errors
	ErrInvalidCouponCode = errors.New("invalid coupon code")
	ErrCouponNotFound    = errors.New("coupon not found")
	ErrCouponAlreadyUsed = errors.New("coupon already used")

	// Cart errors
	ErrInvalidSession  = errors.New("invalid cart session")
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCheckout = errors.New("customer name, phone and address are required")
)
