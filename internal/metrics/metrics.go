package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConfirmPresenceDuration tracks the latency of presence confirmations
	ConfirmPresenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "namidia_confirm_presence_duration_seconds",
			Help: "Duration of presence confirmation requests in seconds",
			Buckets: []float64{
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"result"}, // success or the failure kind
	)

	// CouponCodeCollisions counts coupon inserts rejected for a duplicate code
	CouponCodeCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "namidia_coupon_code_collisions_total",
			Help: "Coupon codes rejected by the store as duplicates",
		},
	)

	// CouponsRedeemed counts redemptions by outcome
	CouponsRedeemed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namidia_coupons_redeemed_total",
			Help: "Coupon redemption attempts",
		},
		[]string{"result"},
	)

	// CartOperations counts cart mutations by operation
	CartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namidia_cart_operations_total",
			Help: "Cart mutations applied",
		},
		[]string{"op"},
	)

	// CartLines observes the number of lines after each cart change
	CartLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "namidia_cart_lines",
			Help:    "Distinct products in a cart after a change",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	// Checkouts counts checkout attempts by outcome
	Checkouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "namidia_checkouts_total",
			Help: "Checkout attempts",
		},
		[]string{"result"},
	)
)

// RecordConfirmPresence records the duration of a presence confirmation
func RecordConfirmPresence(result string, duration float64) {
	ConfirmPresenceDuration.WithLabelValues(result).Observe(duration)
}

// RecordCouponCollision records a duplicate coupon code
func RecordCouponCollision() {
	CouponCodeCollisions.Inc()
}

// RecordRedemption records a coupon redemption outcome
func RecordRedemption(result string) {
	CouponsRedeemed.WithLabelValues(result).Inc()
}

// RecordCartOperation records a cart mutation
func RecordCartOperation(op string) {
	CartOperations.WithLabelValues(op).Inc()
}

// ObserveCartLines records the cart size after a change
func ObserveCartLines(lines int) {
	CartLines.Observe(float64(lines))
}

// RecordCheckout records a checkout outcome
func RecordCheckout(result string) {
	Checkouts.WithLabelValues(result).Inc()
}
