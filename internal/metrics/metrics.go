package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ordersPlacedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders committed by checkout",
		},
		[]string{"customer"},
	)

	priceMismatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_price_mismatch_total",
			Help: "Declared prices that differed from the resolved price",
		},
		[]string{"field", "action"},
	)

	// 在庫0で止めた分と、ちょうど売り切った分を区別しない
	stockExhaustedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_stock_exhausted_total",
			Help: "Stock decrements that left the counter at zero",
		},
		[]string{"counter"},
	)

	paymentVerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_verifications_total",
			Help: "Payment signature verifications by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		ordersPlacedTotal,
		priceMismatchTotal,
		stockExhaustedTotal,
		paymentVerificationsTotal,
	)
}

func ObserveHTTP(method, endpoint, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// guest / customer
func RecordOrderPlaced(guest bool) {
	label := "customer"
	if guest {
		label = "guest"
	}
	ordersPlacedTotal.WithLabelValues(label).Inc()
}

// field: unit_price / total_amount, action: flag / reject
func RecordPriceMismatch(field, action string) {
	priceMismatchTotal.WithLabelValues(field, action).Inc()
}

func RecordStockExhausted(counter string) {
	stockExhaustedTotal.WithLabelValues(counter).Inc()
}

func RecordPaymentVerification(verified bool) {
	result := "failed"
	if verified {
		result = "verified"
	}
	paymentVerificationsTotal.WithLabelValues(result).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
