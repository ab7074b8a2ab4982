package metrics

import (
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorders(t *testing.T) {
	guest := promtestutil.ToFloat64(ordersPlacedTotal.WithLabelValues("guest"))
	RecordOrderPlaced(true)
	assert.Equal(t, guest+1, promtestutil.ToFloat64(ordersPlacedTotal.WithLabelValues("guest")))

	failed := promtestutil.ToFloat64(paymentVerificationsTotal.WithLabelValues("failed"))
	RecordPaymentVerification(false)
	assert.Equal(t, failed+1, promtestutil.ToFloat64(paymentVerificationsTotal.WithLabelValues("failed")))

	exhausted := promtestutil.ToFloat64(stockExhaustedTotal.WithLabelValues("variation"))
	RecordStockExhausted("variation")
	assert.Equal(t, exhausted+1, promtestutil.ToFloat64(stockExhaustedTotal.WithLabelValues("variation")))

	ObserveHTTP("POST", "/orders", "201", 0.01)
	assert.GreaterOrEqual(t, promtestutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/orders", "201")), float64(1))
}
