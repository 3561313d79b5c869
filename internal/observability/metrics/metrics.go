package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockroom_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	stockAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_stock_adjustments_total",
		Help: "Count of stock adjustments by result",
	}, []string{"result"})

	stockAdjustmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockroom_stock_adjustment_duration_seconds",
		Help:    "Duration of the locked adjust transaction",
		Buckets: prometheus.DefBuckets,
	})

	lowStockAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_low_stock_alerts_total",
		Help: "Count of low-stock alert deliveries by channel and result",
	}, []string{"channel", "result"})

	lowStockItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockroom_low_stock_items",
		Help: "Number of items at or below their minimum stock level",
	})

	logins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockroom_logins_total",
		Help: "Count of login attempts by result",
	}, []string{"result"})

	alertSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockroom_alert_subscribers",
		Help: "Number of connected websocket alert subscribers",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAdjustment records a stock adjustment with its outcome
// ("success", "insufficient", "error").
func ObserveAdjustment(result string, duration time.Duration) {
	stockAdjustments.WithLabelValues(result).Inc()
	stockAdjustmentDuration.Observe(duration.Seconds())
}

// ObserveAlert counts a low-stock alert delivery on a channel
func ObserveAlert(channel, result string) {
	lowStockAlerts.WithLabelValues(channel, result).Inc()
}

// SetLowStockItems sets the low-stock gauge
func SetLowStockItems(count int) {
	if count < 0 {
		count = 0
	}
	lowStockItems.Set(float64(count))
}

// ObserveLogin counts a login attempt
func ObserveLogin(result string) {
	logins.WithLabelValues(result).Inc()
}

// IncrementSubscribers increments the websocket subscriber gauge.
func IncrementSubscribers() {
	alertSubscribers.Inc()
}

// DecrementSubscribers decrements the websocket subscriber gauge.
func DecrementSubscribers() {
	alertSubscribers.Dec()
}
