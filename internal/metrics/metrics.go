package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result labels shared by the domain counters
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed.",
		},
	)

	checkoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhino_checkouts_total",
			Help: "Checkout attempts by result.",
		},
		[]string{"result"},
	)
	promoApplicationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhino_promo_applications_total",
			Help: "Promo codes applied to carts by result.",
		},
		[]string{"result"},
	)
	promoConsumptionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rhino_promo_consumptions_total",
			Help: "Promo code usage increments by result.",
		},
		[]string{"result"},
	)
	promoCodesExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rhino_promo_codes_expired_total",
			Help: "Promo codes switched off by the expiry sweep.",
		},
	)
)

func RecordCheckout(result string) {
	checkoutsTotal.WithLabelValues(result).Inc()
}

func RecordPromoApplication(result string) {
	promoApplicationsTotal.WithLabelValues(result).Inc()
}

func RecordPromoConsumption(result string) {
	promoConsumptionsTotal.WithLabelValues(result).Inc()
}

func RecordPromoCodesExpired(count int64) {
	promoCodesExpiredTotal.Add(float64(count))
}

// Middleware records request count and latency per route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(strconv.Itoa(c.Writer.Status()), c.Request.Method, path).Inc()
		httpRequestsDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
		httpRequestsInFlight.Dec()
	}
}

// Handler serves the Prometheus scrape endpoint
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
