// Package metrics registers the prometheus collectors of the API server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carequo_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carequo_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)

	ClaimsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carequo_claims_submitted_total",
			Help: "Claims submitted, by claim type",
		},
		[]string{"claim_type"},
	)

	ClaimsReviewed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carequo_claims_reviewed_total",
			Help: "Claim reviews, by resulting status",
		},
		[]string{"status"},
	)

	ReviewConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carequo_claim_review_conflicts_total",
			Help: "Reviews rejected because the claim had already moved on",
		},
	)

	TransactionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carequo_transactions_recorded_total",
			Help: "Ledger rows recorded, by transaction type",
		},
		[]string{"transaction_type"},
	)

	StatsCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carequo_stats_cache_total",
			Help: "Dashboard stats lookups, by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// Middleware records count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func Handler() http.Handler { return promhttp.Handler() }
