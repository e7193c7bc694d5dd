// Package metrics exposes Prometheus instrumentation at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panotour_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panotour_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panotour_votes_total",
			Help: "Vote submissions by outcome",
		},
		[]string{"outcome"}, // "accepted", "rejected"
	)

	SaveToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panotour_saved_tour_toggles_total",
			Help: "Saved-tour toggles by resulting state",
		},
		[]string{"state"}, // "saved", "unsaved"
	)

	CommentOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "panotour_comment_operations_total",
			Help: "Comment writes by operation",
		},
		[]string{"op"},
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "panotour_notifications_created_total",
			Help: "Booking notifications created",
		},
	)

	TilerRuns = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "panotour_tiler_duration_seconds",
			Help:    "External panorama tiler run time",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"result"},
	)
)

// Middleware records request counts and latency by route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus exposition format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
