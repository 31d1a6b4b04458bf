package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armora_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "armora_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	workflowTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armora_workflow_transitions_total",
		Help: "Finalizing workflow transitions by entity and outcome.",
	}, []string{"entity", "outcome"})

	workflowConflictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armora_workflow_conflicts_total",
		Help: "Transition attempts that lost to an earlier decision.",
	}, []string{"entity"})
)

// RecordTransition counts a committed approve/reject decision.
func RecordTransition(entity, outcome string) {
	workflowTransitionsTotal.WithLabelValues(entity, outcome).Inc()
}

// RecordConflict counts an attempt that observed an already-finalized row.
func RecordConflict(entity string) {
	workflowConflictsTotal.WithLabelValues(entity).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
