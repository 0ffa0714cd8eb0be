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
	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sapar_reservations_created_total",
		Help: "Reservations successfully created.",
	})

	SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sapar_seat_conflicts_total",
		Help: "Reservation attempts rejected because a requested seat was taken.",
	})

	Settlements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sapar_settlements_total",
		Help: "Payment settlements by result.",
	}, []string{"result"})

	ReservationsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sapar_reservations_expired_total",
		Help: "Pending reservations cancelled by the expiry sweeper.",
	})

	TicketsValidated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sapar_tickets_validated_total",
		Help: "Tickets successfully validated.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sapar_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records per-request latency keyed by the route template so
// /api/trips/42 and /api/trips/7 land in the same series.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
