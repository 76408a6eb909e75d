package middleware

import (
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epayco_requests_total",
			Help: "Total number of requests processed by the ePayco service.",
		},
		[]string{"path", "status"},
	)

	ErrorCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epayco_requests_errors_total",
			Help: "Total number of error requests processed by the ePayco service.",
		},
		[]string{"path", "status"},
	)

	CallbackCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "epayco_callbacks_total",
			Help: "Confirmation callbacks received, by outcome.",
		},
		[]string{"outcome"},
	)

	AmbiguousReferenceCount = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "epayco_ambiguous_reference_total",
			Help: "Callbacks whose reference matched more than one transaction.",
		},
	)

	registerOnce sync.Once
)

// PrometheusInit registers the collectors with the default registry.
func PrometheusInit() {
	registerOnce.Do(func() {
		prometheus.MustRegister(RequestCount, ErrorCount, CallbackCount, AmbiguousReferenceCount)
	})
}

// TrackMetrics is a middleware that tracks request metrics
func TrackMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		// Route template, read after Next so it names the matched handler.
		path := c.Route().Path
		status := c.Response().StatusCode()

		RequestCount.WithLabelValues(path, http.StatusText(status)).Inc()

		if status >= 400 {
			ErrorCount.WithLabelValues(path, http.StatusText(status)).Inc()
		}

		return err
	}
}
