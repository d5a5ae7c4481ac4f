package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with middleware, API routes and /metrics.
// httpMetrics may be nil.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, httpMetrics *HTTPMetrics, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logging(logger), Recovery(logger))
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}

	h.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return r
}
