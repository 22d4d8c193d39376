package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

func operation(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return c.Request.Method + " " + path
	}
	return "unknown"
}

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func Logging(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := logger.With(
			zap.String("operation", operation(c)),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString("request_id")),
		)
		logger.Debug("Handling request")
		c.Next()
		status := c.Writer.Status()
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("Fail", zap.Int("status", status), zap.String("errors", c.Errors.String()))
		case status >= http.StatusBadRequest:
			logger.Info("Fail", zap.Int("status", status))
		default:
			logger.Debug("Success", zap.Int("status", status))
		}
	}
}

var httpResponseTimeMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 10},
}, []string{"operation", "status"})

func Metrics(c *gin.Context) {
	t := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		httpResponseTimeMetric.WithLabelValues(operation(c), strconv.Itoa(c.Writer.Status())).Observe(v)
	}))
	defer t.ObserveDuration()
	c.Next()
}

// Limiter is satisfied by ratelimiter.DefaultLimiter.
type Limiter interface {
	ShouldAllow(n uint64) (bool, error)
}

// RateLimit rejects mutating requests with 429 once limiter runs out.
// Reads are never limited.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		allowed, err := limiter.ShouldAllow(1)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, HTTPError{Message: "rate limiter failure"})
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, HTTPError{Message: "too many requests"})
			return
		}
		c.Next()
	}
}
