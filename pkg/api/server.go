package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/app"
)

type Server struct {
	logger     *zap.Logger
	httpServer *http.Server
}

type ServerOptions struct {
	middleware []gin.HandlerFunc
	metrics    bool
	events     http.Handler
}

type ServerOption func(options *ServerOptions)

func WithMiddleware(m ...gin.HandlerFunc) ServerOption {
	return func(options *ServerOptions) {
		options.middleware = append(options.middleware, m...)
	}
}

// WithMetricsEndpoint serves prometheus metrics at /metrics.
func WithMetricsEndpoint() ServerOption {
	return func(options *ServerOptions) {
		options.metrics = true
	}
}

// WithEventStream serves committed safe events at /v1/events.
func WithEventStream(h http.Handler) ServerOption {
	return func(options *ServerOptions) {
		options.events = h
	}
}

func NewServer(log *zap.Logger, handler *Handler, address string, opts ...ServerOption) *Server {
	return &Server{
		logger: log,
		httpServer: &http.Server{
			Addr:    address,
			Handler: NewRouter(log, handler, opts...),
		},
	}
}

func NewRouter(log *zap.Logger, handler *Handler, opts ...ServerOption) *gin.Engine {
	options := &ServerOptions{}
	for _, o := range opts {
		o(options)
	}
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logging(log), Metrics)
	router.Use(options.middleware...)
	if options.metrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := router.Group("/v1")
	v1.GET("/safe", handler.GetSafe)
	v1.GET("/events/log", handler.GetEvents)
	if options.events != nil {
		v1.GET("/events", gin.WrapH(options.events))
	}

	owners := v1.Group("/owners")
	owners.GET("", handler.GetOwners)
	owners.GET("/:id", handler.GetOwner)
	owners.GET("/address/:address", handler.GetOwnerByAddress)

	txs := v1.Group("/transactions")
	txs.GET("", handler.GetTransactions)
	txs.GET("/count", handler.GetTransactionsCount)
	txs.GET("/:id", handler.GetTransaction)
	txs.POST("", handler.SubmitTransaction)
	txs.POST("/:id/confirm", handler.ConfirmTransaction)
	txs.POST("/:id/reject", handler.RejectTransaction)
	txs.POST("/:id/revoke", handler.RevokeTransaction)

	v1.POST("/incoming", handler.RecordIncoming)

	balances := v1.Group("/balances")
	balances.GET("/trackers", handler.GetBalanceTrackers)
	balances.POST("/trackers/:token", handler.AddBalanceTracker)
	balances.DELETE("/trackers/:token", handler.RemoveBalanceTracker)
	balances.GET("/:token", handler.GetBalanceHistory)

	return router
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	err := app.Serve(ctx, s.logger, s.httpServer)
	s.logger.Info("safekeeper api quit")
	return err
}
