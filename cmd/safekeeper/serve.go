package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Narasimha1997/ratelimiter"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/api"
	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/pusher/sources"
	"github.com/arnac-io/safekeeper/pkg/pusher/sse"
	"github.com/arnac-io/safekeeper/pkg/safe"
	"github.com/arnac-io/safekeeper/pkg/sentry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Install the safe if needed and serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := sentry.Init(e.cfg.App.SentryDSN); err != nil {
			e.log.Warn("sentry disabled", zap.Error(err))
		}
		defer sentry.Flush()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := install(ctx, e); err != nil {
			return err
		}
		err = e.safe.Bus().Subscribe(events.TransactionExecutionFailure, func(ev events.Event) {
			e.log.Warn("transaction execution failed", zap.Uint64("transaction_id", ev.TransactionID), zap.String("error", ev.Error))
			sentry.Send("transaction execution failed", sentry.SentryInfoData{
				"transaction_id": ev.TransactionID,
				"error":          ev.Error,
				"safe":           e.safe.Address().ToRaw(),
			}, sentry.LevelWarning)
		})
		if err != nil {
			return errors.Wrap(err, "subscribe")
		}

		dispatcher := sources.NewEventDispatcher(e.log)
		if err := dispatcher.Attach(e.safe.Bus()); err != nil {
			return errors.Wrap(err, "attach event stream")
		}

		serverOptions := []api.ServerOption{
			api.WithMetricsEndpoint(),
			api.WithEventStream(sse.NewHandler(dispatcher, e.cfg.API.SSEPingInterval)),
		}
		if e.cfg.API.RateLimit > 0 {
			limiter := ratelimiter.NewDefaultLimiter(e.cfg.API.RateLimit, time.Second)
			defer limiter.Kill()
			serverOptions = append(serverOptions, api.WithMiddleware(api.RateLimit(limiter)))
		}
		handler := api.NewHandler(e.log, e.safe, api.WithDepositor(e.host))
		server := api.NewServer(e.log, handler, fmt.Sprintf(":%v", e.cfg.API.Port), serverOptions...)
		return server.Run(ctx)
	},
}

func install(ctx context.Context, e *env) error {
	if len(e.cfg.Safe.Owners) == 0 {
		return nil
	}
	err := e.safe.Install(ctx, safe.Call{Sender: e.cfg.Safe.Address}, e.cfg.Safe.Owners, e.cfg.Safe.OwnersRequired, e.cfg.Safe.Name)
	switch {
	case errors.Is(err, core.ErrAlreadyInstalled):
		e.log.Info("safe is already installed", zap.String("address", e.safe.Address().ToRaw()))
		return nil
	case err != nil:
		return errors.Wrap(err, "install")
	}
	e.log.Info("safe installed",
		zap.String("address", e.safe.Address().ToRaw()),
		zap.Int("owners", len(e.cfg.Safe.Owners)),
		zap.Int("required", e.cfg.Safe.OwnersRequired))
	return nil
}
