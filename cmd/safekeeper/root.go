package main

import (
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/app"
	"github.com/arnac-io/safekeeper/pkg/config"
	"github.com/arnac-io/safekeeper/pkg/host"
	"github.com/arnac-io/safekeeper/pkg/kvstore"
	"github.com/arnac-io/safekeeper/pkg/safe"
)

var rootCmd = &cobra.Command{
	Use:           "safekeeper",
	Short:         "Multi-owner safe with quorum approved transactions",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, inspectCmd)
}

// env holds what every command builds from the configuration.
type env struct {
	cfg   config.Config
	log   *zap.Logger
	store *kvstore.BadgerStore
	host  *host.Memory
	safe  *safe.Safe
}

func setup() (*env, error) {
	cfg := config.Load()
	log := app.Logger(cfg.App.LogLevel)

	store, err := kvstore.NewBadgerStore(log,
		kvstore.WithDir(cfg.Storage.DataDir),
		kvstore.WithSyncWrites(cfg.Storage.SyncWrites))
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}
	memory := host.NewMemory(cfg.Safe.Address)
	for _, c := range cfg.Safe.Contracts {
		memory.RegisterContract(c)
	}
	for _, t := range cfg.Safe.Tokens {
		memory.RegisterToken(t)
	}
	s := safe.New(log, store, cfg.Safe.Address, memory, safe.WithPageSize(cfg.Safe.PageSize))
	return &env{cfg: cfg, log: log, store: store, host: memory, safe: s}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.Error("failed to close storage", zap.Error(err))
	}
	_ = e.log.Sync()
}
