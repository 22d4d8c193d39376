package config

import (
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-faster/errors"
	"github.com/tonkeeper/tongo"
	"go.uber.org/multierr"

	"github.com/arnac-io/safekeeper/pkg/core"
)

type Config struct {
	API struct {
		Port int `env:"PORT" envDefault:"8081"`
		// SSEPingInterval is how often idle event streams get a heartbeat.
		SSEPingInterval time.Duration `env:"SSE_PING_INTERVAL" envDefault:"5s"`
		// RateLimit caps mutating requests per second. Zero disables it.
		RateLimit uint64 `env:"RATE_LIMIT" envDefault:"0"`
	}
	App struct {
		LogLevel  string `env:"LOG_LEVEL" envDefault:"INFO"`
		SentryDSN string `env:"SENTRY_DSN"`
	}
	Storage struct {
		// DataDir is where badger keeps its files. Empty means in-memory.
		DataDir    string `env:"DATA_DIR"`
		SyncWrites bool   `env:"SYNC_WRITES" envDefault:"true"`
	}
	Safe struct {
		Address        tongo.AccountID `env:"SAFE_ADDRESS,required"`
		Name           string          `env:"SAFE_NAME" envDefault:"Safe"`
		Owners         ownersList      `env:"OWNERS"`
		OwnersRequired int             `env:"OWNERS_REQUIRED" envDefault:"1"`
		PageSize       int             `env:"PAGE_SIZE" envDefault:"100"`
		// Contracts and Tokens describe the accounts of the in-memory host.
		Contracts accountsList `env:"CONTRACTS"`
		Tokens    accountsList `env:"TOKENS"`
	}
}

type accountsList []tongo.AccountID

// ownersList is parsed from "address=name" pairs separated by commas.
type ownersList []core.OwnerDescription

var parsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(tongo.AccountID{}): func(v string) (interface{}, error) {
		return tongo.ParseAccountID(v)
	},
	reflect.TypeOf(accountsList{}): func(v string) (interface{}, error) {
		var accs accountsList
		var errs error
		for _, s := range strings.Split(v, ",") {
			a, err := tongo.ParseAccountID(strings.TrimSpace(s))
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "account %q", s))
				continue
			}
			accs = append(accs, a)
		}
		if errs != nil {
			return nil, errs
		}
		return accs, nil
	},
	reflect.TypeOf(ownersList{}): func(v string) (interface{}, error) {
		var owners ownersList
		var errs error
		for _, s := range strings.Split(v, ",") {
			address, name, _ := strings.Cut(strings.TrimSpace(s), "=")
			a, err := tongo.ParseAccountID(address)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "owner %q", s))
				continue
			}
			owners = append(owners, core.OwnerDescription{Address: a, Name: name})
		}
		if errs != nil {
			return nil, errs
		}
		return owners, nil
	},
}

func Load() Config {
	c, err := Parse(env.Options{})
	if err != nil {
		log.Panicf("[‼️  Config parsing failed] %+v\n", err)
	}
	return c
}

func Parse(opts env.Options) (Config, error) {
	var c Config
	if err := env.ParseWithFuncs(&c, parsers, opts); err != nil {
		return Config{}, err
	}
	return c, nil
}
