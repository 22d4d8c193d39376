package kvstore

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/avast/retry-go"
	badgerdb "github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var storageTimeHistogramVec = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kvstore_functions_time",
		Help:    "KV store transaction duration distribution in seconds",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1, 1},
	},
	[]string{"method"},
)

type BadgerStore struct {
	logger *zap.Logger
	db     *badgerdb.DB
}

type Options struct {
	// dir is the data directory. An empty dir keeps everything in memory.
	dir          string
	syncWrites   bool
	openAttempts uint
}

type Option func(o *Options)

func WithDir(dir string) Option {
	return func(o *Options) {
		o.dir = dir
	}
}

func WithSyncWrites(sync bool) Option {
	return func(o *Options) {
		o.syncWrites = sync
	}
}

// WithOpenAttempts configures how many times opening a locked directory is retried.
func WithOpenAttempts(n uint) Option {
	return func(o *Options) {
		o.openAttempts = n
	}
}

func NewBadgerStore(log *zap.Logger, opts ...Option) (*BadgerStore, error) {
	o := &Options{openAttempts: 5}
	for i := range opts {
		opts[i](o)
	}
	var badgerOpts badgerdb.Options
	if o.dir == "" {
		log.Warn("USING IN-MEMORY STORAGE! DATA IS LOST ON EXIT!")
		badgerOpts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(o.dir, 0700); err != nil {
			return nil, err
		}
		badgerOpts = badgerdb.DefaultOptions(o.dir).WithSyncWrites(o.syncWrites)
	}
	badgerOpts.Logger = badgerLogger{log.Sugar().With(zap.String("component", "badger"))}

	var db *badgerdb.DB
	err := retry.Do(func() error {
		var err error
		db, err = badgerdb.Open(badgerOpts)
		return err
	},
		retry.Attempts(o.openAttempts),
		retry.Delay(100*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("failed to open badger, retrying", zap.Uint("attempt", n), zap.Error(err))
		}))
	if err != nil {
		return nil, err
	}
	return &BadgerStore{logger: log, db: db}, nil
}

func (s *BadgerStore) View(ctx context.Context, fn func(Txn) error) error {
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		storageTimeHistogramVec.WithLabelValues("view").Observe(v)
	}))
	defer timer.ObserveDuration()
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(txn *badgerdb.Txn) error {
		return fn(&badgerTxn{txn: txn})
	})
}

func (s *BadgerStore) Update(ctx context.Context, fn func(Txn) error) error {
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		storageTimeHistogramVec.WithLabelValues("update").Observe(v)
	}))
	defer timer.ObserveDuration()
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return fn(&badgerTxn{txn: txn})
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type badgerTxn struct {
	txn *badgerdb.Txn
}

func (t *badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(key, value []byte) error {
	return t.txn.Set(key, value)
}

func (t *badgerTxn) Delete(key []byte) error {
	return t.txn.Delete(key)
}

func (t *badgerTxn) Iterate(prefix []byte, fn func(key, value []byte) error) error {
	opts := badgerdb.DefaultIteratorOptions
	opts.Prefix = prefix
	it := t.txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		value, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(item.KeyCopy(nil), value); err != nil {
			return err
		}
	}
	return nil
}

// badgerLogger routes badger's internal logging to zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.Warnf(format, args...)
}

// Infof is demoted to debug, badger is chatty on open and compaction.
func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.Debugf(format, args...)
}
