// Package safe composes the owner registry, the transaction ledger and the
// balance history into a multi-owner wallet with a single entry point per
// operation.
package safe

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tonkeeper/tongo"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/balance"
	"github.com/arnac-io/safekeeper/pkg/collection"
	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/kvstore"
	"github.com/arnac-io/safekeeper/pkg/ledger"
	"github.com/arnac-io/safekeeper/pkg/owners"
)

// DefaultPageSize is the number of items returned by list operations.
const DefaultPageSize = 100

const safeNameVar = "wallet_settings_safe_name"

var callTimeHistogramVec = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "safe_functions_time",
		Help:    "Safe entry points execution duration distribution in seconds",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 1, 5, 10},
	},
	[]string{"method"},
)

// Host is the environment approved transactions are executed against.
type Host interface {
	ledger.Executor
	ledger.ContractResolver
	balance.Source
}

// Call describes who invokes a mutating entry point and the hash identifying
// the request.
type Call struct {
	Sender tongo.AccountID
	TxHash tongo.Bits256
}

type Safe struct {
	logger   *zap.Logger
	store    kvstore.Store
	address  tongo.AccountID
	host     Host
	clock    core.Clock
	bus      *events.Bus
	pageSize int

	// mu serializes mutating calls so each one runs to completion alone.
	mu sync.Mutex
}

type Options struct {
	clock    core.Clock
	bus      *events.Bus
	pageSize int
}

type Option func(o *Options)

func WithClock(clock core.Clock) Option {
	return func(o *Options) {
		o.clock = clock
	}
}

// WithBus sets the bus committed events are published on.
func WithBus(bus *events.Bus) Option {
	return func(o *Options) {
		o.bus = bus
	}
}

func WithPageSize(size int) Option {
	return func(o *Options) {
		o.pageSize = size
	}
}

// New returns a safe living at address whose state is kept in store.
func New(logger *zap.Logger, store kvstore.Store, address tongo.AccountID, host Host, opts ...Option) *Safe {
	options := &Options{}
	for _, o := range opts {
		o(options)
	}
	if options.clock == nil {
		options.clock = core.SystemClock{}
	}
	if options.bus == nil {
		options.bus = events.NewBus(logger)
	}
	if options.pageSize <= 0 {
		options.pageSize = DefaultPageSize
	}
	return &Safe{
		logger:   logger,
		store:    store,
		address:  address,
		host:     host,
		clock:    options.clock,
		bus:      options.bus,
		pageSize: options.pageSize,
	}
}

func (s *Safe) Address() tongo.AccountID {
	return s.address
}

func (s *Safe) Bus() *events.Bus {
	return s.bus
}

// state gives a single call access to all components within one storage
// transaction.
type state struct {
	safe     *Safe
	call     Call
	owners   *owners.Registry
	ledger   *ledger.Ledger
	balances *balance.History
	name     *collection.Var
	eventLog *events.Log
}

func (s *Safe) newState(txn kvstore.Txn, emitter events.Emitter, call Call) *state {
	st := &state{
		safe:     s,
		call:     call,
		owners:   owners.NewRegistry(txn, emitter),
		balances: balance.New(txn, emitter, s.host, s.clock),
		name:     collection.NewVar(txn, safeNameVar),
		eventLog: events.NewLog(txn),
	}
	st.ledger = ledger.New(txn, emitter, ledger.Deps{
		Quorum:   st.owners,
		Executor: st,
		Resolver: st,
		Clock:    s.clock,
		Logger:   s.logger,
		OnSettled: func(ctx context.Context, tx core.Transaction) error {
			return st.balances.Update(ctx, tx.ID, st.call.TxHash)
		},
	})
	return st
}

// update runs fn as one atomic call. Nothing fn wrote survives an error and
// events are published only after the commit. A call that raised events is
// recorded in the event log within the same transaction.
func (s *Safe) update(ctx context.Context, method string, call Call, fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		callTimeHistogramVec.WithLabelValues(method).Observe(v)
	}))
	defer timer.ObserveDuration()

	buf := &events.Buffer{}
	err := s.store.Update(ctx, func(txn kvstore.Txn) error {
		st := s.newState(txn, buf, call)
		if err := fn(st); err != nil {
			return err
		}
		if len(buf.Events()) == 0 {
			return nil
		}
		return st.eventLog.Record(call.TxHash, s.clock.Now())
	})
	if err != nil {
		s.logger.Debug("call aborted",
			zap.String("method", method),
			zap.String("sender", call.Sender.ToRaw()),
			zap.Error(err))
		return err
	}
	s.bus.Publish(buf.Events())
	return nil
}

func (s *Safe) view(ctx context.Context, method string, fn func(st *state) error) error {
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		callTimeHistogramVec.WithLabelValues(method).Observe(v)
	}))
	defer timer.ObserveDuration()
	return s.store.View(ctx, func(txn kvstore.Txn) error {
		return fn(s.newState(txn, events.Discard{}, Call{}))
	})
}

func (st *state) requireInstalled() error {
	ok, err := st.owners.Installed()
	if err != nil {
		return err
	}
	if !ok {
		return core.ErrNotInstalled
	}
	return nil
}

// requireOwner resolves the sender of the call to an owner id.
func (st *state) requireOwner() (uint64, error) {
	id, ok, err := st.owners.OwnerID(st.call.Sender)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, core.NotAnOwnerError{Address: st.call.Sender}
	}
	return id, nil
}

// requireWallet accepts only calls made by the safe to itself.
func (st *state) requireWallet() error {
	if st.call.Sender != st.safe.address {
		return core.ErrOnlyWallet
	}
	return nil
}

func (st *state) caller(ownerID uint64) ledger.Caller {
	return ledger.Caller{OwnerID: ownerID, TxHash: st.call.TxHash}
}
