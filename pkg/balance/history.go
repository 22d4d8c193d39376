// Package balance records how the safe's tracked token balances change over
// time. A new entry is written only when a balance differs from the latest one.
package balance

import (
	"context"
	"math/big"
	"time"

	"github.com/go-faster/errors"
	"github.com/sourcegraph/conc/iter"
	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/collection"
	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

const (
	idNamespace  = "balance_history"
	recordsName  = "balance_history"
	trackersName = "balance_trackers"

	maxBalanceFetchers = 8
)

// Source reports the current balance of the safe in a token.
// core.NativeToken stands for the native currency.
type Source interface {
	Balance(ctx context.Context, token tongo.AccountID) (*big.Int, error)
}

type entryRecord struct {
	ID            uint64    `json:"id"`
	Token         string    `json:"token"`
	Balance       string    `json:"balance"`
	TransactionID uint64    `json:"transaction_id"`
	TxHash        string    `json:"tx_hash"`
	Timestamp     time.Time `json:"timestamp"`
}

func (r entryRecord) toEntry() (core.BalanceHistoryEntry, error) {
	token, err := tongo.ParseAccountID(r.Token)
	if err != nil {
		return core.BalanceHistoryEntry{}, err
	}
	balance, ok := new(big.Int).SetString(r.Balance, 10)
	if !ok {
		return core.BalanceHistoryEntry{}, errors.Errorf("invalid balance %q", r.Balance)
	}
	txHash, err := tongo.ParseHash(r.TxHash)
	if err != nil {
		return core.BalanceHistoryEntry{}, err
	}
	return core.BalanceHistoryEntry{
		ID:            r.ID,
		Token:         token,
		Balance:       balance,
		TransactionID: r.TransactionID,
		TxHash:        txHash,
		Timestamp:     r.Timestamp,
	}, nil
}

type History struct {
	txn      kvstore.Txn
	emitter  events.Emitter
	source   Source
	clock    core.Clock
	ids      *collection.IDFactory
	trackers *collection.Dict
}

func New(txn kvstore.Txn, emitter events.Emitter, source Source, clock core.Clock) *History {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &History{
		txn:      txn,
		emitter:  emitter,
		source:   source,
		clock:    clock,
		ids:      collection.NewIDFactory(txn, idNamespace),
		trackers: collection.NewDict(txn, trackersName),
	}
}

func (h *History) entries(token tongo.AccountID) *collection.LinkedSet {
	return collection.NewLinkedSet(h.txn, "balance_history|"+token.ToRaw())
}

// AddTracker starts tracking token and snapshots all tracked balances.
// Tracking an already tracked token only takes the snapshot.
func (h *History) AddTracker(ctx context.Context, token tongo.AccountID, txHash tongo.Bits256) error {
	if err := h.trackers.Set(token.ToRaw(), 1); err != nil {
		return err
	}
	return h.Update(ctx, core.SystemTransactionID, txHash)
}

// RemoveTracker stops tracking token. Its history stays readable.
func (h *History) RemoveTracker(ctx context.Context, token tongo.AccountID, txHash tongo.Bits256) error {
	_, ok, err := h.trackers.Get(token.ToRaw())
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrap(core.ErrTokenNotTracked, token.ToRaw())
	}
	if err := h.trackers.Delete(token.ToRaw()); err != nil {
		return err
	}
	return h.Update(ctx, core.SystemTransactionID, txHash)
}

// Trackers lists tracked tokens in a stable order.
func (h *History) Trackers(offset, limit int) ([]tongo.AccountID, error) {
	keys, err := h.trackers.Keys()
	if err != nil {
		return nil, err
	}
	if offset >= len(keys) {
		return nil, nil
	}
	keys = keys[offset:]
	if len(keys) > limit {
		keys = keys[:limit]
	}
	tokens := make([]tongo.AccountID, 0, len(keys))
	for _, k := range keys {
		token, err := tongo.ParseAccountID(k)
		if err != nil {
			return nil, errors.Wrapf(err, "tracker %q", k)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

type snapshot struct {
	key     string
	token   tongo.AccountID
	balance *big.Int
	err     error
}

// Update snapshots the balance of every tracked token after transactionID.
// Balances are fetched concurrently and recorded in tracker order. Nothing is
// recorded when any fetch fails.
func (h *History) Update(ctx context.Context, transactionID uint64, txHash tongo.Bits256) error {
	keys, err := h.trackers.Keys()
	if err != nil {
		return err
	}
	snapshots := make([]snapshot, 0, len(keys))
	for _, k := range keys {
		token, err := tongo.ParseAccountID(k)
		if err != nil {
			return errors.Wrapf(err, "tracker %q", k)
		}
		snapshots = append(snapshots, snapshot{key: k, token: token})
	}
	fetcher := iter.Iterator[snapshot]{MaxGoroutines: maxBalanceFetchers}
	fetcher.ForEach(snapshots, func(s *snapshot) {
		s.balance, s.err = h.source.Balance(ctx, s.token)
	})
	for _, s := range snapshots {
		if s.err != nil {
			return errors.Wrapf(s.err, "balance of %v", s.key)
		}
	}
	for _, s := range snapshots {
		if err := h.record(s.token, s.balance, transactionID, txHash); err != nil {
			return err
		}
	}
	return nil
}

func (h *History) record(token tongo.AccountID, balance *big.Int, transactionID uint64, txHash tongo.Bits256) error {
	entries := h.entries(token)
	head, ok, err := entries.Head()
	if err != nil {
		return err
	}
	if ok {
		last, err := h.Entry(head)
		if err != nil {
			return err
		}
		if last.Balance.Cmp(balance) == 0 {
			return nil
		}
	}
	id, err := h.ids.Next()
	if err != nil {
		return err
	}
	rec := entryRecord{
		ID:            id,
		Token:         token.ToRaw(),
		Balance:       balance.String(),
		TransactionID: transactionID,
		TxHash:        txHash.Hex(),
		Timestamp:     h.clock.Now(),
	}
	if err := kvstore.SetRecord(h.txn, collection.RecordKey(recordsName, id), rec); err != nil {
		return err
	}
	if err := entries.Append(id); err != nil {
		return err
	}
	h.emitter.Emit(events.Event{Name: events.BalanceHistoryCreated, BalanceHistoryID: id, TransactionID: transactionID, Token: &token})
	return nil
}

func (h *History) Entry(id uint64) (core.BalanceHistoryEntry, error) {
	var rec entryRecord
	err := kvstore.GetRecord(h.txn, collection.RecordKey(recordsName, id), &rec)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return core.BalanceHistoryEntry{}, errors.Wrapf(core.ErrBalanceNotFound, "id %d", id)
	}
	if err != nil {
		return core.BalanceHistoryEntry{}, err
	}
	return rec.toEntry()
}

// History lists the entries of a token, most recent first.
func (h *History) History(token tongo.AccountID, offset, limit int) ([]core.BalanceHistoryEntry, error) {
	ids, err := h.entries(token).Page(offset, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]core.BalanceHistoryEntry, 0, len(ids))
	for _, id := range ids {
		e, err := h.Entry(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
