// Package ledger implements the lifecycle of safe transactions: submission,
// confirmation, rejection, revocation and the execution of approved calls.
package ledger

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/tonkeeper/tongo"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/internal/g"
	"github.com/arnac-io/safekeeper/pkg/collection"
	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

const (
	idNamespace = "transaction"
	recordsName = "transaction"
)

// Index names a list of transactions.
type Index string

const (
	Waiting  Index = "waiting"
	Executed Index = "executed"
	Rejected Index = "rejected"
	All      Index = "all"
)

var Indexes = []Index{Waiting, Executed, Rejected, All}

func ParseIndex(s string) (Index, error) {
	for _, idx := range Indexes {
		if string(idx) == s {
			return idx, nil
		}
	}
	return "", errors.Errorf("unknown transaction index %q, expected one of %s", s, strings.Join(g.ToStrings(Indexes), ", "))
}

// Executor performs approved outgoing transactions.
type Executor interface {
	Transfer(ctx context.Context, destination tongo.AccountID, amount *big.Int) error
	Invoke(ctx context.Context, destination tongo.AccountID, method string, params []core.Param, amount *big.Int) error
}

type ContractResolver interface {
	IsContract(ctx context.Context, address tongo.AccountID) (bool, error)
}

// Quorum reports the number of approvals a transaction needs.
type Quorum interface {
	Required() (int, error)
}

// SettledFunc is notified after a transaction reaches a terminal state.
type SettledFunc func(ctx context.Context, tx core.Transaction) error

type Deps struct {
	Quorum    Quorum
	Executor  Executor
	Resolver  ContractResolver
	Clock     core.Clock
	Logger    *zap.Logger
	OnSettled SettledFunc
}

// Caller identifies the owner and the request on whose behalf a mutation runs.
type Caller struct {
	OwnerID uint64
	TxHash  tongo.Bits256
}

// Ledger operates on transactions within a single storage transaction.
type Ledger struct {
	txn     kvstore.Txn
	emitter events.Emitter
	deps    Deps
	ids     *collection.IDFactory
	indexes map[Index]*collection.LinkedSet
}

func New(txn kvstore.Txn, emitter events.Emitter, deps Deps) *Ledger {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = core.SystemClock{}
	}
	l := &Ledger{
		txn:     txn,
		emitter: emitter,
		deps:    deps,
		ids:     collection.NewIDFactory(txn, idNamespace),
		indexes: make(map[Index]*collection.LinkedSet, len(Indexes)),
	}
	for _, idx := range Indexes {
		l.indexes[idx] = collection.NewLinkedSet(txn, "transactions_"+string(idx))
	}
	return l
}

type transactionRecord struct {
	ID             uint64     `json:"id"`
	Type           string     `json:"type"`
	State          string     `json:"state"`
	TxHash         string     `json:"tx_hash"`
	CreatedAt      time.Time  `json:"created_at"`
	Amount         string     `json:"amount"`
	Destination    string     `json:"destination,omitempty"`
	Method         string     `json:"method,omitempty"`
	Params         string     `json:"params,omitempty"`
	Description    string     `json:"description,omitempty"`
	ExecutedTxHash string     `json:"executed_tx_hash,omitempty"`
	ExecutedAt     *time.Time `json:"executed_at,omitempty"`
	Token          string     `json:"token,omitempty"`
	Source         string     `json:"source,omitempty"`
}

func convertToRecord(tx core.Transaction) transactionRecord {
	rec := transactionRecord{
		ID:          tx.ID,
		Type:        string(tx.Type),
		State:       string(tx.State),
		TxHash:      tx.TxHash.Hex(),
		CreatedAt:   tx.CreatedAt,
		Amount:      tx.Amount.String(),
		Method:      tx.Method,
		Params:      tx.Params,
		Description: tx.Description,
		ExecutedAt:  tx.ExecutedAt,
	}
	if tx.ExecutedTxHash != nil {
		rec.ExecutedTxHash = tx.ExecutedTxHash.Hex()
	}
	switch tx.Type {
	case core.OutgoingTransaction:
		rec.Destination = tx.Destination.ToRaw()
	case core.IncomingTransaction:
		rec.Token = tx.Token.ToRaw()
		rec.Source = tx.Source.ToRaw()
	}
	return rec
}

func convertFromRecord(rec transactionRecord) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          rec.ID,
		Type:        core.TransactionType(rec.Type),
		State:       core.TransactionState(rec.State),
		CreatedAt:   rec.CreatedAt,
		Method:      rec.Method,
		Params:      rec.Params,
		Description: rec.Description,
		ExecutedAt:  rec.ExecutedAt,
	}
	var err error
	if tx.TxHash, err = tongo.ParseHash(rec.TxHash); err != nil {
		return core.Transaction{}, err
	}
	amount, ok := new(big.Int).SetString(rec.Amount, 10)
	if !ok {
		return core.Transaction{}, errors.Errorf("invalid amount %q", rec.Amount)
	}
	tx.Amount = amount
	if rec.ExecutedTxHash != "" {
		h, err := tongo.ParseHash(rec.ExecutedTxHash)
		if err != nil {
			return core.Transaction{}, err
		}
		tx.ExecutedTxHash = &h
	}
	switch tx.Type {
	case core.OutgoingTransaction:
		if tx.Destination, err = tongo.ParseAccountID(rec.Destination); err != nil {
			return core.Transaction{}, err
		}
	case core.IncomingTransaction:
		if tx.Token, err = tongo.ParseAccountID(rec.Token); err != nil {
			return core.Transaction{}, err
		}
		if tx.Source, err = tongo.ParseAccountID(rec.Source); err != nil {
			return core.Transaction{}, err
		}
	}
	return tx, nil
}

func (l *Ledger) confirmations(id uint64) *collection.Set {
	return collection.NewSet(l.txn, "transaction_confirmations|"+strconv.FormatUint(id, 10))
}

func (l *Ledger) rejections(id uint64) *collection.Set {
	return collection.NewSet(l.txn, "transaction_rejections|"+strconv.FormatUint(id, 10))
}

func (l *Ledger) save(tx core.Transaction) error {
	return kvstore.SetRecord(l.txn, collection.RecordKey(recordsName, tx.ID), convertToRecord(tx))
}

// Transaction loads a transaction together with its votes.
func (l *Ledger) Transaction(id uint64) (core.Transaction, error) {
	var rec transactionRecord
	err := kvstore.GetRecord(l.txn, collection.RecordKey(recordsName, id), &rec)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return core.Transaction{}, errors.Wrapf(core.ErrTransactionNotFound, "id %d", id)
	}
	if err != nil {
		return core.Transaction{}, err
	}
	tx, err := convertFromRecord(rec)
	if err != nil {
		return core.Transaction{}, errors.Wrapf(err, "transaction %d", id)
	}
	if tx.Type != core.OutgoingTransaction {
		return tx, nil
	}
	if tx.Confirmations, err = l.confirmations(id).Members(); err != nil {
		return core.Transaction{}, err
	}
	if tx.Rejections, err = l.rejections(id).Members(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// List returns a page of an index, most recent first.
func (l *Ledger) List(index Index, offset, limit int) ([]core.Transaction, error) {
	set, ok := l.indexes[index]
	if !ok {
		return nil, errors.Errorf("unknown transaction index %q", index)
	}
	ids, err := set.Page(offset, limit)
	if err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, 0, len(ids))
	for _, id := range ids {
		tx, err := l.Transaction(id)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func (l *Ledger) Count(index Index) (int, error) {
	set, ok := l.indexes[index]
	if !ok {
		return 0, errors.Errorf("unknown transaction index %q", index)
	}
	return set.Len()
}
