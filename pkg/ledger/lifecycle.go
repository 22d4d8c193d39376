package ledger

import (
	"context"
	"math/big"

	"github.com/go-faster/errors"
	"github.com/tonkeeper/tongo"
	"go.uber.org/zap"

	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/params"
)

// Submit creates a waiting outgoing transaction and confirms it on behalf of
// the submitter.
func (l *Ledger) Submit(ctx context.Context, caller Caller, req core.SubmitRequest) (uint64, error) {
	amount := req.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	if amount.Sign() < 0 {
		return 0, errors.Wrap(core.ErrInvalidAmount, amount.String())
	}
	if _, err := params.Decode(req.Params); err != nil {
		return 0, err
	}
	if req.Method != "" || req.Params != "" {
		isContract, err := l.deps.Resolver.IsContract(ctx, req.Destination)
		if err != nil {
			return 0, errors.Wrap(err, "resolve destination")
		}
		if !isContract {
			return 0, errors.Wrap(core.ErrInvalidTarget, req.Destination.ToRaw())
		}
	}
	id, err := l.ids.Next()
	if err != nil {
		return 0, err
	}
	tx := core.Transaction{
		ID:          id,
		Type:        core.OutgoingTransaction,
		State:       core.StateWaiting,
		TxHash:      caller.TxHash,
		CreatedAt:   l.deps.Clock.Now(),
		Amount:      new(big.Int).Set(amount),
		Destination: req.Destination,
		Method:      req.Method,
		Params:      req.Params,
		Description: req.Description,
	}
	if err := l.save(tx); err != nil {
		return 0, err
	}
	if err := l.indexes[Waiting].Append(id); err != nil {
		return 0, err
	}
	if err := l.indexes[All].Append(id); err != nil {
		return 0, err
	}
	l.emitter.Emit(events.Event{Name: events.TransactionCreated, TransactionID: id})
	if err := l.Confirm(ctx, caller, id); err != nil {
		return 0, err
	}
	return id, nil
}

// waiting loads an outgoing transaction that still accepts votes.
func (l *Ledger) waiting(id uint64) (core.Transaction, error) {
	tx, err := l.Transaction(id)
	if err != nil {
		return core.Transaction{}, err
	}
	if tx.Type != core.OutgoingTransaction || tx.State != core.StateWaiting {
		return core.Transaction{}, errors.Wrapf(core.ErrInvalidState, "transaction %d is %v %v", id, tx.Type, tx.State)
	}
	return tx, nil
}

// Confirm records the caller's approval. A repeated confirmation changes
// nothing, but the quorum is evaluated on every call.
func (l *Ledger) Confirm(ctx context.Context, caller Caller, id uint64) error {
	tx, err := l.waiting(id)
	if err != nil {
		return err
	}
	if _, err := l.rejections(id).Remove(caller.OwnerID); err != nil {
		return err
	}
	confirmations := l.confirmations(id)
	added, err := confirmations.Add(caller.OwnerID)
	if err != nil {
		return err
	}
	if added {
		l.emitter.Emit(events.Event{Name: events.TransactionConfirmed, TransactionID: id, OwnerID: caller.OwnerID})
	}
	reached, err := l.quorumReached(confirmations.Len)
	if err != nil || !reached {
		return err
	}
	return l.execute(ctx, caller, tx)
}

// Reject records the caller's disapproval. At quorum the transaction is
// rejected without being executed.
func (l *Ledger) Reject(ctx context.Context, caller Caller, id uint64) error {
	tx, err := l.waiting(id)
	if err != nil {
		return err
	}
	if _, err := l.confirmations(id).Remove(caller.OwnerID); err != nil {
		return err
	}
	rejections := l.rejections(id)
	added, err := rejections.Add(caller.OwnerID)
	if err != nil {
		return err
	}
	if added {
		l.emitter.Emit(events.Event{Name: events.TransactionRejected, TransactionID: id, OwnerID: caller.OwnerID})
	}
	reached, err := l.quorumReached(rejections.Len)
	if err != nil || !reached {
		return err
	}
	if err := l.move(id, Waiting, Rejected); err != nil {
		return err
	}
	tx.State = core.StateRejected
	if err := l.save(tx); err != nil {
		return err
	}
	l.emitter.Emit(events.Event{Name: events.TransactionRejectionSuccess, TransactionID: id})
	return l.settled(ctx, id)
}

// Revoke withdraws the caller's vote. A transaction nobody votes for
// anymore is cancelled and leaves the history.
func (l *Ledger) Revoke(ctx context.Context, caller Caller, id uint64) error {
	tx, err := l.waiting(id)
	if err != nil {
		return err
	}
	confirmations, rejections := l.confirmations(id), l.rejections(id)
	removed, err := confirmations.Remove(caller.OwnerID)
	if err != nil {
		return err
	}
	if !removed {
		if removed, err = rejections.Remove(caller.OwnerID); err != nil {
			return err
		}
	}
	if !removed {
		return errors.Wrapf(core.ErrNotConfirmed, "owner %d, transaction %d", caller.OwnerID, id)
	}
	l.emitter.Emit(events.Event{Name: events.TransactionRevoked, TransactionID: id, OwnerID: caller.OwnerID})

	confirmed, err := confirmations.Len()
	if err != nil {
		return err
	}
	rejected, err := rejections.Len()
	if err != nil {
		return err
	}
	if confirmed > 0 || rejected > 0 {
		return nil
	}
	tx.State = core.StateCancelled
	if err := l.save(tx); err != nil {
		return err
	}
	if err := l.indexes[Waiting].Remove(id); err != nil {
		return err
	}
	if err := l.indexes[All].Remove(id); err != nil {
		return err
	}
	l.emitter.Emit(events.Event{Name: events.TransactionCancelled, TransactionID: id})
	return l.settled(ctx, id)
}

// RecordIncoming stores a received transfer. Incoming transactions need no
// approval and are created executed.
func (l *Ledger) RecordIncoming(ctx context.Context, txHash tongo.Bits256, token, source tongo.AccountID, amount *big.Int) (uint64, error) {
	if amount == nil || amount.Sign() < 0 {
		return 0, errors.Wrapf(core.ErrInvalidAmount, "%v", amount)
	}
	id, err := l.ids.Next()
	if err != nil {
		return 0, err
	}
	tx := core.Transaction{
		ID:        id,
		Type:      core.IncomingTransaction,
		State:     core.StateExecuted,
		TxHash:    txHash,
		CreatedAt: l.deps.Clock.Now(),
		Amount:    new(big.Int).Set(amount),
		Token:     token,
		Source:    source,
	}
	if err := l.save(tx); err != nil {
		return 0, err
	}
	if err := l.indexes[All].Append(id); err != nil {
		return 0, err
	}
	l.emitter.Emit(events.Event{Name: events.TransactionCreated, TransactionID: id})
	if err := l.settled(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (l *Ledger) quorumReached(votes func() (int, error)) (bool, error) {
	n, err := votes()
	if err != nil {
		return false, err
	}
	required, err := l.deps.Quorum.Required()
	if err != nil {
		return false, err
	}
	return n >= required, nil
}

func (l *Ledger) move(id uint64, from, to Index) error {
	if err := l.indexes[from].Remove(id); err != nil {
		return err
	}
	return l.indexes[to].Append(id)
}

// execute runs an approved transaction exactly once. A failing call is
// recorded in the transaction state and does not fail the caller.
// The executed transition is written before the host is called, so only the
// outcome remains to be saved afterwards. A storage fault past that point
// still discards the whole call while the host effect stays.
func (l *Ledger) execute(ctx context.Context, caller Caller, tx core.Transaction) error {
	if err := l.move(tx.ID, Waiting, Executed); err != nil {
		return err
	}
	now := l.deps.Clock.Now()
	txHash := caller.TxHash
	tx.ExecutedTxHash = &txHash
	tx.ExecutedAt = &now
	tx.State = core.StateExecuted
	if err := l.save(tx); err != nil {
		return err
	}

	timer := newExecutionTimer()
	execErr := l.call(ctx, tx)
	if execErr == nil {
		timer.observe("success")
		l.emitter.Emit(events.Event{Name: events.TransactionExecutionSuccess, TransactionID: tx.ID})
		return l.settled(ctx, tx.ID)
	}
	timer.observe("failure")
	l.deps.Logger.Warn("transaction execution failed",
		zap.Uint64("transaction", tx.ID),
		zap.String("destination", tx.Destination.ToRaw()),
		zap.String("method", tx.Method),
		zap.Error(execErr))
	tx.State = core.StateFailed
	if err := l.save(tx); err != nil {
		return err
	}
	l.emitter.Emit(events.Event{
		Name:          events.TransactionExecutionFailure,
		TransactionID: tx.ID,
		Error:         execErr.Error(),
	})
	return l.settled(ctx, tx.ID)
}

func (l *Ledger) call(ctx context.Context, tx core.Transaction) error {
	if tx.Method == "" {
		return l.deps.Executor.Transfer(ctx, tx.Destination, tx.Amount)
	}
	isContract, err := l.deps.Resolver.IsContract(ctx, tx.Destination)
	if err != nil {
		return err
	}
	if !isContract {
		return l.deps.Executor.Transfer(ctx, tx.Destination, tx.Amount)
	}
	args, err := params.Decode(tx.Params)
	if err != nil {
		return err
	}
	return l.deps.Executor.Invoke(ctx, tx.Destination, tx.Method, args, tx.Amount)
}

// settled notifies the hook with the stored transaction. Hook failures are
// logged and never undo the transition.
func (l *Ledger) settled(ctx context.Context, id uint64) error {
	if l.deps.OnSettled == nil {
		return nil
	}
	tx, err := l.Transaction(id)
	if err != nil {
		return err
	}
	if err := l.deps.OnSettled(ctx, tx); err != nil {
		l.deps.Logger.Error("settled hook failed", zap.Uint64("transaction", id), zap.Error(err))
	}
	return nil
}
