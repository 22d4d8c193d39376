package safe

import (
	"context"
	"math/big"

	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/ledger"
)

// ReceiveNative records an incoming transfer of the native currency from the
// sender of the call.
func (s *Safe) ReceiveNative(ctx context.Context, call Call, amount *big.Int) (uint64, error) {
	var id uint64
	err := s.update(ctx, "receive_native", call, func(st *state) error {
		if err := st.requireInstalled(); err != nil {
			return err
		}
		var err error
		id, err = st.ledger.RecordIncoming(ctx, call.TxHash, core.NativeToken, call.Sender, amount)
		return err
	})
	return id, err
}

// ReceiveToken records an incoming token transfer. The sender of the call is
// the token contract, from is the account the tokens came from.
func (s *Safe) ReceiveToken(ctx context.Context, call Call, from tongo.AccountID, amount *big.Int) (uint64, error) {
	var id uint64
	err := s.update(ctx, "receive_token", call, func(st *state) error {
		if err := st.requireInstalled(); err != nil {
			return err
		}
		var err error
		id, err = st.ledger.RecordIncoming(ctx, call.TxHash, call.Sender, from, amount)
		return err
	})
	return id, err
}

func (s *Safe) SubmitTransaction(ctx context.Context, call Call, req core.SubmitRequest) (uint64, error) {
	var id uint64
	err := s.update(ctx, "submit_transaction", call, func(st *state) error {
		ownerID, err := st.requireOwner()
		if err != nil {
			return err
		}
		id, err = st.ledger.Submit(ctx, st.caller(ownerID), req)
		return err
	})
	return id, err
}

func (s *Safe) ConfirmTransaction(ctx context.Context, call Call, id uint64) error {
	return s.update(ctx, "confirm_transaction", call, func(st *state) error {
		ownerID, err := st.requireOwner()
		if err != nil {
			return err
		}
		return st.ledger.Confirm(ctx, st.caller(ownerID), id)
	})
}

func (s *Safe) RejectTransaction(ctx context.Context, call Call, id uint64) error {
	return s.update(ctx, "reject_transaction", call, func(st *state) error {
		ownerID, err := st.requireOwner()
		if err != nil {
			return err
		}
		return st.ledger.Reject(ctx, st.caller(ownerID), id)
	})
}

func (s *Safe) RevokeTransaction(ctx context.Context, call Call, id uint64) error {
	return s.update(ctx, "revoke_transaction", call, func(st *state) error {
		ownerID, err := st.requireOwner()
		if err != nil {
			return err
		}
		return st.ledger.Revoke(ctx, st.caller(ownerID), id)
	})
}

func (s *Safe) Transaction(ctx context.Context, id uint64) (tx core.Transaction, err error) {
	err = s.view(ctx, "get_transaction", func(st *state) error {
		tx, err = st.ledger.Transaction(id)
		return err
	})
	return tx, err
}

// Transactions lists a page of the given index, most recent first.
func (s *Safe) Transactions(ctx context.Context, index ledger.Index, offset int) (txs []core.Transaction, err error) {
	err = s.view(ctx, "get_"+string(index)+"_transactions", func(st *state) error {
		txs, err = st.ledger.List(index, offset, s.pageSize)
		return err
	})
	return txs, err
}

func (s *Safe) TransactionsCount(ctx context.Context, index ledger.Index) (count int, err error) {
	err = s.view(ctx, "get_"+string(index)+"_transactions_count", func(st *state) error {
		count, err = st.ledger.Count(index)
		return err
	})
	return count, err
}

func (s *Safe) WaitingTransactions(ctx context.Context, offset int) ([]core.Transaction, error) {
	return s.Transactions(ctx, ledger.Waiting, offset)
}

func (s *Safe) ExecutedTransactions(ctx context.Context, offset int) ([]core.Transaction, error) {
	return s.Transactions(ctx, ledger.Executed, offset)
}

func (s *Safe) RejectedTransactions(ctx context.Context, offset int) ([]core.Transaction, error) {
	return s.Transactions(ctx, ledger.Rejected, offset)
}

func (s *Safe) AllTransactions(ctx context.Context, offset int) ([]core.Transaction, error) {
	return s.Transactions(ctx, ledger.All, offset)
}

func (s *Safe) WaitingTransactionsCount(ctx context.Context) (int, error) {
	return s.TransactionsCount(ctx, ledger.Waiting)
}

func (s *Safe) ExecutedTransactionsCount(ctx context.Context) (int, error) {
	return s.TransactionsCount(ctx, ledger.Executed)
}

func (s *Safe) RejectedTransactionsCount(ctx context.Context) (int, error) {
	return s.TransactionsCount(ctx, ledger.Rejected)
}

func (s *Safe) AllTransactionsCount(ctx context.Context) (int, error) {
	return s.TransactionsCount(ctx, ledger.All)
}
