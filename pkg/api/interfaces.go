package api

import (
	"context"
	"math/big"

	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/ledger"
	"github.com/arnac-io/safekeeper/pkg/safe"
)

// wallet is the subset of safe.Safe the handlers need.
type wallet interface {
	Address() tongo.AccountID
	SafeName(ctx context.Context) (string, error)

	IsWalletOwner(ctx context.Context, address tongo.AccountID) (bool, error)
	WalletOwner(ctx context.Context, id uint64) (core.Owner, error)
	WalletOwnerID(ctx context.Context, address tongo.AccountID) (uint64, error)
	WalletOwners(ctx context.Context, offset int) ([]core.Owner, error)
	WalletOwnersCount(ctx context.Context) (int, error)
	WalletOwnersRequired(ctx context.Context) (int, error)

	SubmitTransaction(ctx context.Context, call safe.Call, req core.SubmitRequest) (uint64, error)
	ConfirmTransaction(ctx context.Context, call safe.Call, id uint64) error
	RejectTransaction(ctx context.Context, call safe.Call, id uint64) error
	RevokeTransaction(ctx context.Context, call safe.Call, id uint64) error
	ReceiveNative(ctx context.Context, call safe.Call, amount *big.Int) (uint64, error)
	ReceiveToken(ctx context.Context, call safe.Call, from tongo.AccountID, amount *big.Int) (uint64, error)
	Transaction(ctx context.Context, id uint64) (core.Transaction, error)
	Transactions(ctx context.Context, index ledger.Index, offset int) ([]core.Transaction, error)
	TransactionsCount(ctx context.Context, index ledger.Index) (int, error)

	AddBalanceTracker(ctx context.Context, call safe.Call, token tongo.AccountID) error
	RemoveBalanceTracker(ctx context.Context, call safe.Call, token tongo.AccountID) error
	BalanceTrackers(ctx context.Context, offset int) ([]tongo.AccountID, error)
	BalanceHistory(ctx context.Context, token tongo.AccountID, offset int) ([]core.BalanceHistoryEntry, error)

	Events(ctx context.Context, offset int) ([]events.LogEntry, error)
}

// depositor credits accounts of the host before an incoming transfer is
// recorded and takes the credit back when recording fails. Only hosts
// simulating the chain implement it.
type depositor interface {
	Deposit(token, holder tongo.AccountID, amount *big.Int)
	Withdraw(token, holder tongo.AccountID, amount *big.Int) error
}
