package core

import (
	"math/big"
	"time"

	"github.com/tonkeeper/tongo"
)

// MaxWalletOwners is the upper bound of the owner set.
const MaxWalletOwners = 100

// SystemTransactionID marks balance history entries that are not caused by a transaction.
const SystemTransactionID uint64 = 0

// NativeToken identifies the native currency in balance trackers and incoming transactions.
var NativeToken = tongo.AccountID{}

type Owner struct {
	ID      uint64
	Address tongo.AccountID
	Name    string
}

// OwnerDescription is an owner before it gets an id.
type OwnerDescription struct {
	Address tongo.AccountID
	Name    string
}

type TransactionType string

const (
	OutgoingTransaction TransactionType = "outgoing"
	IncomingTransaction TransactionType = "incoming"
)

type TransactionState string

const (
	StateWaiting   TransactionState = "waiting"
	StateExecuted  TransactionState = "executed"
	StateCancelled TransactionState = "cancelled"
	StateFailed    TransactionState = "failed"
	StateRejected  TransactionState = "rejected"
)

// Terminal reports whether no further transitions are possible from s.
func (s TransactionState) Terminal() bool {
	return s != StateWaiting
}

type Transaction struct {
	ID        uint64
	Type      TransactionType
	State     TransactionState
	TxHash    tongo.Bits256
	CreatedAt time.Time
	Amount    *big.Int

	// Outgoing only.
	Destination    tongo.AccountID
	Method         string
	Params         string
	Description    string
	Confirmations  []uint64
	Rejections     []uint64
	ExecutedTxHash *tongo.Bits256
	ExecutedAt     *time.Time

	// Incoming only.
	Token  tongo.AccountID
	Source tongo.AccountID
}

// SubmitRequest describes an outgoing action proposed by an owner.
type SubmitRequest struct {
	Destination tongo.AccountID
	Method      string
	// Params is a JSON list of {"name", "type", "value"} objects.
	Params      string
	Amount      *big.Int
	Description string
}

type BalanceHistoryEntry struct {
	ID            uint64
	Token         tongo.AccountID
	Balance       *big.Int
	TransactionID uint64
	TxHash        tongo.Bits256
	Timestamp     time.Time
}
