package events

import (
	"github.com/tonkeeper/tongo"
)

// Name specifies the kind of state change a safe call produced.
type Name string

const (
	WalletOwnerAddition         Name = "WalletOwnerAddition"
	WalletOwnerRemoval          Name = "WalletOwnerRemoval"
	TransactionCreated          Name = "TransactionCreated"
	TransactionConfirmed        Name = "TransactionConfirmed"
	TransactionRevoked          Name = "TransactionRevoked"
	TransactionRejected         Name = "TransactionRejected"
	TransactionCancelled        Name = "TransactionCancelled"
	TransactionExecutionSuccess Name = "TransactionExecutionSuccess"
	TransactionExecutionFailure Name = "TransactionExecutionFailure"
	TransactionRejectionSuccess Name = "TransactionRejectionSuccess"
	BalanceHistoryCreated       Name = "BalanceHistoryCreated"
)

func (n Name) String() string {
	return string(n)
}

// Event is a notification about a committed change.
// Only the fields relevant to Name are set.
type Event struct {
	Name             Name
	OwnerID          uint64
	TransactionID    uint64
	BalanceHistoryID uint64
	Token            *tongo.AccountID
	// Error is the captured execution failure of TransactionExecutionFailure.
	Error string
}

// Emitter collects events raised while a call is in progress.
type Emitter interface {
	Emit(e Event)
}

// Buffer holds events until the call that raised them commits.
type Buffer struct {
	events []Event
}

func (b *Buffer) Emit(e Event) {
	b.events = append(b.events, e)
}

func (b *Buffer) Events() []Event {
	return b.events
}

// Discard drops events of an aborted call.
type Discard struct{}

func (Discard) Emit(Event) {}
