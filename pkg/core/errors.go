package core

import (
	"errors"
	"fmt"

	"github.com/tonkeeper/tongo"
)

var (
	ErrInvalidQuorum        = errors.New("invalid wallet requirements")
	ErrNotAnOwner           = errors.New("sender is not a wallet owner")
	ErrAddressAlreadyExists = errors.New("wallet owner address already exists")
	ErrOwnerNotFound        = errors.New("wallet owner not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrInvalidState         = errors.New("invalid transaction state")
	ErrNotConfirmed         = errors.New("wallet owner has not participated in the transaction")
	ErrMalformedParams      = errors.New("malformed transaction params")
	ErrUnsupportedType      = errors.New("unsupported param type")
	ErrInvalidTarget        = errors.New("cannot set a method name or params to a non-contract destination")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrOnlyWallet           = errors.New("sender is not the safe itself")
	ErrAlreadyInstalled     = errors.New("safe already installed")
	ErrNotInstalled         = errors.New("safe is not installed")
	ErrUnknownMethod        = errors.New("unknown safe method")
	ErrTokenNotTracked      = errors.New("token balance is not tracked")
	ErrBalanceNotFound      = errors.New("balance history entry not found")
)

// NotAnOwnerError carries the identity rejected by the authorization guard.
type NotAnOwnerError struct {
	Address tongo.AccountID
}

func (e NotAnOwnerError) Error() string {
	return fmt.Sprintf("%v: %v", ErrNotAnOwner, e.Address.ToRaw())
}

func (e NotAnOwnerError) Unwrap() error {
	return ErrNotAnOwner
}

// InvalidQuorumError reports the owner count and quorum that failed the check.
type InvalidQuorumError struct {
	Count    int
	Required int
}

func (e InvalidQuorumError) Error() string {
	return fmt.Sprintf("%v: %d owners, %d required", ErrInvalidQuorum, e.Count, e.Required)
}

func (e InvalidQuorumError) Unwrap() error {
	return ErrInvalidQuorum
}
