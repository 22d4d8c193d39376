package safe

import (
	"context"
	"math/big"

	"github.com/go-faster/errors"
	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/params"
)

// Methods the safe accepts from itself.
const (
	MethodAddWalletOwner          = "add_wallet_owner"
	MethodRemoveWalletOwner       = "remove_wallet_owner"
	MethodReplaceWalletOwner      = "replace_wallet_owner"
	MethodSetWalletOwnersRequired = "set_wallet_owners_required"
	MethodSetSafeName             = "set_safe_name"
)

// IsContract treats the safe itself as a contract so owners can submit calls
// to its own methods.
func (st *state) IsContract(ctx context.Context, address tongo.AccountID) (bool, error) {
	if address == st.safe.address {
		return true, nil
	}
	return st.safe.host.IsContract(ctx, address)
}

func (st *state) Transfer(ctx context.Context, destination tongo.AccountID, amount *big.Int) error {
	if destination == st.safe.address {
		return nil
	}
	return st.safe.host.Transfer(ctx, destination, amount)
}

func (st *state) Invoke(ctx context.Context, destination tongo.AccountID, method string, args []core.Param, amount *big.Int) error {
	if destination != st.safe.address {
		return st.safe.host.Invoke(ctx, destination, method, args, amount)
	}
	self := &state{
		safe:     st.safe,
		call:     Call{Sender: st.safe.address, TxHash: st.call.TxHash},
		owners:   st.owners,
		ledger:   st.ledger,
		balances: st.balances,
		name:     st.name,
	}
	return self.dispatch(method, params.NewArgs(args))
}

// dispatch runs one of the safe's own methods. Every method validates before
// it writes, so a failed call leaves no trace in the enclosing transaction.
func (st *state) dispatch(method string, args params.Args) error {
	switch method {
	case MethodAddWalletOwner:
		address, err := args.Address("address")
		if err != nil {
			return err
		}
		name, err := args.Str("name")
		if err != nil {
			return err
		}
		_, err = st.addWalletOwner(address, name)
		return err
	case MethodRemoveWalletOwner:
		id, err := args.Uint64("wallet_owner_uid")
		if err != nil {
			return err
		}
		return st.removeWalletOwner(id)
	case MethodReplaceWalletOwner:
		oldID, err := args.Uint64("old_wallet_owner_uid")
		if err != nil {
			return err
		}
		address, err := args.Address("new_address")
		if err != nil {
			return err
		}
		name, err := args.Str("new_name")
		if err != nil {
			return err
		}
		_, err = st.replaceWalletOwner(oldID, address, name)
		return err
	case MethodSetWalletOwnersRequired:
		required, err := args.Uint64("owners_required")
		if err != nil {
			return err
		}
		return st.setWalletOwnersRequired(required)
	case MethodSetSafeName:
		name, err := args.Str("safe_name")
		if err != nil {
			return err
		}
		return st.setSafeName(name)
	}
	return errors.Wrap(core.ErrUnknownMethod, method)
}
