package safe

import (
	"context"
	"math"

	"github.com/go-faster/errors"
	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/core"
)

// Install sets up the owners, the quorum and the name of a new safe and
// starts tracking its native balance.
func (s *Safe) Install(ctx context.Context, call Call, owners []core.OwnerDescription, required int, name string) error {
	return s.update(ctx, "install", call, func(st *state) error {
		if err := st.owners.Install(owners, required); err != nil {
			return err
		}
		if err := st.name.SetText(name); err != nil {
			return err
		}
		return st.balances.AddTracker(ctx, core.NativeToken, call.TxHash)
	})
}

// AddWalletOwner only accepts calls from the safe itself. Owners reach it by
// submitting a transaction to the safe's own address.
func (s *Safe) AddWalletOwner(ctx context.Context, call Call, address tongo.AccountID, name string) (uint64, error) {
	var id uint64
	err := s.update(ctx, "add_wallet_owner", call, func(st *state) error {
		if err := st.requireWallet(); err != nil {
			return err
		}
		var err error
		id, err = st.addWalletOwner(address, name)
		return err
	})
	return id, err
}

func (s *Safe) RemoveWalletOwner(ctx context.Context, call Call, id uint64) error {
	return s.update(ctx, "remove_wallet_owner", call, func(st *state) error {
		if err := st.requireWallet(); err != nil {
			return err
		}
		return st.removeWalletOwner(id)
	})
}

func (s *Safe) ReplaceWalletOwner(ctx context.Context, call Call, oldID uint64, address tongo.AccountID, name string) (uint64, error) {
	var id uint64
	err := s.update(ctx, "replace_wallet_owner", call, func(st *state) error {
		if err := st.requireWallet(); err != nil {
			return err
		}
		var err error
		id, err = st.replaceWalletOwner(oldID, address, name)
		return err
	})
	return id, err
}

func (s *Safe) SetWalletOwnersRequired(ctx context.Context, call Call, required uint64) error {
	return s.update(ctx, "set_wallet_owners_required", call, func(st *state) error {
		if err := st.requireWallet(); err != nil {
			return err
		}
		return st.setWalletOwnersRequired(required)
	})
}

func (s *Safe) SetSafeName(ctx context.Context, call Call, name string) error {
	return s.update(ctx, "set_safe_name", call, func(st *state) error {
		if err := st.requireWallet(); err != nil {
			return err
		}
		return st.setSafeName(name)
	})
}

func (st *state) addWalletOwner(address tongo.AccountID, name string) (uint64, error) {
	if err := st.requireInstalled(); err != nil {
		return 0, err
	}
	return st.owners.AddOwner(address, name)
}

func (st *state) removeWalletOwner(id uint64) error {
	if err := st.requireInstalled(); err != nil {
		return err
	}
	return st.owners.RemoveOwner(id)
}

func (st *state) replaceWalletOwner(oldID uint64, address tongo.AccountID, name string) (uint64, error) {
	if err := st.requireInstalled(); err != nil {
		return 0, err
	}
	return st.owners.ReplaceOwner(oldID, address, name)
}

func (st *state) setWalletOwnersRequired(required uint64) error {
	if err := st.requireInstalled(); err != nil {
		return err
	}
	if required > math.MaxInt32 {
		return errors.Wrapf(core.ErrInvalidQuorum, "%d owners required", required)
	}
	return st.owners.SetRequired(int(required))
}

func (st *state) setSafeName(name string) error {
	if err := st.requireInstalled(); err != nil {
		return err
	}
	return st.name.SetText(name)
}

func (s *Safe) IsWalletOwner(ctx context.Context, address tongo.AccountID) (ok bool, err error) {
	err = s.view(ctx, "is_wallet_owner", func(st *state) error {
		ok, err = st.owners.IsOwner(address)
		return err
	})
	return ok, err
}

// WalletOwner returns any owner ever registered, including removed ones.
func (s *Safe) WalletOwner(ctx context.Context, id uint64) (owner core.Owner, err error) {
	err = s.view(ctx, "get_wallet_owner", func(st *state) error {
		owner, err = st.owners.Owner(id)
		return err
	})
	return owner, err
}

func (s *Safe) WalletOwnerID(ctx context.Context, address tongo.AccountID) (id uint64, err error) {
	err = s.view(ctx, "get_wallet_owner_uid", func(st *state) error {
		var ok bool
		id, ok, err = st.owners.OwnerID(address)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrap(core.ErrOwnerNotFound, address.ToRaw())
		}
		return nil
	})
	return id, err
}

func (s *Safe) WalletOwners(ctx context.Context, offset int) (list []core.Owner, err error) {
	err = s.view(ctx, "get_wallet_owners", func(st *state) error {
		list, err = st.owners.Owners(offset, s.pageSize)
		return err
	})
	return list, err
}

func (s *Safe) WalletOwnersCount(ctx context.Context) (count int, err error) {
	err = s.view(ctx, "get_wallet_owners_count", func(st *state) error {
		count, err = st.owners.Count()
		return err
	})
	return count, err
}

func (s *Safe) WalletOwnersRequired(ctx context.Context) (required int, err error) {
	err = s.view(ctx, "get_wallet_owners_required", func(st *state) error {
		required, err = st.owners.Required()
		return err
	})
	return required, err
}

func (s *Safe) SafeName(ctx context.Context) (name string, err error) {
	err = s.view(ctx, "get_safe_name", func(st *state) error {
		name, _, err = st.name.Text()
		return err
	})
	return name, err
}
