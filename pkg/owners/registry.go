// Package owners keeps the set of wallet owners and the number of them
// required to approve a transaction.
package owners

import (
	"github.com/go-faster/errors"
	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/collection"
	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/events"
	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

const (
	idNamespace   = "wallet_owner"
	recordsName   = "wallet_owner"
	ownersName    = "wallet_owners"
	addressesName = "wallet_owners_address"
	requiredName  = "wallet_owners_required"
)

type ownerRecord struct {
	ID      uint64 `json:"id"`
	Address string `json:"address"`
	Name    string `json:"name"`
}

func (r ownerRecord) toOwner() (core.Owner, error) {
	address, err := tongo.ParseAccountID(r.Address)
	if err != nil {
		return core.Owner{}, errors.Wrapf(err, "owner %d", r.ID)
	}
	return core.Owner{ID: r.ID, Address: address, Name: r.Name}, nil
}

// Registry operates on the owner set within a single storage transaction.
// Every mutation validates before it writes anything.
type Registry struct {
	txn       kvstore.Txn
	emitter   events.Emitter
	ids       *collection.IDFactory
	owners    *collection.LinkedSet
	addresses *collection.Dict
	required  *collection.Var
}

func NewRegistry(txn kvstore.Txn, emitter events.Emitter) *Registry {
	return &Registry{
		txn:       txn,
		emitter:   emitter,
		ids:       collection.NewIDFactory(txn, idNamespace),
		owners:    collection.NewLinkedSet(txn, ownersName),
		addresses: collection.NewDict(txn, addressesName),
		required:  collection.NewVar(txn, requiredName),
	}
}

// CheckRequirements validates an owner count against the number of
// approvals required.
func CheckRequirements(count, required int) error {
	if count > core.MaxWalletOwners || required > count || required <= 0 || count == 0 {
		return core.InvalidQuorumError{Count: count, Required: required}
	}
	return nil
}

func (r *Registry) Installed() (bool, error) {
	required, err := r.required.Uint64()
	return required > 0, err
}

func (r *Registry) Install(owners []core.OwnerDescription, required int) error {
	installed, err := r.Installed()
	if err != nil {
		return err
	}
	if installed {
		return core.ErrAlreadyInstalled
	}
	if err := CheckRequirements(len(owners), required); err != nil {
		return err
	}
	seen := make(map[tongo.AccountID]struct{}, len(owners))
	for _, o := range owners {
		if _, ok := seen[o.Address]; ok {
			return errors.Wrap(core.ErrAddressAlreadyExists, o.Address.ToRaw())
		}
		seen[o.Address] = struct{}{}
		if err := r.checkAddressDoesntExist(o.Address); err != nil {
			return err
		}
	}
	if err := r.required.SetUint64(uint64(required)); err != nil {
		return err
	}
	for _, o := range owners {
		if _, err := r.create(o.Address, o.Name); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) AddOwner(address tongo.AccountID, name string) (uint64, error) {
	count, required, err := r.requirements()
	if err != nil {
		return 0, err
	}
	if err := CheckRequirements(count+1, required); err != nil {
		return 0, err
	}
	if err := r.checkAddressDoesntExist(address); err != nil {
		return 0, err
	}
	return r.create(address, name)
}

func (r *Registry) RemoveOwner(id uint64) error {
	count, required, err := r.requirements()
	if err != nil {
		return err
	}
	if err := CheckRequirements(count-1, required); err != nil {
		return err
	}
	owner, err := r.liveOwner(id)
	if err != nil {
		return err
	}
	return r.unlink(owner)
}

// ReplaceOwner swaps a live owner for a new address and returns the new id.
func (r *Registry) ReplaceOwner(oldID uint64, address tongo.AccountID, name string) (uint64, error) {
	count, required, err := r.requirements()
	if err != nil {
		return 0, err
	}
	if err := CheckRequirements(count, required); err != nil {
		return 0, err
	}
	if err := r.checkAddressDoesntExist(address); err != nil {
		return 0, err
	}
	old, err := r.liveOwner(oldID)
	if err != nil {
		return 0, err
	}
	if err := r.unlink(old); err != nil {
		return 0, err
	}
	return r.create(address, name)
}

func (r *Registry) SetRequired(required int) error {
	count, err := r.Count()
	if err != nil {
		return err
	}
	if err := CheckRequirements(count, required); err != nil {
		return err
	}
	return r.required.SetUint64(uint64(required))
}

func (r *Registry) IsOwner(address tongo.AccountID) (bool, error) {
	_, ok, err := r.addresses.Get(address.ToRaw())
	return ok, err
}

// OwnerID resolves a live owner by address.
func (r *Registry) OwnerID(address tongo.AccountID) (uint64, bool, error) {
	return r.addresses.Get(address.ToRaw())
}

// Owner returns the record of any owner ever created, including removed ones.
func (r *Registry) Owner(id uint64) (core.Owner, error) {
	var rec ownerRecord
	err := kvstore.GetRecord(r.txn, collection.RecordKey(recordsName, id), &rec)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return core.Owner{}, errors.Wrapf(core.ErrOwnerNotFound, "id %d", id)
	}
	if err != nil {
		return core.Owner{}, err
	}
	return rec.toOwner()
}

// Owners lists live owners, most recently added first.
func (r *Registry) Owners(offset, limit int) ([]core.Owner, error) {
	ids, err := r.owners.Page(offset, limit)
	if err != nil {
		return nil, err
	}
	owners := make([]core.Owner, 0, len(ids))
	for _, id := range ids {
		o, err := r.Owner(id)
		if err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, nil
}

func (r *Registry) Count() (int, error) {
	return r.owners.Len()
}

func (r *Registry) Required() (int, error) {
	required, err := r.required.Uint64()
	return int(required), err
}

func (r *Registry) requirements() (count int, required int, err error) {
	if count, err = r.Count(); err != nil {
		return 0, 0, err
	}
	if required, err = r.Required(); err != nil {
		return 0, 0, err
	}
	return count, required, nil
}

func (r *Registry) checkAddressDoesntExist(address tongo.AccountID) error {
	ok, err := r.IsOwner(address)
	if err != nil {
		return err
	}
	if ok {
		return errors.Wrap(core.ErrAddressAlreadyExists, address.ToRaw())
	}
	return nil
}

func (r *Registry) liveOwner(id uint64) (core.Owner, error) {
	ok, err := r.owners.Contains(id)
	if err != nil {
		return core.Owner{}, err
	}
	if !ok {
		return core.Owner{}, errors.Wrapf(core.ErrOwnerNotFound, "id %d", id)
	}
	return r.Owner(id)
}

func (r *Registry) create(address tongo.AccountID, name string) (uint64, error) {
	id, err := r.ids.Next()
	if err != nil {
		return 0, err
	}
	rec := ownerRecord{ID: id, Address: address.ToRaw(), Name: name}
	if err := kvstore.SetRecord(r.txn, collection.RecordKey(recordsName, id), rec); err != nil {
		return 0, err
	}
	if err := r.owners.Append(id); err != nil {
		return 0, err
	}
	if err := r.addresses.Set(rec.Address, id); err != nil {
		return 0, err
	}
	r.emitter.Emit(events.Event{Name: events.WalletOwnerAddition, OwnerID: id})
	return id, nil
}

// unlink drops the owner from the indexes and keeps its record.
func (r *Registry) unlink(owner core.Owner) error {
	if err := r.owners.Remove(owner.ID); err != nil {
		return err
	}
	if err := r.addresses.Delete(owner.Address.ToRaw()); err != nil {
		return err
	}
	r.emitter.Emit(events.Event{Name: events.WalletOwnerRemoval, OwnerID: owner.ID})
	return nil
}
