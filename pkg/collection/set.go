package collection

import (
	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

// Set is an unordered persistent set of ids.
type Set struct {
	txn     kvstore.Txn
	lenKey  []byte
	members []byte
}

func NewSet(txn kvstore.Txn, name string) *Set {
	return &Set{
		txn:     txn,
		lenKey:  key(name, "len"),
		members: key(name, "member", ""),
	}
}

// Add reports whether id was not a member yet.
func (s *Set) Add(id uint64) (bool, error) {
	ok, err := s.Contains(id)
	if err != nil || ok {
		return false, err
	}
	size, err := getUint64(s.txn, s.lenKey)
	if err != nil {
		return false, err
	}
	if err := s.txn.Set(idKey(s.members, id), []byte{1}); err != nil {
		return false, err
	}
	return true, setUint64(s.txn, s.lenKey, size+1)
}

// Remove reports whether id was a member.
func (s *Set) Remove(id uint64) (bool, error) {
	ok, err := s.Contains(id)
	if err != nil || !ok {
		return false, err
	}
	size, err := getUint64(s.txn, s.lenKey)
	if err != nil {
		return false, err
	}
	if err := s.txn.Delete(idKey(s.members, id)); err != nil {
		return false, err
	}
	return true, setUint64(s.txn, s.lenKey, size-1)
}

func (s *Set) Contains(id uint64) (bool, error) {
	return kvstore.Exists(s.txn, idKey(s.members, id))
}

func (s *Set) Len() (int, error) {
	size, err := getUint64(s.txn, s.lenKey)
	return int(size), err
}

// Members returns all ids. No order is promised to callers.
func (s *Set) Members() ([]uint64, error) {
	var ids []uint64
	err := s.txn.Iterate(s.members, func(k, _ []byte) error {
		id, err := decodeUint64(k[len(s.members):])
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	})
	return ids, err
}
