package collection

import (
	"encoding/binary"

	"github.com/go-faster/errors"

	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

// LinkedSet is a persistent insertion-ordered set of ids. The most recently
// appended id is the head and pages are read from it.
type LinkedSet struct {
	txn     kvstore.Txn
	name    string
	headKey []byte
	lenKey  []byte
	nodes   []byte
}

type node struct {
	prev uint64
	next uint64
}

func NewLinkedSet(txn kvstore.Txn, name string) *LinkedSet {
	return &LinkedSet{
		txn:     txn,
		name:    name,
		headKey: key(name, "head"),
		lenKey:  key(name, "len"),
		nodes:   key(name, "node", ""),
	}
}

func (l *LinkedSet) getNode(id uint64) (node, bool, error) {
	raw, err := l.txn.Get(idKey(l.nodes, id))
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return node{}, false, nil
	}
	if err != nil {
		return node{}, false, err
	}
	if len(raw) != 16 {
		return node{}, false, errors.Errorf("%v: corrupted node %d", l.name, id)
	}
	return node{prev: binary.BigEndian.Uint64(raw[:8]), next: binary.BigEndian.Uint64(raw[8:])}, true, nil
}

func (l *LinkedSet) setNode(id uint64, n node) error {
	raw := binary.BigEndian.AppendUint64(nil, n.prev)
	raw = binary.BigEndian.AppendUint64(raw, n.next)
	return l.txn.Set(idKey(l.nodes, id), raw)
}

// Append inserts id as the new head.
func (l *LinkedSet) Append(id uint64) error {
	if id == 0 {
		return errors.Errorf("%v: id 0 is reserved", l.name)
	}
	if _, ok, err := l.getNode(id); err != nil {
		return err
	} else if ok {
		return errors.Wrapf(ErrDuplicateID, "%v: %d", l.name, id)
	}
	head, err := getUint64(l.txn, l.headKey)
	if err != nil {
		return err
	}
	size, err := getUint64(l.txn, l.lenKey)
	if err != nil {
		return err
	}
	if head != 0 {
		headNode, _, err := l.getNode(head)
		if err != nil {
			return err
		}
		headNode.prev = id
		if err := l.setNode(head, headNode); err != nil {
			return err
		}
	}
	if err := l.setNode(id, node{next: head}); err != nil {
		return err
	}
	if err := setUint64(l.txn, l.headKey, id); err != nil {
		return err
	}
	return setUint64(l.txn, l.lenKey, size+1)
}

// Remove unlinks id and joins its neighbours.
func (l *LinkedSet) Remove(id uint64) error {
	n, ok, err := l.getNode(id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(ErrNotFound, "%v: %d", l.name, id)
	}
	size, err := getUint64(l.txn, l.lenKey)
	if err != nil {
		return err
	}
	if n.prev != 0 {
		prev, _, err := l.getNode(n.prev)
		if err != nil {
			return err
		}
		prev.next = n.next
		if err := l.setNode(n.prev, prev); err != nil {
			return err
		}
	} else if err := setUint64(l.txn, l.headKey, n.next); err != nil {
		return err
	}
	if n.next != 0 {
		next, _, err := l.getNode(n.next)
		if err != nil {
			return err
		}
		next.prev = n.prev
		if err := l.setNode(n.next, next); err != nil {
			return err
		}
	}
	if err := l.txn.Delete(idKey(l.nodes, id)); err != nil {
		return err
	}
	return setUint64(l.txn, l.lenKey, size-1)
}

func (l *LinkedSet) Contains(id uint64) (bool, error) {
	_, ok, err := l.getNode(id)
	return ok, err
}

func (l *LinkedSet) Len() (int, error) {
	size, err := getUint64(l.txn, l.lenKey)
	return int(size), err
}

// Head returns the most recently appended id.
func (l *LinkedSet) Head() (uint64, bool, error) {
	head, err := getUint64(l.txn, l.headKey)
	if err != nil {
		return 0, false, err
	}
	return head, head != 0, nil
}

// Page skips offset ids from the head and returns up to size ids.
// Walking is linear in offset+size.
func (l *LinkedSet) Page(offset, size int) ([]uint64, error) {
	if offset < 0 || size <= 0 {
		return nil, nil
	}
	cur, err := getUint64(l.txn, l.headKey)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for i := 0; cur != 0 && len(ids) < size; i++ {
		if i >= offset {
			ids = append(ids, cur)
		}
		n, ok, err := l.getNode(cur)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Errorf("%v: broken link at %d", l.name, cur)
		}
		cur = n.next
	}
	return ids, nil
}
