package events

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/collection"
	"github.com/arnac-io/safekeeper/pkg/kvstore"
)

const (
	logIDNamespace = "event"
	logRecordsName = "event_log"
	logIndexName   = "event_log_index"
)

var ErrLogEntryNotFound = errors.New("event log entry not found")

// LogEntry is the persisted trace of a call that raised events.
type LogEntry struct {
	ID        uint64
	TxHash    tongo.Bits256
	Timestamp time.Time
}

type logRecord struct {
	ID        uint64    `json:"id"`
	TxHash    string    `json:"tx_hash"`
	Timestamp time.Time `json:"timestamp"`
}

// Log keeps the hashes of calls that raised events, most recent first.
type Log struct {
	txn   kvstore.Txn
	ids   *collection.IDFactory
	index *collection.LinkedSet
}

func NewLog(txn kvstore.Txn) *Log {
	return &Log{
		txn:   txn,
		ids:   collection.NewIDFactory(txn, logIDNamespace),
		index: collection.NewLinkedSet(txn, logIndexName),
	}
}

// Record appends txHash unless it is the latest entry already, since one
// call may raise several events. A zero hash is not recorded.
func (l *Log) Record(txHash tongo.Bits256, at time.Time) error {
	if txHash == (tongo.Bits256{}) {
		return nil
	}
	head, ok, err := l.index.Head()
	if err != nil {
		return err
	}
	if ok {
		last, err := l.Entry(head)
		if err != nil {
			return err
		}
		if last.TxHash == txHash {
			return nil
		}
	}
	id, err := l.ids.Next()
	if err != nil {
		return err
	}
	rec := logRecord{ID: id, TxHash: txHash.Hex(), Timestamp: at}
	if err := kvstore.SetRecord(l.txn, collection.RecordKey(logRecordsName, id), rec); err != nil {
		return err
	}
	return l.index.Append(id)
}

func (l *Log) Entry(id uint64) (LogEntry, error) {
	var rec logRecord
	err := kvstore.GetRecord(l.txn, collection.RecordKey(logRecordsName, id), &rec)
	if errors.Is(err, kvstore.ErrKeyNotFound) {
		return LogEntry{}, errors.Wrapf(ErrLogEntryNotFound, "id %d", id)
	}
	if err != nil {
		return LogEntry{}, err
	}
	txHash, err := tongo.ParseHash(rec.TxHash)
	if err != nil {
		return LogEntry{}, err
	}
	return LogEntry{ID: rec.ID, TxHash: txHash, Timestamp: rec.Timestamp}, nil
}

// Entries lists the log most recent first.
func (l *Log) Entries(offset, limit int) ([]LogEntry, error) {
	ids, err := l.index.Page(offset, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]LogEntry, 0, len(ids))
	for _, id := range ids {
		e, err := l.Entry(id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (l *Log) Len() (int, error) {
	return l.index.Len()
}
