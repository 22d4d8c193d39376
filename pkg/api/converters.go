package api

import (
	"time"

	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/internal/g"
	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/events"
)

type Safe struct {
	Address        string `json:"address"`
	Name           string `json:"name"`
	OwnersCount    int    `json:"owners_count"`
	OwnersRequired int    `json:"owners_required"`
}

type Owner struct {
	ID      uint64 `json:"id"`
	Address string `json:"address"`
	Name    string `json:"name"`
}

type Transaction struct {
	ID             uint64   `json:"id"`
	Type           string   `json:"type"`
	State          string   `json:"state"`
	TxHash         string   `json:"tx_hash"`
	CreatedAt      int64    `json:"created_at"`
	Amount         string   `json:"amount"`
	AmountDisplay  string   `json:"amount_display,omitempty"`
	Destination    *string  `json:"destination,omitempty"`
	Method         string   `json:"method,omitempty"`
	Params         string   `json:"params,omitempty"`
	Description    string   `json:"description,omitempty"`
	Confirmations  []uint64 `json:"confirmations,omitempty"`
	Rejections     []uint64 `json:"rejections,omitempty"`
	ExecutedTxHash *string  `json:"executed_tx_hash,omitempty"`
	ExecutedAt     *int64   `json:"executed_at,omitempty"`
	Token          *string  `json:"token,omitempty"`
	Source         *string  `json:"source,omitempty"`
}

type BalanceHistoryEntry struct {
	ID            uint64 `json:"id"`
	Token         string `json:"token"`
	Balance       string `json:"balance"`
	TransactionID uint64 `json:"transaction_id"`
	TxHash        string `json:"tx_hash"`
	Timestamp     int64  `json:"timestamp"`
}

type EventLogEntry struct {
	ID        uint64 `json:"id"`
	TxHash    string `json:"tx_hash"`
	Timestamp int64  `json:"timestamp"`
}

func convertOwner(o core.Owner) Owner {
	return Owner{ID: o.ID, Address: o.Address.ToRaw(), Name: o.Name}
}

func convertTransaction(tx core.Transaction) Transaction {
	res := Transaction{
		ID:             tx.ID,
		Type:           string(tx.Type),
		State:          string(tx.State),
		TxHash:         tx.TxHash.Hex(),
		CreatedAt:      tx.CreatedAt.Unix(),
		Amount:         tx.Amount.String(),
		Method:         tx.Method,
		Params:         tx.Params,
		Description:    tx.Description,
		Confirmations:  tx.Confirmations,
		Rejections:     tx.Rejections,
		ExecutedTxHash: g.NilToNil(func(h tongo.Bits256) string { return h.Hex() }, tx.ExecutedTxHash),
		ExecutedAt:     g.NilToNil(func(t time.Time) int64 { return t.Unix() }, tx.ExecutedAt),
	}
	switch tx.Type {
	case core.OutgoingTransaction:
		res.Destination = g.Pointer(tx.Destination.ToRaw())
		if tx.Method == "" {
			res.AmountDisplay = core.FormatAmount(tx.Amount, core.NativeDecimals)
		}
	case core.IncomingTransaction:
		res.Token = g.Pointer(tx.Token.ToRaw())
		res.Source = g.Pointer(tx.Source.ToRaw())
		if tx.Token == core.NativeToken {
			res.AmountDisplay = core.FormatAmount(tx.Amount, core.NativeDecimals)
		}
	}
	return res
}

func convertBalanceHistoryEntry(e core.BalanceHistoryEntry) BalanceHistoryEntry {
	return BalanceHistoryEntry{
		ID:            e.ID,
		Token:         e.Token.ToRaw(),
		Balance:       e.Balance.String(),
		TransactionID: e.TransactionID,
		TxHash:        e.TxHash.Hex(),
		Timestamp:     e.Timestamp.Unix(),
	}
}

func convertEventLogEntry(e events.LogEntry) EventLogEntry {
	return EventLogEntry{ID: e.ID, TxHash: e.TxHash.Hex(), Timestamp: e.Timestamp.Unix()}
}
