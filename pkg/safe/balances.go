package safe

import (
	"context"

	"github.com/tonkeeper/tongo"

	"github.com/arnac-io/safekeeper/pkg/core"
)

func (s *Safe) AddBalanceTracker(ctx context.Context, call Call, token tongo.AccountID) error {
	return s.update(ctx, "add_balance_tracker", call, func(st *state) error {
		if _, err := st.requireOwner(); err != nil {
			return err
		}
		return st.balances.AddTracker(ctx, token, call.TxHash)
	})
}

func (s *Safe) RemoveBalanceTracker(ctx context.Context, call Call, token tongo.AccountID) error {
	return s.update(ctx, "remove_balance_tracker", call, func(st *state) error {
		if _, err := st.requireOwner(); err != nil {
			return err
		}
		return st.balances.RemoveTracker(ctx, token, call.TxHash)
	})
}

func (s *Safe) BalanceTrackers(ctx context.Context, offset int) (tokens []tongo.AccountID, err error) {
	err = s.view(ctx, "get_balance_trackers", func(st *state) error {
		tokens, err = st.balances.Trackers(offset, s.pageSize)
		return err
	})
	return tokens, err
}

// BalanceHistory lists the recorded balances of token, most recent first.
func (s *Safe) BalanceHistory(ctx context.Context, token tongo.AccountID, offset int) (entries []core.BalanceHistoryEntry, err error) {
	err = s.view(ctx, "get_token_balance_history", func(st *state) error {
		entries, err = st.balances.History(token, offset, s.pageSize)
		return err
	})
	return entries, err
}

func (s *Safe) BalanceHistoryEntry(ctx context.Context, id uint64) (entry core.BalanceHistoryEntry, err error) {
	err = s.view(ctx, "get_balance_history", func(st *state) error {
		entry, err = st.balances.Entry(id)
		return err
	})
	return entry, err
}
