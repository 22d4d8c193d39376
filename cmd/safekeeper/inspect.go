package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arnac-io/safekeeper/pkg/core"
	"github.com/arnac-io/safekeeper/pkg/ledger"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print owners and waiting transactions of the stored safe",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.Close()
		ctx := cmd.Context()

		name, err := e.safe.SafeName(ctx)
		if err != nil {
			return err
		}
		required, err := e.safe.WalletOwnersRequired(ctx)
		if err != nil {
			return err
		}
		owners, err := e.safe.WalletOwners(ctx, 0)
		if err != nil {
			return err
		}
		waiting, err := e.safe.Transactions(ctx, ledger.Waiting, 0)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\n", name, e.safe.Address().ToRaw())
		fmt.Fprintf(w, "owners\t%d of %d required\n\n", len(owners), required)
		for _, o := range owners {
			fmt.Fprintf(w, "%d\t%s\t%s\n", o.ID, o.Address.ToRaw(), o.Name)
		}
		fmt.Fprintf(w, "\nwaiting\t%d\n\n", len(waiting))
		for _, tx := range waiting {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d confirmations\n",
				tx.ID, tx.Destination.ToRaw(), core.FormatAmount(tx.Amount, core.NativeDecimals), tx.Method, len(tx.Confirmations))
		}
		return w.Flush()
	},
}
