package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/marketvest/internal/export"
)

func ledgerCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect wallet ledgers",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <user-id>...",
		Short: "Check that wallet balances equal the sum of their ledger",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger := e.services().Ledger
			out := cmd.OutOrStdout()
			broken := 0

			for _, arg := range args {
				userID, err := uuid.Parse(arg)
				if err != nil {
					return fmt.Errorf("invalid user id %q: %w", arg, err)
				}

				v, err := ledger.Verify(cmd.Context(), userID)
				if err != nil {
					return err
				}

				state := "ok"
				if !v.Consistent {
					state = "MISMATCH"
					broken++
				}

				fmt.Fprintf(out, "%s  balance=%s ledger=%s  %s\n",
					userID, export.Euros(v.Balance), export.Euros(v.LedgerSum), state)
			}

			if broken > 0 {
				return fmt.Errorf("%d wallet(s) diverge from their ledger", broken)
			}

			return nil
		},
	})

	statement := &cobra.Command{
		Use:   "statement <user-id>",
		Short: "Write a user's wallet statement as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid user id %q: %w", args[0], err)
			}

			_, err = e.services().Export.Statement(cmd.Context(), userID, export.Filter{}, cmd.OutOrStdout())

			return err
		},
	}

	cmd.AddCommand(statement)

	return cmd
}
