package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/marketvest/internal/export"
)

func sweepCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one of the periodic sweeps now",
		Long: `Run a sweep once. Every sweep is idempotent and safe to run while the
API server's scheduler is running.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "maturity",
		Short: "Move active investments past their maturity date to matured",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := e.services().Investments.SweepMatured(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d investment(s) matured\n", n)

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "settlement",
		Short: "Credit resale returns that are due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := e.services().Settlements.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "processed %d order(s), credited %s, skipped %d\n",
				res.Processed, export.Euros(res.Credited), res.Skipped)

			for _, oe := range res.Errors {
				fmt.Fprintf(out, "  order %s: %s\n", oe.OrderID, oe.Error)
			}

			if len(res.Errors) > 0 {
				return fmt.Errorf("%d order(s) failed to settle", len(res.Errors))
			}

			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "payments",
		Short: "Expire pending gateway payments past their deadline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := e.services().Payments.ExpireStale(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d pending payment(s) expired\n", n)

			return nil
		},
	})

	return cmd
}
