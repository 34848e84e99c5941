package cli

import (
	"fmt"
	"io"

	"github.com/royale/pos/internal/domain/inventory"
	"github.com/spf13/cobra"
)

// NewReconcileCommand creates the reconcile command
func NewReconcileCommand(ro *RootOptions) *cobra.Command {
	var apply bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Find sale lines whose stock decrement never landed",
		Long: `Compare recorded sales with the stock ledger and list every sale line
that was saved without decrementing its product.

Exits with status 1 when discrepancies remain. With --apply the missing
decrements are written, each at most once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ro.openShop(cmd, false)
			if err != nil {
				return err
			}
			defer s.close()
			out := ro.formatter(cmd)

			if !apply {
				found, err := s.reconciler.Check(cmd.Context())
				if err != nil {
					return err
				}
				if err := out.Result(found, func(w io.Writer) { printDiscrepancies(w, found) }); err != nil {
					return err
				}
				if len(found) > 0 {
					return NewExitError(ExitFailure, fmt.Sprintf("%d unapplied sale lines; rerun with --apply", len(found)))
				}
				return nil
			}

			report, err := s.reconciler.Repair(cmd.Context())
			if err != nil {
				return err
			}
			err = out.Result(report, func(w io.Writer) {
				fmt.Fprintf(w, "checked %d sale lines\n", report.SaleLinesChecked)
				fmt.Fprintf(w, "repaired %d, skipped %d (product removed), failed %d\n",
					len(report.Repaired), len(report.Skipped), len(report.Failed))
				for _, f := range report.Failed {
					fmt.Fprintf(w, "  %s %s: %s\n", f.Discrepancy.SaleID, f.Discrepancy.ProductName, f.Error)
				}
			})
			if err != nil {
				return err
			}
			if len(report.Failed) > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d sale lines could not be repaired", len(report.Failed)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "write the missing decrements")
	return cmd
}

func printDiscrepancies(w io.Writer, found []inventory.Discrepancy) {
	if len(found) == 0 {
		fmt.Fprintln(w, "stock ledger matches recorded sales")
		return
	}
	for _, d := range found {
		fmt.Fprintf(w, "sale %s: %s x%d not decremented\n", d.SaleID, d.ProductName, d.Quantity)
	}
}
