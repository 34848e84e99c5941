package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	catalogapp "github.com/royale/pos/internal/application/catalog"
	"github.com/royale/pos/internal/domain/shared/valueobject"
	"github.com/spf13/cobra"
)

// NewProductsCommand creates the products command
func NewProductsCommand(ro *RootOptions) *cobra.Command {
	var (
		low    bool
		search string
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List products with their stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := ro.openShop(cmd, false)
			if err != nil {
				return err
			}
			defer s.close()

			var list []catalogapp.ProductResponse
			if low {
				list, err = s.inventory.LowStockProducts(cmd.Context())
			} else {
				list, err = s.inventory.ListProducts(cmd.Context(), search)
			}
			if err != nil {
				return err
			}
			currency := s.cfg.Shop.Currency
			return ro.formatter(cmd).Result(list, func(w io.Writer) {
				printProducts(w, list, currency)
			})
		},
	}
	cmd.Flags().BoolVar(&low, "low", false, "only products at or below their threshold")
	cmd.Flags().StringVarP(&search, "search", "s", "", "filter by name")
	return cmd
}

func printProducts(w io.Writer, list []catalogapp.ProductResponse, currency string) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no products")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tPRICE\tQTY\tTHRESHOLD\t")
	for _, p := range list {
		flag := ""
		if p.IsLowStock {
			flag = "LOW"
		}
		price := p.SellingPrice.String()
		if m, err := valueobject.NewMoney(p.SellingPrice, valueobject.Currency(currency)); err == nil {
			price = m.Display()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", p.Name, p.Category, price, p.Quantity, p.LowStockThreshold, flag)
	}
	_ = tw.Flush()
}
