package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	catalogapp "github.com/royale/pos/internal/application/catalog"
	partnerapp "github.com/royale/pos/internal/application/partner"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by seed
type SeedFile struct {
	Products []SeedProduct `yaml:"products"`
	Debtors  []SeedDebtor  `yaml:"debtors"`
}

// SeedProduct is one catalog entry. Prices are strings so they reach the
// product form exactly as written.
type SeedProduct struct {
	Name              string `yaml:"name"`
	Category          string `yaml:"category"`
	SellingPrice      string `yaml:"selling_price"`
	CostPrice         string `yaml:"cost_price"`
	Quantity          int64  `yaml:"quantity"`
	LowStockThreshold *int64 `yaml:"low_stock_threshold"`
}

// SeedDebtor is one opening credit balance
type SeedDebtor struct {
	Name   string           `yaml:"name"`
	Phone  string           `yaml:"phone"`
	Amount string `yaml:"amount"`
}

// SeedResult counts what seed did
type SeedResult struct {
	ProductsAdded   int      `json:"products_added"`
	ProductsSkipped []string `json:"products_skipped,omitempty"`
	DebtorsAdded    int      `json:"debtors_added"`
}

// ParseSeedFile decodes a seed document, rejecting unknown keys
func ParseSeedFile(r io.Reader) (*SeedFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f SeedFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return &f, nil
		}
		return nil, err
	}
	return &f, nil
}

// NewSeedCommand creates the seed command
func NewSeedCommand(ro *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load products and debtors from a YAML file",
		Long: `Load products and opening debtor balances from a YAML file.

Products whose name already exists (ignoring case) are skipped, so a
seed file can be applied more than once.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(ro, cmd, args[0])
		},
	}
}

func runSeed(ro *RootOptions, cmd *cobra.Command, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open seed file", err)
	}
	defer file.Close()

	seed, err := ParseSeedFile(file)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid seed file", err)
	}
	ro.formatter(cmd).VerboseLog("read %d products and %d debtors from %s", len(seed.Products), len(seed.Debtors), path)

	s, err := ro.openShop(cmd, false)
	if err != nil {
		return err
	}
	defer s.close()
	ctx := cmd.Context()

	existing, err := s.inventory.ListProducts(ctx, "")
	if err != nil {
		return err
	}
	names := make(map[string]bool, len(existing))
	for _, p := range existing {
		names[strings.ToLower(p.Name)] = true
	}

	var result SeedResult
	for i, p := range seed.Products {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if names[key] {
			result.ProductsSkipped = append(result.ProductsSkipped, p.Name)
			continue
		}
		form := catalogapp.ProductForm{
			Name:         p.Name,
			Category:     p.Category,
			SellingPrice: p.SellingPrice,
			CostPrice:    p.CostPrice,
			Quantity:     fmt.Sprint(p.Quantity),
		}
		if p.LowStockThreshold != nil {
			form.LowStockThreshold = fmt.Sprint(*p.LowStockThreshold)
		}
		if _, err := s.inventory.AddProduct(ctx, form); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("product %d (%s) rejected", i+1, p.Name), err)
		}
		names[key] = true
		result.ProductsAdded++
	}

	for i, d := range seed.Debtors {
		req := partnerapp.CreateDebtorRequest{Name: d.Name, Phone: d.Phone}
		if d.Amount != "" {
			amount, err := decimal.NewFromString(d.Amount)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("debtor %d (%s) has an invalid amount", i+1, d.Name), err)
			}
			req.Amount = &amount
		}
		if _, err := s.debtors.Create(ctx, req); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("debtor %d (%s) rejected", i+1, d.Name), err)
		}
		result.DebtorsAdded++
	}

	s.logger.Info("Seed applied",
		zap.String("file", path),
		zap.Int("products", result.ProductsAdded),
		zap.Int("debtors", result.DebtorsAdded),
	)
	return ro.formatter(cmd).Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "added %d products, %d debtors\n", result.ProductsAdded, result.DebtorsAdded)
		for _, name := range result.ProductsSkipped {
			fmt.Fprintf(w, "skipped existing product %q\n", name)
		}
	})
}
