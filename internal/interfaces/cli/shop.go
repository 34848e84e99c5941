package cli

import (
	"context"
	"time"

	"github.com/royale/pos/internal/application/advisor"
	catalogapp "github.com/royale/pos/internal/application/catalog"
	inventoryapp "github.com/royale/pos/internal/application/inventory"
	partnerapp "github.com/royale/pos/internal/application/partner"
	reportapp "github.com/royale/pos/internal/application/report"
	"github.com/royale/pos/internal/infrastructure/ai"
	"github.com/royale/pos/internal/infrastructure/config"
	"github.com/royale/pos/internal/infrastructure/event"
	"github.com/royale/pos/internal/infrastructure/logger"
	"github.com/royale/pos/internal/infrastructure/persistence"
	"github.com/royale/pos/internal/infrastructure/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// shop is the wired application a command works on
type shop struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *persistence.Database

	inventory  *catalogapp.InventoryService
	debtors    *partnerapp.DebtorService
	reports    *reportapp.Service
	reconciler *inventoryapp.ReconciliationService
	advisor    *advisor.Service
}

func (o *RootOptions) loadConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := o.loadConfig(o.ConfigFile)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.logger != nil {
		return cfg, o.logger, nil
	}
	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to initialize logger", err)
	}
	return cfg, log, nil
}

// openShop loads configuration, opens and migrates the store and wires the
// services. The archive is only connected when withArchive is set.
func (o *RootOptions) openShop(cmd *cobra.Command, withArchive bool) (*shop, error) {
	cfg, log, err := o.loadConfigAndLogger()
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db := persistence.NewDatabase(&cfg.Database, log)
	if err := db.Initialize(ctx); err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	products := persistence.NewGormProductRepository(db)
	sales := persistence.NewGormSaleRepository(db)
	ledger := persistence.NewGormStockLedger(db)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewJournalHandler(log))
	bus.Subscribe(inventoryapp.NewStockAlertHandler(log))

	var archive storage.Archive = storage.DisabledArchive{}
	if withArchive {
		archive, err = storage.New(ctx, &cfg.Storage, log)
		if err != nil {
			_ = db.Close()
			return nil, WrapExitError(ExitCommandError, "failed to connect report storage", err)
		}
	}

	generator := o.generator
	if generator == nil {
		gemini, err := ai.NewGeminiClient(ctx, &cfg.Advisor, log)
		if err != nil {
			_ = db.Close()
			return nil, WrapExitError(ExitCommandError, "failed to create advisor client", err)
		}
		generator = gemini
	}
	loc := cfg.Shop.Location()

	defaults := catalogapp.DefaultDefaults()
	if cfg.Shop.DefaultLowStockThreshold > 0 {
		defaults.LowStockThreshold = cfg.Shop.DefaultLowStockThreshold
	}
	if cfg.Shop.CostRatio > 0 {
		defaults.CostRatio = cfg.Shop.CostRatioDecimal()
	}

	advisorOpts := []advisor.Option{advisor.WithLocation(loc)}
	if cfg.Advisor.RecentSales > 0 {
		advisorOpts = append(advisorOpts, advisor.WithRecentSales(cfg.Advisor.RecentSales))
	}

	return &shop{
		cfg:        cfg,
		logger:     log,
		db:         db,
		inventory:  catalogapp.NewInventoryService(products, ledger, bus, log, defaults),
		debtors:    partnerapp.NewDebtorService(persistence.NewGormDebtorRepository(db), log),
		reports:    reportapp.NewService(sales, products, archive, loc, log),
		reconciler: inventoryapp.NewReconciliationService(sales, products, ledger, ledger, log),
		advisor:    advisor.NewService(generator, products, sales, log, advisorOpts...),
	}, nil
}

func (s *shop) close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("Failed to close store", zap.Error(err))
	}
	_ = logger.Sync(s.logger)
}

func (s *shop) now() time.Time {
	return time.Now().In(s.reports.Location())
}
