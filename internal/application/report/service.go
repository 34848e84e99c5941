// Package report turns stored sales and stock into exports and summaries.
// Nothing here writes to the store.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/report"
	"github.com/royale/pos/internal/domain/shared/valueobject"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/royale/pos/internal/infrastructure/storage"
	"github.com/royale/pos/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CSVHeader is the first row of every sales export
var CSVHeader = []string{"Sale ID", "Date", "Time", "Items", "Total Amount", "Payment Method"}

const (
	archivePrefix  = "reports/"
	csvContentType = "text/csv; charset=utf-8"
	topProducts    = 5
)

// SaleLister reads every stored sale, oldest first
type SaleLister interface {
	FindAll(ctx context.Context) ([]trade.Sale, error)
}

// ProductLister reads the catalog
type ProductLister interface {
	FindAll(ctx context.Context) ([]catalog.Product, error)
}

// ArchiveResult locates an uploaded export
type ArchiveResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
	Rows      int       `json:"rows"`
}

// Service builds sales exports, daily aggregates and the dashboard
type Service struct {
	sales    SaleLister
	products ProductLister
	archive  storage.Archive
	loc      *time.Location
	logger   *zap.Logger
}

// NewService creates a report service rendering dates in loc. A nil archive
// disables ArchiveSalesCSV.
func NewService(sales SaleLister, products ProductLister, archive storage.Archive, loc *time.Location, logger *zap.Logger) *Service {
	if archive == nil {
		archive = storage.DisabledArchive{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		sales:    sales,
		products: products,
		archive:  archive,
		loc:      loc,
		logger:   logger,
	}
}

// Location returns the zone dates are rendered in
func (s *Service) Location() *time.Location {
	return s.loc
}

// ExportFilename names the export for the local day of now
func (s *Service) ExportFilename(now time.Time) string {
	return fmt.Sprintf("Royale_Sales_Report_%s.csv", report.DayKey(now, s.loc))
}

// ExportSalesCSV writes one row per sale and returns the row count
func (s *Service) ExportSalesCSV(ctx context.Context, w io.Writer) (int, error) {
	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return s.writeCSV(w, sales)
}

func (s *Service) writeCSV(w io.Writer, sales []trade.Sale) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return 0, fmt.Errorf("write csv header: %w", err)
	}
	for i := range sales {
		sale := &sales[i]
		local := sale.Timestamp.In(s.loc)
		row := []string{
			sale.ShortID(),
			local.Format("2006-01-02"),
			local.Format("15:04:05"),
			sale.ItemSummary(),
			sale.TotalAmount.String(),
			sale.PaymentMethod.String(),
		}
		if err := cw.Write(row); err != nil {
			return i, fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}
	return len(sales), nil
}

// DailyAggregates buckets every sale by local day, oldest first
func (s *Service) DailyAggregates(ctx context.Context) ([]report.DailySales, error) {
	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return report.AggregateDaily(sales, s.loc), nil
}

// Dashboard summarizes takings and stock as of now
func (s *Service) Dashboard(ctx context.Context, now time.Time) (*report.Dashboard, error) {
	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	d := &report.Dashboard{
		GeneratedAt:     now,
		TodayRevenue:    decimal.Zero,
		TotalRevenue:    report.GrandTotal(sales),
		SaleCount:       int64(len(sales)),
		ProductCount:    int64(len(products)),
		InventoryValue:  decimal.Zero,
		InventoryRetail: decimal.Zero,
		TopProducts:     report.RankProducts(sales, topProducts),
	}

	today := report.DayKey(now, s.loc)
	for i := range sales {
		if report.DayKey(sales[i].Timestamp, s.loc) == today {
			d.TodaySaleCount++
			d.TodayRevenue = d.TodayRevenue.Add(sales[i].TotalAmount)
		}
	}
	for i := range products {
		p := &products[i]
		if p.IsLowStock() {
			d.LowStockCount++
		}
		atCost, atRetail := p.StockValue()
		d.InventoryValue = d.InventoryValue.Add(atCost)
		d.InventoryRetail = d.InventoryRetail.Add(atRetail)
	}
	d.FormattedTodayTotal = valueobject.NewMoneyUGX(d.TodayRevenue).Display()
	return d, nil
}

// ArchiveSalesCSV uploads the export under reports/ and returns a
// time-limited download link
func (s *Service) ArchiveSalesCSV(ctx context.Context, now time.Time) (*ArchiveResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "archive_sales_csv")
	defer span.End()

	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	var buf bytes.Buffer
	rows, err := s.writeCSV(&buf, sales)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	key := archivePrefix + s.ExportFilename(now)
	if err := s.archive.Put(ctx, key, buf.Bytes(), csvContentType); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}
	url, expires, err := s.archive.PresignGet(ctx, key)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("presign %s: %w", key, err)
	}

	s.logger.Info("Sales report archived",
		zap.String("key", key),
		zap.Int("rows", rows),
		zap.Int("bytes", buf.Len()),
	)
	return &ArchiveResult{Key: key, URL: url, ExpiresAt: expires, Rows: rows}, nil
}
