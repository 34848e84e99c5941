package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// DailySales aggregates the sales of one local calendar day
type DailySales struct {
	Date            string                                  `json:"date"` // YYYY-MM-DD
	SaleCount       int64                                   `json:"sale_count"`
	ItemsSold       int64                                   `json:"items_sold"`
	Revenue         decimal.Decimal                         `json:"revenue"`
	RevenueByMethod map[trade.PaymentMethod]decimal.Decimal `json:"revenue_by_method"`
}

// ProductSales ranks products by revenue over a set of sales
type ProductSales struct {
	Rank        int             `json:"rank"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Dashboard is the at-a-glance shop summary
type Dashboard struct {
	GeneratedAt         time.Time       `json:"generated_at"`
	TodayRevenue        decimal.Decimal `json:"today_revenue"`
	TodaySaleCount      int64           `json:"today_sale_count"`
	TotalRevenue        decimal.Decimal `json:"total_revenue"`
	SaleCount           int64           `json:"sale_count"`
	ProductCount        int64           `json:"product_count"`
	LowStockCount       int64           `json:"low_stock_count"`
	InventoryValue      decimal.Decimal `json:"inventory_value"`
	InventoryRetail     decimal.Decimal `json:"inventory_retail_value"`
	TopProducts         []ProductSales  `json:"top_products"`
	FormattedTodayTotal string          `json:"formatted_today_revenue"`
}

// DayKey formats t as a calendar date in loc
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// AggregateDaily buckets sales by local day, oldest day first
func AggregateDaily(sales []trade.Sale, loc *time.Location) []DailySales {
	buckets := make(map[string]*DailySales)
	for i := range sales {
		s := &sales[i]
		key := DayKey(s.Timestamp, loc)
		day, ok := buckets[key]
		if !ok {
			day = &DailySales{
				Date:            key,
				Revenue:         decimal.Zero,
				RevenueByMethod: make(map[trade.PaymentMethod]decimal.Decimal),
			}
			buckets[key] = day
		}
		day.SaleCount++
		day.ItemsSold += s.Units()
		day.Revenue = day.Revenue.Add(s.TotalAmount)
		day.RevenueByMethod[s.PaymentMethod] = day.RevenueByMethod[s.PaymentMethod].Add(s.TotalAmount)
	}

	days := make([]DailySales, 0, len(buckets))
	for _, d := range buckets {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// RankProducts totals quantities and revenue per product from the sale
// snapshots and returns the top n by revenue. n <= 0 returns all.
func RankProducts(sales []trade.Sale, n int) []ProductSales {
	byID := make(map[uuid.UUID]*ProductSales)
	for _, s := range sales {
		for _, item := range s.Items {
			ps, ok := byID[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName, Revenue: decimal.Zero}
				byID[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.Total)
		}
	}

	ranked := make([]ProductSales, 0, len(byID))
	for _, ps := range byID {
		ranked = append(ranked, *ps)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// GrandTotal sums TotalAmount over sales
func GrandTotal(sales []trade.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalAmount)
	}
	return total
}
