package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	Quantity          int64           `json:"quantity"`
	LowStockThreshold int64           `json:"low_stock_threshold"`
	IsLowStock        bool            `json:"is_low_stock"`
	Margin            decimal.Decimal `json:"margin"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		Category:          p.Category,
		CostPrice:         p.CostPrice,
		SellingPrice:      p.SellingPrice,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
		IsLowStock:        p.IsLowStock(),
		Margin:            p.Margin(),
		UpdatedAt:         p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// AdjustStockRequest is a manual restock or correction
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" binding:"required,ne=0"`
	Reason string `json:"reason" binding:"max=200"`
}
