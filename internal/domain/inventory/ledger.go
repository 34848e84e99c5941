package inventory

import (
	"github.com/google/uuid"
)

// Discrepancy is a sale line whose decrement never reached the shelf
type Discrepancy struct {
	SaleID      uuid.UUID `json:"sale_id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int64     `json:"quantity"`
}

// ExpectedBalance replays a product's movements. Sale lines listed in
// missing are subtracted as if they had been applied.
func ExpectedBalance(movements []StockMovement, missing []Discrepancy) int64 {
	var balance int64
	for _, m := range movements {
		balance += m.Delta
	}
	for _, d := range missing {
		balance -= d.Quantity
	}
	return balance
}
