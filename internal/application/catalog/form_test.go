package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProductForm(t *testing.T) {
	t.Run("minimal form", func(t *testing.T) {
		result := ValidateProductForm(ProductForm{Name: "  Sugar 1kg ", SellingPrice: "4500"})
		require.True(t, result.Valid, "%v", result.Errors)
		assert.Empty(t, result.Errors)
		assert.Equal(t, "Sugar 1kg", result.Input.Details.Name)
		assert.True(t, decimal.NewFromInt(4500).Equal(result.Input.Details.SellingPrice))
		assert.Nil(t, result.Input.Details.CostPrice)
		assert.Equal(t, int64(0), result.Input.OpeningQuantity)
		assert.False(t, result.Input.ThresholdSet)
	})

	t.Run("trailing zero decimals are whole shillings", func(t *testing.T) {
		result := ValidateProductForm(ProductForm{Name: "Salt", SellingPrice: "1200.00"})
		require.True(t, result.Valid, "%v", result.Errors)
		assert.True(t, decimal.NewFromInt(1200).Equal(result.Input.Details.SellingPrice))
	})

	t.Run("full form", func(t *testing.T) {
		result := ValidateProductForm(ProductForm{
			Name:              "Soap",
			Category:          "household",
			SellingPrice:      "2500",
			CostPrice:         "1800.50",
			Quantity:          "24",
			LowStockThreshold: "0",
		})
		require.True(t, result.Valid, "%v", result.Errors)
		require.NotNil(t, result.Input.Details.CostPrice)
		assert.Equal(t, "1800.5", result.Input.Details.CostPrice.String())
		assert.Equal(t, "2500", result.Input.Details.SellingPrice.String())
		assert.Equal(t, int64(24), result.Input.OpeningQuantity)
		assert.Equal(t, int64(0), result.Input.Details.LowStockThreshold)
		assert.True(t, result.Input.ThresholdSet)
	})

	tests := []struct {
		name   string
		form   ProductForm
		fields []string
	}{
		{"blank name", ProductForm{Name: "   ", SellingPrice: "100"}, []string{"name"}},
		{"missing price", ProductForm{Name: "Salt"}, []string{"selling_price"}},
		{"negative price", ProductForm{Name: "Salt", SellingPrice: "-1"}, []string{"selling_price"}},
		{"fractional price", ProductForm{Name: "Salt", SellingPrice: "2500.50"}, []string{"selling_price"}},
		{"non numeric price", ProductForm{Name: "Salt", SellingPrice: "ten"}, []string{"selling_price"}},
		{"negative cost", ProductForm{Name: "Salt", SellingPrice: "100", CostPrice: "-5"}, []string{"cost_price"}},
		{"negative quantity", ProductForm{Name: "Salt", SellingPrice: "100", Quantity: "-3"}, []string{"quantity"}},
		{"fractional threshold", ProductForm{Name: "Salt", SellingPrice: "100", LowStockThreshold: "2.5"}, []string{"low_stock_threshold"}},
		{"several fields", ProductForm{SellingPrice: "x", Quantity: "many"}, []string{"name", "selling_price", "quantity"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateProductForm(tt.form)
			assert.False(t, result.Valid)

			var fields []string
			for _, e := range result.Errors {
				fields = append(fields, e.Field)
				assert.NotEmpty(t, e.Message)
			}
			assert.ElementsMatch(t, tt.fields, fields)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{{Field: "name", Message: "This field is required"}}}
	assert.Equal(t, "invalid product form: name: This field is required", err.Error())
	assert.Equal(t, "Invalid input provided", (&ValidationError{}).Error())
}
