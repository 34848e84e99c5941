package catalog

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/royale/pos/internal/domain/catalog"
	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductForm is the raw product entry as typed by the shopkeeper. Numbers
// arrive as text; blank optional fields take defaults.
type ProductForm struct {
	Name              string `json:"name" validate:"required,max=200"`
	Category          string `json:"category" validate:"max=50"`
	SellingPrice      string `json:"selling_price" validate:"required,numeric"`
	CostPrice         string `json:"cost_price" validate:"omitempty,numeric"`
	Quantity          string `json:"quantity" validate:"omitempty,number"`
	LowStockThreshold string `json:"low_stock_threshold" validate:"omitempty,number"`
}

// FieldError describes one rejected form field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewProductInput is a validated form
type NewProductInput struct {
	Details         catalog.ProductDetails
	OpeningQuantity int64
	// ThresholdSet is false when the form left the threshold blank
	ThresholdSet bool
}

// ProductFormResult is the outcome of ValidateProductForm. Input is only
// meaningful when Valid is true.
type ProductFormResult struct {
	Valid  bool
	Errors []FieldError
	Input  NewProductInput
}

// ValidationError carries the field errors of a rejected form. It matches
// shared.ErrInvalidInput.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return shared.ErrInvalidInput.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid product form: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match shared.ErrInvalidInput
func (e *ValidationError) Unwrap() error {
	return shared.ErrInvalidInput
}

var (
	formValidator     *validator.Validate
	formValidatorOnce sync.Once
)

func productFormValidator() *validator.Validate {
	formValidatorOnce.Do(func() {
		formValidator = validator.New(validator.WithRequiredStructEnabled())
		formValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return formValidator
}

// ValidateProductForm checks a product form without touching the store.
// Prices must be non-negative decimals, quantities whole numbers. The
// selling price must also be whole shillings; cost may carry a fraction.
func ValidateProductForm(form ProductForm) ProductFormResult {
	form.Name = strings.TrimSpace(form.Name)
	form.Category = strings.TrimSpace(form.Category)
	form.SellingPrice = strings.TrimSpace(form.SellingPrice)
	form.CostPrice = strings.TrimSpace(form.CostPrice)
	form.Quantity = strings.TrimSpace(form.Quantity)
	form.LowStockThreshold = strings.TrimSpace(form.LowStockThreshold)

	var errs []FieldError
	if err := productFormValidator().Struct(form); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				errs = append(errs, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
			}
		} else {
			errs = append(errs, FieldError{Field: "form", Message: err.Error()})
		}
	}

	failed := make(map[string]bool, len(errs))
	for _, e := range errs {
		failed[e.Field] = true
	}

	var input NewProductInput
	input.Details.Name = form.Name
	input.Details.Category = form.Category

	if !failed["selling_price"] {
		price, err := decimal.NewFromString(form.SellingPrice)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "selling_price", Message: "Must be a number"})
		case price.IsNegative():
			errs = append(errs, FieldError{Field: "selling_price", Message: "Cannot be negative"})
		case !price.IsInteger():
			errs = append(errs, FieldError{Field: "selling_price", Message: "Must be whole shillings"})
		default:
			input.Details.SellingPrice = price
		}
	}

	if form.CostPrice != "" && !failed["cost_price"] {
		cost, err := decimal.NewFromString(form.CostPrice)
		switch {
		case err != nil:
			errs = append(errs, FieldError{Field: "cost_price", Message: "Must be a number"})
		case cost.IsNegative():
			errs = append(errs, FieldError{Field: "cost_price", Message: "Cannot be negative"})
		default:
			input.Details.CostPrice = &cost
		}
	}

	if form.Quantity != "" && !failed["quantity"] {
		qty, err := strconv.ParseInt(form.Quantity, 10, 64)
		if err != nil {
			errs = append(errs, FieldError{Field: "quantity", Message: "Must be a whole number"})
		} else {
			input.OpeningQuantity = qty
		}
	}

	if form.LowStockThreshold != "" && !failed["low_stock_threshold"] {
		threshold, err := strconv.ParseInt(form.LowStockThreshold, 10, 64)
		if err != nil {
			errs = append(errs, FieldError{Field: "low_stock_threshold", Message: "Must be a whole number"})
		} else {
			input.Details.LowStockThreshold = threshold
			input.ThresholdSet = true
		}
	}

	if len(errs) > 0 {
		return ProductFormResult{Valid: false, Errors: errs}
	}
	return ProductFormResult{Valid: true, Input: input}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "numeric":
		return "Must be a number"
	case "number":
		return "Must be a whole number"
	default:
		return "Invalid value"
	}
}
