package trade

import (
	"strings"

	"github.com/royale/pos/internal/domain/shared"
)

// PaymentMethod is the tender used at checkout
type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "CASH"
	PaymentMethodMobileMoney PaymentMethod = "MOBILE_MONEY"
	PaymentMethodCredit      PaymentMethod = "CREDIT"
)

// PaymentMethods lists every accepted tender in display order
var PaymentMethods = []PaymentMethod{PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodCredit}

// IsValid checks if the payment method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMobileMoney, PaymentMethodCredit:
		return true
	}
	return false
}

// String returns the enum name
func (m PaymentMethod) String() string {
	return string(m)
}

// ParsePaymentMethod accepts the enum name in any case
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_INPUT", "Payment method must be one of CASH, MOBILE_MONEY, CREDIT")
	}
	return m, nil
}
