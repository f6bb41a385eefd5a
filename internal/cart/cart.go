package cart

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/CodeX93/freshbox-backend/pkg/errors"
)

// Line is a single service entry in the cart. Lines are immutable once
// captured into an order.
type Line struct {
	ID             string          `json:"id"`
	ServiceID      string          `json:"service_id" validate:"required"`
	Name           string          `json:"name"`
	SelectedOption string          `json:"selected_option"`
	BasePrice      decimal.Decimal `json:"base_price"`
	OptionPrice    decimal.Decimal `json:"option_price"`
	Quantity       int             `json:"quantity" validate:"required,min=1"`
}

// TotalPrice is (basePrice + optionPrice) * quantity.
func (l Line) TotalPrice() decimal.Decimal {
	return l.BasePrice.Add(l.OptionPrice).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Validate checks the line invariants independent of the catalog.
func (l Line) Validate() error {
	if l.ID == "" || l.ServiceID == "" || l.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart line is missing identity fields")
	}
	if l.Quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cart line %s quantity must be at least 1", l.ID))
	}
	if l.BasePrice.IsNegative() || l.OptionPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cart line %s has a negative price", l.ID))
	}
	return nil
}

// ComputeTotal sums the line totals. It is recomputed on every read so the
// result always reflects the current lines.
func ComputeTotal(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.TotalPrice())
	}
	return total
}

// ValidateLines checks every line and that the cart is non-empty.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
	}
	return nil
}
