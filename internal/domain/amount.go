package domain

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "arena/internal/errors"
)

// Limit is the range a DECIMAL column can hold without MySQL rounding or
// rejecting the value: at most Places fractional digits and an absolute
// value below Max.
type Limit struct {
	Places int32
	Max    decimal.Decimal
}

var (
	// QuantityLimit covers DECIMAL(12,3): item quantities, movements and stock.
	QuantityLimit = Limit{Places: 3, Max: decimal.New(1, 9)}
	// MoneyLimit covers DECIMAL(12,2): product prices and booking values.
	MoneyLimit = Limit{Places: 2, Max: decimal.New(1, 10)}
	// TotalLimit covers DECIMAL(14,5): item subtotals and tab totals.
	TotalLimit = Limit{Places: 5, Max: decimal.New(1, 9)}
)

func (l Limit) Fits(v decimal.Decimal) bool {
	return v.Abs().LessThan(l.Max) && v.Equal(v.Truncate(l.Places))
}

// Check returns a ValidationError on field when v does not fit.
func (l Limit) Check(field string, v decimal.Decimal) error {
	if l.Fits(v) {
		return nil
	}
	msg := fmt.Sprintf("%s must have at most %d decimal places and be below %s", field, l.Places, l.Max.String())
	return apperrors.NewValidationError(msg, apperrors.ValidationDetail{Field: field, Message: msg})
}
