package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultUnit = "UN"

type Product struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	Unit         string
	StockTracked bool
	Active       bool
	CurrentStock decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSupply reports whether quantity can leave stock. Untracked products
// always can.
func (p Product) CanSupply(quantity decimal.Decimal) bool {
	if !p.StockTracked {
		return true
	}
	return p.CurrentStock.GreaterThanOrEqual(quantity)
}

// ProductPatch carries the catalog fields a partial update may change.
// Nil fields are left as they are.
type ProductPatch struct {
	Name         *string
	Price        *decimal.Decimal
	Unit         *string
	StockTracked *bool
	Active       *bool
}

func (p *Product) Apply(patch ProductPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Unit != nil {
		p.Unit = *patch.Unit
	}
	if patch.StockTracked != nil {
		p.StockTracked = *patch.StockTracked
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
}
