package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TabItem is a line on a tab. UnitPrice is captured when the item is added
// and never follows later catalog price changes.
type TabItem struct {
	ID        string
	TabID     string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	CreatedAt time.Time

	Product *Product
}

func NewTabItem(tabID string, product Product, quantity decimal.Decimal, now time.Time) TabItem {
	return TabItem{
		TabID:     tabID,
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: product.Price,
		Subtotal:  product.Price.Mul(quantity),
		CreatedAt: now,
	}
}
