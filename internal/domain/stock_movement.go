package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type MovementKind string

const (
	MovementIn         MovementKind = "entrada"
	MovementOut        MovementKind = "saida"
	MovementAdjustment MovementKind = "ajuste"
)

func ParseMovementKind(s string) (MovementKind, bool) {
	k := MovementKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case MovementIn, MovementOut, MovementAdjustment:
		return k, true
	}
	return "", false
}

// Apply returns the balance after the movement and the quantity the ledger
// records for it. Adjustments record the resulting balance, not a delta.
func (k MovementKind) Apply(balance, quantity decimal.Decimal) (newBalance, recorded decimal.Decimal) {
	switch k {
	case MovementIn:
		return balance.Add(quantity), quantity
	case MovementOut:
		return balance.Sub(quantity), quantity
	default:
		return quantity, quantity
	}
}

// StockMovement is an immutable ledger entry. Corrections are new entries.
type StockMovement struct {
	ID        string
	ProductID string
	Kind      MovementKind
	Quantity  decimal.Decimal
	Reason    *string
	CreatedAt time.Time

	Product *Product
}

// ReplayStock folds movements, oldest first, into the balance they produce.
func ReplayStock(movements []StockMovement) decimal.Decimal {
	balance := decimal.Zero
	for _, m := range movements {
		balance, _ = m.Kind.Apply(balance, m.Quantity)
	}
	return balance
}
