package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TabStatus string

const (
	TabStatusOpen   TabStatus = "aberta"
	TabStatusClosed TabStatus = "fechada"
	TabStatusPaid   TabStatus = "paga"
)

func ParseTabStatus(s string) (TabStatus, bool) {
	st := TabStatus(s)
	switch st {
	case TabStatusOpen, TabStatusClosed, TabStatusPaid:
		return st, true
	}
	return "", false
}

// Tab is a bar account ("comanda"). Number is unique only among open tabs.
type Tab struct {
	ID        string
	Number    int
	Table     *string
	Status    TabStatus
	Total     decimal.Decimal
	ClosedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time

	Items []TabItem
}

func (t Tab) IsOpen() bool {
	return t.Status == TabStatusOpen
}

// SetStatus allows any transition. Closing stamps ClosedAt; leaving the
// closed state keeps the stamp.
func (t *Tab) SetStatus(status TabStatus, now time.Time) {
	t.Status = status
	if status == TabStatusClosed {
		closedAt := now
		t.ClosedAt = &closedAt
	}
}

func (t *Tab) AddToTotal(amount decimal.Decimal) {
	t.Total = t.Total.Add(amount)
}

// SubtractFromTotal never lets the total drop below zero.
func (t *Tab) SubtractFromTotal(amount decimal.Decimal) {
	t.Total = t.Total.Sub(amount)
	if t.Total.IsNegative() {
		t.Total = decimal.Zero
	}
}

// ItemsTotal is the sum of the subtotals of the loaded items.
func (t Tab) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range t.Items {
		sum = sum.Add(it.Subtotal)
	}
	return sum
}

func TabOutReason(number int) string {
	return fmt.Sprintf("Comanda #%d", number)
}

func TabReturnReason(number int) string {
	return fmt.Sprintf("Estorno comanda #%d", number)
}
