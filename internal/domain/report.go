package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Totals struct {
	Count int
	Sum   decimal.Decimal
}

type FinancialReport struct {
	From     time.Time
	To       time.Time
	Tabs     Totals
	Bookings Totals
}

func (r FinancialReport) GrandTotal() decimal.Decimal {
	return r.Tabs.Sum.Add(r.Bookings.Sum)
}
