package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Court struct {
	ID       string
	Name     string
	Modality string
	Active   bool
}

type Booking struct {
	ID        string
	CourtID   string
	Date      time.Time
	StartTime string
	EndTime   string
	Customer  *string
	Phone     *string
	Price     decimal.Decimal
	CreatedAt time.Time

	Court *Court
}

// NormalizeClock turns "18:30" into the stored "1830" form.
func NormalizeClock(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ":", "")
}
