package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"arena/internal/domain"
)

type TotalsResponse struct {
	Quantidade int             `json:"quantidade"`
	Total      decimal.Decimal `json:"total"`
}

type FinancialReportResponse struct {
	Inicio       string          `json:"inicio"`
	Fim          string          `json:"fim"`
	Comandas     TotalsResponse  `json:"comandas"`
	Agendamentos TotalsResponse  `json:"agendamentos"`
	Total        decimal.Decimal `json:"total"`
}

func NewFinancialReportResponse(r domain.FinancialReport) FinancialReportResponse {
	return FinancialReportResponse{
		Inicio:       r.From.Format(time.DateOnly),
		Fim:          r.To.Format(time.DateOnly),
		Comandas:     TotalsResponse{Quantidade: r.Tabs.Count, Total: r.Tabs.Sum},
		Agendamentos: TotalsResponse{Quantidade: r.Bookings.Count, Total: r.Bookings.Sum},
		Total:        r.GrandTotal(),
	}
}
