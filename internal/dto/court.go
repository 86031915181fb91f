package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"arena/internal/domain"
)

type CreateBookingRequest struct {
	QuadraID   string           `json:"quadraId" validate:"required"`
	Data       string           `json:"data" validate:"required,datetime=2006-01-02"`
	HoraInicio string           `json:"horaInicio" validate:"required"`
	HoraFim    string           `json:"horaFim" validate:"required"`
	Cliente    *string          `json:"cliente"`
	Telefone   *string          `json:"telefone"`
	Valor      *decimal.Decimal `json:"valor" validate:"required"`
}

type CourtResponse struct {
	ID         string `json:"id"`
	Nome       string `json:"nome"`
	Modalidade string `json:"modalidade"`
	Ativo      bool   `json:"ativo"`
}

type BookingResponse struct {
	ID         string          `json:"id"`
	QuadraID   string          `json:"quadraId"`
	Data       string          `json:"data"`
	HoraInicio string          `json:"horaInicio"`
	HoraFim    string          `json:"horaFim"`
	Cliente    *string         `json:"cliente"`
	Telefone   *string         `json:"telefone"`
	Valor      decimal.Decimal `json:"valor"`
	CreatedAt  time.Time       `json:"createdAt"`
	Quadra     *CourtResponse  `json:"quadra,omitempty"`
}

func NewCourtResponse(c domain.Court) CourtResponse {
	return CourtResponse{
		ID:         c.ID,
		Nome:       c.Name,
		Modalidade: c.Modality,
		Ativo:      c.Active,
	}
}

func NewCourtListResponse(courts []domain.Court) []CourtResponse {
	out := make([]CourtResponse, len(courts))
	for i, c := range courts {
		out[i] = NewCourtResponse(c)
	}
	return out
}

func NewBookingResponse(b domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:         b.ID,
		QuadraID:   b.CourtID,
		Data:       b.Date.Format(time.DateOnly),
		HoraInicio: b.StartTime,
		HoraFim:    b.EndTime,
		Cliente:    b.Customer,
		Telefone:   b.Phone,
		Valor:      b.Price,
		CreatedAt:  b.CreatedAt,
	}
	if b.Court != nil {
		court := NewCourtResponse(*b.Court)
		resp.Quadra = &court
	}
	return resp
}

func NewBookingListResponse(bookings []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = NewBookingResponse(b)
	}
	return out
}
