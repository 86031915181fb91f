package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"arena/internal/domain"
)

type RecordMovementRequest struct {
	ProdutoID  string           `json:"produtoId" validate:"required"`
	Tipo       string           `json:"tipo" validate:"required"`
	Quantidade *decimal.Decimal `json:"quantidade" validate:"required"`
	Motivo     *string          `json:"motivo"`
}

type MovementResponse struct {
	ID         string           `json:"id"`
	ProdutoID  string           `json:"produtoId"`
	Tipo       string           `json:"tipo"`
	Quantidade decimal.Decimal  `json:"quantidade"`
	Motivo     *string          `json:"motivo"`
	CreatedAt  time.Time        `json:"createdAt"`
	Produto    *ProductResponse `json:"produto,omitempty"`
}

func NewMovementResponse(m domain.StockMovement) MovementResponse {
	return MovementResponse{
		ID:         m.ID,
		ProdutoID:  m.ProductID,
		Tipo:       string(m.Kind),
		Quantidade: m.Quantity,
		Motivo:     m.Reason,
		CreatedAt:  m.CreatedAt,
		Produto:    productRef(m.Product),
	}
}

func NewMovementListResponse(movements []domain.StockMovement) []MovementResponse {
	out := make([]MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = NewMovementResponse(m)
	}
	return out
}
