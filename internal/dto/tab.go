package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"arena/internal/domain"
)

type OpenTabRequest struct {
	Numero *int    `json:"numero" validate:"required"`
	Mesa   *string `json:"mesa"`
}

type ChangeTabStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=aberta fechada paga"`
}

type AddTabItemRequest struct {
	ProdutoID  string           `json:"produtoId" validate:"required"`
	Quantidade *decimal.Decimal `json:"quantidade" validate:"required"`
}

type NextNumberResponse struct {
	ProximoNumero int `json:"proximoNumero"`
}

type TabItemResponse struct {
	ID            string           `json:"id"`
	ComandaID     string           `json:"comandaId"`
	ProdutoID     string           `json:"produtoId"`
	Quantidade    decimal.Decimal  `json:"quantidade"`
	PrecoUnitario decimal.Decimal  `json:"precoUnitario"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	CreatedAt     time.Time        `json:"createdAt"`
	Produto       *ProductResponse `json:"produto,omitempty"`
}

type TabResponse struct {
	ID        string            `json:"id"`
	Numero    int               `json:"numero"`
	Mesa      *string           `json:"mesa"`
	Status    string            `json:"status"`
	Total     decimal.Decimal   `json:"total"`
	FechadaEm *time.Time        `json:"fechadaEm"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Itens     []TabItemResponse `json:"itens"`
}

func NewTabResponse(t domain.Tab) TabResponse {
	items := make([]TabItemResponse, len(t.Items))
	for i, it := range t.Items {
		items[i] = TabItemResponse{
			ID:            it.ID,
			ComandaID:     it.TabID,
			ProdutoID:     it.ProductID,
			Quantidade:    it.Quantity,
			PrecoUnitario: it.UnitPrice,
			Subtotal:      it.Subtotal,
			CreatedAt:     it.CreatedAt,
			Produto:       productRef(it.Product),
		}
	}

	return TabResponse{
		ID:        t.ID,
		Numero:    t.Number,
		Mesa:      t.Table,
		Status:    string(t.Status),
		Total:     t.Total,
		FechadaEm: t.ClosedAt,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Itens:     items,
	}
}

func NewTabListResponse(tabs []domain.Tab) []TabResponse {
	out := make([]TabResponse, len(tabs))
	for i, t := range tabs {
		out[i] = NewTabResponse(t)
	}
	return out
}
