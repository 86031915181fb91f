package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"arena/internal/domain"
)

type CreateProductRequest struct {
	Nome            string           `json:"nome" validate:"required"`
	Preco           *decimal.Decimal `json:"preco" validate:"required"`
	Unidade         *string          `json:"unidade"`
	ControleEstoque *bool            `json:"controleEstoque"`
}

type PatchProductRequest struct {
	Nome            *string          `json:"nome"`
	Preco           *decimal.Decimal `json:"preco"`
	Unidade         *string          `json:"unidade"`
	ControleEstoque *bool            `json:"controleEstoque"`
	Ativo           *bool            `json:"ativo"`
}

func (r PatchProductRequest) ToPatch() domain.ProductPatch {
	return domain.ProductPatch{
		Name:         r.Nome,
		Price:        r.Preco,
		Unit:         r.Unidade,
		StockTracked: r.ControleEstoque,
		Active:       r.Ativo,
	}
}

type ProductResponse struct {
	ID              string          `json:"id"`
	Nome            string          `json:"nome"`
	Preco           decimal.Decimal `json:"preco"`
	Unidade         string          `json:"unidade"`
	ControleEstoque bool            `json:"controleEstoque"`
	Ativo           bool            `json:"ativo"`
	EstoqueAtual    decimal.Decimal `json:"estoqueAtual"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Nome:            p.Name,
		Preco:           p.Price,
		Unidade:         p.Unit,
		ControleEstoque: p.StockTracked,
		Ativo:           p.Active,
		EstoqueAtual:    p.CurrentStock,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func NewProductListResponse(products []domain.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = NewProductResponse(p)
	}
	return out
}

func productRef(p *domain.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	r := NewProductResponse(*p)
	return &r
}
