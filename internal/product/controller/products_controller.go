package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/dto"
	"arena/internal/httpio"
	"arena/internal/product/service"
)

type ProductService interface {
	ListProducts(ctx context.Context, active *bool) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, in service.CreateProductInput) (*domain.Product, error)
	PatchProduct(ctx context.Context, id string, patch domain.ProductPatch) (*domain.Product, error)
}

type ProductController struct {
	service ProductService
	logger  *zap.Logger
}

func NewProductController(service ProductService, logger *zap.Logger) *ProductController {
	return &ProductController{
		service: service,
		logger:  logger,
	}
}

func (c *ProductController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var active *bool
	if r.URL.Query().Has("ativo") {
		v := r.URL.Query().Get("ativo")
		b := v == "1" || v == "true"
		active = &b
	}

	products, err := c.service.ListProducts(r.Context(), active)
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewProductListResponse(products), logger)
}

func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	product, err := c.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewProductResponse(*product), logger)
}

func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateProductRequest
	if err := httpio.Decode(r, &req); err != nil {
		logger.Warn("invalid create product request", zap.Error(err))
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	product, err := c.service.CreateProduct(r.Context(), service.CreateProductInput{
		Name:         req.Nome,
		Price:        *req.Preco,
		Unit:         req.Unidade,
		StockTracked: req.ControleEstoque,
	})
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusCreated, dto.NewProductResponse(*product), logger)
}

func (c *ProductController) Patch(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.PatchProductRequest
	if err := httpio.Decode(r, &req); err != nil {
		logger.Warn("invalid patch product request", zap.Error(err))
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	product, err := c.service.PatchProduct(r.Context(), chi.URLParam(r, "id"), req.ToPatch())
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewProductResponse(*product), logger)
}
