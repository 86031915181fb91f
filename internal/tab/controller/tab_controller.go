package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/dto"
	"arena/internal/httpio"
)

type TabService interface {
	OpenTab(ctx context.Context, number int, table *string) (*domain.Tab, error)
	NextNumber(ctx context.Context) (int, error)
	ListTabs(ctx context.Context, status *string) ([]domain.Tab, error)
	GetTab(ctx context.Context, id string) (*domain.Tab, error)
	AddItem(ctx context.Context, tabID, productID string, quantity decimal.Decimal) (*domain.Tab, error)
	RemoveItem(ctx context.Context, tabID, itemID string) (*domain.Tab, error)
	ChangeStatus(ctx context.Context, tabID string, status string) (*domain.Tab, error)
}

type TabController struct {
	service TabService
	logger  *zap.Logger
}

func NewTabController(service TabService, logger *zap.Logger) *TabController {
	return &TabController{
		service: service,
		logger:  logger,
	}
}

func (c *TabController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	tabs, err := c.service.ListTabs(r.Context(), status)
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewTabListResponse(tabs), logger)
}

func (c *TabController) NextNumber(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	next, err := c.service.NextNumber(r.Context())
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NextNumberResponse{ProximoNumero: next}, logger)
}

func (c *TabController) Open(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.OpenTabRequest
	if err := httpio.Decode(r, &req); err != nil {
		logger.Warn("invalid open tab request", zap.Error(err))
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	tab, err := c.service.OpenTab(r.Context(), *req.Numero, req.Mesa)
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusCreated, dto.NewTabResponse(*tab), logger)
}

func (c *TabController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	tab, err := c.service.GetTab(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewTabResponse(*tab), logger)
}

func (c *TabController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ChangeTabStatusRequest
	if err := httpio.Decode(r, &req); err != nil {
		logger.Warn("invalid change status request", zap.Error(err))
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	tab, err := c.service.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewTabResponse(*tab), logger)
}

func (c *TabController) AddItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.AddTabItemRequest
	if err := httpio.Decode(r, &req); err != nil {
		logger.Warn("invalid add item request", zap.Error(err))
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	tab, err := c.service.AddItem(r.Context(), chi.URLParam(r, "id"), req.ProdutoID, *req.Quantidade)
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusCreated, dto.NewTabResponse(*tab), logger)
}

func (c *TabController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	tab, err := c.service.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewTabResponse(*tab), logger)
}
