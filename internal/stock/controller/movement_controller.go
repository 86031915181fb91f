package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/dto"
	"arena/internal/httpio"
	"arena/internal/stock/service"
)

type LedgerService interface {
	RecordMovement(ctx context.Context, in service.RecordMovementInput) (*domain.StockMovement, error)
	ListMovements(ctx context.Context, productID *string) ([]domain.StockMovement, error)
}

type MovementController struct {
	service LedgerService
	logger  *zap.Logger
}

func NewMovementController(service LedgerService, logger *zap.Logger) *MovementController {
	return &MovementController{
		service: service,
		logger:  logger,
	}
}

func (c *MovementController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var productID *string
	if id := r.URL.Query().Get("produtoId"); id != "" {
		productID = &id
	}

	movements, err := c.service.ListMovements(r.Context(), productID)
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewMovementListResponse(movements), logger)
}

func (c *MovementController) Record(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.RecordMovementRequest
	if err := httpio.Decode(r, &req); err != nil {
		logger.Warn("invalid movement request", zap.Error(err))
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	reason := req.Motivo
	if reason != nil && strings.TrimSpace(*reason) == "" {
		reason = nil
	}

	movement, err := c.service.RecordMovement(r.Context(), service.RecordMovementInput{
		ProductID: req.ProdutoID,
		Kind:      req.Tipo,
		Quantity:  *req.Quantidade,
		Reason:    reason,
	})
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusCreated, dto.NewMovementResponse(*movement), logger)
}
