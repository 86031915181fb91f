package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/dto"
	apperrors "arena/internal/errors"
	"arena/internal/httpio"
)

type ReportService interface {
	FinancialSummary(ctx context.Context, from, to time.Time) (*domain.FinancialReport, error)
}

type ReportController struct {
	service ReportService
	logger  *zap.Logger
}

func NewReportController(service ReportService, logger *zap.Logger) *ReportController {
	return &ReportController{
		service: service,
		logger:  logger,
	}
}

// Financial serves the summary for ?inicio=YYYY-MM-DD&fim=YYYY-MM-DD. A
// missing fim means the same day as inicio.
func (c *ReportController) Financial(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var details []apperrors.ValidationDetail
	from, err := time.Parse(time.DateOnly, r.URL.Query().Get("inicio"))
	if err != nil {
		details = append(details, apperrors.ValidationDetail{
			Field:   "inicio",
			Message: "inicio must be a date in the form 2006-01-02",
		})
	}
	to := from
	if s := r.URL.Query().Get("fim"); s != "" {
		to, err = time.Parse(time.DateOnly, s)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{
				Field:   "fim",
				Message: "fim must be a date in the form 2006-01-02",
			})
		}
	}
	if len(details) > 0 {
		httpio.WriteError(w, traceID, apperrors.NewValidationError("validation failed", details...), logger)
		return
	}

	report, err := c.service.FinancialSummary(r.Context(), from, to)
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewFinancialReportResponse(*report), logger)
}
