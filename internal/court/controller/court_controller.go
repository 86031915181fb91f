package controller

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"arena/internal/court/service"
	"arena/internal/domain"
	"arena/internal/domain/repository"
	"arena/internal/dto"
	apperrors "arena/internal/errors"
	"arena/internal/httpio"
)

type CourtService interface {
	ListCourts(ctx context.Context) ([]domain.Court, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error)
	CreateBooking(ctx context.Context, in service.CreateBookingInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id string) error
}

type CourtController struct {
	service CourtService
	logger  *zap.Logger
}

func NewCourtController(service CourtService, logger *zap.Logger) *CourtController {
	return &CourtController{
		service: service,
		logger:  logger,
	}
}

func (c *CourtController) ListCourts(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	courts, err := c.service.ListCourts(r.Context())
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewCourtListResponse(courts), logger)
}

func (c *CourtController) ListBookings(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var filter repository.BookingFilter
	if s := r.URL.Query().Get("data"); s != "" {
		day, err := time.Parse(time.DateOnly, s)
		if err != nil {
			httpio.WriteError(w, traceID, apperrors.NewValidationError("invalid data", apperrors.ValidationDetail{
				Field:   "data",
				Message: "data must be a date in the form 2006-01-02",
			}), logger)
			return
		}
		filter.Day = &day
	}
	if id := r.URL.Query().Get("quadraId"); id != "" {
		filter.CourtID = &id
	}

	bookings, err := c.service.ListBookings(r.Context(), filter)
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusOK, dto.NewBookingListResponse(bookings), logger)
}

func (c *CourtController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateBookingRequest
	if err := httpio.Decode(r, &req); err != nil {
		logger.Warn("invalid booking request", zap.Error(err))
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	// the datetime tag already checked the layout
	day, _ := time.Parse(time.DateOnly, req.Data)

	booking, err := c.service.CreateBooking(r.Context(), service.CreateBookingInput{
		CourtID:   req.QuadraID,
		Date:      day,
		StartTime: req.HoraInicio,
		EndTime:   req.HoraFim,
		Customer:  blankToNil(req.Cliente),
		Phone:     blankToNil(req.Telefone),
		Price:     *req.Valor,
	})
	if err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	httpio.WriteJSON(w, http.StatusCreated, dto.NewBookingResponse(*booking), logger)
}

func (c *CourtController) CancelBooking(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	if err := c.service.CancelBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpio.WriteError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
