package service

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	apperrors "arena/internal/errors"
)

type CreateBookingInput struct {
	CourtID   string
	Date      time.Time
	StartTime string
	EndTime   string
	Customer  *string
	Phone     *string
	Price     decimal.Decimal
}

type CourtService struct {
	repos  repository.Repositories
	logger *zap.Logger
	now    func() time.Time
}

func NewCourtService(repos repository.Repositories, logger *zap.Logger) *CourtService {
	return &CourtService{
		repos:  repos,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *CourtService) ListCourts(ctx context.Context) ([]domain.Court, error) {
	courts, err := s.repos.Courts.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap("listing courts", err)
	}
	return courts, nil
}

func (s *CourtService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	bookings, err := s.repos.Bookings.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap("listing bookings", err)
	}
	return bookings, nil
}

func (s *CourtService) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.Booking, error) {
	start := domain.NormalizeClock(in.StartTime)
	end := domain.NormalizeClock(in.EndTime)

	var details []apperrors.ValidationDetail
	if !validClock(start) {
		details = append(details, apperrors.ValidationDetail{Field: "horaInicio", Message: "horaInicio must be HH:MM"})
	}
	if !validClock(end) {
		details = append(details, apperrors.ValidationDetail{Field: "horaFim", Message: "horaFim must be HH:MM"})
	}
	if len(details) == 0 && end <= start {
		details = append(details, apperrors.ValidationDetail{Field: "horaFim", Message: "horaFim must be after horaInicio"})
	}
	if in.Price.IsNegative() {
		details = append(details, apperrors.ValidationDetail{Field: "valor", Message: "valor must be >= 0"})
	} else if ve, ok := apperrors.IsValidationError(domain.MoneyLimit.Check("valor", in.Price)); ok {
		details = append(details, ve.Details...)
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	if _, err := s.repos.Courts.FindByID(ctx, in.CourtID); err != nil {
		return nil, apperrors.Wrap("loading court", err)
	}

	booking := &domain.Booking{
		CourtID:   in.CourtID,
		Date:      in.Date,
		StartTime: start,
		EndTime:   end,
		Customer:  in.Customer,
		Phone:     in.Phone,
		Price:     in.Price,
		CreatedAt: s.now(),
	}
	if err := s.repos.Bookings.Create(ctx, booking); err != nil {
		s.logger.Error("creating booking failed", zap.String("courtId", in.CourtID), zap.Error(err))
		return nil, apperrors.Wrap("creating booking", err)
	}

	s.logger.Info("booking created", zap.String("bookingId", booking.ID), zap.String("courtId", in.CourtID))

	created, err := s.repos.Bookings.FindByID(ctx, booking.ID)
	if err != nil {
		return nil, apperrors.Wrap("loading booking", err)
	}
	return created, nil
}

func (s *CourtService) CancelBooking(ctx context.Context, id string) error {
	if err := s.repos.Bookings.Delete(ctx, id); err != nil {
		return apperrors.Wrap("cancelling booking", err)
	}
	s.logger.Info("booking cancelled", zap.String("bookingId", id))
	return nil
}

// validClock accepts the stored HHMM form.
func validClock(s string) bool {
	if len(s) != 4 {
		return false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return false
	}
	return n/100 < 24 && n%100 < 60
}
