package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	apperrors "arena/internal/errors"
)

type ReportService struct {
	repos repository.Repositories
}

func NewReportService(repos repository.Repositories) *ReportService {
	return &ReportService{repos: repos}
}

// FinancialSummary sums paid tabs and bookings for the days from..to, both
// inclusive.
func (s *ReportService) FinancialSummary(ctx context.Context, from, to time.Time) (*domain.FinancialReport, error) {
	from = startOfDay(from)
	to = startOfDay(to)
	if to.Before(from) {
		return nil, apperrors.NewValidationError("fim must not be before inicio", apperrors.ValidationDetail{
			Field:   "fim",
			Message: "fim must not be before inicio",
		})
	}
	end := to.AddDate(0, 0, 1)

	report := &domain.FinancialReport{From: from, To: to}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := s.repos.Tabs.Totals(gctx, domain.TabStatusPaid, from, end)
		if err != nil {
			return err
		}
		report.Tabs = totals
		return nil
	})
	g.Go(func() error {
		totals, err := s.repos.Bookings.Totals(gctx, from, end)
		if err != nil {
			return err
		}
		report.Bookings = totals
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap("building financial summary", err)
	}

	return report, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
