package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	apperrors "arena/internal/errors"
	stockservice "arena/internal/stock/service"
)

// TabService owns the tab lifecycle. Every mutation runs as one unit of
// work: tab, items, ledger and product stock commit together or not at all.
type TabService struct {
	repos  repository.Repositories
	tx     repository.TxRunner
	logger *zap.Logger
	now    func() time.Time
}

func NewTabService(repos repository.Repositories, tx repository.TxRunner, logger *zap.Logger) *TabService {
	return &TabService{
		repos:  repos,
		tx:     tx,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *TabService) OpenTab(ctx context.Context, number int, table *string) (*domain.Tab, error) {
	if number < 1 {
		return nil, apperrors.NewValidationError("numero must be a positive integer", apperrors.ValidationDetail{
			Field:   "numero",
			Message: "numero must be a positive integer",
		})
	}
	table = normalizeTable(table)

	var tabID string
	err := s.tx.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		existing, err := repos.Tabs.FindOpenByNumberForUpdate(ctx, number)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.NewConflictError(fmt.Sprintf("an open tab with number %d already exists", number))
		}

		now := s.now()
		tab := &domain.Tab{
			Number:    number,
			Table:     table,
			Status:    domain.TabStatusOpen,
			Total:     decimal.Zero,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repos.Tabs.Create(ctx, tab); err != nil {
			return err
		}
		tabID = tab.ID
		return nil
	})
	if err != nil {
		return nil, s.fail("opening tab", err, zap.Int("number", number))
	}

	s.logger.Info("tab opened", zap.String("tabId", tabID), zap.Int("number", number))
	return s.GetTab(ctx, tabID)
}

// NextNumber suggests one more than the highest number ever issued. It does
// not reserve the number.
func (s *TabService) NextNumber(ctx context.Context) (int, error) {
	maxNumber, err := s.repos.Tabs.MaxNumber(ctx)
	if err != nil {
		return 0, apperrors.Wrap("querying next tab number", err)
	}
	return maxNumber + 1, nil
}

func (s *TabService) ListTabs(ctx context.Context, status *string) ([]domain.Tab, error) {
	var filter *domain.TabStatus
	if status != nil {
		st, ok := domain.ParseTabStatus(*status)
		if !ok {
			return nil, invalidStatusError()
		}
		filter = &st
	}

	tabs, err := s.repos.Tabs.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap("listing tabs", err)
	}
	if err := s.attachItems(ctx, s.repos, tabs); err != nil {
		return nil, apperrors.Wrap("listing tab items", err)
	}
	return tabs, nil
}

func (s *TabService) GetTab(ctx context.Context, id string) (*domain.Tab, error) {
	tab, err := s.repos.Tabs.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap("loading tab", err)
	}

	tabs := []domain.Tab{*tab}
	if err := s.attachItems(ctx, s.repos, tabs); err != nil {
		return nil, apperrors.Wrap("loading tab items", err)
	}
	return &tabs[0], nil
}

// AddItem checks, in order: tab exists, tab open, product exists, product
// active, enough stock when the product is tracked. Only then does it insert
// the line, grow the total and, for tracked products, write the outgoing
// movement and lower the stock.
func (s *TabService) AddItem(ctx context.Context, tabID, productID string, quantity decimal.Decimal) (*domain.Tab, error) {
	if !quantity.IsPositive() {
		return nil, apperrors.NewValidationError("quantidade must be greater than zero", apperrors.ValidationDetail{
			Field:   "quantidade",
			Message: "quantidade must be greater than zero",
		})
	}
	if err := domain.QuantityLimit.Check("quantidade", quantity); err != nil {
		return nil, err
	}

	var added domain.TabItem
	err := s.tx.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tab, err := repos.Tabs.FindByIDForUpdate(ctx, tabID)
		if err != nil {
			return err
		}
		if !tab.IsOpen() {
			return notOpenError(tab)
		}

		product, err := repos.Products.FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if !product.Active {
			return apperrors.NewInvalidStateError(fmt.Sprintf("product %s is inactive", product.Name))
		}
		if !product.CanSupply(quantity) {
			return apperrors.NewInsufficientStockError(product.ID, product.CurrentStock.String(), product.Unit)
		}

		now := s.now()
		item := domain.NewTabItem(tab.ID, *product, quantity, now)
		if err := domain.TotalLimit.Check("quantidade", tab.Total.Add(item.Subtotal)); err != nil {
			return err
		}
		if err := repos.TabItems.Create(ctx, &item); err != nil {
			return err
		}

		tab.AddToTotal(item.Subtotal)
		if err := repos.Tabs.UpdateTotal(ctx, tab.ID, tab.Total); err != nil {
			return err
		}

		if product.StockTracked {
			reason := domain.TabOutReason(tab.Number)
			if _, err := stockservice.Record(ctx, repos, product, domain.MovementOut, quantity, &reason, now); err != nil {
				return err
			}
		}

		added = item
		return nil
	})
	if err != nil {
		return nil, s.fail("adding tab item", err, zap.String("tabId", tabID), zap.String("productId", productID))
	}

	s.logger.Info("tab item added",
		zap.String("tabId", tabID),
		zap.String("itemId", added.ID),
		zap.String("productId", productID),
		zap.String("quantity", quantity.String()),
		zap.String("subtotal", added.Subtotal.String()),
	)
	return s.GetTab(ctx, tabID)
}

// RemoveItem deletes a line from an open tab and reverses its stock effect
// with a compensating incoming movement.
func (s *TabService) RemoveItem(ctx context.Context, tabID, itemID string) (*domain.Tab, error) {
	err := s.tx.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tab, err := repos.Tabs.FindByIDForUpdate(ctx, tabID)
		if err != nil {
			return err
		}
		if !tab.IsOpen() {
			return notOpenError(tab)
		}

		item, err := repos.TabItems.FindByIDAndTab(ctx, itemID, tab.ID)
		if err != nil {
			return err
		}

		tab.SubtractFromTotal(item.Subtotal)
		if err := repos.Tabs.UpdateTotal(ctx, tab.ID, tab.Total); err != nil {
			return err
		}

		product, err := repos.Products.FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product.StockTracked {
			reason := domain.TabReturnReason(tab.Number)
			if _, err := stockservice.Record(ctx, repos, product, domain.MovementIn, item.Quantity, &reason, s.now()); err != nil {
				return err
			}
		}

		return repos.TabItems.Delete(ctx, item.ID)
	})
	if err != nil {
		return nil, s.fail("removing tab item", err, zap.String("tabId", tabID), zap.String("itemId", itemID))
	}

	s.logger.Info("tab item removed", zap.String("tabId", tabID), zap.String("itemId", itemID))
	return s.GetTab(ctx, tabID)
}

// ChangeStatus accepts any transition between the three statuses so staff
// can reopen a tab. Closing stamps the close time. Reopening fails with a
// conflict when another open tab already uses the same number.
func (s *TabService) ChangeStatus(ctx context.Context, tabID string, status string) (*domain.Tab, error) {
	target, ok := domain.ParseTabStatus(status)
	if !ok {
		return nil, invalidStatusError()
	}

	err := s.tx.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tab, err := repos.Tabs.FindByIDForUpdate(ctx, tabID)
		if err != nil {
			return err
		}

		if target == domain.TabStatusOpen && !tab.IsOpen() {
			other, err := repos.Tabs.FindOpenByNumberForUpdate(ctx, tab.Number)
			if err != nil {
				return err
			}
			if other != nil {
				return apperrors.NewConflictError(fmt.Sprintf("an open tab with number %d already exists", tab.Number))
			}
		}

		tab.SetStatus(target, s.now())
		return repos.Tabs.UpdateStatus(ctx, tab.ID, tab.Status, tab.ClosedAt)
	})
	if err != nil {
		return nil, s.fail("changing tab status", err, zap.String("tabId", tabID), zap.String("status", status))
	}

	s.logger.Info("tab status changed", zap.String("tabId", tabID), zap.String("status", string(target)))
	return s.GetTab(ctx, tabID)
}

func (s *TabService) attachItems(ctx context.Context, repos repository.Repositories, tabs []domain.Tab) error {
	if len(tabs) == 0 {
		return nil
	}

	ids := make([]string, len(tabs))
	index := make(map[string]int, len(tabs))
	for i := range tabs {
		ids[i] = tabs[i].ID
		index[tabs[i].ID] = i
		tabs[i].Items = []domain.TabItem{}
	}

	items, err := repos.TabItems.ListByTabIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, item := range items {
		if i, ok := index[item.TabID]; ok {
			tabs[i].Items = append(tabs[i].Items, item)
		}
	}
	return nil
}

func (s *TabService) fail(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.Error(err))
	if apperrors.IsKnown(err) {
		s.logger.Warn(op+" rejected", fields...)
	} else {
		s.logger.Error(op+" failed", fields...)
	}
	return apperrors.Wrap(op, err)
}

func normalizeTable(table *string) *string {
	if table == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*table)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func notOpenError(tab *domain.Tab) error {
	return apperrors.NewInvalidStateError(fmt.Sprintf("tab %d is not open (status %s)", tab.Number, tab.Status))
}

func invalidStatusError() error {
	return apperrors.NewValidationError("status must be one of aberta, fechada, paga", apperrors.ValidationDetail{
		Field:   "status",
		Message: "status must be one of aberta, fechada, paga",
	})
}
