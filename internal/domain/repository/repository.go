// Package repository declares the store ports the services depend on and the
// unit-of-work runner that binds them to a single transaction.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"arena/internal/domain"
)

type ProductFilter struct {
	Active *bool
}

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	// FindByIDForUpdate locks the product row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	// Update writes catalog fields only. Stock goes through UpdateStock.
	Update(ctx context.Context, product *domain.Product) error
	UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error
}

type StockMovementRepository interface {
	Create(ctx context.Context, movement *domain.StockMovement) error
	FindByID(ctx context.Context, id string) (*domain.StockMovement, error)
	// List returns movements newest first, each with its product loaded.
	List(ctx context.Context, productID *string) ([]domain.StockMovement, error)
}

type TabRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Tab, error)
	FindByIDForUpdate(ctx context.Context, id string) (*domain.Tab, error)
	// FindOpenByNumberForUpdate returns nil, nil when no open tab uses number.
	FindOpenByNumberForUpdate(ctx context.Context, number int) (*domain.Tab, error)
	// MaxNumber returns 0 when there are no tabs.
	MaxNumber(ctx context.Context) (int, error)
	// List returns tabs by number descending, without items.
	List(ctx context.Context, status *domain.TabStatus) ([]domain.Tab, error)
	Create(ctx context.Context, tab *domain.Tab) error
	UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error
	UpdateStatus(ctx context.Context, id string, status domain.TabStatus, closedAt *time.Time) error
	Totals(ctx context.Context, status domain.TabStatus, from, to time.Time) (domain.Totals, error)
}

type TabItemRepository interface {
	Create(ctx context.Context, item *domain.TabItem) error
	FindByIDAndTab(ctx context.Context, id, tabID string) (*domain.TabItem, error)
	// ListByTabIDs returns items oldest first, each with its product loaded.
	ListByTabIDs(ctx context.Context, tabIDs []string) ([]domain.TabItem, error)
	Delete(ctx context.Context, id string) error
}

type BookingFilter struct {
	Day     *time.Time
	CourtID *string
}

type CourtRepository interface {
	List(ctx context.Context) ([]domain.Court, error)
	FindByID(ctx context.Context, id string) (*domain.Court, error)
}

type BookingRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	// List returns bookings by date and start time, each with its court loaded.
	List(ctx context.Context, filter BookingFilter) ([]domain.Booking, error)
	Create(ctx context.Context, booking *domain.Booking) error
	Delete(ctx context.Context, id string) error
	Totals(ctx context.Context, from, to time.Time) (domain.Totals, error)
}

// Repositories groups every port bound to the same store handle, either the
// connection pool or one open transaction.
type Repositories struct {
	Products  ProductRepository
	Movements StockMovementRepository
	Tabs      TabRepository
	TabItems  TabItemRepository
	Courts    CourtRepository
	Bookings  BookingRepository
}

// TxRunner executes fn inside one transaction. The transaction commits when
// fn returns nil and rolls back otherwise. fn may run more than once when the
// store aborts the transaction on a lock conflict, so it must not keep state
// between calls.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
