package testutil

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	apperrors "arena/internal/errors"
)

var _ repository.TxRunner = (*MemStore)(nil)

// MemStore is an in-memory stand-in for the MySQL store. Transactions run one
// at a time against a copy of the data and replace it only on success, which
// gives the same all-or-nothing outcome as the real unit of work.
type MemStore struct {
	mu   sync.Mutex
	data *memData

	failMu   sync.Mutex
	failures map[string]error
	pingErr  error
}

type memData struct {
	products  map[string]domain.Product
	movements []domain.StockMovement
	tabs      map[string]domain.Tab
	items     []domain.TabItem
	courts    map[string]domain.Court
	bookings  map[string]domain.Booking
}

func NewMemStore() *MemStore {
	return &MemStore{
		data: &memData{
			products: map[string]domain.Product{},
			tabs:     map[string]domain.Tab{},
			courts:   map[string]domain.Court{},
			bookings: map[string]domain.Booking{},
		},
		failures: map[string]error{},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		products:  maps.Clone(d.products),
		movements: slices.Clone(d.movements),
		tabs:      maps.Clone(d.tabs),
		items:     slices.Clone(d.items),
		courts:    maps.Clone(d.courts),
		bookings:  maps.Clone(d.bookings),
	}
}

// Repos returns repositories that act outside any transaction.
func (m *MemStore) Repos() repository.Repositories {
	return m.bind(nil)
}

func (m *MemStore) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.data.clone()
	if err := fn(ctx, m.bind(work)); err != nil {
		return err
	}
	m.data = work
	return nil
}

// FailOn makes the named operation, such as "Movements.Create", return err
// until ClearFailures is called.
func (m *MemStore) FailOn(op string, err error) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.failures[op] = err
}

func (m *MemStore) ClearFailures() {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.failures = map[string]error{}
}

func (m *MemStore) SetPingError(err error) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.pingErr = err
}

func (m *MemStore) Ping(ctx context.Context) error {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	return m.pingErr
}

func (m *MemStore) failure(op string) error {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	return m.failures[op]
}

// SeedProduct stores p as is, assigning an ID and defaults when missing.
func (m *MemStore) SeedProduct(p domain.Product) domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Unit == "" {
		p.Unit = domain.DefaultUnit
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
		p.UpdatedAt = p.CreatedAt
	}
	m.data.products[p.ID] = p
	return p
}

func (m *MemStore) SeedCourt(c domain.Court) domain.Court {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	m.data.courts[c.ID] = c
	return c
}

func (m *MemStore) SeedTab(t domain.Tab) domain.Tab {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
		t.UpdatedAt = t.CreatedAt
	}
	t.Items = nil
	m.data.tabs[t.ID] = t
	return t
}

func (m *MemStore) SeedBooking(b domain.Booking) domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.Court = nil
	m.data.bookings[b.ID] = b
	return b
}

func (m *MemStore) Product(id string) (domain.Product, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data.products[id]
	return p, ok
}

func (m *MemStore) Tab(id string) (domain.Tab, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.data.tabs[id]
	return t, ok
}

// Movements returns the ledger of one product, oldest first.
func (m *MemStore) Movements(productID string) []domain.StockMovement {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.StockMovement
	for _, mv := range m.data.movements {
		if mv.ProductID == productID {
			out = append(out, mv)
		}
	}
	return out
}

func (m *MemStore) Items(tabID string) []domain.TabItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.TabItem
	for _, it := range m.data.items {
		if it.TabID == tabID {
			out = append(out, it)
		}
	}
	return out
}

func (m *MemStore) bind(d *memData) repository.Repositories {
	b := &memBinding{store: m, tx: d}
	return repository.Repositories{
		Products:  memProducts{b},
		Movements: memMovements{b},
		Tabs:      memTabs{b},
		TabItems:  memTabItems{b},
		Courts:    memCourts{b},
		Bookings:  memBookings{b},
	}
}

// memBinding points either at a transaction's private copy or, when tx is
// nil, at the shared data guarded by the store mutex.
type memBinding struct {
	store *MemStore
	tx    *memData
}

func (b *memBinding) do(op string, fn func(d *memData) error) error {
	if err := b.store.failure(op); err != nil {
		return err
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.data)
}

func notFound(entity, id string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("%s %s not found", entity, id))
}

type memProducts struct{ b *memBinding }

func (r memProducts) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	var out *domain.Product
	err := r.b.do("Products.FindByID", func(d *memData) error {
		p, ok := d.products[id]
		if !ok {
			return notFound("product", id)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memProducts) FindByIDForUpdate(ctx context.Context, id string) (*domain.Product, error) {
	var out *domain.Product
	err := r.b.do("Products.FindByIDForUpdate", func(d *memData) error {
		p, ok := d.products[id]
		if !ok {
			return notFound("product", id)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memProducts) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.b.do("Products.List", func(d *memData) error {
		for _, p := range d.products {
			if filter.Active != nil && p.Active != *filter.Active {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r memProducts) Create(ctx context.Context, product *domain.Product) error {
	return r.b.do("Products.Create", func(d *memData) error {
		if product.ID == "" {
			product.ID = uuid.NewString()
		}
		d.products[product.ID] = *product
		return nil
	})
}

func (r memProducts) Update(ctx context.Context, product *domain.Product) error {
	return r.b.do("Products.Update", func(d *memData) error {
		p, ok := d.products[product.ID]
		if !ok {
			return notFound("product", product.ID)
		}
		p.Name = product.Name
		p.Price = product.Price
		p.Unit = product.Unit
		p.StockTracked = product.StockTracked
		p.Active = product.Active
		p.UpdatedAt = product.UpdatedAt
		d.products[p.ID] = p
		return nil
	})
}

func (r memProducts) UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error {
	return r.b.do("Products.UpdateStock", func(d *memData) error {
		p, ok := d.products[id]
		if !ok {
			return notFound("product", id)
		}
		p.CurrentStock = stock
		p.UpdatedAt = time.Now().UTC()
		d.products[id] = p
		return nil
	})
}

type memMovements struct{ b *memBinding }

func (r memMovements) Create(ctx context.Context, movement *domain.StockMovement) error {
	return r.b.do("Movements.Create", func(d *memData) error {
		if movement.ID == "" {
			movement.ID = uuid.NewString()
		}
		stored := *movement
		stored.Product = nil
		d.movements = append(d.movements, stored)
		return nil
	})
}

func (r memMovements) FindByID(ctx context.Context, id string) (*domain.StockMovement, error) {
	var out *domain.StockMovement
	err := r.b.do("Movements.FindByID", func(d *memData) error {
		for _, mv := range d.movements {
			if mv.ID == id {
				mv.Product = productRef(d, mv.ProductID)
				out = &mv
				return nil
			}
		}
		return notFound("stock movement", id)
	})
	return out, err
}

func (r memMovements) List(ctx context.Context, productID *string) ([]domain.StockMovement, error) {
	out := []domain.StockMovement{}
	err := r.b.do("Movements.List", func(d *memData) error {
		for i := len(d.movements) - 1; i >= 0; i-- {
			mv := d.movements[i]
			if productID != nil && mv.ProductID != *productID {
				continue
			}
			mv.Product = productRef(d, mv.ProductID)
			out = append(out, mv)
		}
		return nil
	})
	return out, err
}

type memTabs struct{ b *memBinding }

func (r memTabs) FindByID(ctx context.Context, id string) (*domain.Tab, error) {
	var out *domain.Tab
	err := r.b.do("Tabs.FindByID", func(d *memData) error {
		t, ok := d.tabs[id]
		if !ok {
			return notFound("tab", id)
		}
		out = &t
		return nil
	})
	return out, err
}

func (r memTabs) FindByIDForUpdate(ctx context.Context, id string) (*domain.Tab, error) {
	var out *domain.Tab
	err := r.b.do("Tabs.FindByIDForUpdate", func(d *memData) error {
		t, ok := d.tabs[id]
		if !ok {
			return notFound("tab", id)
		}
		out = &t
		return nil
	})
	return out, err
}

func (r memTabs) FindOpenByNumberForUpdate(ctx context.Context, number int) (*domain.Tab, error) {
	var out *domain.Tab
	err := r.b.do("Tabs.FindOpenByNumberForUpdate", func(d *memData) error {
		for _, t := range d.tabs {
			if t.Number == number && t.IsOpen() {
				out = &t
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r memTabs) MaxNumber(ctx context.Context) (int, error) {
	maxNumber := 0
	err := r.b.do("Tabs.MaxNumber", func(d *memData) error {
		for _, t := range d.tabs {
			maxNumber = max(maxNumber, t.Number)
		}
		return nil
	})
	return maxNumber, err
}

func (r memTabs) List(ctx context.Context, status *domain.TabStatus) ([]domain.Tab, error) {
	out := []domain.Tab{}
	err := r.b.do("Tabs.List", func(d *memData) error {
		for _, t := range d.tabs {
			if status != nil && t.Status != *status {
				continue
			}
			out = append(out, t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number > out[j].Number
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, err
}

func (r memTabs) Create(ctx context.Context, tab *domain.Tab) error {
	return r.b.do("Tabs.Create", func(d *memData) error {
		if tab.ID == "" {
			tab.ID = uuid.NewString()
		}
		stored := *tab
		stored.Items = nil
		d.tabs[tab.ID] = stored
		return nil
	})
}

func (r memTabs) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	return r.b.do("Tabs.UpdateTotal", func(d *memData) error {
		t, ok := d.tabs[id]
		if !ok {
			return notFound("tab", id)
		}
		t.Total = total
		t.UpdatedAt = time.Now().UTC()
		d.tabs[id] = t
		return nil
	})
}

func (r memTabs) UpdateStatus(ctx context.Context, id string, status domain.TabStatus, closedAt *time.Time) error {
	return r.b.do("Tabs.UpdateStatus", func(d *memData) error {
		t, ok := d.tabs[id]
		if !ok {
			return notFound("tab", id)
		}
		t.Status = status
		t.ClosedAt = closedAt
		t.UpdatedAt = time.Now().UTC()
		d.tabs[id] = t
		return nil
	})
}

func (r memTabs) Totals(ctx context.Context, status domain.TabStatus, from, to time.Time) (domain.Totals, error) {
	totals := domain.Totals{Sum: decimal.Zero}
	err := r.b.do("Tabs.Totals", func(d *memData) error {
		for _, t := range d.tabs {
			if t.Status != status || t.CreatedAt.Before(from) || !t.CreatedAt.Before(to) {
				continue
			}
			totals.Count++
			totals.Sum = totals.Sum.Add(t.Total)
		}
		return nil
	})
	return totals, err
}

type memTabItems struct{ b *memBinding }

func (r memTabItems) Create(ctx context.Context, item *domain.TabItem) error {
	return r.b.do("TabItems.Create", func(d *memData) error {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		stored := *item
		stored.Product = nil
		d.items = append(d.items, stored)
		return nil
	})
}

func (r memTabItems) FindByIDAndTab(ctx context.Context, id, tabID string) (*domain.TabItem, error) {
	var out *domain.TabItem
	err := r.b.do("TabItems.FindByIDAndTab", func(d *memData) error {
		for _, it := range d.items {
			if it.ID == id && it.TabID == tabID {
				it.Product = productRef(d, it.ProductID)
				out = &it
				return nil
			}
		}
		return notFound("tab item", id)
	})
	return out, err
}

func (r memTabItems) ListByTabIDs(ctx context.Context, tabIDs []string) ([]domain.TabItem, error) {
	out := []domain.TabItem{}
	err := r.b.do("TabItems.ListByTabIDs", func(d *memData) error {
		for _, it := range d.items {
			if !slices.Contains(tabIDs, it.TabID) {
				continue
			}
			it.Product = productRef(d, it.ProductID)
			out = append(out, it)
		}
		return nil
	})
	return out, err
}

func (r memTabItems) Delete(ctx context.Context, id string) error {
	return r.b.do("TabItems.Delete", func(d *memData) error {
		for i, it := range d.items {
			if it.ID == id {
				d.items = slices.Delete(d.items, i, i+1)
				return nil
			}
		}
		return notFound("tab item", id)
	})
}

type memCourts struct{ b *memBinding }

func (r memCourts) List(ctx context.Context) ([]domain.Court, error) {
	out := []domain.Court{}
	err := r.b.do("Courts.List", func(d *memData) error {
		for _, c := range d.courts {
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r memCourts) FindByID(ctx context.Context, id string) (*domain.Court, error) {
	var out *domain.Court
	err := r.b.do("Courts.FindByID", func(d *memData) error {
		c, ok := d.courts[id]
		if !ok {
			return notFound("court", id)
		}
		out = &c
		return nil
	})
	return out, err
}

type memBookings struct{ b *memBinding }

func (r memBookings) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	var out *domain.Booking
	err := r.b.do("Bookings.FindByID", func(d *memData) error {
		bk, ok := d.bookings[id]
		if !ok {
			return notFound("booking", id)
		}
		bk.Court = courtRef(d, bk.CourtID)
		out = &bk
		return nil
	})
	return out, err
}

func (r memBookings) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	out := []domain.Booking{}
	err := r.b.do("Bookings.List", func(d *memData) error {
		for _, bk := range d.bookings {
			if filter.CourtID != nil && bk.CourtID != *filter.CourtID {
				continue
			}
			if filter.Day != nil && !sameDay(bk.Date, *filter.Day) {
				continue
			}
			bk.Court = courtRef(d, bk.CourtID)
			out = append(out, bk)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return strings.Compare(out[i].StartTime, out[j].StartTime) < 0
	})
	return out, err
}

func (r memBookings) Create(ctx context.Context, booking *domain.Booking) error {
	return r.b.do("Bookings.Create", func(d *memData) error {
		if booking.ID == "" {
			booking.ID = uuid.NewString()
		}
		stored := *booking
		stored.Court = nil
		d.bookings[booking.ID] = stored
		return nil
	})
}

func (r memBookings) Delete(ctx context.Context, id string) error {
	return r.b.do("Bookings.Delete", func(d *memData) error {
		if _, ok := d.bookings[id]; !ok {
			return notFound("booking", id)
		}
		delete(d.bookings, id)
		return nil
	})
}

func (r memBookings) Totals(ctx context.Context, from, to time.Time) (domain.Totals, error) {
	totals := domain.Totals{Sum: decimal.Zero}
	err := r.b.do("Bookings.Totals", func(d *memData) error {
		for _, bk := range d.bookings {
			if bk.Date.Before(from) || !bk.Date.Before(to) {
				continue
			}
			totals.Count++
			totals.Sum = totals.Sum.Add(bk.Price)
		}
		return nil
	})
	return totals, err
}

func productRef(d *memData, id string) *domain.Product {
	p, ok := d.products[id]
	if !ok {
		return nil
	}
	return &p
}

func courtRef(d *memData, id string) *domain.Court {
	c, ok := d.courts[id]
	if !ok {
		return nil
	}
	return &c
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
