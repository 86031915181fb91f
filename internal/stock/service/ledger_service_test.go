package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arena/internal/domain"
	apperrors "arena/internal/errors"
	"arena/internal/testutil"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestLedgerService(ms *testutil.MemStore) *LedgerService {
	return NewLedgerService(ms.Repos(), ms, zap.NewNop())
}

func seedTracked(ms *testutil.MemStore) domain.Product {
	return ms.SeedProduct(domain.Product{Name: "Refrigerante", Price: d("6"), StockTracked: true, Active: true, CurrentStock: decimal.Zero})
}

func record(t *testing.T, svc *LedgerService, productID, kind, quantity string) *domain.StockMovement {
	t.Helper()
	m, err := svc.RecordMovement(context.Background(), RecordMovementInput{ProductID: productID, Kind: kind, Quantity: d(quantity)})
	require.NoError(t, err)
	return m
}

func TestRecordMovement_EntryAndExit(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)

	reason := "Compra fornecedor"
	m, err := svc.RecordMovement(context.Background(), RecordMovementInput{
		ProductID: p.ID,
		Kind:      "entrada",
		Quantity:  d("24"),
		Reason:    &reason,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MovementIn, m.Kind)
	require.NotNil(t, m.Product)
	assert.True(t, m.Product.CurrentStock.Equal(d("24")))
	require.NotNil(t, m.Reason)
	assert.Equal(t, "Compra fornecedor", *m.Reason)

	m = record(t, svc, p.ID, "saida", "4")
	assert.True(t, m.Quantity.Equal(d("4")))
	assert.True(t, m.Product.CurrentStock.Equal(d("20")))

	stored, _ := ms.Product(p.ID)
	assert.True(t, stored.CurrentStock.Equal(d("20")))
}

func TestRecordMovement_AdjustmentRecordsResultingBalance(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)

	record(t, svc, p.ID, "entrada", "12")
	m := record(t, svc, p.ID, "ajuste", "5")

	assert.Equal(t, domain.MovementAdjustment, m.Kind)
	assert.True(t, m.Quantity.Equal(d("5")))
	assert.True(t, m.Product.CurrentStock.Equal(d("5")))

	stored, _ := ms.Product(p.ID)
	assert.True(t, stored.CurrentStock.Equal(domain.ReplayStock(ms.Movements(p.ID))))
}

func TestRecordMovement_AdjustmentToZero(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)

	record(t, svc, p.ID, "entrada", "3")
	m := record(t, svc, p.ID, "ajuste", "0")

	assert.True(t, m.Product.CurrentStock.IsZero())
}

func TestRecordMovement_KindIsCaseInsensitive(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)

	m := record(t, svc, p.ID, "ENTRADA", "1")
	assert.Equal(t, domain.MovementIn, m.Kind)
}

func TestRecordMovement_ExitBeyondStock(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)
	record(t, svc, p.ID, "entrada", "2")

	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{ProductID: p.ID, Kind: "saida", Quantity: d("3")})

	ise, ok := apperrors.IsInsufficientStockError(err)
	require.True(t, ok, "expected InsufficientStockError, got %T", err)
	assert.Equal(t, p.ID, ise.ProductID)
	assert.Equal(t, "2", ise.Available)
	assert.Len(t, ms.Movements(p.ID), 1)
}

func TestRecordMovement_Validation(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)

	tests := []struct {
		name  string
		in    RecordMovementInput
		field string
	}{
		{"unknown kind", RecordMovementInput{ProductID: p.ID, Kind: "perda", Quantity: d("1")}, "tipo"},
		{"missing product", RecordMovementInput{Kind: "entrada", Quantity: d("1")}, "produtoId"},
		{"negative quantity", RecordMovementInput{ProductID: p.ID, Kind: "entrada", Quantity: d("-1")}, "quantidade"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordMovement(context.Background(), tt.in)
			ve, ok := apperrors.IsValidationError(err)
			require.True(t, ok, "expected ValidationError, got %T", err)
			assert.Equal(t, tt.field, ve.Details[0].Field)
		})
	}
	assert.Empty(t, ms.Movements(p.ID))
}

func TestRecordMovement_QuantityBeyondColumnScale(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)
	record(t, svc, p.ID, "entrada", "1")

	for _, tt := range []struct{ kind, quantity string }{
		{"saida", "0.0004"},
		{"entrada", "2.5001"},
		{"ajuste", "1000000000"},
	} {
		_, err := svc.RecordMovement(context.Background(), RecordMovementInput{ProductID: p.ID, Kind: tt.kind, Quantity: d(tt.quantity)})
		ve, ok := apperrors.IsValidationError(err)
		require.True(t, ok, "%s %s: expected ValidationError, got %T", tt.kind, tt.quantity, err)
		assert.Equal(t, "quantidade", ve.Details[0].Field)
	}

	assert.Len(t, ms.Movements(p.ID), 1)
	stored, _ := ms.Product(p.ID)
	assert.True(t, stored.CurrentStock.Equal(d("1")))
}

func TestRecordMovement_BalanceBeyondColumnRange(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)
	record(t, svc, p.ID, "ajuste", "999999999")

	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{ProductID: p.ID, Kind: "entrada", Quantity: d("1")})
	_, ok := apperrors.IsValidationError(err)
	require.True(t, ok, "expected ValidationError, got %T", err)

	assert.Len(t, ms.Movements(p.ID), 1)
	stored, _ := ms.Product(p.ID)
	assert.True(t, stored.CurrentStock.Equal(d("999999999")))
}

func TestRecordMovement_ReturnsStoredMovement(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)

	m := record(t, svc, p.ID, "entrada", "3.5")

	stored := ms.Movements(p.ID)
	require.Len(t, stored, 1)
	assert.Equal(t, stored[0].ID, m.ID)
	require.NotNil(t, m.Product)
	assert.Equal(t, "Refrigerante", m.Product.Name)
	assert.True(t, m.Product.CurrentStock.Equal(d("3.5")))

	ms.FailOn("Movements.FindByID", errors.New("read timeout"))
	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{ProductID: p.ID, Kind: "entrada", Quantity: d("1")})
	_, ok := apperrors.IsInternalError(err)
	require.True(t, ok, "expected InternalError, got %T", err)

	assert.Len(t, ms.Movements(p.ID), 1)
	after, _ := ms.Product(p.ID)
	assert.True(t, after.CurrentStock.Equal(d("3.5")))
}

func TestRecordMovement_UnknownProduct(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)

	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{ProductID: "missing", Kind: "entrada", Quantity: d("1")})

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok, "expected NotFoundError, got %T", err)
}

func TestRecordMovement_StockUpdateFailureRollsBack(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)
	record(t, svc, p.ID, "entrada", "10")

	ms.FailOn("Products.UpdateStock", errors.New("lost connection"))
	_, err := svc.RecordMovement(context.Background(), RecordMovementInput{ProductID: p.ID, Kind: "saida", Quantity: d("4")})
	ms.ClearFailures()

	_, ok := apperrors.IsInternalError(err)
	require.True(t, ok, "expected InternalError, got %T", err)
	assert.Len(t, ms.Movements(p.ID), 1)
	stored, _ := ms.Product(p.ID)
	assert.True(t, stored.CurrentStock.Equal(d("10")))
}

func TestRecordMovement_ConcurrentExitsNeverGoNegative(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	p := seedTracked(ms)
	record(t, svc, p.ID, "entrada", "6")

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RecordMovement(context.Background(), RecordMovementInput{ProductID: p.ID, Kind: "saida", Quantity: d("1")})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 6, succeeded)
	stored, _ := ms.Product(p.ID)
	assert.True(t, stored.CurrentStock.IsZero())
	assert.True(t, stored.CurrentStock.Equal(domain.ReplayStock(ms.Movements(p.ID))))
}

func TestListMovements(t *testing.T) {
	ms := testutil.NewMemStore()
	svc := newTestLedgerService(ms)
	a := seedTracked(ms)
	b := ms.SeedProduct(domain.Product{Name: "Agua", Price: d("4"), StockTracked: true, Active: true, CurrentStock: decimal.Zero})

	record(t, svc, a.ID, "entrada", "5")
	record(t, svc, b.ID, "entrada", "7")
	last := record(t, svc, a.ID, "saida", "1")

	all, err := svc.ListMovements(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, last.ID, all[0].ID)
	require.NotNil(t, all[0].Product)
	assert.Equal(t, "Refrigerante", all[0].Product.Name)

	onlyA, err := svc.ListMovements(context.Background(), &a.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	for _, m := range onlyA {
		assert.Equal(t, a.ID, m.ProductID)
	}
}
