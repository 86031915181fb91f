package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	apperrors "arena/internal/errors"
	"arena/internal/testutil"
)

// failingBeginner fails every BeginTx with err and counts the calls.
type failingBeginner struct {
	err   error
	calls int
}

func (f *failingBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	f.calls++
	return nil, f.err
}

func noop(ctx context.Context, repos repository.Repositories) error { return nil }

func TestNewTxRunner_ClampsAttempts(t *testing.T) {
	r := NewTxRunner(&failingBeginner{}, zap.NewNop(), 0, 0)
	assert.Equal(t, 1, r.maxRetryAttempts)

	r = NewTxRunner(&failingBeginner{}, zap.NewNop(), 0, 5)
	assert.Equal(t, 5, r.maxRetryAttempts)
}

func TestRun_RetriesDeadlockThenGivesUp(t *testing.T) {
	db := &failingBeginner{err: &gomysql.MySQLError{Number: 1213, Message: "Deadlock found when trying to get lock"}}
	r := NewTxRunner(db, zap.NewNop(), time.Second, 3)
	r.backoffs = []time.Duration{0}

	err := r.Run(context.Background(), noop)

	_, ok := apperrors.IsDeadlockError(err)
	require.True(t, ok, "expected DeadlockError, got %v", err)
	assert.Equal(t, 3, db.calls)
}

func TestRun_RetriesLockWaitTimeout(t *testing.T) {
	db := &failingBeginner{err: &gomysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"}}
	r := NewTxRunner(db, zap.NewNop(), 0, 2)
	r.backoffs = []time.Duration{0}

	err := r.Run(context.Background(), noop)

	_, ok := apperrors.IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, 2, db.calls)
}

func TestRun_OtherErrorsAreNotRetried(t *testing.T) {
	db := &failingBeginner{err: errors.New("connection refused")}
	r := NewTxRunner(db, zap.NewNop(), 0, 3)

	err := r.Run(context.Background(), noop)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, db.calls)
}

func TestRun_BackoffHonorsContext(t *testing.T) {
	db := &failingBeginner{err: &gomysql.MySQLError{Number: 1213}}
	r := NewTxRunner(db, zap.NewNop(), 0, 3)
	r.backoffs = []time.Duration{time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, noop)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, db.calls)
}

// Integration Tests

func TestRun_CommitAndRollback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	st := New(db, zap.NewNop(), 5*time.Second, 3)
	ctx := context.Background()
	now := time.Now().UTC()

	var id string
	err := st.Runner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		p := &domain.Product{Name: "Agua", Price: decimal.NewFromInt(4), Unit: domain.DefaultUnit, StockTracked: true, Active: true, CurrentStock: decimal.Zero, CreatedAt: now, UpdatedAt: now}
		if err := repos.Products.Create(ctx, p); err != nil {
			return err
		}
		id = p.ID
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = st.Runner.Run(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Products.UpdateStock(ctx, id, decimal.NewFromInt(50)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := st.Repos.Products.FindByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, p.CurrentStock.IsZero())
	assert.NoError(t, st.Ping(ctx))
}
