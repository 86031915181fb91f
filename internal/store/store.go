// Package store wires the MySQL repositories to a connection pool and runs
// units of work inside a single transaction.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	courtrepo "arena/internal/court/repository"
	"arena/internal/domain/repository"
	apperrors "arena/internal/errors"
	"arena/internal/infrastructure/mysql"
	productrepo "arena/internal/product/repository"
	stockrepo "arena/internal/stock/repository"
	tabrepo "arena/internal/tab/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// NewRepositories binds every repository to q, a pool or an open transaction.
func NewRepositories(q mysql.Querier) repository.Repositories {
	return repository.Repositories{
		Products:  productrepo.NewMySQLRepository(q),
		Movements: stockrepo.NewMySQLMovementRepository(q),
		Tabs:      tabrepo.NewMySQLTabRepository(q),
		TabItems:  tabrepo.NewMySQLTabItemRepository(q),
		Courts:    courtrepo.NewMySQLCourtRepository(q),
		Bookings:  courtrepo.NewMySQLBookingRepository(q),
	}
}

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type TxRunner struct {
	db               TransactionManager
	logger           *zap.Logger
	timeout          time.Duration
	maxRetryAttempts int
	backoffs         []time.Duration
}

func NewTxRunner(db TransactionManager, logger *zap.Logger, timeout time.Duration, maxRetryAttempts int) *TxRunner {
	if maxRetryAttempts < 1 {
		maxRetryAttempts = 1
	}
	return &TxRunner{
		db:               db,
		logger:           logger,
		timeout:          timeout,
		maxRetryAttempts: maxRetryAttempts,
		backoffs:         []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond},
	}
}

// Run executes fn in a REPEATABLE READ transaction. Row locks taken with
// SELECT ... FOR UPDATE inside fn are held until commit or rollback. When
// MySQL aborts the transaction with a deadlock or lock wait timeout, the
// whole unit runs again from scratch, up to maxRetryAttempts times.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	for attempt := 1; attempt <= r.maxRetryAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}

		if !mysql.IsRetryable(err) {
			return err
		}

		if attempt < r.maxRetryAttempts {
			r.logger.Warn("lock conflict, retrying transaction",
				zap.Int("attempt", attempt), zap.Int("maxAttempts", r.maxRetryAttempts), zap.Error(err))
			if err := r.sleep(ctx, attempt); err != nil {
				return err
			}
		}
	}

	return apperrors.NewDeadlockError("transaction aborted by lock conflicts, max retries exceeded")
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	txCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		r.logger.Error("failed to begin transaction", zap.Error(err))
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op returning sql.ErrTxDone.
	defer tx.Rollback()

	if err := fn(txCtx, NewRepositories(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("failed to commit transaction", zap.Error(err))
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// sleep waits for the attempt's backoff plus up to 20% jitter.
func (r *TxRunner) sleep(ctx context.Context, attempt int) error {
	base := r.backoffs[len(r.backoffs)-1]
	if attempt < len(r.backoffs) {
		base = r.backoffs[attempt]
	}
	if base <= 0 {
		return nil
	}
	wait := base + time.Duration(rand.Float64()*0.2*float64(base))

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Store owns the process-wide pool and the repositories bound to it.
type Store struct {
	DB     *sql.DB
	Repos  repository.Repositories
	Runner *TxRunner
}

func New(db *sql.DB, logger *zap.Logger, timeout time.Duration, maxRetryAttempts int) *Store {
	return &Store{
		DB:     db,
		Repos:  NewRepositories(db),
		Runner: NewTxRunner(db, logger, timeout, maxRetryAttempts),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.DB.Close()
}
