package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	"arena/internal/errors"
	"arena/internal/infrastructure/mysql"
)

var _ repository.TabRepository = (*MySQLTabRepository)(nil)

const tabColumns = `id, numero, mesa, status, total, fechada_em, created_at, updated_at`

type MySQLTabRepository struct {
	db mysql.Querier
}

func NewMySQLTabRepository(db mysql.Querier) *MySQLTabRepository {
	return &MySQLTabRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTab(row rowScanner) (*domain.Tab, error) {
	var tab domain.Tab
	err := row.Scan(
		&tab.ID, &tab.Number, &tab.Table, &tab.Status, &tab.Total,
		&tab.ClosedAt, &tab.CreatedAt, &tab.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tab, nil
}

func (r *MySQLTabRepository) FindByID(ctx context.Context, id string) (*domain.Tab, error) {
	return r.findOne(ctx, `SELECT `+tabColumns+` FROM comandas WHERE id = ?`, id)
}

func (r *MySQLTabRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Tab, error) {
	return r.findOne(ctx, `SELECT `+tabColumns+` FROM comandas WHERE id = ? FOR UPDATE`, id)
}

func (r *MySQLTabRepository) findOne(ctx context.Context, query, id string) (*domain.Tab, error) {
	tab, err := scanTab(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("tab with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying tab by id: %w", err)
	}
	return tab, nil
}

// FindOpenByNumberForUpdate takes a next-key lock on the (numero, status)
// index, so two transactions opening the same number serialize here.
func (r *MySQLTabRepository) FindOpenByNumberForUpdate(ctx context.Context, number int) (*domain.Tab, error) {
	query := `SELECT ` + tabColumns + ` FROM comandas WHERE numero = ? AND status = ? LIMIT 1 FOR UPDATE`

	tab, err := scanTab(r.db.QueryRowContext(ctx, query, number, domain.TabStatusOpen))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying open tab by number: %w", err)
	}
	return tab, nil
}

func (r *MySQLTabRepository) MaxNumber(ctx context.Context) (int, error) {
	var maxNumber sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT MAX(numero) FROM comandas`).Scan(&maxNumber); err != nil {
		return 0, fmt.Errorf("querying max tab number: %w", err)
	}
	return int(maxNumber.Int64), nil
}

func (r *MySQLTabRepository) List(ctx context.Context, status *domain.TabStatus) ([]domain.Tab, error) {
	query := `SELECT ` + tabColumns + ` FROM comandas`
	var args []any
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY numero DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tabs: %w", err)
	}
	defer rows.Close()

	tabs := []domain.Tab{}
	for rows.Next() {
		tab, err := scanTab(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tab row: %w", err)
		}
		tabs = append(tabs, *tab)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tab rows: %w", err)
	}

	return tabs, nil
}

func (r *MySQLTabRepository) Create(ctx context.Context, tab *domain.Tab) error {
	if tab.ID == "" {
		tab.ID = uuid.New().String()
	}

	query := `INSERT INTO comandas (` + tabColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		tab.ID, tab.Number, tab.Table, tab.Status, tab.Total,
		tab.ClosedAt, tab.CreatedAt, tab.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting tab: %w", err)
	}
	return nil
}

func (r *MySQLTabRepository) UpdateTotal(ctx context.Context, id string, total decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `UPDATE comandas SET total = ?, updated_at = ? WHERE id = ?`, total, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating tab total: %w", err)
	}
	return requireAffected(result, id)
}

func (r *MySQLTabRepository) UpdateStatus(ctx context.Context, id string, status domain.TabStatus, closedAt *time.Time) error {
	query := `UPDATE comandas SET status = ?, fechada_em = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, status, closedAt, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating tab status: %w", err)
	}
	return requireAffected(result, id)
}

func (r *MySQLTabRepository) Totals(ctx context.Context, status domain.TabStatus, from, to time.Time) (domain.Totals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(total), 0)
		FROM comandas
		WHERE status = ? AND created_at >= ? AND created_at < ?`

	var totals domain.Totals
	err := r.db.QueryRowContext(ctx, query, status, from, to).Scan(&totals.Count, &totals.Sum)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("summing tabs: %w", err)
	}
	return totals, nil
}

func requireAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("tab with id %s not found", id))
	}
	return nil
}
