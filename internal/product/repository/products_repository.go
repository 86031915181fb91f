package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	"arena/internal/errors"
	"arena/internal/infrastructure/mysql"
)

var _ repository.ProductRepository = (*MySQLRepository)(nil)

const productColumns = `id, nome, preco, unidade, controle_estoque, ativo, estoque_atual, created_at, updated_at`

type MySQLRepository struct {
	db mysql.Querier
}

func NewMySQLRepository(db mysql.Querier) *MySQLRepository {
	return &MySQLRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Price, &p.Unit, &p.StockTracked, &p.Active,
		&p.CurrentStock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM produtos WHERE id = ?`, id)
}

func (r *MySQLRepository) FindByIDForUpdate(ctx context.Context, id string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM produtos WHERE id = ? FOR UPDATE`, id)
}

func (r *MySQLRepository) findOne(ctx context.Context, query, id string) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}
	return p, nil
}

func (r *MySQLRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM produtos`
	var args []any
	if filter.Active != nil {
		query += ` WHERE ativo = ?`
		args = append(args, *filter.Active)
	}
	query += ` ORDER BY nome ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product row: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating product rows: %w", err)
	}

	return products, nil
}

func (r *MySQLRepository) Create(ctx context.Context, p *domain.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}

	query := `INSERT INTO produtos (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Price, p.Unit, p.StockTracked, p.Active,
		p.CurrentStock, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting product: %w", err)
	}
	return nil
}

func (r *MySQLRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE produtos
		SET nome = ?, preco = ?, unidade = ?, controle_estoque = ?, ativo = ?, updated_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.Price, p.Unit, p.StockTracked, p.Active, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating product: %w", err)
	}
	return requireAffected(result, p.ID)
}

func (r *MySQLRepository) UpdateStock(ctx context.Context, id string, stock decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `UPDATE produtos SET estoque_atual = ? WHERE id = ?`, stock, id)
	if err != nil {
		return fmt.Errorf("updating product stock: %w", err)
	}
	return requireAffected(result, id)
}

// requireAffected relies on the DSN setting clientFoundRows, so rows that
// matched but kept identical values still count.
func requireAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %s not found", id))
	}
	return nil
}
