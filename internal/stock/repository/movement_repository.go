package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	"arena/internal/errors"
	"arena/internal/infrastructure/mysql"
)

var _ repository.StockMovementRepository = (*MySQLMovementRepository)(nil)

const movementWithProductQuery = `
	SELECT m.id, m.produto_id, m.tipo, m.quantidade, m.motivo, m.created_at,
	       p.id, p.nome, p.preco, p.unidade, p.controle_estoque, p.ativo, p.estoque_atual,
	       p.created_at, p.updated_at
	FROM movimentacoes_estoque m
	JOIN produtos p ON p.id = m.produto_id`

type MySQLMovementRepository struct {
	db mysql.Querier
}

func NewMySQLMovementRepository(db mysql.Querier) *MySQLMovementRepository {
	return &MySQLMovementRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovement(row rowScanner) (*domain.StockMovement, error) {
	var m domain.StockMovement
	var p domain.Product
	err := row.Scan(
		&m.ID, &m.ProductID, &m.Kind, &m.Quantity, &m.Reason, &m.CreatedAt,
		&p.ID, &p.Name, &p.Price, &p.Unit, &p.StockTracked, &p.Active, &p.CurrentStock,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.Product = &p
	return &m, nil
}

// Create appends a movement. The ledger has no update or delete.
func (r *MySQLMovementRepository) Create(ctx context.Context, m *domain.StockMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}

	query := `
		INSERT INTO movimentacoes_estoque (id, produto_id, tipo, quantidade, motivo, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, m.ID, m.ProductID, m.Kind, m.Quantity, m.Reason, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting stock movement: %w", err)
	}
	return nil
}

func (r *MySQLMovementRepository) FindByID(ctx context.Context, id string) (*domain.StockMovement, error) {
	m, err := scanMovement(r.db.QueryRowContext(ctx, movementWithProductQuery+` WHERE m.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("stock movement with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying stock movement by id: %w", err)
	}
	return m, nil
}

func (r *MySQLMovementRepository) List(ctx context.Context, productID *string) ([]domain.StockMovement, error) {
	query := movementWithProductQuery
	var args []any
	if productID != nil {
		query += ` WHERE m.produto_id = ?`
		args = append(args, *productID)
	}
	// seq follows commit order for a product because every movement is
	// written under the product's row lock; created_at can tie.
	query += ` ORDER BY m.seq DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying stock movements: %w", err)
	}
	defer rows.Close()

	movements := []domain.StockMovement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stock movement row: %w", err)
		}
		movements = append(movements, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stock movement rows: %w", err)
	}

	return movements, nil
}
