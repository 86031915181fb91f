package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	"arena/internal/errors"
	"arena/internal/infrastructure/mysql"
)

var _ repository.TabItemRepository = (*MySQLTabItemRepository)(nil)

type MySQLTabItemRepository struct {
	db mysql.Querier
}

func NewMySQLTabItemRepository(db mysql.Querier) *MySQLTabItemRepository {
	return &MySQLTabItemRepository{db: db}
}

func (r *MySQLTabItemRepository) Create(ctx context.Context, item *domain.TabItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	query := `
		INSERT INTO itens_comanda (id, comanda_id, produto_id, quantidade, preco_unitario, subtotal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.TabID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting tab item: %w", err)
	}
	return nil
}

func (r *MySQLTabItemRepository) FindByIDAndTab(ctx context.Context, id, tabID string) (*domain.TabItem, error) {
	query := `
		SELECT id, comanda_id, produto_id, quantidade, preco_unitario, subtotal, created_at
		FROM itens_comanda
		WHERE id = ? AND comanda_id = ?`

	var item domain.TabItem
	err := r.db.QueryRowContext(ctx, query, id, tabID).Scan(
		&item.ID, &item.TabID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("item %s not found on tab %s", id, tabID))
	}
	if err != nil {
		return nil, fmt.Errorf("querying tab item: %w", err)
	}
	return &item, nil
}

func (r *MySQLTabItemRepository) ListByTabIDs(ctx context.Context, tabIDs []string) ([]domain.TabItem, error) {
	if len(tabIDs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(tabIDs))
	args := make([]any, len(tabIDs))
	for i, id := range tabIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT i.id, i.comanda_id, i.produto_id, i.quantidade, i.preco_unitario, i.subtotal, i.created_at,
		       p.id, p.nome, p.preco, p.unidade, p.controle_estoque, p.ativo, p.estoque_atual,
		       p.created_at, p.updated_at
		FROM itens_comanda i
		JOIN produtos p ON p.id = i.produto_id
		WHERE i.comanda_id IN (%s)
		ORDER BY i.created_at ASC, i.id ASC`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tab items: %w", err)
	}
	defer rows.Close()

	var items []domain.TabItem
	for rows.Next() {
		var item domain.TabItem
		var p domain.Product
		err := rows.Scan(
			&item.ID, &item.TabID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Subtotal, &item.CreatedAt,
			&p.ID, &p.Name, &p.Price, &p.Unit, &p.StockTracked, &p.Active, &p.CurrentStock,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning tab item row: %w", err)
		}
		item.Product = &p
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tab item rows: %w", err)
	}

	return items, nil
}

func (r *MySQLTabItemRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM itens_comanda WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting tab item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("item %s not found", id))
	}
	return nil
}
