package repository

import (
	"context"
	"database/sql"
	"fmt"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	"arena/internal/errors"
	"arena/internal/infrastructure/mysql"
)

var _ repository.CourtRepository = (*MySQLCourtRepository)(nil)

type MySQLCourtRepository struct {
	db mysql.Querier
}

func NewMySQLCourtRepository(db mysql.Querier) *MySQLCourtRepository {
	return &MySQLCourtRepository{db: db}
}

func (r *MySQLCourtRepository) List(ctx context.Context) ([]domain.Court, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nome, modalidade, ativo FROM quadras ORDER BY nome ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying courts: %w", err)
	}
	defer rows.Close()

	courts := []domain.Court{}
	for rows.Next() {
		var c domain.Court
		if err := rows.Scan(&c.ID, &c.Name, &c.Modality, &c.Active); err != nil {
			return nil, fmt.Errorf("scanning court row: %w", err)
		}
		courts = append(courts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating court rows: %w", err)
	}

	return courts, nil
}

func (r *MySQLCourtRepository) FindByID(ctx context.Context, id string) (*domain.Court, error) {
	var c domain.Court
	err := r.db.QueryRowContext(ctx, `SELECT id, nome, modalidade, ativo FROM quadras WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Modality, &c.Active)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("court with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying court by id: %w", err)
	}
	return &c, nil
}
