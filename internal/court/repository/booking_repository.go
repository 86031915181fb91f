package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"arena/internal/domain"
	"arena/internal/domain/repository"
	"arena/internal/errors"
	"arena/internal/infrastructure/mysql"
)

var _ repository.BookingRepository = (*MySQLBookingRepository)(nil)

const bookingWithCourtQuery = `
	SELECT b.id, b.quadra_id, b.data, b.hora_inicio, b.hora_fim, b.cliente, b.telefone, b.valor, b.created_at,
	       q.id, q.nome, q.modalidade, q.ativo
	FROM agendamentos b
	JOIN quadras q ON q.id = b.quadra_id`

type MySQLBookingRepository struct {
	db mysql.Querier
}

func NewMySQLBookingRepository(db mysql.Querier) *MySQLBookingRepository {
	return &MySQLBookingRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	var c domain.Court
	err := row.Scan(
		&b.ID, &b.CourtID, &b.Date, &b.StartTime, &b.EndTime, &b.Customer, &b.Phone, &b.Price, &b.CreatedAt,
		&c.ID, &c.Name, &c.Modality, &c.Active,
	)
	if err != nil {
		return nil, err
	}
	b.Court = &c
	return &b, nil
}

func (r *MySQLBookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, bookingWithCourtQuery+` WHERE b.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying booking by id: %w", err)
	}
	return b, nil
}

func (r *MySQLBookingRepository) List(ctx context.Context, filter repository.BookingFilter) ([]domain.Booking, error) {
	var conds []string
	var args []any
	if filter.Day != nil {
		conds = append(conds, "b.data = ?")
		args = append(args, filter.Day.Format(time.DateOnly))
	}
	if filter.CourtID != nil {
		conds = append(conds, "b.quadra_id = ?")
		args = append(args, *filter.CourtID)
	}

	query := bookingWithCourtQuery
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY b.data ASC, b.hora_inicio ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking row: %w", err)
		}
		bookings = append(bookings, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking rows: %w", err)
	}

	return bookings, nil
}

func (r *MySQLBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	query := `
		INSERT INTO agendamentos (id, quadra_id, data, hora_inicio, hora_fim, cliente, telefone, valor, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		b.ID, b.CourtID, b.Date.Format(time.DateOnly), b.StartTime, b.EndTime, b.Customer, b.Phone, b.Price, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting booking: %w", err)
	}
	return nil
}

func (r *MySQLBookingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM agendamentos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("booking with id %s not found", id))
	}
	return nil
}

func (r *MySQLBookingRepository) Totals(ctx context.Context, from, to time.Time) (domain.Totals, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(valor), 0)
		FROM agendamentos
		WHERE data >= ? AND data < ?`

	var totals domain.Totals
	err := r.db.QueryRowContext(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly)).
		Scan(&totals.Count, &totals.Sum)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("summing bookings: %w", err)
	}
	return totals, nil
}
