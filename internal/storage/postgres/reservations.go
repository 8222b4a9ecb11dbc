package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

const reservationColumns = `id, event_id, ticket_type_id, holder, expires_at, created_at`

func scanReservation(row pgx.Row) (domain.Reservation, error) {
	var r domain.Reservation
	err := row.Scan(&r.ID, &r.EventID, &r.TicketTypeID, &r.User, &r.ExpiresAt, &r.CreatedAt)
	return r, err
}

func (s *Store) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	query := forUpdate(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`)
	r, err := scanReservation(s.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Reservation{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("get reservation: %w", err)
	}
	return r, nil
}

func (s *Store) ListReservationsByEvent(ctx context.Context, eventID string) ([]domain.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE event_id = $1 ORDER BY expires_at, id`
	return s.listReservations(ctx, "list reservations by event", query, eventID)
}

func (s *Store) ListExpiredReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	const query = `SELECT ` + reservationColumns + ` FROM reservations WHERE expires_at <= $1 ORDER BY expires_at, id`
	return s.listReservations(ctx, "list expired reservations", query, now)
}

func (s *Store) listReservations(ctx context.Context, op, query string, args ...any) ([]domain.Reservation, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

func (s *Store) CreateReservation(ctx context.Context, r domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, event_id, ticket_type_id, holder, expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.exec(ctx, stmt, r.ID, r.EventID, r.TicketTypeID, r.User, r.ExpiresAt, r.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return domain.ErrEventNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	tag, err := s.exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReservationNotFound
	}
	return nil
}
