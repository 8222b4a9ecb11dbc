package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

const venueColumns = `id, name, capacity, available_dates, event_ids, version`

func scanVenue(row pgx.Row) (domain.Venue, error) {
	var v domain.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Capacity, &v.AvailableDates, &v.EventIDs, &v.Version)
	return v, err
}

func (s *Store) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	query := forUpdate(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = $1`)
	v, err := scanVenue(s.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Venue{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Venue{}, domain.ErrVenueNotFound
		}
		return domain.Venue{}, fmt.Errorf("get venue: %w", err)
	}
	return v, nil
}

func (s *Store) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	rows, err := s.query(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	defer rows.Close()

	var venues []domain.Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

func (s *Store) SaveVenue(ctx context.Context, venue domain.Venue) error {
	if venue.Version == 0 {
		const stmt = `
INSERT INTO venues (id, name, capacity, available_dates, event_ids, version)
VALUES ($1, $2, $3, $4, $5, 1)`
		_, err := s.exec(ctx, stmt, venue.ID, venue.Name, venue.Capacity, nonNil(venue.AvailableDates), nonNil(venue.EventIDs))
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("insert venue: %w", err)
		}
		return nil
	}

	const stmt = `
UPDATE venues
SET name = $2, capacity = $3, available_dates = $4, event_ids = $5, version = version + 1
WHERE id = $1 AND version = $6`
	tag, err := s.exec(ctx, stmt, venue.ID, venue.Name, venue.Capacity, nonNil(venue.AvailableDates), nonNil(venue.EventIDs), venue.Version)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (s *Store) DeleteVenue(ctx context.Context, id string) error {
	tag, err := s.exec(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrVenueHasEvents
		}
		return fmt.Errorf("delete venue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVenueNotFound
	}
	return nil
}
