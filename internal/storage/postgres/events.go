package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

const eventColumns = `id, venue_id, name, event_date, description, capacity, version`

func scanEvent(row pgx.Row) (domain.Event, error) {
	var e domain.Event
	err := row.Scan(&e.ID, &e.VenueID, &e.Name, &e.Date, &e.Description, &e.Capacity, &e.Version)
	return e, err
}

func (s *Store) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	query := forUpdate(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`)
	e, err := scanEvent(s.queryRow(ctx, query, id))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Event{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Event{}, domain.ErrEventNotFound
		}
		return domain.Event{}, fmt.Errorf("get event: %w", err)
	}

	e.Tickets, err = s.ticketTypes(ctx, e.ID)
	if err != nil {
		return domain.Event{}, err
	}
	return e, nil
}

func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := s.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	// Ticket rows are loaded after the cursor is closed; a transaction
	// cannot run a second query while one is open.
	for i := range events {
		events[i].Tickets, err = s.ticketTypes(ctx, events[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return events, nil
}

func (s *Store) ticketTypes(ctx context.Context, eventID string) (domain.TicketLedger, error) {
	const query = `
SELECT id, name, price, total, remaining
FROM ticket_types
WHERE event_id = $1
ORDER BY position`

	rows, err := s.query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	defer rows.Close()

	var ledger domain.TicketLedger
	for rows.Next() {
		var t domain.TicketType
		if err := rows.Scan(&t.ID, &t.Name, &t.Price, &t.Total, &t.Remaining); err != nil {
			return nil, fmt.Errorf("scan ticket type: %w", err)
		}
		ledger = append(ledger, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	return ledger, nil
}

// SaveEvent writes the event row and upserts its ticket types by ID, so
// existing rows keep their position and identity.
func (s *Store) SaveEvent(ctx context.Context, event domain.Event) error {
	return s.WithTx(ctx, func(ctx context.Context) error {
		if err := s.saveEventRow(ctx, event); err != nil {
			return err
		}

		const stmt = `
INSERT INTO ticket_types (id, event_id, position, name, price, total, remaining)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name, price = EXCLUDED.price, total = EXCLUDED.total, remaining = EXCLUDED.remaining`
		for i, t := range event.Tickets {
			if _, err := s.exec(ctx, stmt, t.ID, event.ID, i, t.Name, t.Price, t.Total, t.Remaining); err != nil {
				if isInvalidUUID(err) {
					return domain.ErrInvalidID
				}
				return fmt.Errorf("save ticket type %s: %w", t.Name, err)
			}
		}
		return nil
	})
}

func (s *Store) saveEventRow(ctx context.Context, event domain.Event) error {
	if event.Version == 0 {
		const stmt = `
INSERT INTO events (id, venue_id, name, event_date, description, capacity, version)
VALUES ($1, $2, $3, $4, $5, $6, 1)`
		_, err := s.exec(ctx, stmt, event.ID, event.VenueID, event.Name, event.Date, event.Description, event.Capacity)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			if isForeignKeyViolation(err) {
				return domain.ErrVenueNotFound
			}
			if isInvalidUUID(err) {
				return domain.ErrInvalidID
			}
			return fmt.Errorf("insert event: %w", err)
		}
		return nil
	}

	const stmt = `
UPDATE events
SET name = $2, event_date = $3, description = $4, capacity = $5, version = version + 1
WHERE id = $1 AND version = $6`
	tag, err := s.exec(ctx, stmt, event.ID, event.Name, event.Date, event.Description, event.Capacity, event.Version)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	tag, err := s.exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}
