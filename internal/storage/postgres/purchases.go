package postgres

import (
	"context"
	"fmt"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

func (s *Store) CreatePurchase(ctx context.Context, p domain.Purchase) error {
	const stmt = `
INSERT INTO purchases (id, event_id, ticket_type_id, ticket_type, buyer, price, reservation_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.exec(ctx, stmt, p.ID, p.EventID, p.TicketTypeID, p.TicketType, p.User, p.Price, p.ReservationID, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create purchase: %w", err)
	}
	return nil
}

func (s *Store) ListPurchasesByEvent(ctx context.Context, eventID string) ([]domain.Purchase, error) {
	const query = `
SELECT id, event_id, ticket_type_id, ticket_type, buyer, price, reservation_id, created_at
FROM purchases
WHERE event_id = $1
ORDER BY created_at, id`

	rows, err := s.query(ctx, query, eventID)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		var p domain.Purchase
		if err := rows.Scan(&p.ID, &p.EventID, &p.TicketTypeID, &p.TicketType, &p.User, &p.Price, &p.ReservationID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return out, nil
}
