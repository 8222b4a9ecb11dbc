package badgerdb

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/dgraph-io/badger"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

func (s *Store) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	var rec reservationRecord
	err := s.view(ctx, func(txn *badger.Txn) error {
		ok, err := get(txn, reservationPrefix+id, &rec)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrReservationNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Reservation{}, err
	}
	return domain.Reservation(rec), nil
}

func (s *Store) ListReservationsByEvent(ctx context.Context, eventID string) ([]domain.Reservation, error) {
	return s.listReservations(ctx, func(r domain.Reservation) bool {
		return r.EventID == eventID
	})
}

// ListExpiredReservations returns reservations with ExpiresAt at or before
// now, oldest first.
func (s *Store) ListExpiredReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	out, err := s.listReservations(ctx, func(r domain.Reservation) bool {
		return r.Expired(now)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out, err
}

func (s *Store) listReservations(ctx context.Context, keep func(domain.Reservation) bool) ([]domain.Reservation, error) {
	var out []domain.Reservation
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, reservationPrefix, func(val []byte) error {
			var rec reservationRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			if r := domain.Reservation(rec); keep(r) {
				out = append(out, r)
			}
			return nil
		})
	})
	return out, err
}

func (s *Store) CreateReservation(ctx context.Context, r domain.Reservation) error {
	return s.run(ctx, func(txn *badger.Txn) error {
		var current reservationRecord
		exists, err := get(txn, reservationPrefix+r.ID, &current)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrConflict
		}
		return put(txn, reservationPrefix+r.ID, reservationRecord(r))
	})
}

func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	return s.run(ctx, func(txn *badger.Txn) error {
		var current reservationRecord
		exists, err := get(txn, reservationPrefix+id, &current)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrReservationNotFound
		}
		return txn.Delete([]byte(reservationPrefix + id))
	})
}
