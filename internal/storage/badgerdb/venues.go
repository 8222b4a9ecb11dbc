package badgerdb

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

func (s *Store) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	var rec venueRecord
	err := s.view(ctx, func(txn *badger.Txn) error {
		ok, err := get(txn, venuePrefix+id, &rec)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrVenueNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Venue{}, err
	}
	return rec.domain(), nil
}

func (s *Store) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	var venues []domain.Venue
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, venuePrefix, func(val []byte) error {
			var rec venueRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			venues = append(venues, rec.domain())
			return nil
		})
	})
	return venues, err
}

func (s *Store) SaveVenue(ctx context.Context, venue domain.Venue) error {
	return s.run(ctx, func(txn *badger.Txn) error {
		var current venueRecord
		exists, err := get(txn, venuePrefix+venue.ID, &current)
		if err != nil {
			return err
		}
		if err := checkVersion(venue.Version, current.Version, exists); err != nil {
			return err
		}
		rec := toVenueRecord(venue)
		rec.Version = venue.Version + 1
		return put(txn, venuePrefix+venue.ID, rec)
	})
}

func (s *Store) DeleteVenue(ctx context.Context, id string) error {
	return s.run(ctx, func(txn *badger.Txn) error {
		var current venueRecord
		exists, err := get(txn, venuePrefix+id, &current)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrVenueNotFound
		}
		return txn.Delete([]byte(venuePrefix + id))
	})
}
