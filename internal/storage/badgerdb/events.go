package badgerdb

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

func (s *Store) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	var rec eventRecord
	err := s.view(ctx, func(txn *badger.Txn) error {
		ok, err := get(txn, eventPrefix+id, &rec)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}
	return rec.domain(), nil
}

func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var events []domain.Event
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, eventPrefix, func(val []byte) error {
			var rec eventRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			events = append(events, rec.domain())
			return nil
		})
	})
	return events, err
}

func (s *Store) SaveEvent(ctx context.Context, event domain.Event) error {
	return s.run(ctx, func(txn *badger.Txn) error {
		var current eventRecord
		exists, err := get(txn, eventPrefix+event.ID, &current)
		if err != nil {
			return err
		}
		if err := checkVersion(event.Version, current.Version, exists); err != nil {
			return err
		}
		rec := toEventRecord(event)
		rec.Version = event.Version + 1
		return put(txn, eventPrefix+event.ID, rec)
	})
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.run(ctx, func(txn *badger.Txn) error {
		var current eventRecord
		exists, err := get(txn, eventPrefix+id, &current)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrEventNotFound
		}
		return txn.Delete([]byte(eventPrefix + id))
	})
}
