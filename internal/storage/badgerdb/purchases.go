package badgerdb

import (
	"context"
	"encoding/json"

	"github.com/dgraph-io/badger"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

// Purchases are keyed by event so one event's sales are a prefix scan.
func purchaseKey(eventID, id string) string {
	return purchasePrefix + eventID + "/" + id
}

func (s *Store) CreatePurchase(ctx context.Context, p domain.Purchase) error {
	return s.run(ctx, func(txn *badger.Txn) error {
		return put(txn, purchaseKey(p.EventID, p.ID), purchaseRecord(p))
	})
}

func (s *Store) ListPurchasesByEvent(ctx context.Context, eventID string) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scan(txn, purchasePrefix+eventID+"/", func(val []byte) error {
			var rec purchaseRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			out = append(out, domain.Purchase(rec))
			return nil
		})
	})
	return out, err
}
