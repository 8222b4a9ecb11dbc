// Package badgerdb stores inventory in an embedded badger key-value
// database. Records are JSON values under per-kind key prefixes; badger's
// transaction conflict detection backs the version checks.
package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger"
	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

const (
	venuePrefix       = "venue/"
	eventPrefix       = "event/"
	reservationPrefix = "reservation/"
	purchasePrefix    = "purchase/"
)

type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database in dir. Badger's own log output is
// routed through logger.
func Open(dir string, logger logrus.FieldLogger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.WithField("component", "badger")})
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type txKey struct{}

func txFromContext(ctx context.Context) *badger.Txn {
	txn, _ := ctx.Value(txKey{}).(*badger.Txn)
	return txn
}

// WithTx runs fn in one read-write badger transaction. A commit that
// loses to a concurrent writer returns domain.ErrConflict.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(context.WithValue(ctx, txKey{}, txn)); err != nil {
		return mapErr(err)
	}
	return mapErr(txn.Commit())
}

func (s *Store) run(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if txn := txFromContext(ctx); txn != nil {
		return mapErr(fn(txn))
	}
	return mapErr(s.db.Update(fn))
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if txn := txFromContext(ctx); txn != nil {
		return mapErr(fn(txn))
	}
	return mapErr(s.db.View(fn))
}

func mapErr(err error) error {
	if errors.Is(err, badger.ErrConflict) {
		return domain.ErrConflict
	}
	return err
}

// get decodes the value at key into out. It reports false when the key
// does not exist.
func get(txn *badger.Txn, key string, out any) (bool, error) {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
	if err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func put(txn *badger.Txn, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// scan decodes every value under prefix in key order.
func scan(txn *badger.Txn, prefix string, decode func(val []byte) error) error {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		if err := it.Item().Value(decode); err != nil {
			return fmt.Errorf("scan %s: %w", prefix, err)
		}
	}
	return nil
}

// checkVersion enforces the Save contract: version 0 inserts, anything
// else must match the stored record.
func checkVersion(given, stored int, exists bool) error {
	if given == 0 {
		if exists {
			return domain.ErrConflict
		}
		return nil
	}
	if !exists || stored != given {
		return domain.ErrConflict
	}
	return nil
}

type badgerLogger struct {
	log logrus.FieldLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.log.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.log.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.log.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.log.Debugf(format, args...) }
