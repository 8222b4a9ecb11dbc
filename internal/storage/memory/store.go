// Package memory is an in-process store with copy-on-write transactions.
// It backs the service when no database is configured and the coordinator
// tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

type Store struct {
	mu           sync.Mutex
	venues       map[string]domain.Venue
	events       map[string]domain.Event
	reservations map[string]domain.Reservation
	purchases    []domain.Purchase
}

func NewStore() *Store {
	return &Store{
		venues:       make(map[string]domain.Venue),
		events:       make(map[string]domain.Event),
		reservations: make(map[string]domain.Reservation),
	}
}

type txKey struct{}

// absent marks a record that did not exist when the transaction first
// touched it.
const absent = -1

// tx buffers writes over the committed state. base remembers the
// committed version of every written key so commit can detect writers
// that got there first.
type tx struct {
	venues       map[string]*domain.Venue
	events       map[string]*domain.Event
	reservations map[string]*domain.Reservation
	purchases    []domain.Purchase
	base         map[string]int
}

func newTx() *tx {
	return &tx{
		venues:       make(map[string]*domain.Venue),
		events:       make(map[string]*domain.Event),
		reservations: make(map[string]*domain.Reservation),
		base:         make(map[string]int),
	}
}

func txFromContext(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	return t
}

// WithTx runs fn against a private view; its writes become visible
// together on success. Nested calls join the outer transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	t := newTx()
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		return err
	}
	return s.commit(t)
}

// run executes op in the caller's transaction or in a fresh one.
func (s *Store) run(ctx context.Context, op func(t *tx) error) error {
	if t := txFromContext(ctx); t != nil {
		return op(t)
	}
	t := newTx()
	if err := op(t); err != nil {
		return err
	}
	return s.commit(t)
}

func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, want := range t.base {
		if s.committedVersion(key) != want {
			return domain.ErrConflict
		}
	}

	for id, v := range t.venues {
		if v == nil {
			delete(s.venues, id)
			continue
		}
		s.venues[id] = v.Clone()
	}
	for id, e := range t.events {
		if e == nil {
			delete(s.events, id)
			continue
		}
		s.events[id] = e.Clone()
	}
	for id, r := range t.reservations {
		if r == nil {
			delete(s.reservations, id)
			continue
		}
		s.reservations[id] = *r
	}
	s.purchases = append(s.purchases, t.purchases...)
	return nil
}

func venueKey(id string) string       { return "venue/" + id }
func eventKey(id string) string       { return "event/" + id }
func reservationKey(id string) string { return "reservation/" + id }

// committedVersion must be called with s.mu held. Reservations are
// immutable, so existence stands in for a version.
func (s *Store) committedVersion(key string) int {
	if id, ok := strings.CutPrefix(key, "venue/"); ok {
		if v, ok := s.venues[id]; ok {
			return v.Version
		}
	}
	if id, ok := strings.CutPrefix(key, "event/"); ok {
		if e, ok := s.events[id]; ok {
			return e.Version
		}
	}
	if id, ok := strings.CutPrefix(key, "reservation/"); ok {
		if _, ok := s.reservations[id]; ok {
			return 0
		}
	}
	return absent
}

// remember records the committed version of key the first time the
// transaction writes it.
func (s *Store) remember(t *tx, key string) {
	if _, ok := t.base[key]; ok {
		return
	}
	s.mu.Lock()
	t.base[key] = s.committedVersion(key)
	s.mu.Unlock()
}

func (s *Store) lookupVenue(t *tx, id string) (domain.Venue, bool) {
	if v, ok := t.venues[id]; ok {
		if v == nil {
			return domain.Venue{}, false
		}
		return v.Clone(), true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	return v.Clone(), ok
}

func (s *Store) lookupEvent(t *tx, id string) (domain.Event, bool) {
	if e, ok := t.events[id]; ok {
		if e == nil {
			return domain.Event{}, false
		}
		return e.Clone(), true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	return e.Clone(), ok
}

func (s *Store) lookupReservation(t *tx, id string) (domain.Reservation, bool) {
	if r, ok := t.reservations[id]; ok {
		if r == nil {
			return domain.Reservation{}, false
		}
		return *r, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	return r, ok
}

func (s *Store) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	var out domain.Venue
	err := s.run(ctx, func(t *tx) error {
		v, ok := s.lookupVenue(t, id)
		if !ok {
			return domain.ErrVenueNotFound
		}
		out = v
		return nil
	})
	return out, err
}

func (s *Store) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	var out []domain.Venue
	err := s.run(ctx, func(t *tx) error {
		s.mu.Lock()
		ids := make([]string, 0, len(s.venues))
		for id := range s.venues {
			ids = append(ids, id)
		}
		s.mu.Unlock()
		for id := range t.venues {
			ids = append(ids, id)
		}

		for _, id := range uniqueSorted(ids) {
			if v, ok := s.lookupVenue(t, id); ok {
				out = append(out, v)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) SaveVenue(ctx context.Context, venue domain.Venue) error {
	return s.run(ctx, func(t *tx) error {
		current, exists := s.lookupVenue(t, venue.ID)
		if err := checkVersion(venue.Version, current.Version, exists); err != nil {
			return err
		}
		s.remember(t, venueKey(venue.ID))
		saved := venue.Clone()
		saved.Version = venue.Version + 1
		t.venues[venue.ID] = &saved
		return nil
	})
}

func (s *Store) DeleteVenue(ctx context.Context, id string) error {
	return s.run(ctx, func(t *tx) error {
		if _, ok := s.lookupVenue(t, id); !ok {
			return domain.ErrVenueNotFound
		}
		s.remember(t, venueKey(id))
		t.venues[id] = nil
		return nil
	})
}

func (s *Store) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	var out domain.Event
	err := s.run(ctx, func(t *tx) error {
		e, ok := s.lookupEvent(t, id)
		if !ok {
			return domain.ErrEventNotFound
		}
		out = e
		return nil
	})
	return out, err
}

func (s *Store) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	err := s.run(ctx, func(t *tx) error {
		s.mu.Lock()
		ids := make([]string, 0, len(s.events))
		for id := range s.events {
			ids = append(ids, id)
		}
		s.mu.Unlock()
		for id := range t.events {
			ids = append(ids, id)
		}

		for _, id := range uniqueSorted(ids) {
			if e, ok := s.lookupEvent(t, id); ok {
				out = append(out, e)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) SaveEvent(ctx context.Context, event domain.Event) error {
	return s.run(ctx, func(t *tx) error {
		current, exists := s.lookupEvent(t, event.ID)
		if err := checkVersion(event.Version, current.Version, exists); err != nil {
			return err
		}
		s.remember(t, eventKey(event.ID))
		saved := event.Clone()
		saved.Version = event.Version + 1
		t.events[event.ID] = &saved
		return nil
	})
}

func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	return s.run(ctx, func(t *tx) error {
		if _, ok := s.lookupEvent(t, id); !ok {
			return domain.ErrEventNotFound
		}
		s.remember(t, eventKey(id))
		t.events[id] = nil
		return nil
	})
}

func (s *Store) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	var out domain.Reservation
	err := s.run(ctx, func(t *tx) error {
		r, ok := s.lookupReservation(t, id)
		if !ok {
			return domain.ErrReservationNotFound
		}
		out = r
		return nil
	})
	return out, err
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
	err := s.run(ctx, func(t *tx) error {
		s.mu.Lock()
		ids := make([]string, 0, len(s.reservations))
		for id := range s.reservations {
			ids = append(ids, id)
		}
		s.mu.Unlock()
		for id := range t.reservations {
			ids = append(ids, id)
		}

		for _, id := range uniqueSorted(ids) {
			if r, ok := s.lookupReservation(t, id); ok && keep(r) {
				out = append(out, r)
			}
		}
		return nil
	})
	return out, err
}

func (s *Store) CreateReservation(ctx context.Context, reservation domain.Reservation) error {
	return s.run(ctx, func(t *tx) error {
		if _, ok := s.lookupReservation(t, reservation.ID); ok {
			return domain.ErrConflict
		}
		s.remember(t, reservationKey(reservation.ID))
		r := reservation
		t.reservations[reservation.ID] = &r
		return nil
	})
}

func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	return s.run(ctx, func(t *tx) error {
		if _, ok := s.lookupReservation(t, id); !ok {
			return domain.ErrReservationNotFound
		}
		s.remember(t, reservationKey(id))
		t.reservations[id] = nil
		return nil
	})
}

func (s *Store) CreatePurchase(ctx context.Context, purchase domain.Purchase) error {
	return s.run(ctx, func(t *tx) error {
		t.purchases = append(t.purchases, purchase)
		return nil
	})
}

func (s *Store) ListPurchasesByEvent(ctx context.Context, eventID string) ([]domain.Purchase, error) {
	var out []domain.Purchase
	err := s.run(ctx, func(t *tx) error {
		s.mu.Lock()
		all := append(append([]domain.Purchase(nil), s.purchases...), t.purchases...)
		s.mu.Unlock()
		for _, p := range all {
			if p.EventID == eventID {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
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

func uniqueSorted(ids []string) []string {
	sort.Strings(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if len(out) > 0 && out[len(out)-1] == id {
			continue
		}
		out = append(out, id)
	}
	return out
}
