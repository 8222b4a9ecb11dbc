package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

func TestStore_SaveVenueVersioning(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	require.NoError(t, s.SaveVenue(ctx, domain.Venue{ID: "v1", Name: "Hall", Capacity: 10}))

	got, err := s.GetVenue(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)

	assert.ErrorIs(t, s.SaveVenue(ctx, domain.Venue{ID: "v1", Name: "Dup"}), domain.ErrConflict)

	got.Capacity = 20
	require.NoError(t, s.SaveVenue(ctx, got))
	assert.ErrorIs(t, s.SaveVenue(ctx, got), domain.ErrConflict, "stale version must conflict")

	latest, err := s.GetVenue(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, 20, latest.Capacity)
}

func TestStore_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()

	_, err := s.GetVenue(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrVenueNotFound)
	_, err = s.GetEvent(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	_, err = s.GetReservation(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
	assert.ErrorIs(t, s.DeleteVenue(ctx, "missing"), domain.ErrVenueNotFound)
	assert.ErrorIs(t, s.DeleteEvent(ctx, "missing"), domain.ErrEventNotFound)
	assert.ErrorIs(t, s.DeleteReservation(ctx, "missing"), domain.ErrReservationNotFound)
}

func TestStore_WithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context) error {
		require.NoError(t, s.SaveVenue(ctx, domain.Venue{ID: "v1", Name: "Hall"}))
		require.NoError(t, s.SaveEvent(ctx, domain.Event{ID: "e1", Name: "Gig", VenueID: "v1"}))

		_, err := s.GetEvent(ctx, "e1")
		require.NoError(t, err, "writes are visible inside the transaction")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.GetVenue(ctx, "v1")
	assert.ErrorIs(t, err, domain.ErrVenueNotFound)
	_, err = s.GetEvent(ctx, "e1")
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestStore_WithTxDetectsConcurrentWriter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveEvent(ctx, domain.Event{ID: "e1", Name: "Gig"}))

	err := s.WithTx(ctx, func(txCtx context.Context) error {
		e, err := s.GetEvent(txCtx, "e1")
		require.NoError(t, err)
		e.Name = "Inside"
		require.NoError(t, s.SaveEvent(txCtx, e))

		// Another writer commits the same record first.
		outside, err := s.GetEvent(ctx, "e1")
		require.NoError(t, err)
		outside.Name = "Outside"
		require.NoError(t, s.SaveEvent(ctx, outside))
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := s.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, "Outside", got.Name)
}

func TestStore_DoubleDeleteOfReservationConflicts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.CreateReservation(ctx, domain.Reservation{ID: "r1", EventID: "e1"}))

	err := s.WithTx(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.DeleteReservation(txCtx, "r1"))
		require.NoError(t, s.DeleteReservation(ctx, "r1"))
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestStore_ListsAreOrderedAndFiltered(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, s.SaveVenue(ctx, domain.Venue{ID: id, Name: id}))
	}
	venues, err := s.ListVenues(ctx)
	require.NoError(t, err)
	require.Len(t, venues, 3)
	assert.Equal(t, "a", venues[0].ID)
	assert.Equal(t, "c", venues[2].ID)

	require.NoError(t, s.CreateReservation(ctx, domain.Reservation{ID: "r1", EventID: "e1", ExpiresAt: now.Add(-time.Minute)}))
	require.NoError(t, s.CreateReservation(ctx, domain.Reservation{ID: "r2", EventID: "e1", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, s.CreateReservation(ctx, domain.Reservation{ID: "r3", EventID: "e2", ExpiresAt: now}))

	expired, err := s.ListExpiredReservations(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, "r1", expired[0].ID)
	assert.Equal(t, "r3", expired[1].ID)

	byEvent, err := s.ListReservationsByEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, byEvent, 2)

	require.NoError(t, s.CreatePurchase(ctx, domain.Purchase{ID: "p1", EventID: "e1"}))
	require.NoError(t, s.CreatePurchase(ctx, domain.Purchase{ID: "p2", EventID: "e2"}))
	purchases, err := s.ListPurchasesByEvent(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "p1", purchases[0].ID)
}

func TestStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveEvent(ctx, domain.Event{
		ID:      "e1",
		Tickets: domain.TicketLedger{{ID: "t1", Name: "GA", Total: 5, Remaining: 5}},
	}))

	e, err := s.GetEvent(ctx, "e1")
	require.NoError(t, err)
	e.Tickets[0].Remaining = 0

	again, err := s.GetEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Tickets[0].Remaining)
}
