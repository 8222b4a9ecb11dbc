package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

func TestCoordinator_Reserve(t *testing.T) {
	t.Parallel()

	t.Run("holds one unit until expiry", func(t *testing.T) {
		f := newFixture(t)
		venue := f.venue(t, "Arena", 100, "2030-01-01")
		event := f.event(t, venue, "2030-01-01", 50, []string{"GA", "20", "50", "50"})

		res, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "ga", User: "ann", DurationMinutes: 5})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.ExpiresAt.Equal(testNow.Add(5 * time.Minute)) {
			t.Fatalf("expected expiry %v, got %v", testNow.Add(5*time.Minute), res.ExpiresAt)
		}
		if res.TicketTypeID != event.Tickets[0].ID {
			t.Fatalf("expected reservation to reference ticket type %s, got %s", event.Tickets[0].ID, res.TicketTypeID)
		}
		if got := f.remaining(t, event.ID, 0); got != 49 {
			t.Fatalf("expected remaining 49, got %d", got)
		}

		f.clock.Advance(6 * time.Minute)
		released, err := f.svc.SweepExpired(f.ctx)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if released != 1 {
			t.Fatalf("expected 1 released, got %d", released)
		}
		if got := f.remaining(t, event.ID, 0); got != 50 {
			t.Fatalf("expected remaining 50 after expiry, got %d", got)
		}
		if _, err := f.svc.GetReservation(f.ctx, res.ID); !errors.Is(err, domain.ErrReservationNotFound) {
			t.Fatalf("expected reservation gone, got %v", err)
		}
	})

	t.Run("duration bounds", func(t *testing.T) {
		f := newFixture(t)
		venue := f.venue(t, "Arena", 100, "2030-01-01")
		event := f.event(t, venue, "2030-01-01", 50, []string{"GA", "20", "50", "50"})

		for _, minutes := range []int{0, -1, 16} {
			_, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "GA", User: "ann", DurationMinutes: minutes})
			if !errors.Is(err, domain.ErrInvalidDuration) {
				t.Fatalf("expected ErrInvalidDuration for %d minutes, got %v", minutes, err)
			}
		}
		if _, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "GA", User: "ann", DurationMinutes: 15}); err != nil {
			t.Fatalf("expected 15 minutes to be allowed, got %v", err)
		}
	})

	t.Run("last unit goes to one reservation only", func(t *testing.T) {
		f := newFixture(t)
		venue := f.venue(t, "Arena", 100, "2030-01-01")
		event := f.event(t, venue, "2030-01-01", 1, []string{"GA", "20", "1", "1"})

		if _, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "GA", User: "ann", DurationMinutes: 5}); err != nil {
			t.Fatalf("first reserve: %v", err)
		}
		_, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "GA", User: "bob", DurationMinutes: 5})
		if !errors.Is(err, domain.ErrSoldOut) {
			t.Fatalf("expected ErrSoldOut, got %v", err)
		}
	})

	t.Run("unknown event or type", func(t *testing.T) {
		f := newFixture(t)
		venue := f.venue(t, "Arena", 100, "2030-01-01")
		event := f.event(t, venue, "2030-01-01", 1, []string{"GA", "20", "1", "1"})

		if _, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: "missing", TicketType: "GA", User: "ann", DurationMinutes: 5}); !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
		if _, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "VIP", User: "ann", DurationMinutes: 5}); !errors.Is(err, domain.ErrTicketTypeNotFound) {
			t.Fatalf("expected ErrTicketTypeNotFound, got %v", err)
		}
		if _, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "GA", DurationMinutes: 5}); !errors.Is(err, domain.ErrUserRequired) {
			t.Fatalf("expected ErrUserRequired, got %v", err)
		}
	})
}

func TestCoordinator_CancelReservation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	venue := f.venue(t, "Arena", 100, "2030-01-01")
	event := f.event(t, venue, "2030-01-01", 50, []string{"GA", "20", "50", "50"})
	res, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "GA", User: "Ann", DurationMinutes: 5})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}

	if err := f.svc.CancelReservation(f.ctx, res.ID, "bob"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if got := f.remaining(t, event.ID, 0); got != 49 {
		t.Fatalf("expected hold intact, remaining %d", got)
	}
	if err := f.svc.CancelReservation(f.ctx, res.ID, "ANN"); err != nil {
		t.Fatalf("expected holder to cancel, got %v", err)
	}
	if got := f.remaining(t, event.ID, 0); got != 50 {
		t.Fatalf("expected unit restored, remaining %d", got)
	}
	if err := f.svc.CancelReservation(f.ctx, res.ID, "ann"); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound on second cancel, got %v", err)
	}
	if got := f.remaining(t, event.ID, 0); got != 50 {
		t.Fatalf("expected no double restore, remaining %d", got)
	}
}

func TestCoordinator_ReservationRestoredExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	venue := f.venue(t, "Arena", 100, "2030-01-01")
	event := f.event(t, venue, "2030-01-01", 20, []string{"GA", "20", "20", "20"})

	var ids []string
	for i := 0; i < 10; i++ {
		res, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "GA", User: "ann", DurationMinutes: 1})
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		ids = append(ids, res.ID)
	}
	f.clock.Advance(2 * time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.SweepExpired(f.ctx)
		}()
	}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = f.svc.CancelReservation(f.ctx, id, "ann")
		}(id)
	}
	wg.Wait()

	if got := f.remaining(t, event.ID, 0); got != 20 {
		t.Fatalf("expected every unit restored once, remaining %d", got)
	}
}

func TestCoordinator_ConcurrentReservesNeverOversell(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	venue := f.venue(t, "Arena", 100, "2030-01-01")
	event := f.event(t, venue, "2030-01-01", 5, []string{"GA", "20", "5", "5"})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ok      int
		soldOut int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Reserve(f.ctx, ReserveInput{EventID: event.ID, TicketType: "GA", User: "ann", DurationMinutes: 5})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, domain.ErrSoldOut):
				soldOut++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if ok != 5 || soldOut != 15 {
		t.Fatalf("expected 5 holds and 15 sold out, got %d and %d", ok, soldOut)
	}
	if got := f.remaining(t, event.ID, 0); got != 0 {
		t.Fatalf("expected remaining 0, got %d", got)
	}
}
