package app

import (
	"context"
	"time"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

// Repository is the persistence contract of the coordinator.
//
// Save methods are upserts guarded by Version: a record with Version 0 is
// inserted, otherwise the stored version must equal the given one and is
// bumped on write. A mismatch returns domain.ErrConflict.
//
// Calls made with the context handed to WithTx's fn commit or roll back
// together.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	GetVenue(ctx context.Context, id string) (domain.Venue, error)
	ListVenues(ctx context.Context) ([]domain.Venue, error)
	SaveVenue(ctx context.Context, venue domain.Venue) error
	DeleteVenue(ctx context.Context, id string) error

	GetEvent(ctx context.Context, id string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	SaveEvent(ctx context.Context, event domain.Event) error
	DeleteEvent(ctx context.Context, id string) error

	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
	ListReservationsByEvent(ctx context.Context, eventID string) ([]domain.Reservation, error)
	ListExpiredReservations(ctx context.Context, now time.Time) ([]domain.Reservation, error)
	CreateReservation(ctx context.Context, reservation domain.Reservation) error
	DeleteReservation(ctx context.Context, id string) error

	CreatePurchase(ctx context.Context, purchase domain.Purchase) error
	ListPurchasesByEvent(ctx context.Context, eventID string) ([]domain.Purchase, error)
}
