package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

type ReserveInput struct {
	EventID         string
	TicketType      string
	User            string
	DurationMinutes int
}

// Reserve holds one unit of the named ticket type for the user.
func (c *Coordinator) Reserve(ctx context.Context, in ReserveInput) (res domain.Reservation, err error) {
	defer func() { c.observe("reserve", err) }()

	if strings.TrimSpace(in.User) == "" {
		return domain.Reservation{}, domain.ErrUserRequired
	}
	duration := time.Duration(in.DurationMinutes) * time.Minute
	if duration <= 0 || duration > c.maxHold {
		return domain.Reservation{}, fmt.Errorf("%w: %d minutes, allowed 1 to %d",
			domain.ErrInvalidDuration, in.DurationMinutes, int(c.maxHold/time.Minute))
	}
	if err := c.sweep(ctx); err != nil {
		return domain.Reservation{}, err
	}

	unlock := c.locks.Lock(eventKey(in.EventID))
	defer unlock()

	err = c.commit(ctx, "reserve", func(ctx context.Context) error {
		event, err := c.repo.GetEvent(ctx, in.EventID)
		if err != nil {
			return err
		}
		i, err := event.Tickets.FindByName(in.TicketType)
		if err != nil {
			return err
		}
		ticketID := event.Tickets[i].ID
		if err := event.Tickets.Decrement(ticketID); err != nil {
			return err
		}
		if err := c.repo.SaveEvent(ctx, event); err != nil {
			return err
		}

		now := c.clock.Now()
		res = domain.Reservation{
			ID:           newID(),
			EventID:      event.ID,
			TicketTypeID: ticketID,
			User:         in.User,
			ExpiresAt:    now.Add(duration),
			CreatedAt:    now,
		}
		return c.repo.CreateReservation(ctx, res)
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	c.log.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"event_id":       res.EventID,
		"ticket_type_id": res.TicketTypeID,
		"expires_at":     res.ExpiresAt,
	}).Info("reservation created")
	return res, nil
}

// CancelReservation releases a hold early. Only the holder may cancel.
func (c *Coordinator) CancelReservation(ctx context.Context, id, user string) (err error) {
	defer func() { c.observe("cancel_reservation", err) }()

	if strings.TrimSpace(user) == "" {
		return domain.ErrUserRequired
	}
	if err := c.sweep(ctx); err != nil {
		return err
	}
	current, err := c.repo.GetReservation(ctx, id)
	if err != nil {
		return err
	}

	unlock := c.locks.Lock(eventKey(current.EventID))
	defer unlock()

	err = c.commit(ctx, "cancel_reservation", func(ctx context.Context) error {
		r, err := c.repo.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if !r.HeldBy(user) {
			return domain.ErrForbidden
		}
		return c.restoreUnit(ctx, r)
	})
	if err != nil {
		return err
	}

	c.log.WithField("reservation_id", id).Info("reservation cancelled")
	return nil
}

// GetReservation returns an active reservation. Lapsed holds are swept
// first and so report not found.
func (c *Coordinator) GetReservation(ctx context.Context, id string) (domain.Reservation, error) {
	if err := c.sweep(ctx); err != nil {
		return domain.Reservation{}, err
	}
	return c.repo.GetReservation(ctx, id)
}

// restoreUnit gives the held unit back to its row and removes the record.
// It must run inside a transaction holding the event lock.
func (c *Coordinator) restoreUnit(ctx context.Context, r domain.Reservation) error {
	event, err := c.repo.GetEvent(ctx, r.EventID)
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		return c.repo.DeleteReservation(ctx, r.ID)
	case err != nil:
		return err
	}

	if err := event.Tickets.Increment(r.TicketTypeID); err != nil {
		// Row gone or already full; the record is dropped regardless.
		c.log.WithError(err).WithFields(logrus.Fields{
			"reservation_id": r.ID,
			"event_id":       r.EventID,
		}).Warn("could not restore reserved unit")
	} else if err := c.repo.SaveEvent(ctx, event); err != nil {
		return err
	}
	return c.repo.DeleteReservation(ctx, r.ID)
}

// findByUserAndEvent returns the user's active reservation for the event
// that expires soonest.
func (c *Coordinator) findByUserAndEvent(ctx context.Context, user, eventID string) (domain.Reservation, error) {
	all, err := c.repo.ListReservationsByEvent(ctx, eventID)
	if err != nil {
		return domain.Reservation{}, err
	}

	now := c.clock.Now()
	var held []domain.Reservation
	for _, r := range all {
		if r.HeldBy(user) && !r.Expired(now) {
			held = append(held, r)
		}
	}
	if len(held) == 0 {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	sort.Slice(held, func(i, j int) bool {
		return held[i].ExpiresAt.Before(held[j].ExpiresAt)
	})
	return held[0], nil
}
