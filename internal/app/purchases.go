package app

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

type PurchaseInput struct {
	EventID    string
	TicketType string
	User       string
}

type PurchaseResult struct {
	Purchase       domain.Purchase
	ViaReservation bool
}

// Purchase sells one unit to the user. An active reservation of the user
// for the event is converted first; otherwise a unit of the named type is
// taken directly. A declined payment leaves inventory untouched.
func (c *Coordinator) Purchase(ctx context.Context, in PurchaseInput) (res PurchaseResult, err error) {
	defer func() { c.observe("purchase", err) }()

	if strings.TrimSpace(in.User) == "" {
		return PurchaseResult{}, domain.ErrUserRequired
	}
	if err := c.sweep(ctx); err != nil {
		return PurchaseResult{}, err
	}

	unlock := c.locks.Lock(eventKey(in.EventID))
	defer unlock()

	// A replayed transaction must not charge twice.
	charged := false
	charge := func(ctx context.Context, amount int) error {
		if charged {
			return nil
		}
		if !c.payments.Charge(ctx, in.User, amount) {
			return domain.ErrPaymentDeclined
		}
		charged = true
		return nil
	}

	err = c.commit(ctx, "purchase", func(ctx context.Context) error {
		event, err := c.repo.GetEvent(ctx, in.EventID)
		if err != nil {
			return err
		}

		held, err := c.findByUserAndEvent(ctx, in.User, event.ID)
		switch {
		case err == nil:
			i, err := event.Tickets.FindByID(held.TicketTypeID)
			if err != nil {
				return err
			}
			ticket := event.Tickets[i]
			if err := charge(ctx, ticket.Price); err != nil {
				return err
			}
			if err := c.repo.DeleteReservation(ctx, held.ID); err != nil {
				return err
			}
			res = PurchaseResult{Purchase: c.newPurchase(event, ticket, in.User, held.ID), ViaReservation: true}
			return c.repo.CreatePurchase(ctx, res.Purchase)
		case !errors.Is(err, domain.ErrReservationNotFound):
			return err
		}

		i, err := event.Tickets.FindByName(in.TicketType)
		if err != nil {
			return err
		}
		ticket := event.Tickets[i]
		if err := event.Tickets.Decrement(ticket.ID); err != nil {
			return err
		}
		if err := charge(ctx, ticket.Price); err != nil {
			return err
		}
		if err := c.repo.SaveEvent(ctx, event); err != nil {
			return err
		}
		res = PurchaseResult{Purchase: c.newPurchase(event, ticket, in.User, "")}
		return c.repo.CreatePurchase(ctx, res.Purchase)
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	log := c.log.WithFields(logrus.Fields{
		"purchase_id":     res.Purchase.ID,
		"event_id":        res.Purchase.EventID,
		"ticket_type":     res.Purchase.TicketType,
		"via_reservation": res.ViaReservation,
	})
	log.Info("ticket purchased")
	if err := c.notifier.TicketPurchased(ctx, res.Purchase); err != nil {
		log.WithError(err).Warn("purchase notification failed")
	}
	return res, nil
}

// ListPurchases returns the units sold for an event.
func (c *Coordinator) ListPurchases(ctx context.Context, eventID string) ([]domain.Purchase, error) {
	if _, err := c.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return c.repo.ListPurchasesByEvent(ctx, eventID)
}

func (c *Coordinator) newPurchase(event domain.Event, ticket domain.TicketType, user, reservationID string) domain.Purchase {
	return domain.Purchase{
		ID:            newID(),
		EventID:       event.ID,
		TicketTypeID:  ticket.ID,
		TicketType:    ticket.Name,
		User:          user,
		Price:         ticket.Price,
		ReservationID: reservationID,
		CreatedAt:     c.clock.Now(),
	}
}
