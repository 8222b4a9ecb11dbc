package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

// VenueRef names the venue a caller would like an event held at.
type VenueRef struct {
	ID   string
	Name string
}

type ScheduleEventInput struct {
	Name        string
	Date        string
	Description string
	Capacity    int
	Venue       *VenueRef
	Tickets     [][]string
}

type ScheduleEventResult struct {
	Event domain.Event
	Venue domain.Venue
	// VenueSubstituted is set when a venue was requested but another one was used.
	VenueSubstituted bool
	Message          string
}

type UpdateEventInput struct {
	Name        string
	Date        string
	Description string
	Capacity    int
	Tickets     [][]string
}

// ScheduleEvent books the event at the requested venue, or at the first
// venue able to host it, and stores event and venue together.
func (c *Coordinator) ScheduleEvent(ctx context.Context, in ScheduleEventInput) (res ScheduleEventResult, err error) {
	defer func() { c.observe("schedule_event", err) }()

	if strings.TrimSpace(in.Name) == "" {
		return ScheduleEventResult{}, domain.ErrNameRequired
	}
	if in.Capacity < 0 {
		return ScheduleEventResult{}, domain.ErrInvalidCapacity
	}
	if err := c.validateEventDate(in.Date); err != nil {
		return ScheduleEventResult{}, err
	}

	eventID := newID()
	for attempt := 1; ; attempt++ {
		venue, substituted, err := c.chooseVenue(ctx, in)
		if err != nil {
			return ScheduleEventResult{}, err
		}
		tickets, err := domain.ParseTicketRows(in.Tickets, in.Capacity)
		if err != nil {
			return ScheduleEventResult{}, err
		}
		for i := range tickets {
			tickets[i].ID = newID()
		}

		event := domain.Event{
			ID:          eventID,
			Name:        in.Name,
			Date:        in.Date,
			Description: in.Description,
			Capacity:    in.Capacity,
			VenueID:     venue.ID,
			Tickets:     tickets,
		}

		err = c.bookEvent(ctx, venue.ID, event)
		if errors.Is(err, domain.ErrConflict) && attempt < maxConflictAttempts {
			// The chosen venue changed underneath us; pick again.
			continue
		}
		if err != nil {
			return ScheduleEventResult{}, err
		}

		booked, err := c.repo.GetVenue(ctx, venue.ID)
		if err != nil {
			return ScheduleEventResult{}, err
		}
		event.Version = 1
		res = ScheduleEventResult{Event: event, Venue: booked, VenueSubstituted: substituted}
		if substituted {
			res.Message = fmt.Sprintf("requested venue was not available with the given requirements, %s chosen instead", venue.Name)
		}

		c.log.WithFields(logrus.Fields{
			"event_id":    event.ID,
			"venue_id":    venue.ID,
			"date":        event.Date,
			"substituted": substituted,
		}).Info("event scheduled")
		return res, nil
	}
}

func (c *Coordinator) bookEvent(ctx context.Context, venueID string, event domain.Event) error {
	unlock := c.locks.Lock(venueKey(venueID), eventKey(event.ID))
	defer unlock()

	return c.repo.WithTx(ctx, func(ctx context.Context) error {
		venue, err := c.repo.GetVenue(ctx, venueID)
		if errors.Is(err, domain.ErrVenueNotFound) {
			return domain.ErrConflict
		}
		if err != nil {
			return err
		}
		if !venue.CanHost(event.Date, event.Capacity) {
			return domain.ErrConflict
		}
		if err := venue.BookDate(event.Date, event.ID); err != nil {
			return err
		}
		if err := c.repo.SaveEvent(ctx, event); err != nil {
			return err
		}
		return c.repo.SaveVenue(ctx, venue)
	})
}

// chooseVenue prefers the requested venue by ID, then by name, then falls
// back to the first venue (in store order) that can host the event.
func (c *Coordinator) chooseVenue(ctx context.Context, in ScheduleEventInput) (domain.Venue, bool, error) {
	venues, err := c.repo.ListVenues(ctx)
	if err != nil {
		return domain.Venue{}, false, err
	}

	if in.Venue != nil {
		for _, v := range venues {
			if in.Venue.ID != "" && v.ID == in.Venue.ID && v.CanHost(in.Date, in.Capacity) {
				return v, false, nil
			}
		}
		for _, v := range venues {
			if in.Venue.Name != "" && v.Name == in.Venue.Name && v.CanHost(in.Date, in.Capacity) {
				return v, false, nil
			}
		}
	}

	for _, v := range venues {
		if v.CanHost(in.Date, in.Capacity) {
			return v, in.Venue != nil, nil
		}
	}
	return domain.Venue{}, false, fmt.Errorf("%w: no venue has capacity %d free on %s", domain.ErrNoVenueAvailable, in.Capacity, in.Date)
}

// UpdateEvent edits an event in place. Ticket totals move by delta so sold
// and held units are preserved; a date change must be free at the venue.
// Nothing is written unless every check passes.
func (c *Coordinator) UpdateEvent(ctx context.Context, id string, in UpdateEventInput) (updated domain.Event, err error) {
	defer func() { c.observe("update_event", err) }()

	if strings.TrimSpace(in.Name) == "" {
		return domain.Event{}, domain.ErrNameRequired
	}
	if in.Capacity < 0 {
		return domain.Event{}, domain.ErrInvalidCapacity
	}
	if err := c.sweep(ctx); err != nil {
		return domain.Event{}, err
	}

	current, err := c.repo.GetEvent(ctx, id)
	if err != nil {
		return domain.Event{}, err
	}
	if err := c.validateEventDate(in.Date); err != nil {
		return domain.Event{}, err
	}

	unlock := c.locks.Lock(venueKey(current.VenueID), eventKey(id))
	defer unlock()

	err = c.commit(ctx, "update_event", func(ctx context.Context) error {
		event, err := c.repo.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		venue, err := c.repo.GetVenue(ctx, event.VenueID)
		if err != nil {
			return fmt.Errorf("event venue %s: %w", event.VenueID, err)
		}
		if in.Capacity > venue.Capacity {
			return fmt.Errorf("%w: event capacity %d exceeds venue capacity %d", domain.ErrCapacityExceeded, in.Capacity, venue.Capacity)
		}

		dateChanged := in.Date != event.Date
		if dateChanged {
			if err := venue.RescheduleDate(event.Date, in.Date, event.ID); err != nil {
				return err
			}
		}

		tickets, err := reviseTickets(event.Tickets, in.Tickets, in.Capacity)
		if err != nil {
			return err
		}

		event.Name = in.Name
		event.Date = in.Date
		event.Description = in.Description
		event.Capacity = in.Capacity
		event.Tickets = tickets
		if err := c.repo.SaveEvent(ctx, event); err != nil {
			return err
		}
		if dateChanged {
			if err := c.repo.SaveVenue(ctx, venue); err != nil {
				return err
			}
		}
		event.Version++
		updated = event
		return nil
	})
	if err != nil {
		return domain.Event{}, err
	}

	c.log.WithField("event_id", id).Info("event updated")
	return updated, nil
}

// reviseTickets applies edited wire rows to an existing ledger. Rows match
// by position; existing rows keep their ID and only move totals by delta.
// Extra rows become new ticket types. Rows cannot be removed because
// reservations point at them.
func reviseTickets(current domain.TicketLedger, rows [][]string, capacity int) (domain.TicketLedger, error) {
	parsed, err := domain.ParseTicketRows(rows, capacity)
	if err != nil {
		return nil, err
	}
	if len(parsed) < len(current) {
		return nil, fmt.Errorf("%w: %d ticket types given, event has %d and types cannot be removed",
			domain.ErrMalformedTicketRow, len(parsed), len(current))
	}

	revised := current.Clone()
	for i := range revised {
		revised[i].Name = parsed[i].Name
		revised[i].Price = parsed[i].Price
		if err := revised.ApplyCapacityDelta(i, parsed[i].Total); err != nil {
			return nil, err
		}
	}
	for _, extra := range parsed[len(current):] {
		extra.ID = newID()
		revised = append(revised, extra)
	}
	return revised, nil
}

// CancelEvent deletes an event with nothing sold or held and gives its
// date back to the venue.
func (c *Coordinator) CancelEvent(ctx context.Context, id string) (err error) {
	defer func() { c.observe("cancel_event", err) }()

	if err := c.sweep(ctx); err != nil {
		return err
	}
	current, err := c.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	unlock := c.locks.Lock(venueKey(current.VenueID), eventKey(id))
	defer unlock()

	err = c.commit(ctx, "cancel_event", func(ctx context.Context) error {
		event, err := c.repo.GetEvent(ctx, id)
		if err != nil {
			return err
		}
		if event.Tickets.HasOutstanding() {
			return domain.ErrTicketsAlreadySold
		}

		venue, err := c.repo.GetVenue(ctx, event.VenueID)
		switch {
		case err == nil:
			venue.ReleaseDate(event.Date, event.ID)
			if err := c.repo.SaveVenue(ctx, venue); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrVenueNotFound):
		default:
			return err
		}
		return c.repo.DeleteEvent(ctx, id)
	})
	if err != nil {
		return err
	}

	c.log.WithField("event_id", id).Info("event cancelled")
	return nil
}

func (c *Coordinator) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	if err := c.sweep(ctx); err != nil {
		return domain.Event{}, err
	}
	return c.repo.GetEvent(ctx, id)
}

func (c *Coordinator) ListEvents(ctx context.Context) ([]domain.Event, error) {
	if err := c.sweep(ctx); err != nil {
		return nil, err
	}
	return c.repo.ListEvents(ctx)
}

// ListTickets returns the current ledger of an event.
func (c *Coordinator) ListTickets(ctx context.Context, eventID string) (domain.TicketLedger, error) {
	event, err := c.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return event.Tickets, nil
}

// validateEventDate requires the single event date to be well formed and
// not in the past.
func (c *Coordinator) validateEventDate(date string) error {
	report := domain.ValidateDates([]string{date}, c.today())
	if len(report.Valid) == 0 {
		return fmt.Errorf("%w: %s", report.FirstReason(), report.Report())
	}
	return nil
}
