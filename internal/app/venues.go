package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

type VenueInput struct {
	Name     string
	Capacity int
	Dates    []string
}

// VenueResult carries the saved venue and, on partial success, the list
// of rejected dates.
type VenueResult struct {
	Venue      domain.Venue
	DateReport string
}

func (in VenueInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.ErrNameRequired
	}
	if in.Capacity < 0 {
		return domain.ErrInvalidCapacity
	}
	return nil
}

func (c *Coordinator) CreateVenue(ctx context.Context, in VenueInput) (res VenueResult, err error) {
	defer func() { c.observe("create_venue", err) }()

	if err := in.validate(); err != nil {
		return VenueResult{}, err
	}
	report := domain.ValidateDates(in.Dates, c.today())
	if len(report.Valid) == 0 {
		return VenueResult{}, fmt.Errorf("%w: %s", domain.ErrNoValidDates, report.Report())
	}

	venue := domain.Venue{
		ID:             newID(),
		Name:           in.Name,
		Capacity:       in.Capacity,
		AvailableDates: report.Valid,
	}
	if err := c.repo.SaveVenue(ctx, venue); err != nil {
		return VenueResult{}, err
	}
	venue.Version = 1

	c.log.WithFields(logrus.Fields{
		"venue_id": venue.ID,
		"dates":    len(venue.AvailableDates),
		"rejected": len(report.Invalid),
	}).Info("venue created")

	return VenueResult{Venue: venue, DateReport: report.Report()}, nil
}

// UpdateVenue replaces name, capacity and free dates. Dates already booked
// by an event must be resubmitted and stay booked; capacity may not drop
// below any scheduled event's capacity.
func (c *Coordinator) UpdateVenue(ctx context.Context, id string, in VenueInput) (res VenueResult, err error) {
	defer func() { c.observe("update_venue", err) }()

	if err := in.validate(); err != nil {
		return VenueResult{}, err
	}
	report := domain.ValidateDates(in.Dates, c.today())
	if len(report.Valid) == 0 {
		return VenueResult{}, fmt.Errorf("%w: %s", domain.ErrNoValidDates, report.Report())
	}

	unlock := c.locks.Lock(venueKey(id))
	defer unlock()

	var updated domain.Venue
	err = c.commit(ctx, "update_venue", func(ctx context.Context) error {
		venue, err := c.repo.GetVenue(ctx, id)
		if err != nil {
			return err
		}

		dates := append([]string(nil), report.Valid...)
		for _, eventID := range venue.EventIDs {
			event, err := c.repo.GetEvent(ctx, eventID)
			if errors.Is(err, domain.ErrEventNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if !contains(dates, event.Date) {
				return fmt.Errorf("%w: %s is booked by event %s", domain.ErrVenueDateBooked, event.Date, event.ID)
			}
			if event.Capacity > in.Capacity {
				return fmt.Errorf("%w: event %s needs capacity %d", domain.ErrCapacityExceeded, event.ID, event.Capacity)
			}
			dates = removeAll(dates, event.Date)
		}

		venue.Name = in.Name
		venue.Capacity = in.Capacity
		venue.AvailableDates = dates
		if err := c.repo.SaveVenue(ctx, venue); err != nil {
			return err
		}
		venue.Version++
		updated = venue
		return nil
	})
	if err != nil {
		return VenueResult{}, err
	}
	return VenueResult{Venue: updated, DateReport: report.Report()}, nil
}

func (c *Coordinator) DeleteVenue(ctx context.Context, id string) (err error) {
	defer func() { c.observe("delete_venue", err) }()

	unlock := c.locks.Lock(venueKey(id))
	defer unlock()

	return c.commit(ctx, "delete_venue", func(ctx context.Context) error {
		venue, err := c.repo.GetVenue(ctx, id)
		if err != nil {
			return err
		}
		if len(venue.EventIDs) > 0 {
			return fmt.Errorf("%w: %d scheduled", domain.ErrVenueHasEvents, len(venue.EventIDs))
		}
		return c.repo.DeleteVenue(ctx, id)
	})
}

func (c *Coordinator) GetVenue(ctx context.Context, id string) (domain.Venue, error) {
	return c.repo.GetVenue(ctx, id)
}

func (c *Coordinator) ListVenues(ctx context.Context) ([]domain.Venue, error) {
	return c.repo.ListVenues(ctx)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func removeAll(list []string, s string) []string {
	out := list[:0]
	for _, item := range list {
		if item != s {
			out = append(out, item)
		}
	}
	return out
}
