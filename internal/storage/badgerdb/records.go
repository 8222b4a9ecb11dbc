package badgerdb

import (
	"time"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

type venueRecord struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Capacity       int      `json:"capacity"`
	AvailableDates []string `json:"available_dates"`
	EventIDs       []string `json:"event_ids"`
	Version        int      `json:"version"`
}

func toVenueRecord(v domain.Venue) venueRecord {
	return venueRecord{
		ID:             v.ID,
		Name:           v.Name,
		Capacity:       v.Capacity,
		AvailableDates: v.AvailableDates,
		EventIDs:       v.EventIDs,
		Version:        v.Version,
	}
}

func (r venueRecord) domain() domain.Venue {
	return domain.Venue{
		ID:             r.ID,
		Name:           r.Name,
		Capacity:       r.Capacity,
		AvailableDates: r.AvailableDates,
		EventIDs:       r.EventIDs,
		Version:        r.Version,
	}
}

type ticketRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
}

type eventRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Date        string         `json:"date"`
	Description string         `json:"description"`
	Capacity    int            `json:"capacity"`
	VenueID     string         `json:"venue_id"`
	Tickets     []ticketRecord `json:"tickets"`
	Version     int            `json:"version"`
}

func toEventRecord(e domain.Event) eventRecord {
	rec := eventRecord{
		ID:          e.ID,
		Name:        e.Name,
		Date:        e.Date,
		Description: e.Description,
		Capacity:    e.Capacity,
		VenueID:     e.VenueID,
		Version:     e.Version,
	}
	for _, t := range e.Tickets {
		rec.Tickets = append(rec.Tickets, ticketRecord(t))
	}
	return rec
}

func (r eventRecord) domain() domain.Event {
	e := domain.Event{
		ID:          r.ID,
		Name:        r.Name,
		Date:        r.Date,
		Description: r.Description,
		Capacity:    r.Capacity,
		VenueID:     r.VenueID,
		Version:     r.Version,
	}
	for _, t := range r.Tickets {
		e.Tickets = append(e.Tickets, domain.TicketType(t))
	}
	return e
}

type reservationRecord struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	User         string    `json:"user"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

type purchaseRecord struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	TicketTypeID  string    `json:"ticket_type_id"`
	TicketType    string    `json:"ticket_type"`
	User          string    `json:"user"`
	Price         int       `json:"price"`
	ReservationID string    `json:"reservation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
