package http

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/app"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

// EventService is the minimal interface needed for event endpoints.
type EventService interface {
	ScheduleEvent(ctx context.Context, in app.ScheduleEventInput) (app.ScheduleEventResult, error)
	UpdateEvent(ctx context.Context, id string, in app.UpdateEventInput) (domain.Event, error)
	CancelEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	ListTickets(ctx context.Context, eventID string) (domain.TicketLedger, error)
}

type eventRequest struct {
	Name        string     `json:"name"`
	Date        string     `json:"date"`
	Description string     `json:"description"`
	Capacity    int        `json:"capacity"`
	VenueID     string     `json:"venue_id,omitempty"`
	VenueName   string     `json:"venue_name,omitempty"`
	Tickets     [][]string `json:"tickets"`
}

func (r eventRequest) validate() (string, bool) {
	if r.Date == "" {
		return "date is required", false
	}
	if len(r.Tickets) == 0 {
		return "at least one ticket type is required", false
	}
	return "", true
}

type ticketTypeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
}

type eventResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
	VenueID     string `json:"venue_id"`
	// Tickets is the ledger in wire row form: name, price, total, remaining.
	Tickets     [][]string           `json:"tickets"`
	TicketTypes []ticketTypeResponse `json:"ticket_types"`
}

type scheduleEventResponse struct {
	eventResponse
	VenueSubstituted bool   `json:"venue_substituted"`
	Message          string `json:"message,omitempty"`
}

func newTicketTypesResponse(ledger domain.TicketLedger) []ticketTypeResponse {
	out := make([]ticketTypeResponse, 0, len(ledger))
	for _, t := range ledger {
		out = append(out, ticketTypeResponse(t))
	}
	return out
}

func newEventResponse(e domain.Event) eventResponse {
	return eventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Date:        e.Date,
		Description: e.Description,
		Capacity:    e.Capacity,
		VenueID:     e.VenueID,
		Tickets:     e.Tickets.Rows(),
		TicketTypes: newTicketTypesResponse(e.Tickets),
	}
}

func HandleListEvents(svc EventService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		resp := make([]eventResponse, 0, len(events))
		for _, e := range events {
			resp = append(resp, newEventResponse(e))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleScheduleEvent(svc EventService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if msg, ok := req.validate(); !ok {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, msg)
			return
		}

		in := app.ScheduleEventInput{
			Name:        req.Name,
			Date:        req.Date,
			Description: req.Description,
			Capacity:    req.Capacity,
			Tickets:     req.Tickets,
		}
		if req.VenueID != "" || req.VenueName != "" {
			in.Venue = &app.VenueRef{ID: req.VenueID, Name: req.VenueName}
		}

		res, err := svc.ScheduleEvent(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, scheduleEventResponse{
			eventResponse:    newEventResponse(res.Event),
			VenueSubstituted: res.VenueSubstituted,
			Message:          res.Message,
		})
	}
}

func HandleGetEvent(svc EventService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		event, err := svc.GetEvent(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

func HandleUpdateEvent(svc EventService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if msg, ok := req.validate(); !ok {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, msg)
			return
		}

		event, err := svc.UpdateEvent(r.Context(), r.PathValue("id"), app.UpdateEventInput{
			Name:        req.Name,
			Date:        req.Date,
			Description: req.Description,
			Capacity:    req.Capacity,
			Tickets:     req.Tickets,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newEventResponse(event))
	}
}

func HandleCancelEvent(svc EventService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.CancelEvent(r.Context(), r.PathValue("id")); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func HandleListTickets(svc EventService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := svc.ListTickets(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newTicketTypesResponse(tickets))
	}
}
