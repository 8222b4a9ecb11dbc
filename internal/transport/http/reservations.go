package http

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/app"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

// ReservationService is the minimal interface needed for reservation endpoints.
type ReservationService interface {
	Reserve(ctx context.Context, in app.ReserveInput) (domain.Reservation, error)
	CancelReservation(ctx context.Context, id, user string) error
	GetReservation(ctx context.Context, id string) (domain.Reservation, error)
}

type reserveRequest struct {
	TicketType      string `json:"ticket_type"`
	User            string `json:"user"`
	DurationMinutes int    `json:"duration_minutes"`
}

type reservationResponse struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	User         string    `json:"user"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func newReservationResponse(r domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:           r.ID,
		EventID:      r.EventID,
		TicketTypeID: r.TicketTypeID,
		User:         r.User,
		ExpiresAt:    r.ExpiresAt,
	}
}

func HandleReserve(svc ReservationService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reserveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.TicketType == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "ticket_type is required")
			return
		}

		res, err := svc.Reserve(r.Context(), app.ReserveInput{
			EventID:         r.PathValue("id"),
			TicketType:      req.TicketType,
			User:            req.User,
			DurationMinutes: req.DurationMinutes,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, newReservationResponse(res))
	}
}

func HandleGetReservation(svc ReservationService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.GetReservation(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newReservationResponse(res))
	}
}

// HandleCancelReservation expects the holder in the user query parameter.
func HandleCancelReservation(svc ReservationService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.URL.Query().Get("user")
		if user == "" {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "user query parameter is required")
			return
		}
		if err := svc.CancelReservation(r.Context(), r.PathValue("id"), user); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
