package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

const (
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeMissingRequiredField  = "missing_required_field"
	codeInvalidID             = "invalid_id"
	codeInvalidDate           = "invalid_date"
	codeNoValidDates          = "no_valid_dates"
	codeNameRequired          = "name_required"
	codeUserRequired          = "user_required"
	codeInvalidCapacity       = "invalid_capacity"
	codeCapacityExceeded      = "capacity_exceeded"
	codeVenueNotFound         = "venue_not_found"
	codeEventNotFound         = "event_not_found"
	codeReservationNotFound   = "reservation_not_found"
	codeTicketTypeNotFound    = "ticket_type_not_found"
	codeVenueUnavailable      = "venue_unavailable"
	codeNoVenueAvailable      = "no_venue_available"
	codeVenueHasEvents        = "venue_has_events"
	codeVenueDateBooked       = "venue_date_booked"
	codeInsufficientRemaining = "insufficient_remaining"
	codeSoldOut               = "sold_out"
	codeInvalidDuration       = "invalid_duration"
	codeTicketsAlreadySold    = "tickets_already_sold"
	codeMalformedTicketRow    = "malformed_ticket_row"
	codePaymentDeclined       = "payment_declined"
	codeForbidden             = "forbidden"
	codeConflict              = "conflict"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// serviceErrors maps domain failures to responses. Order matters only for
// errors that wrap more than one sentinel.
var serviceErrors = []errorMapping{
	{domain.ErrVenueNotFound, http.StatusNotFound, codeVenueNotFound},
	{domain.ErrEventNotFound, http.StatusNotFound, codeEventNotFound},
	{domain.ErrReservationNotFound, http.StatusNotFound, codeReservationNotFound},
	{domain.ErrTicketTypeNotFound, http.StatusNotFound, codeTicketTypeNotFound},
	{domain.ErrConflict, http.StatusConflict, codeConflict},
	{domain.ErrForbidden, http.StatusForbidden, codeForbidden},
	{domain.ErrInvalidID, http.StatusBadRequest, codeInvalidID},
	{domain.ErrInvalidDateFormat, http.StatusBadRequest, codeInvalidDate},
	{domain.ErrPastDate, http.StatusBadRequest, codeInvalidDate},
	{domain.ErrNoValidDates, http.StatusBadRequest, codeNoValidDates},
	{domain.ErrNameRequired, http.StatusBadRequest, codeNameRequired},
	{domain.ErrUserRequired, http.StatusBadRequest, codeUserRequired},
	{domain.ErrInvalidCapacity, http.StatusBadRequest, codeInvalidCapacity},
	{domain.ErrCapacityExceeded, http.StatusBadRequest, codeCapacityExceeded},
	{domain.ErrVenueUnavailable, http.StatusBadRequest, codeVenueUnavailable},
	{domain.ErrNoVenueAvailable, http.StatusBadRequest, codeNoVenueAvailable},
	{domain.ErrVenueHasEvents, http.StatusBadRequest, codeVenueHasEvents},
	{domain.ErrVenueDateBooked, http.StatusBadRequest, codeVenueDateBooked},
	{domain.ErrInsufficientRemaining, http.StatusBadRequest, codeInsufficientRemaining},
	{domain.ErrSoldOut, http.StatusBadRequest, codeSoldOut},
	{domain.ErrInvalidDuration, http.StatusBadRequest, codeInvalidDuration},
	{domain.ErrTicketsAlreadySold, http.StatusBadRequest, codeTicketsAlreadySold},
	{domain.ErrMalformedTicketRow, http.StatusBadRequest, codeMalformedTicketRow},
	{domain.ErrPaymentDeclined, http.StatusBadRequest, codePaymentDeclined},
}

// writeServiceError answers with the mapped status and the full error
// message; anything unmapped is logged and reported as a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger logrus.FieldLogger, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	logger.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error("request failed")
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads a strict JSON body. It writes the error response
// itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return false
	}
	return true
}
