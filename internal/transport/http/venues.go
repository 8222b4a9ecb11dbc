package http

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/app"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

// VenueService is the minimal interface needed for venue endpoints.
type VenueService interface {
	CreateVenue(ctx context.Context, in app.VenueInput) (app.VenueResult, error)
	UpdateVenue(ctx context.Context, id string, in app.VenueInput) (app.VenueResult, error)
	DeleteVenue(ctx context.Context, id string) error
	GetVenue(ctx context.Context, id string) (domain.Venue, error)
	ListVenues(ctx context.Context) ([]domain.Venue, error)
}

type venueRequest struct {
	Name     string   `json:"name"`
	Capacity int      `json:"capacity"`
	Dates    []string `json:"dates"`
}

func (r venueRequest) input() app.VenueInput {
	return app.VenueInput{Name: r.Name, Capacity: r.Capacity, Dates: r.Dates}
}

type venueResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Capacity       int      `json:"capacity"`
	AvailableDates []string `json:"available_dates"`
	EventIDs       []string `json:"event_ids"`
	// DateReport lists rejected dates after a partially successful write.
	DateReport string `json:"date_report,omitempty"`
}

func newVenueResponse(v domain.Venue) venueResponse {
	return venueResponse{
		ID:             v.ID,
		Name:           v.Name,
		Capacity:       v.Capacity,
		AvailableDates: nonNilStrings(v.AvailableDates),
		EventIDs:       nonNilStrings(v.EventIDs),
	}
}

func HandleListVenues(svc VenueService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venues, err := svc.ListVenues(r.Context())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		resp := make([]venueResponse, 0, len(venues))
		for _, v := range venues {
			resp = append(resp, newVenueResponse(v))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleCreateVenue(svc VenueService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req venueRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.Dates) == 0 {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "dates are required")
			return
		}

		res, err := svc.CreateVenue(r.Context(), req.input())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		resp := newVenueResponse(res.Venue)
		resp.DateReport = res.DateReport
		writeJSON(w, http.StatusCreated, resp)
	}
}

func HandleGetVenue(svc VenueService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venue, err := svc.GetVenue(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, newVenueResponse(venue))
	}
}

func HandleUpdateVenue(svc VenueService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req venueRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if len(req.Dates) == 0 {
			writeError(w, http.StatusBadRequest, codeMissingRequiredField, "dates are required")
			return
		}

		res, err := svc.UpdateVenue(r.Context(), r.PathValue("id"), req.input())
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		resp := newVenueResponse(res.Venue)
		resp.DateReport = res.DateReport
		writeJSON(w, http.StatusOK, resp)
	}
}

func HandleDeleteVenue(svc VenueService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteVenue(r.Context(), r.PathValue("id")); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func nonNilStrings(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
