package http

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/app"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

// PurchaseService is the minimal interface needed for purchase endpoints.
type PurchaseService interface {
	Purchase(ctx context.Context, in app.PurchaseInput) (app.PurchaseResult, error)
	ListPurchases(ctx context.Context, eventID string) ([]domain.Purchase, error)
}

type purchaseRequest struct {
	TicketType string `json:"ticket_type"`
	User       string `json:"user"`
}

type purchaseResponse struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	TicketTypeID   string    `json:"ticket_type_id"`
	TicketType     string    `json:"ticket_type"`
	User           string    `json:"user"`
	Price          int       `json:"price"`
	ReservationID  string    `json:"reservation_id,omitempty"`
	ViaReservation bool      `json:"via_reservation"`
	CreatedAt      time.Time `json:"created_at"`
}

func newPurchaseResponse(p domain.Purchase) purchaseResponse {
	return purchaseResponse{
		ID:             p.ID,
		EventID:        p.EventID,
		TicketTypeID:   p.TicketTypeID,
		TicketType:     p.TicketType,
		User:           p.User,
		Price:          p.Price,
		ReservationID:  p.ReservationID,
		ViaReservation: p.ReservationID != "",
		CreatedAt:      p.CreatedAt,
	}
}

// HandlePurchase sells one ticket. ticket_type may be empty when the user
// holds a reservation for the event.
func HandlePurchase(svc PurchaseService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req purchaseRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		res, err := svc.Purchase(r.Context(), app.PurchaseInput{
			EventID:    r.PathValue("id"),
			TicketType: req.TicketType,
			User:       req.User,
		})
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, newPurchaseResponse(res.Purchase))
	}
}

func HandleListPurchases(svc PurchaseService, logger logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		purchases, err := svc.ListPurchases(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		resp := make([]purchaseResponse, 0, len(purchases))
		for _, p := range purchases {
			resp = append(resp, newPurchaseResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
