package http

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/metrics"
)

// Service is everything the router serves; *app.Coordinator implements it.
type Service interface {
	VenueService
	EventService
	ReservationService
	PurchaseService
}

type RouterConfig struct {
	AllowedOrigins []string
	HealthChecks   []HealthCheck
}

// NewRouter wires every route behind request logging and CORS. Each route
// is instrumented under its pattern so metrics stay low-cardinality.
func NewRouter(svc Service, logger logrus.FieldLogger, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, metrics.Instrument(pattern, h))
	}

	handle("GET /health", HealthHandler(cfg.HealthChecks...))
	mux.Handle("GET /metrics", metrics.Handler())

	handle("GET /venues", HandleListVenues(svc, logger))
	handle("POST /venues", HandleCreateVenue(svc, logger))
	handle("GET /venues/{id}", HandleGetVenue(svc, logger))
	handle("PUT /venues/{id}", HandleUpdateVenue(svc, logger))
	handle("DELETE /venues/{id}", HandleDeleteVenue(svc, logger))

	handle("GET /events", HandleListEvents(svc, logger))
	handle("POST /events", HandleScheduleEvent(svc, logger))
	handle("GET /events/{id}", HandleGetEvent(svc, logger))
	handle("PUT /events/{id}", HandleUpdateEvent(svc, logger))
	handle("DELETE /events/{id}", HandleCancelEvent(svc, logger))
	handle("GET /events/{id}/tickets", HandleListTickets(svc, logger))

	handle("POST /events/{id}/reservations", HandleReserve(svc, logger))
	handle("GET /reservations/{id}", HandleGetReservation(svc, logger))
	handle("DELETE /reservations/{id}", HandleCancelReservation(svc, logger))

	handle("POST /events/{id}/purchases", HandlePurchase(svc, logger))
	handle("GET /events/{id}/purchases", HandleListPurchases(svc, logger))

	mux.Handle("/", NotFoundHandler())

	return RequestLogger(CORS(cfg.AllowedOrigins, mux), logger)
}
