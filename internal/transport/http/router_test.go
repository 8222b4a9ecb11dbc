package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/app"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/clock"
	"github.com/cimillas/ultimate-ticket/services/inventory/internal/storage/memory"
)

type routerFixture struct {
	handler http.Handler
	clock   *clock.Manual
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	clk := clock.NewManual(time.Date(2029, 12, 31, 10, 0, 0, 0, time.UTC))
	svc := app.NewCoordinator(memory.NewStore(), clk, app.WithLogger(logger))
	return &routerFixture{
		handler: NewRouter(svc, logger, RouterConfig{AllowedOrigins: []string{"http://localhost:3000"}}),
		clock:   clk,
	}
}

func (f *routerFixture) do(t *testing.T, method, target string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, target, err)
		}
	}
	return rec.Code
}

func (f *routerFixture) remaining(t *testing.T, eventID string) int {
	t.Helper()
	var tickets []ticketTypeResponse
	if code := f.do(t, http.MethodGet, "/events/"+eventID+"/tickets", nil, &tickets); code != http.StatusOK {
		t.Fatalf("list tickets: status %d", code)
	}
	if len(tickets) != 1 {
		t.Fatalf("expected 1 ticket type, got %d", len(tickets))
	}
	return tickets[0].Remaining
}

func TestRouter_ReservationLifecycle(t *testing.T) {
	f := newRouterFixture(t)

	var venue venueResponse
	code := f.do(t, http.MethodPost, "/venues", map[string]any{
		"name":     "Hall",
		"capacity": 100,
		"dates":    []string{"2030-01-01", "2030-01-02"},
	}, &venue)
	if code != http.StatusCreated {
		t.Fatalf("create venue: status %d", code)
	}

	var event scheduleEventResponse
	code = f.do(t, http.MethodPost, "/events", map[string]any{
		"name":     "Concert",
		"date":     "2030-01-01",
		"capacity": 50,
		"venue_id": venue.ID,
		"tickets":  [][]string{{"GA", "20", "50", "50"}},
	}, &event)
	if code != http.StatusCreated {
		t.Fatalf("schedule event: status %d", code)
	}
	if event.VenueID != venue.ID {
		t.Fatalf("expected venue %s, got %s", venue.ID, event.VenueID)
	}

	var reservation reservationResponse
	code = f.do(t, http.MethodPost, "/events/"+event.ID+"/reservations", map[string]any{
		"ticket_type":      "GA",
		"user":             "alice",
		"duration_minutes": 5,
	}, &reservation)
	if code != http.StatusCreated {
		t.Fatalf("reserve: status %d", code)
	}
	if got := f.remaining(t, event.ID); got != 49 {
		t.Fatalf("expected 49 remaining, got %d", got)
	}

	if code := f.do(t, http.MethodDelete, "/reservations/"+reservation.ID+"?user=bob", nil, nil); code != http.StatusForbidden {
		t.Fatalf("cancel by other user: expected 403, got %d", code)
	}

	f.clock.Advance(6 * time.Minute)

	if got := f.remaining(t, event.ID); got != 50 {
		t.Fatalf("expected 50 remaining after expiry, got %d", got)
	}
	if code := f.do(t, http.MethodGet, "/reservations/"+reservation.ID, nil, nil); code != http.StatusNotFound {
		t.Fatalf("expired reservation: expected 404, got %d", code)
	}
}

func TestRouter_PurchaseAndCancelGuard(t *testing.T) {
	f := newRouterFixture(t)

	var venue venueResponse
	f.do(t, http.MethodPost, "/venues", map[string]any{
		"name":     "Hall",
		"capacity": 100,
		"dates":    []string{"2030-01-01"},
	}, &venue)

	var event scheduleEventResponse
	f.do(t, http.MethodPost, "/events", map[string]any{
		"name":     "Concert",
		"date":     "2030-01-01",
		"capacity": 10,
		"venue_id": venue.ID,
		"tickets":  [][]string{{"GA", "20", "10", "10"}},
	}, &event)

	var purchase purchaseResponse
	code := f.do(t, http.MethodPost, "/events/"+event.ID+"/purchases", map[string]any{
		"ticket_type": "GA",
		"user":        "alice",
	}, &purchase)
	if code != http.StatusCreated {
		t.Fatalf("purchase: status %d", code)
	}
	if purchase.Price != 20 || purchase.ViaReservation {
		t.Fatalf("unexpected purchase %+v", purchase)
	}

	var purchases []purchaseResponse
	if code := f.do(t, http.MethodGet, "/events/"+event.ID+"/purchases", nil, &purchases); code != http.StatusOK {
		t.Fatalf("list purchases: status %d", code)
	}
	if len(purchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(purchases))
	}

	if code := f.do(t, http.MethodDelete, "/events/"+event.ID, nil, nil); code != http.StatusBadRequest {
		t.Fatalf("cancel sold event: expected 400, got %d", code)
	}
	if code := f.do(t, http.MethodDelete, "/venues/"+venue.ID, nil, nil); code != http.StatusBadRequest {
		t.Fatalf("delete venue with events: expected 400, got %d", code)
	}
}

func TestRouter_UnknownRouteAndHealth(t *testing.T) {
	f := newRouterFixture(t)

	if code := f.do(t, http.MethodGet, "/nope", nil, nil); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if code := f.do(t, http.MethodGet, "/health", nil, nil); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := f.do(t, http.MethodGet, "/metrics", nil, nil); code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", code)
	}
}

func TestRouter_Preflight(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/events", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
