package domain

import (
	"strings"
	"time"
)

// MaxReservationDuration is the longest hold a user may place.
const MaxReservationDuration = 15 * time.Minute

// Reservation holds one unit of a ticket type for a user until ExpiresAt.
// While it exists, the unit is missing from the row's Remaining.
type Reservation struct {
	ID           string
	EventID      string
	TicketTypeID string
	User         string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// Expired reports whether the hold has lapsed at now.
func (r Reservation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// HeldBy matches the holder case-insensitively.
func (r Reservation) HeldBy(user string) bool {
	return strings.EqualFold(r.User, user)
}
