package domain

import "time"

// Purchase is a sold ticket unit. ReservationID is empty for direct purchases.
type Purchase struct {
	ID            string
	EventID       string
	TicketTypeID  string
	TicketType    string
	User          string
	Price         int
	ReservationID string
	CreatedAt     time.Time
}
