package domain

// Event is a single-day event booked at one venue.
type Event struct {
	ID          string
	Name        string
	Date        string
	Description string
	Capacity    int
	VenueID     string
	Tickets     TicketLedger
	Version     int
}

// Clone returns a deep copy.
func (e Event) Clone() Event {
	e.Tickets = e.Tickets.Clone()
	return e
}
