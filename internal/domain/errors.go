package domain

import "errors"

var (
	ErrInvalidDateFormat     = errors.New("invalid date format")
	ErrPastDate              = errors.New("date is in the past")
	ErrNoValidDates          = errors.New("no valid dates")
	ErrVenueNotFound         = errors.New("venue not found")
	ErrEventNotFound         = errors.New("event not found")
	ErrReservationNotFound   = errors.New("reservation not found")
	ErrTicketTypeNotFound    = errors.New("ticket type not found")
	ErrCapacityExceeded      = errors.New("capacity exceeded")
	ErrInvalidCapacity       = errors.New("invalid capacity")
	ErrNameRequired          = errors.New("name required")
	ErrUserRequired          = errors.New("user required")
	ErrVenueUnavailable      = errors.New("venue unavailable on date")
	ErrNoVenueAvailable      = errors.New("no venue available")
	ErrVenueHasEvents        = errors.New("venue has scheduled events")
	ErrVenueDateBooked       = errors.New("venue date is booked by an event")
	ErrInsufficientRemaining = errors.New("insufficient remaining tickets")
	ErrSoldOut               = errors.New("ticket type sold out")
	ErrInvalidDuration       = errors.New("invalid reservation duration")
	ErrForbidden             = errors.New("forbidden")
	ErrTicketsAlreadySold    = errors.New("tickets already sold or reserved")
	ErrMalformedTicketRow    = errors.New("malformed ticket row")
	ErrPaymentDeclined       = errors.New("payment declined")
	ErrConflict              = errors.New("concurrent modification")
	ErrInvalidID             = errors.New("invalid id")
)
