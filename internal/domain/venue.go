package domain

import "fmt"

// Venue is a place with a capacity and the dates it is free to host events.
// A date booked by an event is never in AvailableDates.
type Venue struct {
	ID             string
	Name           string
	Capacity       int
	AvailableDates []string
	EventIDs       []string
	Version        int
}

// Clone returns a deep copy.
func (v Venue) Clone() Venue {
	v.AvailableDates = cloneStrings(v.AvailableDates)
	v.EventIDs = cloneStrings(v.EventIDs)
	return v
}

// CanHost checks capacity before scanning dates.
func (v Venue) CanHost(date string, capacity int) bool {
	if capacity > v.Capacity {
		return false
	}
	return v.IsAvailable(date)
}

// IsAvailable reports whether date is free.
func (v Venue) IsAvailable(date string) bool {
	for _, d := range v.AvailableDates {
		if d == date {
			return true
		}
	}
	return false
}

// BookDate takes date out of availability and associates the event.
func (v *Venue) BookDate(date, eventID string) error {
	if !v.IsAvailable(date) {
		return fmt.Errorf("%w: %s at %s", ErrVenueUnavailable, date, v.Name)
	}
	v.AvailableDates = removeString(v.AvailableDates, date)
	v.EventIDs = append(v.EventIDs, eventID)
	return nil
}

// ReleaseDate gives date back and drops the event association. The caller
// must not release the same booking twice.
func (v *Venue) ReleaseDate(date, eventID string) {
	v.AvailableDates = append(v.AvailableDates, date)
	v.EventIDs = removeString(v.EventIDs, eventID)
}

// RescheduleDate swaps oldDate for newDate, all or nothing.
func (v *Venue) RescheduleDate(oldDate, newDate, eventID string) error {
	if !v.IsAvailable(newDate) {
		return fmt.Errorf("%w: %s at %s", ErrVenueUnavailable, newDate, v.Name)
	}
	v.AvailableDates = append(removeString(v.AvailableDates, newDate), oldDate)
	if !v.HasEvent(eventID) {
		v.EventIDs = append(v.EventIDs, eventID)
	}
	return nil
}

// HasEvent reports whether eventID is associated with the venue.
func (v Venue) HasEvent(eventID string) bool {
	for _, id := range v.EventIDs {
		if id == eventID {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	for i, item := range list {
		if item == s {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
