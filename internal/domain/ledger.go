package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ticketRowFields is the column count of a wire ticket row:
// name, price, total, remaining.
const ticketRowFields = 4

// TicketType is one sellable category of an event.
type TicketType struct {
	ID        string
	Name      string
	Price     int
	Total     int
	Remaining int
}

// TicketLedger is the ordered list of ticket types of an event.
// Row order never changes once the event exists.
type TicketLedger []TicketType

// ParseTicketRows validates wire rows against the event capacity and
// returns them as a ledger without IDs.
func ParseTicketRows(rows [][]string, eventCapacity int) (TicketLedger, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: at least one ticket type is required", ErrMalformedTicketRow)
	}

	available := eventCapacity
	ledger := make(TicketLedger, 0, len(rows))
	for i, row := range rows {
		if len(row) != ticketRowFields {
			return nil, fmt.Errorf("%w: row %d has %d fields, expected name, price, total, remaining", ErrMalformedTicketRow, i, len(row))
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			return nil, fmt.Errorf("%w: row %d has an empty name", ErrMalformedTicketRow, i)
		}
		price, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil || price < 0 {
			return nil, fmt.Errorf("%w: row %d price %q must be a non-negative integer", ErrMalformedTicketRow, i, row[1])
		}
		total, err := strconv.Atoi(strings.TrimSpace(row[2]))
		if err != nil || total < 0 {
			return nil, fmt.Errorf("%w: row %d total %q must be a non-negative integer", ErrMalformedTicketRow, i, row[2])
		}
		remaining, err := strconv.Atoi(strings.TrimSpace(row[3]))
		if err != nil || remaining < 0 {
			return nil, fmt.Errorf("%w: row %d remaining %q must be a non-negative integer", ErrMalformedTicketRow, i, row[3])
		}
		if remaining > total {
			return nil, fmt.Errorf("%w: row %d remaining %d exceeds total %d", ErrMalformedTicketRow, i, remaining, total)
		}
		if total > available {
			return nil, fmt.Errorf("%w: ticket totals exceed event capacity %d", ErrCapacityExceeded, eventCapacity)
		}
		available -= total

		ledger = append(ledger, TicketType{
			Name:      name,
			Price:     price,
			Total:     total,
			Remaining: remaining,
		})
	}
	return ledger, nil
}

// Rows encodes the ledger in the wire format.
func (l TicketLedger) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, t := range l {
		rows = append(rows, []string{
			t.Name,
			strconv.Itoa(t.Price),
			strconv.Itoa(t.Total),
			strconv.Itoa(t.Remaining),
		})
	}
	return rows
}

// Clone returns a deep copy.
func (l TicketLedger) Clone() TicketLedger {
	if l == nil {
		return nil
	}
	out := make(TicketLedger, len(l))
	copy(out, l)
	return out
}

// TotalCapacity sums the totals of all rows.
func (l TicketLedger) TotalCapacity() int {
	sum := 0
	for _, t := range l {
		sum += t.Total
	}
	return sum
}

// HasOutstanding reports whether any unit is sold or held.
func (l TicketLedger) HasOutstanding() bool {
	for _, t := range l {
		if t.Remaining < t.Total {
			return true
		}
	}
	return false
}

// FindByName returns the index of the first row whose name matches case-insensitively.
func (l TicketLedger) FindByName(name string) (int, error) {
	for i, t := range l {
		if strings.EqualFold(t.Name, name) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrTicketTypeNotFound, name)
}

// FindByID returns the index of the row with the given stable ID.
func (l TicketLedger) FindByID(id string) (int, error) {
	for i, t := range l {
		if t.ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: id %s", ErrTicketTypeNotFound, id)
}

// ApplyCapacityDelta moves the row total to newTotal, shifting remaining by the
// same difference so already-committed units are preserved.
func (l TicketLedger) ApplyCapacityDelta(index, newTotal int) error {
	if index < 0 || index >= len(l) {
		return fmt.Errorf("%w: row %d", ErrTicketTypeNotFound, index)
	}
	row := &l[index]
	diff := newTotal - row.Total
	if row.Remaining+diff < 0 {
		return fmt.Errorf("%w: %s total %d is below %d committed units",
			ErrInsufficientRemaining, row.Name, newTotal, row.Total-row.Remaining)
	}
	row.Total = newTotal
	row.Remaining += diff
	return nil
}

// Decrement takes one unit from the row.
func (l TicketLedger) Decrement(id string) error {
	i, err := l.FindByID(id)
	if err != nil {
		return err
	}
	if l[i].Remaining <= 0 {
		return fmt.Errorf("%w: %s", ErrSoldOut, l[i].Name)
	}
	l[i].Remaining--
	return nil
}

// Increment returns one unit to the row. Every increment pairs with an
// earlier decrement, so remaining never passes total.
func (l TicketLedger) Increment(id string) error {
	i, err := l.FindByID(id)
	if err != nil {
		return err
	}
	if l[i].Remaining >= l[i].Total {
		return fmt.Errorf("%w: %s already at total", ErrCapacityExceeded, l[i].Name)
	}
	l[i].Remaining++
	return nil
}
