package domain

import (
	"strings"
	"time"
)

// DateLayout is the only accepted wire format for dates.
const DateLayout = time.DateOnly

// InvalidDate is a rejected date token and the reason it was rejected.
type InvalidDate struct {
	Token  string
	Reason error
}

// DateReport partitions date tokens into valid and invalid ones.
type DateReport struct {
	Valid   []string
	Invalid []InvalidDate
}

// ValidateDates keeps tokens that parse as YYYY-MM-DD and are not before today.
// today is truncated to its calendar day; input order is preserved.
func ValidateDates(tokens []string, today time.Time) DateReport {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var report DateReport
	for _, token := range tokens {
		parsed, err := time.Parse(DateLayout, token)
		if err != nil {
			report.Invalid = append(report.Invalid, InvalidDate{Token: token, Reason: ErrInvalidDateFormat})
			continue
		}
		if parsed.Before(day) {
			report.Invalid = append(report.Invalid, InvalidDate{Token: token, Reason: ErrPastDate})
			continue
		}
		report.Valid = append(report.Valid, token)
	}
	return report
}

// HasInvalid reports whether any token was rejected.
func (r DateReport) HasInvalid() bool {
	return len(r.Invalid) > 0
}

// Report returns a human-readable list of rejected tokens, or "" when all were valid.
func (r DateReport) Report() string {
	if len(r.Invalid) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("some dates were invalid or in the past, expected format is YYYY-MM-DD:")
	for _, bad := range r.Invalid {
		b.WriteString("\n")
		b.WriteString(bad.Token)
		b.WriteString(" (")
		b.WriteString(bad.Reason.Error())
		b.WriteString(")")
	}
	return b.String()
}

// FirstReason returns the rejection reason of the first invalid token.
func (r DateReport) FirstReason() error {
	if len(r.Invalid) == 0 {
		return nil
	}
	return r.Invalid[0].Reason
}
