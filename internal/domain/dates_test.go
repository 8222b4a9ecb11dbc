package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDates(t *testing.T) {
	today := time.Date(2030, 1, 10, 15, 30, 0, 0, time.UTC)

	report := ValidateDates([]string{
		"2030-01-10",
		"2030-01-09",
		"2030-13-01",
		"10/01/2030",
		"2031-02-28",
		"",
	}, today)

	assert.Equal(t, []string{"2030-01-10", "2031-02-28"}, report.Valid)
	require.Len(t, report.Invalid, 4)
	assert.Equal(t, InvalidDate{Token: "2030-01-09", Reason: ErrPastDate}, report.Invalid[0])
	assert.ErrorIs(t, report.Invalid[1].Reason, ErrInvalidDateFormat)
	assert.ErrorIs(t, report.Invalid[2].Reason, ErrInvalidDateFormat)
	assert.ErrorIs(t, report.Invalid[3].Reason, ErrInvalidDateFormat)
	assert.True(t, report.HasInvalid())
	assert.ErrorIs(t, report.FirstReason(), ErrPastDate)
}

func TestValidateDates_Partition(t *testing.T) {
	today := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	tokens := []string{"2030-05-31", "2030-06-01", "2030-06-02", "bogus", "2030-02-30", "2099-12-31"}

	report := ValidateDates(tokens, today)

	assert.Equal(t, len(tokens), len(report.Valid)+len(report.Invalid))
	for _, token := range report.Valid {
		parsed, err := time.Parse(DateLayout, token)
		require.NoError(t, err)
		assert.False(t, parsed.Before(today), "valid token %s is before today", token)
	}
	for _, bad := range report.Invalid {
		parsed, err := time.Parse(DateLayout, bad.Token)
		if err == nil {
			assert.True(t, parsed.Before(today), "invalid token %s parses and is not past", bad.Token)
		}
	}
}

func TestDateReport_Report(t *testing.T) {
	report := ValidateDates([]string{"2030-01-01"}, time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Empty(t, report.Report())
	assert.NoError(t, report.FirstReason())

	report = ValidateDates([]string{"nope", "2020-01-01"}, time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC))
	out := report.Report()
	assert.Contains(t, out, "YYYY-MM-DD")
	assert.Contains(t, out, "nope")
	assert.Contains(t, out, "2020-01-01")
}
