package measurement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPeriodUntil(t *testing.T) {
	until := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	period, err := NewPeriodUntil("PT1H", until)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC), period.Start)
	assert.Equal(t, until, period.End)
	assert.True(t, period.IsValid())
	assert.Equal(t, "PT1H", period.String())
}

func TestNewPeriodAround(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	period, err := NewPeriodAround("P1D", at)
	require.NoError(t, err)

	assert.Equal(t, at.AddDate(0, 0, -1), period.Start)
	assert.Equal(t, at.AddDate(0, 0, 1), period.End)
}

func TestParseISO8601Duration_Invalid(t *testing.T) {
	for _, input := range []string{"", "one day", "PT0S"} {
		_, err := ParseISO8601Duration(input)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "input %q", input)
	}
}

func TestFormatQueryTime(t *testing.T) {
	local := time.Date(2024, 5, 1, 9, 30, 15, 999, time.FixedZone("ADT", -3*3600))
	assert.Equal(t, "2024-05-01T12:30:15Z", FormatQueryTime(local))
}

func TestParseTimestamp(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		{name: "rfc3339", input: "2024-05-01T12:30:00Z", expected: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{name: "offset", input: "2024-05-01T09:30:00-03:00", expected: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{name: "no zone", input: "2024-05-01T12:30:00", expected: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{name: "empty", input: "", expectError: true},
		{name: "garbage", input: "yesterday", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts, err := ParseTimestamp(tc.input)
			if tc.expectError {
				assert.ErrorIs(t, err, ErrInvalidTimestamp)
				return
			}

			require.NoError(t, err)
			assert.True(t, tc.expected.Equal(ts), "expected %s, got %s", tc.expected, ts)
		})
	}
}
