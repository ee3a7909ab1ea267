package measurement

import (
	"fmt"
	"strings"
	"time"

	"github.com/sosodev/duration"
)

// QueryTimeLayout is the timestamp format the IWLS API accepts for from/to parameters.
const QueryTimeLayout = "2006-01-02T15:04:05Z"

var (
	ErrInvalidPeriod    = fmt.Errorf("invalid period")
	ErrInvalidTimestamp = fmt.Errorf("invalid timestamp")
)

type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (p *Period) IsValid() bool {
	return p.Start.Before(p.End)
}

// String renders the period length as an ISO 8601 duration, e.g. "PT1H".
func (p *Period) String() string {
	isoDuration := duration.FromTimeDuration(p.End.Sub(p.Start))
	return isoDuration.String()
}

// NewPeriodUntil returns the window of the given ISO 8601 length that ends at until.
func NewPeriodUntil(iso8601 string, until time.Time) (*Period, error) {
	length, err := ParseISO8601Duration(iso8601)
	if err != nil {
		return nil, err
	}

	return &Period{
		Start: until.Add(-length).UTC(),
		End:   until.UTC(),
	}, nil
}

// NewPeriodAround returns [at - d, at + d] for the ISO 8601 duration d.
func NewPeriodAround(iso8601 string, at time.Time) (*Period, error) {
	length, err := ParseISO8601Duration(iso8601)
	if err != nil {
		return nil, err
	}

	return &Period{
		Start: at.Add(-length).UTC(),
		End:   at.Add(length).UTC(),
	}, nil
}

// ParseISO8601Duration parses durations such as "P1D" or "PT30M". Zero and
// negative lengths are rejected.
func ParseISO8601Duration(iso8601 string) (time.Duration, error) {
	parsed, err := duration.Parse(strings.TrimSpace(iso8601))
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidPeriod, iso8601, err)
	}

	length := parsed.ToTimeDuration()
	if length <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidPeriod, iso8601)
	}

	return length, nil
}

// FormatQueryTime formats t in UTC the way the service expects query timestamps.
func FormatQueryTime(t time.Time) string {
	return t.UTC().Format(QueryTimeLayout)
}

// ParseTimestamp parses service timestamps. The service emits RFC 3339 with a
// trailing Z, occasionally without seconds fraction or zone.
func ParseTimestamp(timestamp string) (time.Time, error) {
	if timestamp == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}

	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, timestamp)
}
