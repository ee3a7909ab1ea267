package tides

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/timgluz/chstides/conditions"
	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/measurement"
	"github.com/timgluz/chstides/station"
)

// Config selects a station and the presentation of its data. Exactly one of
// Coordinates, Code or ID must be set; all other fields are optional.
type Config struct {
	Coordinates *station.Coordinates
	Code        string
	ID          string

	Language iwls.Language
	Unit     measurement.Unit

	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *slog.Logger

	ObservationWindow string
	HiLoWindow        string

	// Clock overrides the time source of query windows.
	Clock func() time.Time
}

func (c Config) Criteria() station.Criteria {
	return station.Criteria{
		ID:          c.ID,
		Code:        c.Code,
		Coordinates: c.Coordinates,
	}
}

// normalize validates c and returns a copy with every default filled in.
func (c Config) normalize() (Config, error) {
	if err := c.Criteria().Validate(); err != nil {
		return c, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	if c.Coordinates != nil {
		coordinates := *c.Coordinates
		c.Coordinates = &coordinates
	}

	if c.Language == "" {
		c.Language = iwls.English
	}
	if !c.Language.IsValid() {
		return c, fmt.Errorf("%w: %w: %q", ErrConfig, iwls.ErrUnknownLanguage, c.Language)
	}

	if c.Unit == "" {
		c.Unit = measurement.Metric
	}
	if !c.Unit.IsValid() {
		return c, fmt.Errorf("%w: %w: %q", ErrConfig, measurement.ErrUnknownUnit, c.Unit)
	}

	if c.ObservationWindow == "" {
		c.ObservationWindow = conditions.DefaultObservationWindow
	}
	if _, err := measurement.ParseISO8601Duration(c.ObservationWindow); err != nil {
		return c, fmt.Errorf("%w: observation window: %w", ErrConfig, err)
	}

	if c.HiLoWindow == "" {
		c.HiLoWindow = conditions.DefaultHiLoWindow
	}
	if _, err := measurement.ParseISO8601Duration(c.HiLoWindow); err != nil {
		return c, fmt.Errorf("%w: hilo window: %w", ErrConfig, err)
	}

	if c.Timeout < 0 {
		return c, fmt.Errorf("%w: negative timeout %s", ErrConfig, c.Timeout)
	}
	if c.Timeout == 0 {
		c.Timeout = iwls.DefaultTimeout
	}

	if c.BaseURL == "" {
		c.BaseURL = iwls.DefaultBaseURL
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return c, nil
}
