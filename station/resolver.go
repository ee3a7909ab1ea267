package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/timgluz/chstides/iwls"
)

var ErrInvalidCriteria = errors.New("exactly one of station id, station code or coordinates is required")

// Criteria selects the station a client binds to. Exactly one field is set.
type Criteria struct {
	ID          string
	Code        string
	Coordinates *Coordinates
}

func (c Criteria) Validate() error {
	selected := 0
	if c.ID != "" {
		selected++
	}
	if c.Code != "" {
		selected++
	}
	if c.Coordinates != nil {
		selected++
		if err := c.Coordinates.Validate(); err != nil {
			return err
		}
	}

	if selected != 1 {
		return ErrInvalidCriteria
	}
	return nil
}

func (c Criteria) String() string {
	switch {
	case c.ID != "":
		return "id=" + c.ID
	case c.Code != "":
		return "code=" + c.Code
	case c.Coordinates != nil:
		return "coordinates=" + c.Coordinates.String()
	default:
		return "<empty>"
	}
}

// Resolver maps selection criteria onto a fully described Station.
type Resolver struct {
	provider Provider
	logger   *slog.Logger
}

func NewResolver(provider Provider, logger *slog.Logger) *Resolver {
	return &Resolver{
		provider: provider,
		logger:   logger,
	}
}

// Resolve performs the lookup only; binding the result is up to the caller.
// For coordinates the service ranks candidates and the first one wins.
func (r *Resolver) Resolve(ctx context.Context, criteria Criteria) (*Station, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	if !r.provider.IsReady() {
		return nil, ErrProviderNotReady
	}

	r.logger.Debug("Resolving station", "criteria", criteria.String())
	switch {
	case criteria.ID != "":
		return r.provider.GetStation(ctx, criteria.ID)
	case criteria.Code != "":
		return r.resolveByCode(ctx, criteria.Code)
	default:
		return r.resolveNearest(ctx, *criteria.Coordinates)
	}
}

func (r *Resolver) resolveByCode(ctx context.Context, code string) (*Station, error) {
	candidates, err := r.provider.FindStations(ctx, Filter{Code: code})
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		r.logger.Warn("No station matches code", "code", code)
		return nil, fmt.Errorf("%w: no station with code %s", iwls.ErrNotFound, code)
	}

	station, err := r.provider.GetStation(ctx, candidates[0].ID)
	if err != nil {
		return nil, err
	}

	if station.Code != code {
		return nil, &iwls.DataError{
			Resource: "stations/" + station.ID,
			Err:      fmt.Errorf("requested station code %s but service returned %s", code, station.Code),
		}
	}

	r.logger.Info("Resolved station by code", "code", code, "stationID", station.ID)
	return station, nil
}

func (r *Resolver) resolveNearest(ctx context.Context, coordinates Coordinates) (*Station, error) {
	candidates, err := r.provider.FindStations(ctx, Filter{Coordinates: &coordinates})
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		r.logger.Warn("No station near coordinates", "coordinates", coordinates.String())
		return nil, fmt.Errorf("%w: no station near %s", iwls.ErrNotFound, coordinates)
	}

	station, err := r.provider.GetStation(ctx, candidates[0].ID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("Resolved nearest station", "coordinates", coordinates.String(), "stationID", station.ID, "code", station.Code)
	return station, nil
}
