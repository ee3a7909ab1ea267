// Package tides is a client for the Canadian Hydrographic Service water level
// API. A Client is bound to one station: Initialize resolves it, Update
// refreshes the latest conditions and Invoke reaches any other operation.
package tides

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync/atomic"

	"github.com/timgluz/chstides/conditions"
	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/measurement"
	"github.com/timgluz/chstides/station"
)

type Client struct {
	config Config

	api      *iwls.Client
	provider *station.IWLSProvider
	resolver *station.Resolver
	fetcher  *conditions.Fetcher
	invoker  *iwls.Invoker

	// Both slots are replaced wholesale. Concurrent updates are not
	// coordinated; the last one to finish wins.
	station  atomic.Pointer[station.Station]
	snapshot atomic.Pointer[conditions.Snapshot]

	logger *slog.Logger
}

// New validates cfg and builds an uninitialized Client. No request is made.
func New(cfg Config) (*Client, error) {
	config, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	logger := config.Logger.With("criteria", config.Criteria().String())
	api := iwls.NewClient(config.BaseURL, config.HTTPClient, config.Language, logger)

	provider := station.NewIWLSProvider(api, config.Unit, logger)
	fetcher := conditions.NewFetcher(api, config.ObservationWindow, config.HiLoWindow, logger)
	fetcher.SetClock(config.Clock)

	return &Client{
		config:   config,
		api:      api,
		provider: provider,
		resolver: station.NewResolver(provider, logger),
		fetcher:  fetcher,
		invoker:  iwls.NewInvoker(api, logger),
		logger:   logger,
	}, nil
}

func (c *Client) Language() iwls.Language {
	return c.config.Language
}

func (c *Client) Unit() measurement.Unit {
	return c.config.Unit
}

// LastURL returns the URL of the most recent request.
func (c *Client) LastURL() string {
	return c.api.LastURL()
}

func (c *Client) IsInitialized() bool {
	return c.station.Load() != nil
}

// Initialize resolves the configured station and binds the client to it.
// Calling it again re-resolves and replaces the station; on failure the
// previous station stays in place.
func (c *Client) Initialize(ctx context.Context) error {
	resolved, err := c.resolver.Resolve(ctx, c.config.Criteria())
	if err != nil {
		c.logger.Error("Failed to resolve station", "error", err)
		return fmt.Errorf("failed to resolve station: %w", err)
	}

	c.station.Store(resolved)
	c.logger.Info("Client initialized", "stationID", resolved.ID, "code", resolved.Code, "name", resolved.OfficialName)
	return nil
}

// Update fetches fresh conditions for the bound station and stores them.
func (c *Client) Update(ctx context.Context) (*conditions.Snapshot, error) {
	bound, err := c.Station()
	if err != nil {
		return nil, err
	}

	snapshot, err := c.fetcher.FetchFrom(ctx, bound.ID, bound.SourceUnit(), c.config.Unit, c.config.Language)
	if err != nil {
		c.logger.Error("Failed to update conditions", "stationID", bound.ID, "error", err)
		return nil, fmt.Errorf("failed to update conditions of station %s: %w", bound.Code, err)
	}

	c.snapshot.Store(snapshot)
	return snapshot, nil
}

// Station returns the bound station.
func (c *Client) Station() (*station.Station, error) {
	bound := c.station.Load()
	if bound == nil {
		return nil, fmt.Errorf("%w: call Initialize first", ErrState)
	}
	return bound, nil
}

// Conditions returns the snapshot stored by the last successful Update.
func (c *Client) Conditions() (*conditions.Snapshot, error) {
	if !c.IsInitialized() {
		return nil, fmt.Errorf("%w: call Initialize first", ErrState)
	}

	snapshot := c.snapshot.Load()
	if snapshot == nil {
		return nil, fmt.Errorf("%w: no conditions yet, call Update first", ErrState)
	}
	return snapshot, nil
}

// FindStations searches the stations of the service. It does not need an
// initialized client and leaves the bound station alone.
func (c *Client) FindStations(ctx context.Context, filter station.Filter) ([]station.Summary, error) {
	return c.provider.FindStations(ctx, filter)
}

// Invoke calls a named IWLS operation and returns its JSON document as is.
// Operations that take a stationId default it to the bound station.
func (c *Client) Invoke(ctx context.Context, operation string, params map[string]any) (any, error) {
	bound, err := c.Station()
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(params)+1)
	maps.Copy(merged, params)
	endpoint, registered := iwls.LookupEndpoint(operation)
	if _, ok := merged[iwls.ParamStationID]; !ok && registered && endpoint.Accepts(iwls.ParamStationID) {
		merged[iwls.ParamStationID] = bound.ID
	}

	return c.invoker.Invoke(ctx, operation, merged)
}
