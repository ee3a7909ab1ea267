package station

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/measurement"
)

const IWLSProviderName = "iwls"

// IWLSProvider reads stations from the IWLS API, converting every length to
// unit and choosing names in the client's language.
type IWLSProvider struct {
	client *iwls.Client
	unit   measurement.Unit

	logger *slog.Logger
}

func NewIWLSProvider(client *iwls.Client, unit measurement.Unit, logger *slog.Logger) *IWLSProvider {
	if logger != nil {
		logger = logger.With("provider", IWLSProviderName)
	}

	return &IWLSProvider{
		client: client,
		unit:   unit,
		logger: logger,
	}
}

func (p *IWLSProvider) IsReady() bool {
	if p.logger == nil {
		fmt.Println("Logger of IWLSProvider is not initialized")
		return false
	}

	if p.client == nil {
		p.logger.Error("IWLS client is not set for IWLSProvider")
		return false
	}

	if !p.unit.IsValid() {
		p.logger.Error("IWLSProvider has no valid measurement unit", "unit", p.unit)
		return false
	}

	return p.client.IsReady()
}

func (p *IWLSProvider) FindStations(ctx context.Context, filter Filter) ([]Summary, error) {
	if !p.IsReady() {
		return nil, ErrProviderNotReady
	}

	var payloads []summaryPayload
	resource, err := p.client.Get(ctx, "stations", filter.Query(), &payloads)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(payloads))
	for _, payload := range payloads {
		summary, err := mapSummary(resource, payload, p.client.Language())
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	p.logger.Debug("Found stations", "filter", filter.Query().Encode(), "count", len(summaries))
	return summaries, nil
}

// GetStation fetches the full metadata document. A 404 is reported as iwls.ErrNotFound.
func (p *IWLSProvider) GetStation(ctx context.Context, id string) (*Station, error) {
	if !p.IsReady() {
		return nil, ErrProviderNotReady
	}

	if id == "" {
		return nil, ErrInvalidStationID
	}

	endpoint, _ := iwls.LookupEndpoint(iwls.OperationStationMetadata)
	path, _ := endpoint.Build(map[string]any{iwls.ParamStationID: id})

	var payload stationPayload
	resource, err := p.client.Get(ctx, path, nil, &payload)
	if err != nil {
		if iwls.IsUpstreamNotFound(err) {
			return nil, fmt.Errorf("%w: no station with id %s", iwls.ErrNotFound, id)
		}
		return nil, err
	}

	station, err := mapStation(resource, payload, p.client.Language(), p.unit)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Successfully fetched station", "id", id, "code", station.Code, "name", station.OfficialName)
	return station, nil
}
