package conditions

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/measurement"
)

const (
	DefaultObservationWindow = "PT1H"
	DefaultHiLoWindow        = "P1D"
)

var ErrFetcherNotReady = fmt.Errorf("conditions fetcher is not ready")

type pointPayload struct {
	EventDate  *string  `json:"eventDate"`
	Value      *float64 `json:"value"`
	Status     string   `json:"status"`
	Event      string   `json:"event"`
	QCFlagCode string   `json:"qcFlagCode"`
}

type point struct {
	eventDate time.Time
	value     float64
	status    string
	event     string
}

// Fetcher retrieves the latest observation and the surrounding high/low
// predictions of a station. The two requests are issued one after the other.
type Fetcher struct {
	client            *iwls.Client
	observationWindow string
	hiloWindow        string
	now               func() time.Time

	logger *slog.Logger
}

func NewFetcher(client *iwls.Client, observationWindow, hiloWindow string, logger *slog.Logger) *Fetcher {
	if observationWindow == "" {
		observationWindow = DefaultObservationWindow
	}
	if hiloWindow == "" {
		hiloWindow = DefaultHiLoWindow
	}

	return &Fetcher{
		client:            client,
		observationWindow: observationWindow,
		hiloWindow:        hiloWindow,
		now:               time.Now,
		logger:            logger,
	}
}

// SetClock replaces the time source used to build query windows.
func (f *Fetcher) SetClock(now func() time.Time) {
	if now != nil {
		f.now = now
	}
}

func (f *Fetcher) IsReady() bool {
	if f.logger == nil {
		fmt.Println("Logger of conditions Fetcher is not initialized")
		return false
	}

	if f.client == nil {
		f.logger.Error("IWLS client is not set for conditions Fetcher")
		return false
	}

	return f.client.IsReady()
}

// Fetch builds a new Snapshot for a station whose levels are served in
// metres. Values are converted to unit; language only affects labels.
func (f *Fetcher) Fetch(ctx context.Context, stationID string, unit measurement.Unit, language iwls.Language) (*Snapshot, error) {
	return f.FetchFrom(ctx, stationID, measurement.Metric, unit, language)
}

// FetchFrom is Fetch for a station whose levels are served in source, the
// unit its metadata declares.
func (f *Fetcher) FetchFrom(ctx context.Context, stationID string, source, unit measurement.Unit, language iwls.Language) (*Snapshot, error) {
	if !f.IsReady() {
		return nil, ErrFetcherNotReady
	}

	now := f.now().UTC()

	observationPeriod, err := measurement.NewPeriodUntil(f.observationWindow, now)
	if err != nil {
		return nil, err
	}

	observations, resource, err := f.fetchSeries(ctx, stationID, iwls.TimeSeriesObserved, observationPeriod, source)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, &iwls.DataError{
			Resource: resource,
			Err:      fmt.Errorf("no observations for station %s in the last %s", stationID, observationPeriod.String()),
		}
	}

	hiloPeriod, err := measurement.NewPeriodAround(f.hiloWindow, now)
	if err != nil {
		return nil, err
	}

	events, _, err := f.fetchSeries(ctx, stationID, iwls.TimeSeriesPredictedHiLo, hiloPeriod, source)
	if err != nil {
		return nil, err
	}

	latest := observations[len(observations)-1]
	status := latestTrend(observations)

	snapshot := &Snapshot{
		StationID:   stationID,
		Value:       measurement.Convert(latest.value, measurement.Metric, unit),
		EventDate:   latest.eventDate,
		Status:      status,
		StatusLabel: status.Label(language),
		Unit:        unit.Symbol(),
		HiLo:        make([]Event, 0, len(events)),
		RetrievedAt: now,
	}

	kinds := classifyEvents(events, latest.value)
	for i, event := range events {
		snapshot.HiLo = append(snapshot.HiLo, Event{
			EventDate: event.eventDate,
			Value:     measurement.Convert(event.value, measurement.Metric, unit),
			Event:     kinds[i],
			Label:     kinds[i].Label(language),
		})
	}

	f.logger.Info("Fetched conditions", "stationID", stationID, "value", snapshot.Value, "unit", snapshot.Unit, "status", snapshot.Status, "events", len(snapshot.HiLo))
	return snapshot, nil
}

// fetchSeries returns the points of one time series sorted by event date,
// with values converted from source to metres, and the requested URL.
func (f *Fetcher) fetchSeries(ctx context.Context, stationID, timeSeriesCode string, period *measurement.Period, source measurement.Unit) ([]point, string, error) {
	endpoint, _ := iwls.LookupEndpoint(iwls.OperationStationData)
	path, query := endpoint.Build(map[string]any{
		iwls.ParamStationID:      stationID,
		iwls.ParamTimeSeriesCode: timeSeriesCode,
		iwls.ParamFrom:           period.Start,
		iwls.ParamTo:             period.End,
	})

	var payloads []pointPayload
	resource, err := f.client.Get(ctx, path, query, &payloads)
	if err != nil {
		return nil, resource, err
	}

	points := make([]point, 0, len(payloads))
	for i, payload := range payloads {
		if payload.EventDate == nil {
			return nil, resource, iwls.NewMissingFieldError(resource, fmt.Sprintf("[%d].eventDate", i))
		}
		if payload.Value == nil {
			return nil, resource, iwls.NewMissingFieldError(resource, fmt.Sprintf("[%d].value", i))
		}

		eventDate, err := measurement.ParseTimestamp(*payload.EventDate)
		if err != nil {
			return nil, resource, &iwls.DataError{Resource: resource, Err: err}
		}

		points = append(points, point{
			eventDate: eventDate,
			value:     measurement.Convert(*payload.Value, source, measurement.Metric),
			status:    payload.Status,
			event:     payload.Event,
		})
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].eventDate.Before(points[j].eventDate)
	})

	f.logger.Debug("Fetched series", "stationID", stationID, "timeSeriesCode", timeSeriesCode, "count", len(points))
	return points, resource, nil
}

// latestTrend prefers the status reported with the latest point and falls
// back to comparing the last two levels.
func latestTrend(observations []point) Trend {
	latest := observations[len(observations)-1]
	if trend, ok := ParseTrend(latest.status); ok {
		return trend
	}

	if len(observations) < 2 {
		return Steady
	}
	return DeriveTrend(observations[len(observations)-2].value, latest.value)
}

// classifyEvents uses the service's event field when present. Otherwise an
// event above the mean of its neighbours is high water; a lone event is
// compared against the reference level.
func classifyEvents(events []point, reference float64) []EventKind {
	kinds := make([]EventKind, len(events))
	for i, event := range events {
		if kind, ok := ParseEventKind(event.event); ok {
			kinds[i] = kind
			continue
		}

		var sum float64
		var count int
		if i > 0 {
			sum += events[i-1].value
			count++
		}
		if i < len(events)-1 {
			sum += events[i+1].value
			count++
		}

		baseline := reference
		if count > 0 {
			baseline = sum / float64(count)
		}

		if event.value >= baseline {
			kinds[i] = High
		} else {
			kinds[i] = Low
		}
	}
	return kinds
}
