package station

import (
	"context"
	"fmt"
	"net/url"

	"github.com/timgluz/chstides/iwls"
)

var (
	ErrInvalidStationID = fmt.Errorf("invalid station ID provided")
	ErrProviderNotReady = fmt.Errorf("provider is not ready")
)

// Filter narrows a station search. Zero fields are not sent.
type Filter struct {
	Code           string
	Coordinates    *Coordinates
	RegionCode     string
	TimeSeriesCode string
}

func (f Filter) Query() url.Values {
	q := url.Values{}
	if f.Code != "" {
		q.Set(iwls.ParamCode, f.Code)
	}
	if f.Coordinates != nil {
		q.Set(iwls.ParamLatitude, iwls.FormatParam(f.Coordinates.Latitude))
		q.Set(iwls.ParamLongitude, iwls.FormatParam(f.Coordinates.Longitude))
	}
	if f.RegionCode != "" {
		q.Set("chs-region-code", f.RegionCode)
	}
	if f.TimeSeriesCode != "" {
		q.Set(iwls.ParamTimeSeriesCode, f.TimeSeriesCode)
	}
	return q
}

type Provider interface {
	FindStations(ctx context.Context, filter Filter) ([]Summary, error)
	GetStation(ctx context.Context, id string) (*Station, error)
	IsReady() bool
}
