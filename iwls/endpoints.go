package iwls

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/timgluz/chstides/measurement"
)

// Operation names of the IWLS resources known to the invoker.
const (
	OperationStations           = "stations"
	OperationStation            = "station"
	OperationStationMetadata    = "station-metadata"
	OperationStationData        = "station-data"
	OperationStationDailyMeans  = "stations-stats-calculate-daily-means"
	OperationStationMonthlyMean = "stations-stats-calculate-monthly-mean"
	OperationTideTables         = "tide-tables"
	OperationTideTable          = "tide-table"
	OperationPhenomena          = "phenomena"
	OperationPhenomenon         = "phenomenon"
	OperationHeightTypes        = "height-types"
	OperationHeightType         = "height-type"
)

// Parameter names shared by several operations.
const (
	ParamStationID      = "stationId"
	ParamTimeSeriesCode = "time-series-code"
	ParamFrom           = "from"
	ParamTo             = "to"
	ParamCode           = "code"
	ParamLatitude       = "latitude"
	ParamLongitude      = "longitude"
)

// Endpoint describes one remote operation: a path template whose {name}
// placeholders are filled from PathParams, plus the query parameters the
// service documents for it. Undocumented query parameters are still sent.
type Endpoint struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	PathParams  []string `json:"path_params,omitempty"`
	QueryParams []string `json:"query_params,omitempty"`
}

var endpoints = map[string]Endpoint{
	OperationStations: {
		Path:        "stations",
		QueryParams: []string{ParamCode, "chs-region-code", ParamTimeSeriesCode, ParamLatitude, ParamLongitude},
	},
	OperationStation: {
		Path:       "stations/{stationId}",
		PathParams: []string{ParamStationID},
	},
	OperationStationMetadata: {
		Path:       "stations/{stationId}/metadata",
		PathParams: []string{ParamStationID},
	},
	OperationStationData: {
		Path:        "stations/{stationId}/data",
		PathParams:  []string{ParamStationID},
		QueryParams: []string{ParamTimeSeriesCode, ParamFrom, ParamTo},
	},
	OperationStationDailyMeans: {
		Path:        "stations/{stationId}/stats/calculate-daily-means",
		PathParams:  []string{ParamStationID},
		QueryParams: []string{ParamFrom, ParamTo},
	},
	OperationStationMonthlyMean: {
		Path:        "stations/{stationId}/stats/calculate-monthly-mean",
		PathParams:  []string{ParamStationID},
		QueryParams: []string{"year", "month"},
	},
	OperationTideTables: {
		Path:        "tide-tables",
		QueryParams: []string{"type", "parent-tide-table-id"},
	},
	OperationTideTable: {
		Path:       "tide-tables/{tideTableId}",
		PathParams: []string{"tideTableId"},
	},
	OperationPhenomena: {
		Path: "phenomena",
	},
	OperationPhenomenon: {
		Path:       "phenomena/{phenomenonId}",
		PathParams: []string{"phenomenonId"},
	},
	OperationHeightTypes: {
		Path: "height-types",
	},
	OperationHeightType: {
		Path:       "height-types/{heightTypeId}",
		PathParams: []string{"heightTypeId"},
	},
}

func init() {
	for name, endpoint := range endpoints {
		endpoint.Name = name
		endpoints[name] = endpoint
	}
}

// NormalizeOperation folds spelling variants ("station_data", "Station Data")
// onto the registry key ("station-data").
func NormalizeOperation(name string) string {
	return slug.Make(strings.ReplaceAll(name, "_", "-"))
}

func LookupEndpoint(operation string) (Endpoint, bool) {
	endpoint, ok := endpoints[NormalizeOperation(operation)]
	return endpoint, ok
}

// Endpoints lists the registered operations ordered by name.
func Endpoints() []Endpoint {
	list := make([]Endpoint, 0, len(endpoints))
	for _, endpoint := range endpoints {
		list = append(list, endpoint)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// Accepts reports whether param is a documented path or query parameter.
func (e Endpoint) Accepts(param string) bool {
	return slices.Contains(e.PathParams, param) || slices.Contains(e.QueryParams, param)
}

// Build substitutes path parameters and returns every other parameter as a
// query value. Missing path parameters become empty segments; the service
// rejects the request rather than the client.
func (e Endpoint) Build(params map[string]any) (string, url.Values) {
	path := e.Path
	consumed := make(map[string]bool, len(e.PathParams))
	for _, name := range e.PathParams {
		value := ""
		if v, ok := params[name]; ok && v != nil {
			value = FormatParam(v)
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
		consumed[name] = true
	}

	query := url.Values{}
	for name, v := range params {
		if consumed[name] || v == nil {
			continue
		}

		switch values := v.(type) {
		case []string:
			for _, value := range values {
				query.Add(name, value)
			}
		default:
			query.Set(name, FormatParam(v))
		}
	}

	return path, query
}

// FormatParam renders a parameter value for use in a path or query string.
func FormatParam(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case time.Time:
		return measurement.FormatQueryTime(value)
	case *time.Time:
		if value == nil {
			return ""
		}
		return measurement.FormatQueryTime(*value)
	case float64:
		return fmt.Sprintf("%g", value)
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}
