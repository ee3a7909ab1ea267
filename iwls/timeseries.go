package iwls

import "slices"

// Time series codes served by IWLS.
const (
	TimeSeriesObserved        = "wlo"
	TimeSeriesPredicted       = "wlp"
	TimeSeriesPredictedHiLo   = "wlp-hilo"
	TimeSeriesPredictedBores  = "wlp-bores"
	TimeSeriesCurrentSlack    = "wcp-slack"
	TimeSeriesForecast        = "wlf"
	TimeSeriesForecastSpine   = "wlf-spine"
	TimeSeriesDVCFForecastSpn = "dvcf-spine"
)

var TimeSeriesCodes = []string{
	TimeSeriesObserved,
	TimeSeriesPredicted,
	TimeSeriesPredictedHiLo,
	TimeSeriesPredictedBores,
	TimeSeriesCurrentSlack,
	TimeSeriesForecast,
	TimeSeriesForecastSpine,
	TimeSeriesDVCFForecastSpn,
}

func IsTimeSeriesCode(code string) bool {
	return slices.Contains(TimeSeriesCodes, code)
}
