package station

import (
	"fmt"
	"math"
	"slices"

	"github.com/timgluz/chstides/measurement"
)

var ErrInvalidCoordinates = fmt.Errorf("invalid coordinates")

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects out of range and non-finite values.
func (c Coordinates) Validate() error {
	if !inRange(c.Latitude, 90) {
		return fmt.Errorf("%w: latitude %f out of range", ErrInvalidCoordinates, c.Latitude)
	}

	if !inRange(c.Longitude, 180) {
		return fmt.Errorf("%w: longitude %f out of range", ErrInvalidCoordinates, c.Longitude)
	}

	return nil
}

// inRange is false for NaN, which fails every comparison.
func inRange(v, limit float64) bool {
	return math.Abs(v) <= limit
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%.5f,%.5f", c.Latitude, c.Longitude)
}

type Datum struct {
	Code   string  `json:"code"`
	Offset float64 `json:"offset"`
}

// Height is a named characteristic water level, e.g. HAT.
type Height struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Station is the resolved identity of one IWLS station. Values are expressed
// in the unit named by Measurement and names in the client language.
type Station struct {
	ID            string   `json:"id"`
	Code          string   `json:"code"`
	OfficialName  string   `json:"officialName"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	Type          string   `json:"type"`
	Operating     bool     `json:"operating"`
	Owner         string   `json:"owner,omitempty"`
	ChsRegionCode string   `json:"chsRegionCode,omitempty"`
	ProvinceCode  string   `json:"provinceCode,omitempty"`
	ClassCode     string   `json:"classCode,omitempty"`
	IsTidal       bool     `json:"isTidal"`
	TimeZoneCode  string   `json:"timeZoneCode,omitempty"`
	TideTypeCode  string   `json:"tideTypeCode,omitempty"`
	TimeSeries    []string `json:"timeSeries"`
	Datums        []Datum  `json:"datums"`
	Heights       []Height `json:"heights"`
	Measurement   string   `json:"measurement"`
	TideTable     string   `json:"tideTable,omitempty"`

	// SourceMeasurement is the unit symbol the service declared for the
	// station. Its water level series are served in the same unit.
	SourceMeasurement string `json:"sourceMeasurement"`
}

func (s *Station) Coordinates() Coordinates {
	return Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}
}

func (s *Station) Unit() measurement.Unit {
	unit, err := measurement.ParseUnit(s.Measurement)
	if err != nil {
		return measurement.Metric
	}
	return unit
}

// SourceUnit is the unit the service reports this station's levels in.
func (s *Station) SourceUnit() measurement.Unit {
	unit, err := measurement.ParseUnit(s.SourceMeasurement)
	if err != nil {
		return measurement.Metric
	}
	return unit
}

func (s *Station) HasTimeSeries(code string) bool {
	return slices.Contains(s.TimeSeries, code)
}

func (s *Station) Height(code string) (Height, bool) {
	for _, height := range s.Heights {
		if height.Code == code {
			return height, true
		}
	}
	return Height{}, false
}

func (s *Station) Datum(code string) (Datum, bool) {
	for _, datum := range s.Datums {
		if datum.Code == code {
			return datum, true
		}
	}
	return Datum{}, false
}

// Summary is one entry of a station search.
type Summary struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	OfficialName string  `json:"officialName"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Operating    bool    `json:"operating"`
	Type         string  `json:"type,omitempty"`
}
