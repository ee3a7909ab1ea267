package station

import (
	"encoding/json"
	"fmt"

	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/measurement"
)

// stationPayload mirrors the IWLS station metadata document. Pointer fields
// are required; unknown fields are ignored.
type stationPayload struct {
	ID             *string         `json:"id"`
	Code           *string         `json:"code"`
	OfficialName   *string         `json:"officialName"`
	OfficialNameFr string          `json:"officialNameFr"`
	Latitude       *float64        `json:"latitude"`
	Longitude      *float64        `json:"longitude"`
	Type           *string         `json:"type"`
	Operating      *bool           `json:"operating"`
	Owner          json.RawMessage `json:"owner"`
	ChsRegionCode  string          `json:"chsRegionCode"`
	ProvinceCode   string          `json:"provinceCode"`
	ClassCode      string          `json:"classCode"`
	IsTidal        *bool           `json:"isTidal"`
	TimeZoneCode   string          `json:"timeZoneCode"`
	TideTypeCode   string          `json:"tideTypeCode"`
	TimeSeries     []struct {
		ID   string `json:"id"`
		Code string `json:"code"`
	} `json:"timeSeries"`
	Datums []struct {
		Code   string   `json:"code"`
		Offset *float64 `json:"offset"`
	} `json:"datums"`
	Heights []struct {
		HeightTypeID string   `json:"heightTypeId"`
		Code         string   `json:"code"`
		NameEn       string   `json:"nameEn"`
		NameFr       string   `json:"nameFr"`
		Value        *float64 `json:"value"`
	} `json:"heights"`
	Measurement string          `json:"measurement"`
	TideTable   json.RawMessage `json:"tideTable"`
}

type summaryPayload struct {
	ID             *string  `json:"id"`
	Code           string   `json:"code"`
	OfficialName   string   `json:"officialName"`
	OfficialNameFr string   `json:"officialNameFr"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Operating      bool     `json:"operating"`
	Type           string   `json:"type"`
}

// namedPayload covers reference objects that the service sometimes inlines
// instead of sending a plain string.
type namedPayload struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	NameEn string `json:"nameEn"`
	NameFr string `json:"nameFr"`
}

func mapStation(resource string, payload stationPayload, language iwls.Language, unit measurement.Unit) (*Station, error) {
	switch {
	case payload.ID == nil || *payload.ID == "":
		return nil, iwls.NewMissingFieldError(resource, "id")
	case payload.Code == nil || *payload.Code == "":
		return nil, iwls.NewMissingFieldError(resource, "code")
	case payload.OfficialName == nil:
		return nil, iwls.NewMissingFieldError(resource, "officialName")
	case payload.Latitude == nil:
		return nil, iwls.NewMissingFieldError(resource, "latitude")
	case payload.Longitude == nil:
		return nil, iwls.NewMissingFieldError(resource, "longitude")
	case payload.Type == nil:
		return nil, iwls.NewMissingFieldError(resource, "type")
	case payload.Operating == nil:
		return nil, iwls.NewMissingFieldError(resource, "operating")
	}

	declared, err := measurement.ParseUnit(payload.Measurement)
	if err != nil {
		return nil, &iwls.DataError{Resource: resource, Err: err}
	}

	station := &Station{
		ID:            *payload.ID,
		Code:          *payload.Code,
		OfficialName:  language.Pick(*payload.OfficialName, payload.OfficialNameFr),
		Latitude:      *payload.Latitude,
		Longitude:     *payload.Longitude,
		Type:          *payload.Type,
		Operating:     *payload.Operating,
		Owner:         pickText(payload.Owner, language),
		ChsRegionCode: payload.ChsRegionCode,
		ProvinceCode:  payload.ProvinceCode,
		ClassCode:     payload.ClassCode,
		IsTidal:       payload.IsTidal != nil && *payload.IsTidal,
		TimeZoneCode:  payload.TimeZoneCode,
		TideTypeCode:  payload.TideTypeCode,
		TimeSeries:    make([]string, 0, len(payload.TimeSeries)),
		Datums:        make([]Datum, 0, len(payload.Datums)),
		Heights:       make([]Height, 0, len(payload.Heights)),
		Measurement:   unit.Symbol(),
		TideTable:     pickText(payload.TideTable, language),
	}

	station.SourceMeasurement = declared.Symbol()

	for _, series := range payload.TimeSeries {
		if series.Code == "" {
			continue
		}
		station.TimeSeries = append(station.TimeSeries, series.Code)
	}

	for i, datum := range payload.Datums {
		if datum.Code == "" {
			return nil, iwls.NewMissingFieldError(resource, fmt.Sprintf("datums[%d].code", i))
		}
		if datum.Offset == nil {
			return nil, iwls.NewMissingFieldError(resource, fmt.Sprintf("datums[%d].offset", i))
		}

		station.Datums = append(station.Datums, Datum{
			Code:   datum.Code,
			Offset: measurement.Convert(*datum.Offset, declared, unit),
		})
	}

	for i, height := range payload.Heights {
		code := height.Code
		if code == "" {
			code = height.HeightTypeID
		}
		if code == "" {
			return nil, iwls.NewMissingFieldError(resource, fmt.Sprintf("heights[%d].code", i))
		}
		if height.Value == nil {
			return nil, iwls.NewMissingFieldError(resource, fmt.Sprintf("heights[%d].value", i))
		}

		station.Heights = append(station.Heights, Height{
			Code:  code,
			Name:  language.Pick(height.NameEn, height.NameFr),
			Value: measurement.Convert(*height.Value, declared, unit),
		})
	}

	return station, nil
}

func mapSummary(resource string, payload summaryPayload, language iwls.Language) (Summary, error) {
	if payload.ID == nil || *payload.ID == "" {
		return Summary{}, iwls.NewMissingFieldError(resource, "id")
	}

	summary := Summary{
		ID:           *payload.ID,
		Code:         payload.Code,
		OfficialName: language.Pick(payload.OfficialName, payload.OfficialNameFr),
		Operating:    payload.Operating,
		Type:         payload.Type,
	}
	if payload.Latitude != nil {
		summary.Latitude = *payload.Latitude
	}
	if payload.Longitude != nil {
		summary.Longitude = *payload.Longitude
	}

	return summary, nil
}

// pickText accepts either a JSON string or a named object and returns the
// best human readable text for the language.
func pickText(raw json.RawMessage, language iwls.Language) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var named namedPayload
	if err := json.Unmarshal(raw, &named); err != nil {
		return ""
	}

	if name := language.Pick(named.NameEn, named.NameFr); name != "" {
		return name
	}
	if named.Name != "" {
		return named.Name
	}
	return named.Code
}
