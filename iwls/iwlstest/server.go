// Package iwlstest provides an in-process fake of the IWLS API for tests.
package iwlstest

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
)

const (
	HalifaxID         = "5cebf1de3d0f4a073c4bb94c"
	HalifaxCode       = "00490"
	HalifaxLatitude   = 44.666667
	HalifaxLongitude  = -63.583333
	HalifaxHATMetres  = 2.097
	CharlottetownID   = "5cebf1e03d0f4a073c4bbd7f"
	CharlottetownCode = "01700"
)

// HalifaxMetadata is the metadata document served for station 00490.
const HalifaxMetadata = `{
  "id": "5cebf1de3d0f4a073c4bb94c",
  "code": "00490",
  "officialName": "Halifax",
  "officialNameFr": "Halifax (port)",
  "latitude": 44.666667,
  "longitude": -63.583333,
  "type": "PERMANENT",
  "operating": true,
  "owner": "CHS-SHC",
  "chsRegionCode": "ATL",
  "provinceCode": "NS",
  "classCode": "A",
  "isTidal": true,
  "timeZoneCode": "Canada/Atlantic",
  "tideTypeCode": "SD",
  "expectedProductivityPerHour": 60,
  "timeSeries": [
    {"id": "5d9dd7cc33a9f593161c3ffc", "code": "wlo", "nameEn": "Water level official value", "nameFr": "Niveau d'eau officiel"},
    {"id": "5da0907154c1370c6037fcce", "code": "wlp", "nameEn": "Water level predictions", "nameFr": "Prédictions de niveaux d'eau"},
    {"id": "5da0907154c1370c6037fcd0", "code": "wlp-hilo", "nameEn": "High and low tide predictions", "nameFr": "Prédictions de pleines et basses mers"}
  ],
  "datums": [
    {"code": "CGVD28", "offset": -0.803},
    {"code": "NAD83_CSRS", "offset": -21.471}
  ],
  "heights": [
    {"heightTypeId": "5cec2eba3d0f4a04cc64d5ce", "code": "HAT", "nameEn": "Highest Astronomical Tide", "nameFr": "Pleine mer supérieure, marée astronomique", "value": 2.097},
    {"heightTypeId": "5cec2eba3d0f4a04cc64d5d8", "code": "LAT", "nameEn": "Lowest Astronomical Tide", "nameFr": "Basse mer inférieure, marée astronomique", "value": -0.024},
    {"heightTypeId": "5cec2eba3d0f4a04cc64d5d3", "code": "MWL", "nameEn": "Mean Water Level", "nameFr": "Niveau moyen de l'eau", "value": 1.008}
  ],
  "measurement": "m",
  "tideTable": {"code": "ATL-1", "nameEn": "Nova Scotia (Atlantic Coast) and Bay of Fundy", "nameFr": "Nouvelle-Écosse (côte atlantique) et baie de Fundy"}
}`

// CharlottetownMetadata is the metadata document served for station 01700.
const CharlottetownMetadata = `{
  "id": "5cebf1e03d0f4a073c4bbd7f",
  "code": "01700",
  "officialName": "Charlottetown",
  "latitude": 46.2317,
  "longitude": -63.1236,
  "type": "PERMANENT",
  "operating": true,
  "isTidal": true,
  "timeSeries": [{"id": "x", "code": "wlo"}],
  "datums": [],
  "heights": [{"code": "HAT", "nameEn": "Highest Astronomical Tide", "value": 3.5}],
  "measurement": "m",
  "tideTable": "Gulf of St. Lawrence"
}`

// Point is one entry of a station data series.
type Point struct {
	EventDate string   `json:"eventDate"`
	Value     *float64 `json:"value,omitempty"`
	Status    string   `json:"status,omitempty"`
	Event     string   `json:"event,omitempty"`
	QCFlag    string   `json:"qcFlagCode,omitempty"`
}

func Value(v float64) *float64 {
	return &v
}

type stationFixture struct {
	id        string
	code      string
	latitude  float64
	longitude float64
	metadata  string
}

// Server is a fake IWLS API. Data series are served per station id and
// time-series code; every request path is recorded.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	stations []stationFixture
	series   map[string][]Point
	requests []*http.Request
}

func NewServer(tb testing.TB) *Server {
	tb.Helper()

	s := &Server{
		stations: []stationFixture{
			{id: HalifaxID, code: HalifaxCode, latitude: HalifaxLatitude, longitude: HalifaxLongitude, metadata: HalifaxMetadata},
			{id: CharlottetownID, code: CharlottetownCode, latitude: 46.2317, longitude: -63.1236, metadata: CharlottetownMetadata},
		},
		series: make(map[string][]Point),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /stations", s.handleStations)
	mux.HandleFunc("GET /stations/{id}/metadata", s.handleMetadata)
	mux.HandleFunc("GET /stations/{id}/data", s.handleData)
	mux.HandleFunc("GET /height-types", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[{"id":"5cec2eba3d0f4a04cc64d5ce","code":"HAT","nameEn":"Highest Astronomical Tide"}]`)
	})

	s.Server = httptest.NewServer(s.record(mux))
	tb.Cleanup(s.Close)
	return s
}

// SetSeries replaces the points served for a station and time-series code.
func (s *Server) SetSeries(stationID, timeSeriesCode string, points []Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[stationID+"/"+timeSeriesCode] = points
}

// RemoveStations makes every search return an empty list.
func (s *Server) RemoveStations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = nil
}

// SetMetadata overrides the metadata document of a station.
func (s *Server) SetMetadata(stationID, document string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.stations {
		if s.stations[i].id == stationID {
			s.stations[i].metadata = document
		}
	}
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Clone(r.Context()))
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	candidates := append([]stationFixture(nil), s.stations...)
	s.mu.Unlock()

	q := r.URL.Query()
	if code := q.Get("code"); code != "" {
		filtered := candidates[:0]
		for _, c := range candidates {
			if c.code == code {
				filtered = append(filtered, c)
			}
		}
		candidates = filtered
	}

	lat, latErr := strconv.ParseFloat(q.Get("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(q.Get("longitude"), 64)
	if latErr == nil && lonErr == nil {
		sort.SliceStable(candidates, func(i, j int) bool {
			return distance(lat, lon, candidates[i]) < distance(lat, lon, candidates[j])
		})
	}

	summaries := make([]map[string]any, 0, len(candidates))
	for _, c := range candidates {
		summaries = append(summaries, map[string]any{
			"id":           c.id,
			"code":         c.code,
			"officialName": c.code,
			"latitude":     c.latitude,
			"longitude":    c.longitude,
			"operating":    true,
		})
	}

	body, _ := json.Marshal(summaries)
	writeJSON(w, string(body))
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.stations {
		if c.id == r.PathValue("id") {
			writeJSON(w, c.metadata)
			return
		}
	}
	http.Error(w, `{"message":"station not found"}`, http.StatusNotFound)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("time-series-code")
	if code == "" {
		http.Error(w, `{"message":"time-series-code is required"}`, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	points, ok := s.series[r.PathValue("id")+"/"+code]
	s.mu.Unlock()

	if !ok {
		http.Error(w, `{"message":"no data"}`, http.StatusNotFound)
		return
	}

	body, _ := json.Marshal(points)
	writeJSON(w, string(body))
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func distance(lat, lon float64, c stationFixture) float64 {
	return math.Hypot(lat-c.latitude, lon-c.longitude)
}
