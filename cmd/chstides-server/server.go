package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/middleware"
	"github.com/timgluz/chstides/response"
	"github.com/timgluz/chstides/secret"
	"github.com/timgluz/chstides/station"
	"github.com/timgluz/chstides/tides"
)

// tidesServer exposes one station-bound client over HTTP.
type tidesServer struct {
	client *tides.Client
	tokens secret.Verifier
	logger *slog.Logger
}

func (s *tidesServer) IsReady() bool {
	if s.logger == nil {
		fmt.Println("Logger of tidesServer is not initialized")
		return false
	}

	if s.client == nil {
		s.logger.Error("Tides client is not initialized")
		return false
	}

	if !s.client.IsInitialized() {
		s.logger.Error("Tides client is not bound to a station")
		return false
	}

	return true
}

func (s *tidesServer) routes() *httprouter.Router {
	router := httprouter.New()
	router.GET("/healthz", middleware.WithRequestLog(s.handleHealth, s.logger))
	router.GET("/station", s.protect(s.handleStation))
	router.POST("/station/refresh", s.protect(s.handleRefreshStation))
	router.GET("/stations", s.protect(s.handleSearchStations))
	router.GET("/conditions", s.protect(s.handleConditions))
	router.GET("/conditions/latest", s.protect(s.handleLatestConditions))
	router.GET("/operations", s.protect(s.handleOperations))
	router.GET("/operations/:name", s.protect(s.handleInvoke))

	router.NotFound = response.NewNotFoundHandler(s.logger)
	router.PanicHandler = response.NewPanicHandler(s.logger)
	return router
}

// protect requires a bearer token when tokens are configured.
func (s *tidesServer) protect(h httprouter.Handle) httprouter.Handle {
	if s.tokens != nil {
		h = middleware.BearerAuth(h, s.tokens, s.logger)
	}
	return middleware.WithRequestLog(h, s.logger)
}

func (s *tidesServer) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.IsReady() {
		response.RenderError(w, fmt.Errorf("service is not ready"), http.StatusServiceUnavailable)
		return
	}

	response.RenderJSONResponse(w, response.NewPostResponse(true, "ok", nil))
}

func (s *tidesServer) handleStation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	bound, err := s.client.Station()
	if err != nil {
		response.RenderClientError(w, err)
		return
	}

	response.RenderJSONResponse(w, bound)
}

func (s *tidesServer) handleRefreshStation(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := s.client.Initialize(r.Context()); err != nil {
		s.logger.Error("Failed to refresh station", "error", err, "requestID", middleware.RequestID(r))
		response.RenderClientError(w, err)
		return
	}

	bound, err := s.client.Station()
	if err != nil {
		response.RenderClientError(w, err)
		return
	}

	response.RenderJSONResponse(w, response.NewPostResponse(true, "station refreshed", bound))
}

func (s *tidesServer) handleSearchStations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := station.Filter{
		Code:           query.Get("code"),
		RegionCode:     query.Get("chs-region-code"),
		TimeSeriesCode: query.Get("time-series-code"),
	}

	if query.Has("latitude") || query.Has("longitude") {
		coordinates, err := parseCoordinates(query.Get("latitude"), query.Get("longitude"))
		if err != nil {
			response.RenderError(w, err, http.StatusBadRequest)
			return
		}
		filter.Coordinates = coordinates
	}

	if filter.TimeSeriesCode != "" && !iwls.IsTimeSeriesCode(filter.TimeSeriesCode) {
		response.RenderError(w, fmt.Errorf("unknown time series code %q", filter.TimeSeriesCode), http.StatusBadRequest)
		return
	}

	summaries, err := s.client.FindStations(r.Context(), filter)
	if err != nil {
		s.logger.Error("Failed to search stations", "error", err, "requestID", middleware.RequestID(r))
		response.RenderClientError(w, err)
		return
	}

	pagination := response.NewPaginationFromRequest(r)
	page := response.Page(summaries, &pagination)
	response.RenderJSONResponse(w, response.NewCollectionResponse(page, &pagination))
}

func (s *tidesServer) handleConditions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snapshot, err := s.client.Update(r.Context())
	if err != nil {
		s.logger.Error("Failed to update conditions", "error", err, "requestID", middleware.RequestID(r))
		response.RenderClientError(w, err)
		return
	}

	response.RenderJSONResponse(w, snapshot)
}

func (s *tidesServer) handleLatestConditions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snapshot, err := s.client.Conditions()
	if err != nil {
		response.RenderClientError(w, err)
		return
	}

	response.RenderJSONResponse(w, snapshot)
}

func (s *tidesServer) handleOperations(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	response.RenderJSONResponse(w, response.NewCollectionResponse(iwls.Endpoints(), nil))
}

// handleInvoke forwards the query string as operation parameters.
func (s *tidesServer) handleInvoke(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	operation := ps.ByName("name")

	params := make(map[string]any)
	for name, values := range r.URL.Query() {
		if len(values) == 1 {
			params[name] = values[0]
		} else {
			params[name] = values
		}
	}

	document, err := s.client.Invoke(r.Context(), operation, params)
	if err != nil {
		s.logger.Warn("Operation failed", "operation", operation, "error", err, "requestID", middleware.RequestID(r))
		response.RenderClientError(w, err)
		return
	}

	response.RenderJSONResponse(w, document)
}

func parseCoordinates(latitude, longitude string) (*station.Coordinates, error) {
	lat, err := strconv.ParseFloat(latitude, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: latitude %q", station.ErrInvalidCoordinates, latitude)
	}

	lon, err := strconv.ParseFloat(longitude, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: longitude %q", station.ErrInvalidCoordinates, longitude)
	}

	coordinates := &station.Coordinates{Latitude: lat, Longitude: lon}
	if err := coordinates.Validate(); err != nil {
		return nil, err
	}
	return coordinates, nil
}
