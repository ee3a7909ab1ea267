package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timgluz/chstides/conditions"
	"github.com/timgluz/chstides/iwls"
	"github.com/timgluz/chstides/iwls/iwlstest"
	"github.com/timgluz/chstides/response"
	"github.com/timgluz/chstides/station"
	"github.com/timgluz/chstides/tides"
)

const testToken = "test-token"

func newTestHandler(t *testing.T, fake *iwlstest.Server, tokens ...string) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := tides.Config{
		Code:       iwlstest.HalifaxCode,
		BaseURL:    fake.URL,
		HTTPClient: fake.Client(),
		Logger:     logger,
	}

	server, err := newTidesServer(context.Background(), ":0", cfg, tokens, logger)
	require.NoError(t, err)
	return server.Handler
}

func serve(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, target, nil)
	r.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestNewTidesServer_FailsOnUnknownStation(t *testing.T) {
	fake := iwlstest.NewServer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := newTidesServer(context.Background(), ":0", tides.Config{Code: "99999", BaseURL: fake.URL}, nil, logger)
	assert.ErrorIs(t, err, tides.ErrNotFound)

	_, err = newTidesServer(context.Background(), ":0", tides.Config{BaseURL: fake.URL}, nil, logger)
	assert.ErrorIs(t, err, tides.ErrConfig)
}

func TestServer_Station(t *testing.T) {
	fake := iwlstest.NewServer(t)
	h := newTestHandler(t, fake, testToken)

	w := serve(t, h, http.MethodGet, "/station")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var bound station.Station
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bound))
	assert.Equal(t, iwlstest.HalifaxCode, bound.Code)
}

func TestServer_RequiresToken(t *testing.T) {
	fake := iwlstest.NewServer(t)
	h := newTestHandler(t, fake, testToken)

	r := httptest.NewRequest(http.MethodGet, "/station", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_WithoutTokens(t *testing.T) {
	fake := iwlstest.NewServer(t)
	h := newTestHandler(t, fake)

	r := httptest.NewRequest(http.MethodGet, "/station", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Conditions(t *testing.T) {
	fake := iwlstest.NewServer(t)
	h := newTestHandler(t, fake, testToken)

	w := serve(t, h, http.MethodGet, "/conditions/latest")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(t, h, http.MethodGet, "/conditions")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	fake.SetSeries(iwlstest.HalifaxID, iwls.TimeSeriesObserved, []iwlstest.Point{
		{EventDate: "2025-06-01T11:59:00Z", Value: iwlstest.Value(1.0)},
		{EventDate: "2025-06-01T12:00:00Z", Value: iwlstest.Value(1.0)},
	})
	fake.SetSeries(iwlstest.HalifaxID, iwls.TimeSeriesPredictedHiLo, []iwlstest.Point{
		{EventDate: "2025-06-01T16:47:00Z", Value: iwlstest.Value(1.83), Event: "high"},
	})

	w = serve(t, h, http.MethodGet, "/conditions")
	require.Equal(t, http.StatusOK, w.Code)

	var snapshot conditions.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, conditions.Steady, snapshot.Status)
	require.Len(t, snapshot.HiLo, 1)

	w = serve(t, h, http.MethodGet, "/conditions/latest")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_SearchStations(t *testing.T) {
	fake := iwlstest.NewServer(t)
	h := newTestHandler(t, fake, testToken)

	w := serve(t, h, http.MethodGet, "/stations?latitude=46.25&longitude=-63.10&limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var page response.CollectionResponse[station.Summary]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, iwlstest.CharlottetownCode, page.Items[0].Code)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 2, page.Pagination.Total)

	w = serve(t, h, http.MethodGet, "/stations?latitude=north&longitude=-63.10")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, h, http.MethodGet, "/stations?time-series-code=nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServer_Invoke(t *testing.T) {
	fake := iwlstest.NewServer(t)
	h := newTestHandler(t, fake, testToken)

	w := serve(t, h, http.MethodGet, "/operations/station-metadata")
	require.Equal(t, http.StatusOK, w.Code)

	var metadata map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &metadata))
	assert.Equal(t, iwlstest.HalifaxCode, metadata["code"])

	w = serve(t, h, http.MethodGet, "/operations/tidal-unicorns")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = serve(t, h, http.MethodGet, "/operations")
	require.Equal(t, http.StatusOK, w.Code)
	var operations response.CollectionResponse[iwls.Endpoint]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &operations))
	assert.Equal(t, len(iwls.Endpoints()), operations.Count)
}

func TestServer_RefreshStation(t *testing.T) {
	fake := iwlstest.NewServer(t)
	h := newTestHandler(t, fake, testToken)

	w := serve(t, h, http.MethodPost, "/station/refresh")
	require.Equal(t, http.StatusOK, w.Code)

	var body response.PostResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)

	fake.RemoveStations()
	w = serve(t, h, http.MethodPost, "/station/refresh")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(t, h, http.MethodGet, "/station")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_UnknownRoute(t *testing.T) {
	fake := iwlstest.NewServer(t)
	h := newTestHandler(t, fake, testToken)

	w := serve(t, h, http.MethodGet, "/tides")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewTidesServer_ShutdownClearsTokens(t *testing.T) {
	fake := iwlstest.NewServer(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := tides.Config{Code: iwlstest.HalifaxCode, BaseURL: fake.URL, HTTPClient: fake.Client(), Logger: logger}

	server, err := newTidesServer(context.Background(), ":0", cfg, []string{testToken}, logger)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, serve(t, server.Handler, http.MethodGet, "/station").Code)

	require.NoError(t, server.Shutdown(context.Background()))
	assert.Eventually(t, func() bool {
		return serve(t, server.Handler, http.MethodGet, "/station").Code == http.StatusUnauthorized
	}, time.Second, 10*time.Millisecond)
}
