package iwls

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeOperation(t *testing.T) {
	testCases := map[string]string{
		"station_data":      OperationStationData,
		"Station Data":      OperationStationData,
		"station-data":      OperationStationData,
		" height_types ":    OperationHeightTypes,
		"TIDE-TABLE":        OperationTideTable,
		"datum-types":       "datum-types",
		"station_metadata!": OperationStationMetadata,
	}

	for input, expected := range testCases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, NormalizeOperation(input))
		})
	}
}

func TestEndpointBuild(t *testing.T) {
	endpoint, ok := LookupEndpoint("station_data")
	require.True(t, ok)

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	path, query := endpoint.Build(map[string]any{
		ParamStationID:      "5cebf1df3d0f4a073c4bbcb5",
		ParamTimeSeriesCode: TimeSeriesObserved,
		ParamFrom:           from,
		ParamTo:             from.Add(time.Hour),
	})

	assert.Equal(t, "stations/5cebf1df3d0f4a073c4bbcb5/data", path)
	assert.Equal(t, "wlo", query.Get(ParamTimeSeriesCode))
	assert.Equal(t, "2024-05-01T00:00:00Z", query.Get(ParamFrom))
	assert.Equal(t, "2024-05-01T01:00:00Z", query.Get(ParamTo))
	assert.Empty(t, query.Get(ParamStationID))
}

func TestEndpointBuild_MissingPathParam(t *testing.T) {
	endpoint, ok := LookupEndpoint(OperationHeightType)
	require.True(t, ok)

	path, query := endpoint.Build(nil)
	assert.Equal(t, "height-types/", path)
	assert.Empty(t, query)
}

func TestEndpoints_Sorted(t *testing.T) {
	list := Endpoints()
	require.NotEmpty(t, list)

	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Name, list[i].Name)
	}
	for _, endpoint := range list {
		assert.NotEmpty(t, endpoint.Name)
		assert.NotEmpty(t, endpoint.Path)
	}
}

func newFakeReferenceServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/height-types", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"5cec2eba3d0f4a04cc64d5ce","code":"HAT","nameEn":"Highest Astronomical Tide"}]`))
	})
	mux.HandleFunc("/stations/abc/stats/calculate-monthly-mean", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("year") == "" {
			http.Error(w, `{"message":"year is required"}`, http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"value":1.12,"year":` + r.URL.Query().Get("year") + `}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestInvoker_RegisteredOperation(t *testing.T) {
	server := newFakeReferenceServer(t)
	invoker := NewInvoker(NewClient(server.URL, server.Client(), English, newTestLogger()), newTestLogger())

	document, err := invoker.Invoke(context.Background(), "height_types", nil)
	require.NoError(t, err)

	list, ok := document.([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	assert.Equal(t, "HAT", list[0].(map[string]any)["code"])
}

func TestInvoker_QueryParams(t *testing.T) {
	server := newFakeReferenceServer(t)
	invoker := NewInvoker(NewClient(server.URL, server.Client(), English, newTestLogger()), newTestLogger())

	document, err := invoker.Invoke(context.Background(), OperationStationMonthlyMean, map[string]any{
		ParamStationID: "abc",
		"year":         2024,
		"month":        5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2024.0, document.(map[string]any)["year"])
}

func TestInvoker_MissingParamSurfacesAsUpstreamError(t *testing.T) {
	server := newFakeReferenceServer(t)
	invoker := NewInvoker(NewClient(server.URL, server.Client(), English, newTestLogger()), newTestLogger())

	_, err := invoker.Invoke(context.Background(), OperationStationMonthlyMean, map[string]any{ParamStationID: "abc"})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestInvoker_UnknownOperationSurfacesAsUpstreamError(t *testing.T) {
	server := newFakeReferenceServer(t)
	invoker := NewInvoker(NewClient(server.URL, server.Client(), English, newTestLogger()), newTestLogger())

	_, err := invoker.Invoke(context.Background(), "no_such_resource", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.True(t, IsUpstreamNotFound(err))
}

func TestInvoker_EmptyOperation(t *testing.T) {
	invoker := NewInvoker(NewClient("", nil, English, nil), newTestLogger())

	_, err := invoker.Invoke(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrEmptyOperation)
}
