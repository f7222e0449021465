package overpass

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/hospital-coverage/internal/domain"
	"github.com/couchcryptid/hospital-coverage/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var madrid = domain.Point{Lat: 40.4168, Lon: -3.7038}

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(domain.HospitalQuery(madrid))
	assert.Equal(t, "[out:json];node[amenity=hospital](around:5000,40.4168,-3.7038);out;", q)
}

func TestClient_FindFacilities_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/interpreter", r.URL.Path)
		assert.Equal(t, BuildQuery(domain.HospitalQuery(madrid)), r.URL.Query().Get("data"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		resp := response{
			Elements: []element{
				{Type: "node", ID: 101, Lat: 40.4200, Lon: -3.7000, Tags: map[string]string{"name": "Hospital Clínico", "amenity": "hospital"}},
				{Type: "node", ID: 102, Lat: 40.4300, Lon: -3.6900, Tags: map[string]string{"amenity": "hospital"}},
				{Type: "node", ID: 103, Lat: 40.4400, Lon: -3.6800},
			},
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	facilities, err := c.FindFacilities(context.Background(), domain.HospitalQuery(madrid))
	require.NoError(t, err)

	require.Len(t, facilities, 3)
	assert.Equal(t, int64(101), facilities[0].ID)
	assert.Equal(t, "Hospital Clínico", facilities[0].Name)
	assert.Equal(t, domain.Point{Lat: 40.42, Lon: -3.7}, facilities[0].Location)
	assert.Equal(t, domain.UnnamedFacility, facilities[1].Name)
	assert.Equal(t, domain.UnnamedFacility, facilities[2].Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.POIQueries.WithLabelValues("success")))
}

func TestClient_FindFacilities_SkipsNonNodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"elements":[{"type":"way","id":1},{"type":"node","id":2,"lat":40.41,"lon":-3.70,"tags":{"name":"H"}}]}`))
	}))
	defer srv.Close()

	facilities, err := testClient(srv.URL).FindFacilities(context.Background(), domain.HospitalQuery(madrid))
	require.NoError(t, err)
	require.Len(t, facilities, 1)
	assert.Equal(t, int64(2), facilities[0].ID)
}

func TestClient_FindFacilities_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"version":0.6,"elements":[]}`))
	}))
	defer srv.Close()

	facilities, err := testClient(srv.URL).FindFacilities(context.Background(), domain.HospitalQuery(madrid))
	require.NoError(t, err)
	assert.Empty(t, facilities)
}

func TestClient_FindFacilities_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate_limited`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.FindFacilities(context.Background(), domain.HospitalQuery(madrid))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.POIQueries.WithLabelValues("error")))
}

func TestClient_FindFacilities_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FindFacilities(context.Background(), domain.HospitalQuery(madrid))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_FindFacilities_MissingElements(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"remark":"runtime error"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FindFacilities(context.Background(), domain.HospitalQuery(madrid))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing elements")
}

func TestClient_FindFacilities_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.FindFacilities(context.Background(), domain.HospitalQuery(madrid))
	require.Error(t, err)
}

func TestClient_FindFacilities_RateLimitHonoursContext(t *testing.T) {
	c := testClient("http://127.0.0.1:0")
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.FindFacilities(ctx, domain.HospitalQuery(madrid))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestClient_CheckReadiness(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte("Connected as: 1\nRate limit: 2\n"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	require.NoError(t, c.CheckReadiness(context.Background()))

	status.Store(http.StatusServiceUnavailable)
	err := c.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
