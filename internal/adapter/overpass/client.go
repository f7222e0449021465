package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/hospital-coverage/internal/domain"
	"github.com/couchcryptid/hospital-coverage/internal/observability"
	"golang.org/x/time/rate"
)

const userAgent = "hospital-coverage/1.0"

// Client implements domain.FacilityFinder using the Overpass API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Overpass client. baseURL is the API root, e.g.
// https://overpass-api.de/api; requestsPerSecond throttles outbound queries.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		metrics: metrics,
		logger:  logger,
	}
}

// BuildQuery renders an Overpass QL radius search for nodes carrying the query tag.
func BuildQuery(q domain.FacilityQuery) string {
	return fmt.Sprintf("[out:json];node[%s=%s](around:%s,%s,%s);out;",
		q.Tag.Key, q.Tag.Value,
		strconv.FormatFloat(q.RadiusMeters, 'f', -1, 64),
		strconv.FormatFloat(q.Center.Lat, 'f', -1, 64),
		strconv.FormatFloat(q.Center.Lon, 'f', -1, 64),
	)
}

// FindFacilities runs the radius query and maps returned nodes to facilities.
func (c *Client) FindFacilities(ctx context.Context, q domain.FacilityQuery) ([]domain.Facility, error) {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("overpass rate limit: %w", err)
	}
	c.metrics.POIRateLimitWaits.Observe(time.Since(waitStart).Seconds())

	query := BuildQuery(q)
	u := c.baseURL + "/interpreter?" + url.Values{"data": {query}}.Encode()

	start := time.Now()
	resp, err := c.doRequest(ctx, u)
	c.metrics.POIQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.POIQueries.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.POIQueries.WithLabelValues("success").Inc()

	facilities := make([]domain.Facility, 0, len(resp.Elements))
	for _, e := range resp.Elements {
		if e.Type != "" && e.Type != "node" {
			continue
		}
		facilities = append(facilities, domain.NewFacility(e.ID, e.Tags["name"], domain.Point{Lat: e.Lat, Lon: e.Lon}))
	}

	c.logger.Debug("overpass query complete",
		"center", q.Center.String(),
		"tag", q.Tag.String(),
		"facilities", len(facilities),
	)
	return facilities, nil
}

// CheckReadiness reports whether the Overpass status endpoint answers.
func (c *Client) CheckReadiness(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("overpass status: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("overpass status: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return response{}, fmt.Errorf("overpass request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return response{}, fmt.Errorf("overpass API error: status %d: %s", resp.StatusCode, body)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}
	if out.Elements == nil {
		return response{}, errors.New("decode response: missing elements")
	}
	if out.Remark != "" {
		c.logger.Warn("overpass remark", "remark", out.Remark)
	}
	return out, nil
}

// Overpass API response types.

type response struct {
	Elements []element `json:"elements"`
	Remark   string    `json:"remark,omitempty"`
}

type element struct {
	Type string            `json:"type"`
	ID   int64             `json:"id"`
	Lat  float64           `json:"lat"`
	Lon  float64           `json:"lon"`
	Tags map[string]string `json:"tags"`
}
