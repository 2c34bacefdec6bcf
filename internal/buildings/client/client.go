// Package client provides the HTTP client for the Overpass building
// footprint API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"ecohome_backend/internal/buildings/types"
	"ecohome_backend/internal/geo"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

const userAgent = "EcoHomeBackend/1.0"

// Client queries the Overpass API for building polygons.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// New creates a new Overpass client.
func New(cfg config.BuildingsConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetUpstreamTimeout()},
		baseURL:    cfg.GetOverpassBaseURL(),
		log:        log,
	}
}

// overpassResponse mirrors the relevant parts of the Overpass JSON payload.
type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	Tags     map[string]string `json:"tags"`
	Geometry []overpassVertex  `json:"geometry"`
}

type overpassVertex struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NearbyFootprints returns the building polygons within radiusM of center.
// An empty result is not an error; the caller decides whether that is a
// not-found condition.
func (c *Client) NearbyFootprints(ctx context.Context, center geo.Coordinate, radiusM float64) ([]types.Candidate, error) {
	query := fmt.Sprintf(
		`[out:json][timeout:%d];way(around:%.0f,%.6f,%.6f)["building"];out geom;`,
		int(c.httpClient.Timeout.Seconds()), radiusM, center.Lat, center.Lon,
	)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create footprint request", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("overpass", "nearby_footprints", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "footprint service unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("overpass upstream error", "status", resp.StatusCode)
		return nil, apperr.Unavailable(fmt.Sprintf("footprint service error: status %d", resp.StatusCode))
	}

	var payload overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("failed to decode overpass payload", "error", err)
		return nil, apperr.Wrap(apperr.KindUnavailable, "footprint service returned malformed payload", err)
	}

	candidates := make([]types.Candidate, 0, len(payload.Elements))
	for _, element := range payload.Elements {
		candidate, ok := buildCandidate(element)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates, nil
}

func buildCandidate(element overpassElement) (types.Candidate, bool) {
	if element.Type != "way" || len(element.Geometry) < 3 {
		return types.Candidate{}, false
	}

	ring := make(geo.Ring, 0, len(element.Geometry))
	for _, vertex := range element.Geometry {
		ring = append(ring, geo.Coordinate{Lat: vertex.Lat, Lon: vertex.Lon})
	}

	return types.Candidate{
		Ring: ring,
		Tag:  element.Tags["building"],
	}, true
}
