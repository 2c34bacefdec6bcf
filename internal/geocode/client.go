package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ecohome_backend/internal/geo"
	"ecohome_backend/platform/apperr"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

const userAgent = "EcoHomeBackend/1.0"

// Client geocodes postcodes against the Nominatim search API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	country    string
	log        *logger.Logger
}

// NewClient creates a Nominatim geocoding client. Requests carry the
// configured upstream timeout and fail fast rather than block.
func NewClient(cfg config.GeocodeConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetUpstreamTimeout()},
		baseURL:    cfg.GetNominatimBaseURL(),
		country:    cfg.GetGeocodeCountry(),
		log:        log,
	}
}

// nominatimResult mirrors the relevant parts of the OSM search payload.
type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// GeocodePostcode resolves a postal code to a coordinate.
func (c *Client) GeocodePostcode(ctx context.Context, postcode string) (Result, error) {
	normalized := NormalizePostcode(postcode)
	if normalized == "" {
		return Result{}, apperr.Validation("postcode is required")
	}

	params := url.Values{}
	params.Set("postalcode", normalized)
	params.Set("countrycodes", c.country)
	params.Set("format", "json")
	params.Set("limit", "1")

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindInternal, "create geocode request", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("nominatim", "search", err)
		return Result{}, apperr.Wrap(apperr.KindUnavailable, "geocoding service unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("nominatim upstream error", "status", resp.StatusCode)
		return Result{}, apperr.Unavailable(fmt.Sprintf("geocoding service error: status %d", resp.StatusCode))
	}

	var rawResults []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&rawResults); err != nil {
		c.log.Error("failed to decode nominatim payload", "error", err)
		return Result{}, apperr.Wrap(apperr.KindUnavailable, "geocoding service returned malformed payload", err)
	}

	if len(rawResults) == 0 {
		return Result{}, apperr.NotFound(fmt.Sprintf("no match for postcode %q", normalized))
	}

	coord, err := parseCoordinate(rawResults[0])
	if err != nil {
		return Result{}, err
	}

	return Result{
		Coordinate:  coord,
		Postcode:    normalized,
		DisplayName: rawResults[0].DisplayName,
	}, nil
}

func parseCoordinate(raw nominatimResult) (geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(raw.Lat, 64)
	if err != nil {
		return geo.Coordinate{}, apperr.Wrap(apperr.KindUnavailable, "geocoding service returned invalid latitude", err)
	}
	lon, err := strconv.ParseFloat(raw.Lon, 64)
	if err != nil {
		return geo.Coordinate{}, apperr.Wrap(apperr.KindUnavailable, "geocoding service returned invalid longitude", err)
	}

	coord := geo.Coordinate{Lat: lat, Lon: lon}
	if err := coord.Validate(); err != nil {
		return geo.Coordinate{}, apperr.Wrap(apperr.KindUnavailable, "geocoding service returned out-of-range coordinate", err)
	}
	return coord, nil
}
