// Package client implements the PVGIS irradiance provider.
package client

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

// Client fetches annual photovoltaic yield factors from the PVGIS API.
// Queries a fixed 1 kWp system with zero system loss so the response is the
// location's specific yield; system losses are applied downstream.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// New creates a PVGIS client with the configured upstream timeout.
func New(cfg config.SolarConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetUpstreamTimeout()},
		baseURL:    cfg.GetPVGISBaseURL(),
		log:        log,
	}
}

// pvgisResponse mirrors the relevant slice of the PVcalc payload.
type pvgisResponse struct {
	Outputs struct {
		Totals struct {
			Fixed struct {
				YearlyEnergyKWh float64 `json:"E_y"`
			} `json:"fixed"`
		} `json:"totals"`
	} `json:"outputs"`
}

// AnnualYieldKWhPerKWp returns the expected yearly energy yield per installed
// kWp at the coordinate.
func (c *Client) AnnualYieldKWhPerKWp(ctx context.Context, coord geo.Coordinate) (float64, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("peakpower", "1")
	params.Set("loss", "0")
	params.Set("outputformat", "json")

	reqURL := fmt.Sprintf("%s/PVcalc?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, "create irradiance request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("pvgis", "pvcalc", err)
		return 0, apperr.Wrap(apperr.KindUnavailable, "irradiance service unreachable", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("pvgis upstream error", "status", resp.StatusCode)
		return 0, apperr.Unavailable(fmt.Sprintf("irradiance service error: status %d", resp.StatusCode))
	}

	var payload pvgisResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Error("failed to decode pvgis payload", "error", err)
		return 0, apperr.Wrap(apperr.KindUnavailable, "irradiance service returned malformed payload", err)
	}

	yield := payload.Outputs.Totals.Fixed.YearlyEnergyKWh
	if yield <= 0 {
		return 0, apperr.Unavailable(fmt.Sprintf("irradiance service returned implausible yield %v", yield))
	}
	return yield, nil
}
