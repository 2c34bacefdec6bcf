// Package transport defines the request/response DTOs for the solar module.
package transport

// EstimateRequest carries the query parameters for a solar potential estimate.
type EstimateRequest struct {
	Lat          *float64 `form:"lat"`
	Lon          *float64 `form:"lon"`
	RoofAreaM2   float64  `form:"roofArea"`
	PeakPowerKWp *float64 `form:"peakPower"`
}
