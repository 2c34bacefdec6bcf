// Package transport defines the request/response DTOs for the assessment
// pipeline.
package transport

import (
	buildingstransport "ecohome_backend/internal/buildings/transport"
	"ecohome_backend/internal/roof"
	"ecohome_backend/internal/solar"
)

// AssessRequest is the body for a full assessment run.
type AssessRequest struct {
	Postcode         string   `json:"postcode"`
	Lat              *float64 `json:"lat"`
	Lon              *float64 `json:"lon"`
	TotalFloorAreaM2 *float64 `json:"totalFloorAreaM2"`
	PeakPowerKWp     *float64 `json:"peakPowerKWp"`
}

// AssessResponse is the combined output of every pipeline stage.
type AssessResponse struct {
	Coordinate buildingstransport.CoordinateDTO     `json:"coordinate"`
	Footprint  buildingstransport.FootprintResponse `json:"footprint"`
	Roof       roof.Capacity                        `json:"roof"`
	Solar      solar.Potential                      `json:"solar"`
}
