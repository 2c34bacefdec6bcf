package assessment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecohome_backend/internal/assessment/transport"
	buildingstransport "ecohome_backend/internal/buildings/transport"
	"ecohome_backend/internal/geo"
	"ecohome_backend/platform/httpkit"
)

// Handler exposes the one-shot assessment endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates an assessment handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Assess handles POST /api/v1/assessment
func (h *Handler) Assess(c *gin.Context) {
	var req transport.AssessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	assessReq := Request{
		Postcode:         req.Postcode,
		TotalFloorAreaM2: req.TotalFloorAreaM2,
		PeakPowerKWp:     req.PeakPowerKWp,
	}
	if req.Lat != nil && req.Lon != nil {
		assessReq.Coordinate = &geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
	}

	result, err := h.svc.Assess(c.Request.Context(), assessReq)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(result))
}

func toResponse(result Result) transport.AssessResponse {
	ring := make([]buildingstransport.CoordinateDTO, 0, len(result.Footprint.Ring))
	for _, vertex := range result.Footprint.Ring {
		ring = append(ring, buildingstransport.CoordinateDTO{Lat: vertex.Lat, Lon: vertex.Lon})
	}

	return transport.AssessResponse{
		Coordinate: buildingstransport.CoordinateDTO{
			Lat: result.Coordinate.Lat,
			Lon: result.Coordinate.Lon,
		},
		Footprint: buildingstransport.FootprintResponse{
			Ring: ring,
			Centroid: buildingstransport.CoordinateDTO{
				Lat: result.Footprint.Centroid.Lat,
				Lon: result.Footprint.Centroid.Lon,
			},
			AreaM2:       result.Footprint.AreaM2,
			Floors:       result.Footprint.Floors,
			PropertyType: string(result.Footprint.PropertyType),
		},
		Roof:  result.Roof,
		Solar: result.Solar,
	}
}
