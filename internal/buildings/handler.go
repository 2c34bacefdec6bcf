package buildings

import (
	"net/http"

	"ecohome_backend/internal/buildings/transport"
	"ecohome_backend/internal/geo"
	"ecohome_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the building resolution endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates a buildings handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Resolve handles GET /api/v1/buildings/resolve?postcode=... or ?lat=..&lon=..
func (h *Handler) Resolve(c *gin.Context) {
	var req transport.ResolveRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	resolveReq := ResolveRequest{
		Postcode:         req.Postcode,
		TotalFloorAreaM2: req.TotalFloorAreaM2,
	}
	if req.Lat != nil && req.Lon != nil {
		resolveReq.Coordinate = &geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
	}

	footprint, err := h.svc.Resolve(c.Request.Context(), resolveReq)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toResponse(footprint))
}

func toResponse(footprint Footprint) transport.FootprintResponse {
	ring := make([]transport.CoordinateDTO, 0, len(footprint.Ring))
	for _, vertex := range footprint.Ring {
		ring = append(ring, transport.CoordinateDTO{Lat: vertex.Lat, Lon: vertex.Lon})
	}

	return transport.FootprintResponse{
		Ring:         ring,
		Centroid:     transport.CoordinateDTO{Lat: footprint.Centroid.Lat, Lon: footprint.Centroid.Lon},
		AreaM2:       footprint.AreaM2,
		Floors:       footprint.Floors,
		PropertyType: string(footprint.PropertyType),
	}
}
