package solar

import (
	"net/http"

	"ecohome_backend/internal/geo"
	"ecohome_backend/internal/solar/transport"
	"ecohome_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler exposes the solar potential endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates a solar handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Estimate handles GET /api/v1/solar/estimate?lat=..&lon=..&roofArea=..
func (h *Handler) Estimate(c *gin.Context) {
	var req transport.EstimateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if req.Lat == nil || req.Lon == nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", "lat and lon are required")
		return
	}

	potential, err := h.svc.Estimate(c.Request.Context(), EstimateRequest{
		Coordinate:   geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon},
		RoofAreaM2:   req.RoofAreaM2,
		PeakPowerKWp: req.PeakPowerKWp,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, potential)
}
