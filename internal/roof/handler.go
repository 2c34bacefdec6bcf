package roof

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecohome_backend/platform/httpkit"
)

// estimateQuery carries the query parameters for a roof capacity estimate.
type estimateQuery struct {
	FloorAreaM2  float64 `form:"floorArea"`
	Floors       int     `form:"floors"`
	PropertyType string  `form:"propertyType"`
}

// Handler exposes the roof capacity endpoint.
type Handler struct {
	svc *Service
}

// NewHandler creates a roof handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Estimate handles GET /api/v1/roof/estimate?floorArea=..&floors=..&propertyType=..
func (h *Handler) Estimate(c *gin.Context) {
	var query estimateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	capacity, err := h.svc.Estimate(query.FloorAreaM2, query.Floors, ParsePropertyType(query.PropertyType))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, capacity)
}
