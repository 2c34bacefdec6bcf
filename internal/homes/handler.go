package homes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ecohome_backend/internal/homes/transport"
	"ecohome_backend/platform/httpkit"
	"ecohome_backend/platform/validator"
)

// Handler exposes the home lifecycle endpoints.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a homes handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Claim handles POST /api/v1/homes
func (h *Handler) Claim(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ClaimHomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	home, err := h.svc.ClaimHome(c.Request.Context(), ClaimRequest{
		OwnerID:            identity.UserID(),
		Address:            req.Address,
		Postcode:           req.Postcode,
		Lat:                req.Lat,
		Lon:                req.Lon,
		TotalFloorAreaM2:   req.TotalFloorAreaM2,
		BaselineEfficiency: req.BaselineEfficiency,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toHomeResponse(home))
}

// Get handles GET /api/v1/homes/:id
func (h *Handler) Get(c *gin.Context) {
	homeID, ok := parseHomeID(c)
	if !ok {
		return
	}

	home, err := h.svc.GetHome(c.Request.Context(), homeID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toHomeResponse(home))
}

// LogImprovement handles POST /api/v1/homes/:id/improvements
func (h *Handler) LogImprovement(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	homeID, ok := parseHomeID(c)
	if !ok {
		return
	}

	var req transport.LogImprovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	improvement, err := h.svc.LogImprovement(c.Request.Context(), homeID, identity.UserID(), ImprovementRequest{
		Category:               req.Category,
		Cost:                   req.Cost,
		GrantUsed:              req.GrantUsed,
		GrantAmount:            req.GrantAmount,
		EstimatedAnnualSavings: req.EstimatedAnnualSavings,
		BeforeScore:            req.BeforeScore,
		CompletedAt:            req.CompletedAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toImprovementResponse(improvement))
}

// ListImprovements handles GET /api/v1/homes/:id/improvements
func (h *Handler) ListImprovements(c *gin.Context) {
	homeID, ok := parseHomeID(c)
	if !ok {
		return
	}

	improvements, err := h.svc.ListImprovements(c.Request.Context(), homeID)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.ImprovementResponse, 0, len(improvements))
	for _, improvement := range improvements {
		items = append(items, toImprovementResponse(improvement))
	}
	httpkit.OK(c, items)
}

// Recalculate handles POST /api/v1/homes/:id/recalculate
func (h *Handler) Recalculate(c *gin.Context) {
	homeID, ok := parseHomeID(c)
	if !ok {
		return
	}

	var req transport.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	trigger := req.Trigger
	if trigger == "" {
		trigger = "manual"
	}

	score, err := h.svc.Recalculate(c.Request.Context(), homeID, trigger)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.RecalculateResponse{Score: score})
}

// ScoreHistory handles GET /api/v1/homes/:id/score-history
func (h *Handler) ScoreHistory(c *gin.Context) {
	homeID, ok := parseHomeID(c)
	if !ok {
		return
	}

	entries, err := h.svc.ScoreHistory(c.Request.Context(), homeID)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.ScoreHistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, transport.ScoreHistoryEntryResponse{
			Score:     entry.Score,
			Reason:    entry.Reason,
			Detail:    entry.Detail,
			CreatedAt: entry.CreatedAt,
		})
	}
	httpkit.OK(c, items)
}

func parseHomeID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid home id", err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func toHomeResponse(home HomeRecord) transport.HomeResponse {
	return transport.HomeResponse{
		ID:                 home.ID,
		Address:            home.Address,
		Postcode:           home.Postcode,
		Lat:                home.Lat,
		Lon:                home.Lon,
		TotalFloorAreaM2:   home.TotalFloorAreaM2,
		BaselineEfficiency: home.BaselineEfficiency,
		CurrentScore:       home.CurrentScore,
		ScoreUpdatedAt:     home.ScoreUpdatedAt,
		CreatedAt:          home.CreatedAt,
	}
}

func toImprovementResponse(improvement Improvement) transport.ImprovementResponse {
	return transport.ImprovementResponse{
		ID:                     improvement.ID,
		Category:               string(improvement.Category),
		Cost:                   improvement.Cost,
		GrantUsed:              improvement.GrantUsed,
		GrantAmount:            improvement.GrantAmount,
		EstimatedAnnualSavings: improvement.EstimatedAnnualSavings,
		BeforeScore:            improvement.BeforeScore,
		AfterScore:             improvement.AfterScore,
		CompletedAt:            improvement.CompletedAt,
		CreatedAt:              improvement.CreatedAt,
	}
}
