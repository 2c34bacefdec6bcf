package roof

import (
	apphttp "ecohome_backend/internal/http"
	"ecohome_backend/platform/config"
)

// Module is the roof capacity bounded context module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule creates and initializes the roof module.
func NewModule(cfg config.RoofConfig) *Module {
	svc := NewService(cfg)
	return &Module{
		service: svc,
		handler: NewHandler(svc),
	}
}

// Service returns the estimator for use by other modules.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) Name() string {
	return "roof"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/roof")
	group.GET("/estimate", m.handler.Estimate)
}

var _ apphttp.Module = (*Module)(nil)
