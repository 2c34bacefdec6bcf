package solar

import (
	apphttp "ecohome_backend/internal/http"
	"ecohome_backend/internal/solar/client"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

// Module is the solar potential bounded context module.
type Module struct {
	service  *Service
	provider IrradianceProvider
	handler  *Handler
}

// NewModule creates and initializes the solar module.
func NewModule(cfg config.SolarConfig, log *logger.Logger) *Module {
	provider := client.New(cfg, log)
	svc := NewService(provider, cfg, log)
	return &Module{
		service:  svc,
		provider: provider,
		handler:  NewHandler(svc),
	}
}

// Service returns the estimator for use by other modules.
func (m *Module) Service() *Service {
	return m.service
}

// Provider returns the irradiance provider, for pipelines that prefetch the
// yield factor themselves.
func (m *Module) Provider() IrradianceProvider {
	return m.provider
}

func (m *Module) Name() string {
	return "solar"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/solar")
	group.GET("/estimate", m.handler.Estimate)
}

var _ apphttp.Module = (*Module)(nil)
