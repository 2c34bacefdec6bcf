package buildings

import (
	"ecohome_backend/internal/buildings/client"
	"ecohome_backend/internal/geocode"
	apphttp "ecohome_backend/internal/http"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

// Module is the building resolution bounded context module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule creates and initializes the buildings module.
func NewModule(cfg config.BuildingsConfig, geocoder geocode.Geocoder, log *logger.Logger) *Module {
	provider := client.New(cfg, log)
	svc := NewService(geocoder, provider, cfg, log)
	return &Module{
		service: svc,
		handler: NewHandler(svc),
	}
}

// Service returns the resolver service for use by other modules.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) Name() string {
	return "buildings"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/buildings")
	group.GET("/resolve", m.handler.Resolve)
}

var _ apphttp.Module = (*Module)(nil)
