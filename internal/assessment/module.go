package assessment

import (
	"ecohome_backend/internal/buildings"
	"ecohome_backend/internal/geocode"
	apphttp "ecohome_backend/internal/http"
	"ecohome_backend/internal/roof"
	"ecohome_backend/internal/solar"
	"ecohome_backend/platform/logger"
)

// Module is the assessment pipeline module. It composes the stage services
// owned by the other modules rather than building its own.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule wires the pipeline from the stage modules.
func NewModule(
	geocoder geocode.Geocoder,
	buildingsSvc *buildings.Service,
	roofSvc *roof.Service,
	solarSvc *solar.Service,
	irradiance solar.IrradianceProvider,
	log *logger.Logger,
) *Module {
	svc := NewService(geocoder, buildingsSvc, roofSvc, solarSvc, irradiance, log)
	return &Module{
		service: svc,
		handler: NewHandler(svc),
	}
}

func (m *Module) Name() string {
	return "assessment"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.POST("/assessment", m.handler.Assess)
}

var _ apphttp.Module = (*Module)(nil)
