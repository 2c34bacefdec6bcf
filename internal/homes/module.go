package homes

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"ecohome_backend/internal/events"
	"ecohome_backend/internal/homes/scoring"
	apphttp "ecohome_backend/internal/http"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
	"ecohome_backend/platform/validator"
)

// Module is the homes bounded context module.
type Module struct {
	service *Service
	handler *Handler
}

// NewModule creates and initializes the homes module.
func NewModule(pool *pgxpool.Pool, cfg config.ScoringConfig, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	engine := scoring.NewEngine(cfg, log)
	svc := NewService(NewRepository(pool, log), engine, bus, log)
	return &Module{
		service: svc,
		handler: NewHandler(svc, val),
	}
}

// Service returns the homes service for use by the scheduler and CLIs.
func (m *Module) Service() *Service {
	return m.service
}

func (m *Module) Name() string {
	return "homes"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/homes")
	group.POST("", m.handler.Claim)
	group.GET("/:id", m.handler.Get)
	group.POST("/:id/improvements", m.handler.LogImprovement)
	group.GET("/:id/improvements", m.handler.ListImprovements)
	group.POST("/:id/recalculate", m.handler.Recalculate)
	group.GET("/:id/score-history", m.handler.ScoreHistory)
}

var _ apphttp.Module = (*Module)(nil)
