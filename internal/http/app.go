// Package http provides HTTP server infrastructure including module
// registration.
package http

import (
	"context"

	"ecohome_backend/internal/events"
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"
)

// RouterConfig combines the config interfaces the HTTP router needs.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies. Populated by
// main.go (the composition root) and passed to the router.
type App struct {
	Config   RouterConfig
	Logger   *logger.Logger
	Health   HealthChecker
	EventBus events.Bus
	Modules  []Module
}
