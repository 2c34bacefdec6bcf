// Package geocode provides the postcode geocoding bounded context module.
package geocode

import (
	"ecohome_backend/platform/config"
	"ecohome_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Module is the geocoding bounded context module.
type Module struct {
	geocoder Geocoder
}

// NewModule creates and initializes the geocoding module. When a Redis
// client is provided the geocoder is wrapped with the cache decorator;
// without one, lookups go straight to the upstream (graceful degradation).
func NewModule(cfg config.GeocodeConfig, rdb *redis.Client, log *logger.Logger) *Module {
	var geocoder Geocoder = NewClient(cfg, log)

	if rdb != nil {
		geocoder = NewCachedGeocoder(geocoder, rdb, cfg.GetGeocodeCacheTTL(), log)
		log.Info("geocode cache enabled", "ttl", cfg.GetGeocodeCacheTTL())
	} else {
		log.Info("geocode cache disabled: REDIS_URL not configured")
	}

	return &Module{geocoder: geocoder}
}

// Geocoder returns the geocoder for use by other modules.
func (m *Module) Geocoder() Geocoder {
	return m.geocoder
}
