// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// GeocodeConfig provides settings for the postcode geocoding client and cache.
type GeocodeConfig interface {
	GetNominatimBaseURL() string
	GetGeocodeCountry() string
	GetGeocodeCacheTTL() time.Duration
	GetUpstreamTimeout() time.Duration
}

// BuildingsConfig provides settings for the building footprint resolver.
type BuildingsConfig interface {
	GetOverpassBaseURL() string
	GetFootprintSearchRadiusM() float64
	GetUpstreamTimeout() time.Duration
}

// ScoringConfig provides the per-category score deltas for the score engine.
// Deltas are calibration values, not code: they are env-tunable and the
// defaults are only illustrative.
type ScoringConfig interface {
	GetScoreCategoryDeltas() map[string]float64
}

// RoofConfig provides usable-roof fractions per property type.
type RoofConfig interface {
	GetRoofUsableFractions() map[string]float64
	GetRoofDefaultFraction() float64
}

// SolarConfig provides settings for the solar potential estimator.
type SolarConfig interface {
	GetPVGISBaseURL() string
	GetPanelDensityKWpPerM2() float64
	GetSystemEfficiency() float64
	GetElectricityUnitPrice() float64
	GetInstallCostPerKWp() float64
	GetInstallBaseCost() float64
	GetGridCO2KgPerKWh() float64
	GetUpstreamTimeout() time.Duration
}

// RedisConfig provides settings for Redis-backed components
// (geocode cache, task queue).
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// =============================================================================
// Config
// =============================================================================

// Config is the concrete application configuration. It satisfies every
// module-specific interface above; modules receive only the interface they
// need.
type Config struct {
	Env             string
	HTTPAddr        string
	DatabaseURL     string
	JWTAccessSecret string
	CORSAllowAll    bool
	CORSOrigins     []string
	CORSAllowCreds  bool

	NominatimBaseURL string
	GeocodeCountry   string
	GeocodeCacheTTL  time.Duration
	OverpassBaseURL  string
	PVGISBaseURL     string
	UpstreamTimeout  time.Duration

	FootprintSearchRadiusM float64
	ScoreCategoryDeltas    map[string]float64
	RoofUsableFractions    map[string]float64
	RoofDefaultFraction    float64
	PanelDensityKWpPerM2   float64
	SystemEfficiency       float64
	ElectricityUnitPrice   float64
	InstallCostPerKWp      float64
	InstallBaseCost        float64
	GridCO2KgPerKWh        float64

	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
}

// Calibration defaults. Every value is env-overridable; these sit inside the
// ranges the scoring and solar models were calibrated against.
const (
	defaultScoreDeltas   = "heat_pump:10,loft_insulation:8,solar_pv:12,glazing:6,cavity_wall_insulation:7,smart_thermostat:3"
	defaultRoofFractions = "detached:0.80,bungalow:0.80,semi_detached:0.65,terraced:0.55,flat:0.45"
	defaultRoofFraction  = 0.50
	defaultPanelDensity  = 0.20 // kWp per m2 of usable roof
	defaultSystemEff     = 0.80 // inverter, wiring, shading, orientation losses
	defaultUnitPrice     = 0.27 // currency units per kWh
	defaultInstallCost   = 1500 // currency units per installed kWp
	defaultInstallBase   = 1200 // fixed scaffolding, inverter and labour component
	defaultGridCO2       = 0.21 // kg CO2 avoided per kWh generated
	defaultSearchRadiusM = 50
)

// Load reads configuration from the environment (and .env if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	deltas, err := parseKeyedFloats(getEnv("SCORE_CATEGORY_DELTAS", defaultScoreDeltas))
	if err != nil {
		return nil, fmt.Errorf("SCORE_CATEGORY_DELTAS: %w", err)
	}
	fractions, err := parseKeyedFloats(getEnv("ROOF_USABLE_FRACTIONS", defaultRoofFractions))
	if err != nil {
		return nil, fmt.Errorf("ROOF_USABLE_FRACTIONS: %w", err)
	}

	cfg := &Config{
		Env:             getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		JWTAccessSecret: getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:    corsAllowAll,
		CORSOrigins:     corsOrigins,
		CORSAllowCreds:  strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),

		NominatimBaseURL: getEnv("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeCountry:   getEnv("GEOCODE_COUNTRY", "gb"),
		GeocodeCacheTTL:  mustDuration(getEnv("GEOCODE_CACHE_TTL", "24h")),
		OverpassBaseURL:  getEnv("OVERPASS_BASE_URL", "https://overpass-api.de/api/interpreter"),
		PVGISBaseURL:     getEnv("PVGIS_BASE_URL", "https://re.jrc.ec.europa.eu/api/v5_2"),
		UpstreamTimeout:  mustDuration(getEnv("UPSTREAM_TIMEOUT", "5s")),

		FootprintSearchRadiusM: mustFloat(getEnv("FOOTPRINT_SEARCH_RADIUS_M", ""), defaultSearchRadiusM),
		ScoreCategoryDeltas:    deltas,
		RoofUsableFractions:    fractions,
		RoofDefaultFraction:    mustFloat(getEnv("ROOF_DEFAULT_FRACTION", ""), defaultRoofFraction),
		PanelDensityKWpPerM2:   mustFloat(getEnv("PANEL_DENSITY_KWP_PER_M2", ""), defaultPanelDensity),
		SystemEfficiency:       mustFloat(getEnv("SYSTEM_EFFICIENCY", ""), defaultSystemEff),
		ElectricityUnitPrice:   mustFloat(getEnv("ELECTRICITY_UNIT_PRICE", ""), defaultUnitPrice),
		InstallCostPerKWp:      mustFloat(getEnv("INSTALL_COST_PER_KWP", ""), defaultInstallCost),
		InstallBaseCost:        mustFloat(getEnv("INSTALL_BASE_COST", ""), defaultInstallBase),
		GridCO2KgPerKWh:        mustFloat(getEnv("GRID_CO2_KG_PER_KWH", ""), defaultGridCO2),

		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: mustInt(getEnv("ASYNQ_CONCURRENCY", ""), 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.SystemEfficiency <= 0 || cfg.SystemEfficiency > 1 {
		return nil, fmt.Errorf("SYSTEM_EFFICIENCY must be in (0,1]")
	}
	if cfg.RoofDefaultFraction <= 0 || cfg.RoofDefaultFraction > 1 {
		return nil, fmt.Errorf("ROOF_DEFAULT_FRACTION must be in (0,1]")
	}
	for name, fraction := range cfg.RoofUsableFractions {
		if fraction <= 0 || fraction > 1 {
			return nil, fmt.Errorf("ROOF_USABLE_FRACTIONS: fraction for %q must be in (0,1]", name)
		}
	}
	if cfg.FootprintSearchRadiusM <= 0 {
		return nil, fmt.Errorf("FOOTPRINT_SEARCH_RADIUS_M must be positive")
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}

	return cfg, nil
}

// =============================================================================
// Interface implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool { return c.CORSAllowCreds }

func (c *Config) GetNominatimBaseURL() string { return c.NominatimBaseURL }
func (c *Config) GetGeocodeCountry() string { return c.GeocodeCountry }
func (c *Config) GetGeocodeCacheTTL() time.Duration { return c.GeocodeCacheTTL }
func (c *Config) GetUpstreamTimeout() time.Duration { return c.UpstreamTimeout }

func (c *Config) GetOverpassBaseURL() string { return c.OverpassBaseURL }
func (c *Config) GetFootprintSearchRadiusM() float64 { return c.FootprintSearchRadiusM }

func (c *Config) GetScoreCategoryDeltas() map[string]float64 { return c.ScoreCategoryDeltas }

func (c *Config) GetRoofUsableFractions() map[string]float64 { return c.RoofUsableFractions }
func (c *Config) GetRoofDefaultFraction() float64 { return c.RoofDefaultFraction }

func (c *Config) GetPVGISBaseURL() string { return c.PVGISBaseURL }
func (c *Config) GetPanelDensityKWpPerM2() float64 { return c.PanelDensityKWpPerM2 }
func (c *Config) GetSystemEfficiency() float64 { return c.SystemEfficiency }
func (c *Config) GetElectricityUnitPrice() float64 { return c.ElectricityUnitPrice }
func (c *Config) GetInstallCostPerKWp() float64 { return c.InstallCostPerKWp }
func (c *Config) GetInstallBaseCost() float64 { return c.InstallBaseCost }
func (c *Config) GetGridCO2KgPerKWh() float64 { return c.GridCO2KgPerKWh }

func (c *Config) GetRedisURL() string { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int { return c.AsynqConcurrency }

// =============================================================================
// Parsing helpers
// =============================================================================

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustFloat(value string, fallback float64) float64 {
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func mustInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return i
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

// parseKeyedFloats parses "key:value,key:value" pairs.
func parseKeyedFloats(value string) (map[string]float64, error) {
	result := make(map[string]float64)
	for _, part := range splitCSV(value) {
		key, raw, found := strings.Cut(part, ":")
		if !found {
			return nil, fmt.Errorf("malformed entry %q, want key:value", part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", part, err)
		}
		result[strings.TrimSpace(key)] = f
	}
	return result, nil
}
