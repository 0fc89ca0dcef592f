package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/maberrio/cornerscout/internal/platform/logging"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// ProviderSettings is the per-provider block every odds client shares. The
// env prefix selects the provider: SPORTMONKS_TOKEN, ODDSAPI_TOKEN and so on.
type ProviderSettings struct {
	Enabled               bool
	BaseURL               string
	Token                 string
	Timeout               time.Duration
	MaxRetries            int
	CircuitEnabled        bool
	CircuitFailureCount   int
	CircuitOpenTimeout    time.Duration
	CircuitHalfOpenMaxReq int
}

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CacheTTL           time.Duration
	LogLevel           logging.Level

	SportMonks ProviderSettings

	OddsAPI              ProviderSettings
	OddsAPISportKey      string
	OddsAPIRegions       string
	OddsAPIMaxConcurrent int

	RapidAPI     ProviderSettings
	RapidAPIHost string

	Sportradar        ProviderSettings
	SportradarSportID string
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "15m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	sportMonks, err := loadProviderSettings("SPORTMONKS", "https://api.sportmonks.com/v3/football")
	if err != nil {
		return Config{}, err
	}
	oddsAPI, err := loadProviderSettings("ODDSAPI", "https://api.the-odds-api.com/v4")
	if err != nil {
		return Config{}, err
	}
	rapidAPI, err := loadProviderSettings("RAPIDAPI", "")
	if err != nil {
		return Config{}, err
	}
	sportradar, err := loadProviderSettings("SPORTRADAR", "https://api.sportradar.com/oddscomparison-prematch/trial/v2/en")
	if err != nil {
		return Config{}, err
	}
	if rapidAPI.Enabled && rapidAPI.BaseURL == "" {
		return Config{}, fmt.Errorf("RAPIDAPI_BASE_URL is required when RAPIDAPI_ENABLED=true")
	}

	oddsAPIMaxConcurrent, err := getEnvAsInt("ODDSAPI_MAX_CONCURRENT", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse ODDSAPI_MAX_CONCURRENT: %w", err)
	}
	if oddsAPIMaxConcurrent < 1 {
		return Config{}, fmt.Errorf("ODDSAPI_MAX_CONCURRENT must be >= 1")
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "cornerscout-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:        readTimeout,
		WriteTimeout:       writeTimeout,
		CacheTTL:           cacheTTL,
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		SportMonks: sportMonks,

		OddsAPI:              oddsAPI,
		OddsAPISportKey:      strings.TrimSpace(getEnv("ODDSAPI_SPORT_KEY", "soccer_epl")),
		OddsAPIRegions:       strings.TrimSpace(getEnv("ODDSAPI_REGIONS", "eu,uk")),
		OddsAPIMaxConcurrent: oddsAPIMaxConcurrent,

		RapidAPI:     rapidAPI,
		RapidAPIHost: strings.TrimSpace(getEnv("RAPIDAPI_HOST", "")),

		Sportradar:        sportradar,
		SportradarSportID: strings.TrimSpace(getEnv("SPORTRADAR_SPORT_ID", "sr:sport:1")),
	}

	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if !cfg.SportMonks.Enabled && !cfg.OddsAPI.Enabled && !cfg.RapidAPI.Enabled && !cfg.Sportradar.Enabled {
		return Config{}, fmt.Errorf("at least one provider must be enabled")
	}

	return cfg, nil
}

func loadProviderSettings(prefix, defaultBaseURL string) (ProviderSettings, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_ENABLED", "false"))
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("parse %s_ENABLED: %w", prefix, err)
	}

	timeout, err := time.ParseDuration(getEnv(prefix+"_TIMEOUT", "20s"))
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("parse %s_TIMEOUT: %w", prefix, err)
	}
	if timeout <= 0 {
		return ProviderSettings{}, fmt.Errorf("%s_TIMEOUT must be > 0", prefix)
	}

	maxRetries, err := getEnvAsInt(prefix+"_MAX_RETRIES", 3)
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("parse %s_MAX_RETRIES: %w", prefix, err)
	}
	if maxRetries < 0 {
		return ProviderSettings{}, fmt.Errorf("%s_MAX_RETRIES must be >= 0", prefix)
	}

	circuitEnabled, err := strconv.ParseBool(getEnv(prefix+"_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("parse %s_CIRCUIT_ENABLED: %w", prefix, err)
	}
	circuitFailureCount, err := getEnvAsInt(prefix+"_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("parse %s_CIRCUIT_FAILURE_COUNT: %w", prefix, err)
	}
	if circuitFailureCount < 1 {
		return ProviderSettings{}, fmt.Errorf("%s_CIRCUIT_FAILURE_COUNT must be >= 1", prefix)
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("parse %s_CIRCUIT_OPEN_TIMEOUT: %w", prefix, err)
	}
	if circuitOpenTimeout <= 0 {
		return ProviderSettings{}, fmt.Errorf("%s_CIRCUIT_OPEN_TIMEOUT must be > 0", prefix)
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt(prefix+"_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return ProviderSettings{}, fmt.Errorf("parse %s_CIRCUIT_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return ProviderSettings{}, fmt.Errorf("%s_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	settings := ProviderSettings{
		Enabled:               enabled,
		BaseURL:               strings.TrimSpace(getEnv(prefix+"_BASE_URL", defaultBaseURL)),
		Token:                 strings.TrimSpace(getEnv(prefix+"_TOKEN", "")),
		Timeout:               timeout,
		MaxRetries:            maxRetries,
		CircuitEnabled:        circuitEnabled,
		CircuitFailureCount:   circuitFailureCount,
		CircuitOpenTimeout:    circuitOpenTimeout,
		CircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,
	}
	// No token requirement here: a request-scoped token can stand in for a
	// configured one, so an enabled provider without a token is valid.
	return settings, nil
}

func parseAppEnv(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case EnvDev, "development", "local":
		return EnvDev, nil
	case EnvProd, "production":
		return EnvProd, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q, expected dev or prod", v)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
