package app

import (
	"net/http"

	"github.com/maberrio/cornerscout/external/oddsapi"
	"github.com/maberrio/cornerscout/external/rapidapi"
	"github.com/maberrio/cornerscout/external/sportmonks"
	"github.com/maberrio/cornerscout/external/sportradar"
	"github.com/maberrio/cornerscout/internal/config"
	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/interfaces/httpapi"
	"github.com/maberrio/cornerscout/internal/platform/cache"
	"github.com/maberrio/cornerscout/internal/platform/logging"
	"github.com/maberrio/cornerscout/internal/platform/resilience"
	"github.com/maberrio/cornerscout/internal/usecase"
)

// NewHTTPServer wires the providers, services and HTTP surface from config.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store := cache.NewStore(cfg.CacheTTL)
	registry := usecase.NewProviderRegistry()
	refData := usecase.NewRefDataService(store, logger)

	if cfg.SportMonks.Enabled {
		client := sportmonks.NewClient(sportmonks.ClientConfig{
			BaseURL:        cfg.SportMonks.BaseURL,
			Token:          cfg.SportMonks.Token,
			Timeout:        cfg.SportMonks.Timeout,
			MaxRetries:     cfg.SportMonks.MaxRetries,
			Logger:         logger,
			CircuitBreaker: circuitConfig(cfg.SportMonks),
		})
		registry.Register(client)
		refData.RegisterSource(quote.ProviderSportMonks, client)
	}

	if cfg.OddsAPI.Enabled {
		registry.Register(oddsapi.NewClient(oddsapi.ClientConfig{
			BaseURL:        cfg.OddsAPI.BaseURL,
			APIKey:         cfg.OddsAPI.Token,
			SportKey:       cfg.OddsAPISportKey,
			Regions:        cfg.OddsAPIRegions,
			MaxConcurrent:  cfg.OddsAPIMaxConcurrent,
			Timeout:        cfg.OddsAPI.Timeout,
			MaxRetries:     cfg.OddsAPI.MaxRetries,
			Logger:         logger,
			CircuitBreaker: circuitConfig(cfg.OddsAPI),
		}))
	}

	if cfg.RapidAPI.Enabled {
		registry.Register(rapidapi.NewClient(rapidapi.ClientConfig{
			BaseURL:        cfg.RapidAPI.BaseURL,
			Host:           cfg.RapidAPIHost,
			APIKey:         cfg.RapidAPI.Token,
			Timeout:        cfg.RapidAPI.Timeout,
			MaxRetries:     cfg.RapidAPI.MaxRetries,
			Logger:         logger,
			Cache:          store,
			CircuitBreaker: circuitConfig(cfg.RapidAPI),
		}))
	}

	if cfg.Sportradar.Enabled {
		registry.Register(sportradar.NewClient(sportradar.ClientConfig{
			BaseURL:        cfg.Sportradar.BaseURL,
			APIKey:         cfg.Sportradar.Token,
			SportID:        cfg.SportradarSportID,
			Timeout:        cfg.Sportradar.Timeout,
			MaxRetries:     cfg.Sportradar.MaxRetries,
			Logger:         logger,
			CircuitBreaker: circuitConfig(cfg.Sportradar),
		}))
	}

	searchService := usecase.NewSearchService(registry, refData, logger)
	exportService := usecase.NewExportService(logger)
	handler := httpapi.NewHandler(searchService, exportService, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

func circuitConfig(settings config.ProviderSettings) resilience.CircuitBreakerConfig {
	return resilience.CircuitBreakerConfig{
		Enabled:          settings.CircuitEnabled,
		FailureThreshold: settings.CircuitFailureCount,
		OpenTimeout:      settings.CircuitOpenTimeout,
		HalfOpenMaxReq:   settings.CircuitHalfOpenMaxReq,
	}
}
