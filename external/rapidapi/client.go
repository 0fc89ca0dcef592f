package rapidapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/platform/cache"
	"github.com/maberrio/cornerscout/internal/platform/fetch"
	"github.com/maberrio/cornerscout/internal/platform/logging"
	"github.com/maberrio/cornerscout/internal/platform/resilience"
	"github.com/maberrio/cornerscout/internal/usecase"
)

// RapidAPI odds hosts do not share one path layout. The client probes this
// fixed suffix list in order and memoizes the first one that answers 200.
var endpointSuffixes = []string{"/v4/odds", "/v2/odds", "/v1/odds", "/odds", "/api/odds"}

const endpointCacheKey = "rapidapi:endpoint"

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Host           string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	Cache          *cache.Store
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to a RapidAPI-hosted odds aggregator. Payload shape is not
// fixed, so decoding goes through the free-form normalizer.
type Client struct {
	fetch   *fetch.Client
	baseURL string
	host    string
	apiKey  string
	cache   *cache.Store
	logger  *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewStore(30 * time.Minute)
	}

	return &Client{
		fetch: fetch.NewClient(fetch.Config{
			HTTPClient:     cfg.HTTPClient,
			Timeout:        cfg.Timeout,
			MaxRetries:     cfg.MaxRetries,
			Token:          cfg.APIKey,
			Logger:         logger,
			CircuitBreaker: cfg.CircuitBreaker,
		}),
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		host:    strings.TrimSpace(cfg.Host),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		cache:   store,
		logger:  logger,
	}
}

func (c *Client) Kind() quote.ProviderKind {
	return quote.ProviderRapidAPI
}

func (c *Client) FetchDayQuotes(ctx context.Context, q usecase.DayQuery) (usecase.DayQuotes, error) {
	apiKey := strings.TrimSpace(q.Token)
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey == "" {
		return usecase.DayQuotes{}, crerr.Wrap(usecase.ErrMissingCredential, "rapidapi key")
	}
	if c.baseURL == "" {
		return usecase.DayQuotes{}, crerr.Wrap(usecase.ErrInvalidInput, "rapidapi base url is not configured")
	}

	params := url.Values{}
	params.Set("date", q.DateString())
	query := "?" + params.Encode()

	headers := map[string]string{"X-RapidAPI-Key": apiKey}
	if c.host != "" {
		headers["X-RapidAPI-Host"] = c.host
	}

	raw, suffix, err := c.fetchWithDetection(ctx, query, headers)
	if err != nil {
		return usecase.DayQuotes{}, err
	}

	rows, events := normalizeFreeForm(raw)
	c.logger.DebugContext(ctx, "rapidapi day fetched",
		"endpoint", suffix,
		"events", events,
		"rows", len(rows),
	)
	return usecase.DayQuotes{Rows: rows, EventsFetched: events}, nil
}

// fetchWithDetection uses the memoized endpoint suffix when one is known,
// otherwise probes the candidates in order. A probe failure moves to the
// next suffix; only exhausting the list is an error.
func (c *Client) fetchWithDetection(ctx context.Context, query string, headers map[string]string) ([]byte, string, error) {
	if cached, ok := c.cache.Get(ctx, endpointCacheKey); ok {
		if suffix, ok := cached.(string); ok {
			raw, _, err := c.fetch.Get(ctx, c.baseURL+suffix+query, headers)
			if err == nil {
				return raw, suffix, nil
			}
			// Memoized endpoint went bad; fall through to a fresh probe.
			c.cache.Delete(ctx, endpointCacheKey)
		}
	}

	var lastErr error
	for _, suffix := range endpointSuffixes {
		raw, _, err := c.fetch.Get(ctx, c.baseURL+suffix+query, headers)
		if err != nil {
			if crerr.Is(err, resilience.ErrCircuitOpen) {
				return nil, "", err
			}
			lastErr = err
			continue
		}
		c.cache.Set(ctx, endpointCacheKey, suffix)
		return raw, suffix, nil
	}

	if lastErr == nil {
		lastErr = crerr.New("no endpoint suffix answered")
	}
	return nil, "", crerr.Wrap(lastErr, "detect rapidapi odds endpoint")
}
