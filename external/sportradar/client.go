package sportradar

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/platform/fetch"
	"github.com/maberrio/cornerscout/internal/platform/logging"
	"github.com/maberrio/cornerscout/internal/platform/resilience"
	"github.com/maberrio/cornerscout/internal/usecase"
)

const (
	defaultBaseURL = "https://api.sportradar.com/oddscomparison-prematch/trial/v2/en"
	defaultSportID = "sr:sport:1"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	SportID        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches Sportradar's prematch odds comparison schedule: one call
// returns the day's sport events with their markets, books and outcomes.
type Client struct {
	fetch   *fetch.Client
	baseURL string
	apiKey  string
	sportID string
	logger  *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	sportID := strings.TrimSpace(cfg.SportID)
	if sportID == "" {
		sportID = defaultSportID
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
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		sportID: sportID,
		logger:  logger,
	}
}

func (c *Client) Kind() quote.ProviderKind {
	return quote.ProviderSportradar
}

func (c *Client) FetchDayQuotes(ctx context.Context, q usecase.DayQuery) (usecase.DayQuotes, error) {
	apiKey := strings.TrimSpace(q.Token)
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey == "" {
		return usecase.DayQuotes{}, crerr.Wrap(usecase.ErrMissingCredential, "sportradar api key")
	}

	params := url.Values{}
	params.Set("api_key", apiKey)
	fullURL := c.baseURL + "/sports/" + c.sportID + "/schedules/" + q.DateString() + "/sport_event_markets.json?" + params.Encode()

	var envelope scheduleEnvelope
	if _, err := c.fetch.GetJSON(ctx, fullURL, nil, &envelope); err != nil {
		return usecase.DayQuotes{}, crerr.Wrap(err, "fetch sportradar schedule")
	}

	rows := normalizeSchedule(envelope)
	c.logger.DebugContext(ctx, "sportradar day fetched",
		"day", q.DateString(),
		"events", len(envelope.SportEvents),
		"rows", len(rows),
	)
	return usecase.DayQuotes{
		Rows:          rows,
		EventsFetched: len(envelope.SportEvents),
	}, nil
}
