package oddsapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/iter"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/platform/fetch"
	"github.com/maberrio/cornerscout/internal/platform/logging"
	"github.com/maberrio/cornerscout/internal/platform/resilience"
	"github.com/maberrio/cornerscout/internal/usecase"
)

const (
	defaultBaseURL       = "https://api.the-odds-api.com/v4"
	defaultSportKey      = "soccer_epl"
	defaultRegions       = "eu,uk"
	defaultMaxConcurrent = 4

	// Corner markets in preference order; the normalizer accepts any of
	// them per bookmaker.
	requestedMarkets = "alternate_totals_corners,totals_corners,spreads_corners"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	SportKey       string
	Regions        string
	MaxConcurrent  int
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client covers The Odds API v4: one call lists the day's events, then odds
// are fetched per event with a bounded fan-out. A failing event is skipped
// and counted, never fatal for the day.
type Client struct {
	fetch         *fetch.Client
	baseURL       string
	apiKey        string
	sportKey      string
	regions       string
	maxConcurrent int
	logger        *logging.Logger
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
	sportKey := strings.TrimSpace(cfg.SportKey)
	if sportKey == "" {
		sportKey = defaultSportKey
	}
	regions := strings.TrimSpace(cfg.Regions)
	if regions == "" {
		regions = defaultRegions
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
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
		baseURL:       baseURL,
		apiKey:        strings.TrimSpace(cfg.APIKey),
		sportKey:      sportKey,
		regions:       regions,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

func (c *Client) Kind() quote.ProviderKind {
	return quote.ProviderOddsAPI
}

func (c *Client) FetchDayQuotes(ctx context.Context, q usecase.DayQuery) (usecase.DayQuotes, error) {
	apiKey := strings.TrimSpace(q.Token)
	if apiKey == "" {
		apiKey = c.apiKey
	}
	if apiKey == "" {
		return usecase.DayQuotes{}, crerr.Wrap(usecase.ErrMissingCredential, "odds api key")
	}

	events, err := c.listDayEvents(ctx, apiKey, q.Day)
	if err != nil {
		return usecase.DayQuotes{}, crerr.Wrap(err, "list odds api events")
	}
	if len(events) == 0 {
		return usecase.DayQuotes{}, nil
	}

	type eventResult struct {
		rows []quote.Row
		err  error
	}

	// Fan out per event, bounded. Map preserves input order, so the day's
	// rows stay deterministic regardless of completion order.
	mapper := iter.Mapper[eventItem, eventResult]{MaxGoroutines: c.maxConcurrent}
	results := mapper.Map(events, func(event *eventItem) eventResult {
		odds, fetchErr := c.fetchEventOdds(ctx, apiKey, event.ID)
		if fetchErr != nil {
			return eventResult{err: fetchErr}
		}
		return eventResult{rows: normalizeEvent(*event, odds)}
	})

	out := usecase.DayQuotes{EventsFetched: len(events)}
	for i, result := range results {
		if result.err != nil {
			out.EventsFailed++
			c.logger.WarnContext(ctx, "odds api event skipped",
				"event", events[i].ID,
				"error", c.fetch.Redact(result.err.Error()),
			)
			continue
		}
		out.Rows = append(out.Rows, result.rows...)
	}
	return out, nil
}

func (c *Client) listDayEvents(ctx context.Context, apiKey string, day time.Time) ([]eventItem, error) {
	dayStart := day.UTC().Truncate(24 * time.Hour)

	params := url.Values{}
	params.Set("apiKey", apiKey)
	params.Set("dateFormat", "iso")
	params.Set("commenceTimeFrom", dayStart.Format("2006-01-02T15:04:05Z"))
	params.Set("commenceTimeTo", dayStart.Add(24*time.Hour-time.Second).Format("2006-01-02T15:04:05Z"))
	fullURL := c.baseURL + "/sports/" + c.sportKey + "/events?" + params.Encode()

	var events []eventItem
	if _, err := c.fetch.GetJSON(ctx, fullURL, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) fetchEventOdds(ctx context.Context, apiKey, eventID string) (eventOdds, error) {
	params := url.Values{}
	params.Set("apiKey", apiKey)
	params.Set("regions", c.regions)
	params.Set("markets", requestedMarkets)
	params.Set("oddsFormat", "decimal")
	params.Set("dateFormat", "iso")
	fullURL := c.baseURL + "/sports/" + c.sportKey + "/events/" + url.PathEscape(eventID) + "/odds?" + params.Encode()

	var odds eventOdds
	raw, header, err := c.fetch.Get(ctx, fullURL, nil)
	if err != nil {
		return eventOdds{}, err
	}
	if remaining := header.Get("X-Requests-Remaining"); remaining != "" {
		c.logger.DebugContext(ctx, "odds api quota", "remaining", remaining)
	}
	if err := decodeEventOdds(raw, &odds); err != nil {
		return eventOdds{}, err
	}
	return odds, nil
}
