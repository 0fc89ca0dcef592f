package sportmonks

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/domain/refdata"
	"github.com/maberrio/cornerscout/internal/platform/fetch"
	"github.com/maberrio/cornerscout/internal/platform/logging"
	"github.com/maberrio/cornerscout/internal/platform/resilience"
	"github.com/maberrio/cornerscout/internal/usecase"
)

const (
	defaultBaseURL = "https://api.sportmonks.com/v3/football"
	defaultInclude = "odds;participants"

	// Market 69 is "Alternative Corners" on SportMonks. The only market
	// this client ever asks for.
	alternativeCornersMarketID = 69
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches one day's fixtures with corner odds in a single call.
type Client struct {
	fetch   *fetch.Client
	baseURL string
	token   string
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

	return &Client{
		fetch: fetch.NewClient(fetch.Config{
			HTTPClient:     cfg.HTTPClient,
			Timeout:        cfg.Timeout,
			MaxRetries:     cfg.MaxRetries,
			Token:          cfg.Token,
			Logger:         logger,
			CircuitBreaker: cfg.CircuitBreaker,
		}),
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		logger:  logger,
	}
}

func (c *Client) Kind() quote.ProviderKind {
	return quote.ProviderSportMonks
}

func (c *Client) FetchDayQuotes(ctx context.Context, q usecase.DayQuery) (usecase.DayQuotes, error) {
	token := strings.TrimSpace(q.Token)
	if token == "" {
		token = c.token
	}
	if token == "" {
		return usecase.DayQuotes{}, crerr.Wrap(usecase.ErrMissingCredential, "sportmonks api token")
	}

	filters := []string{"markets:" + strconv.Itoa(alternativeCornersMarketID)}
	if len(q.LeagueIDs) > 0 {
		filters = append(filters, "fixtureLeagues:"+strings.Join(q.LeagueIDs, ","))
	}
	if len(q.BookmakerIDs) > 0 {
		filters = append(filters, "bookmakers:"+strings.Join(q.BookmakerIDs, ","))
	}

	params := url.Values{}
	params.Set("api_token", token)
	params.Set("include", defaultInclude)
	params.Set("filters", strings.Join(filters, ";"))
	fullURL := c.baseURL + "/fixtures/date/" + q.DateString() + "?" + params.Encode()

	var envelope fixturesEnvelope
	if _, err := c.fetch.GetJSON(ctx, fullURL, nil, &envelope); err != nil {
		return usecase.DayQuotes{}, crerr.Wrap(err, "fetch sportmonks fixtures")
	}

	rows := normalizeFixtures(envelope.Data)
	c.logger.DebugContext(ctx, "sportmonks day fetched",
		"day", q.DateString(),
		"fixtures", len(envelope.Data),
		"rows", len(rows),
	)

	return usecase.DayQuotes{
		Rows:          rows,
		EventsFetched: len(envelope.Data),
	}, nil
}

// BookmakerNames loads the bookmaker reference table.
func (c *Client) BookmakerNames(ctx context.Context) (refdata.Directory, error) {
	return c.fetchDirectory(ctx, "/odds/bookmakers")
}

// LeagueNames loads the league reference table.
func (c *Client) LeagueNames(ctx context.Context) (refdata.Directory, error) {
	return c.fetchDirectory(ctx, "/leagues")
}

func (c *Client) fetchDirectory(ctx context.Context, path string) (refdata.Directory, error) {
	if c.token == "" {
		return nil, crerr.Wrap(usecase.ErrMissingCredential, "sportmonks api token")
	}

	params := url.Values{}
	params.Set("api_token", c.token)
	params.Set("per_page", "150")
	fullURL := c.baseURL + path + "?" + params.Encode()

	var envelope referenceEnvelope
	if _, err := c.fetch.GetJSON(ctx, fullURL, nil, &envelope); err != nil {
		return nil, crerr.Wrapf(err, "fetch sportmonks reference %s", path)
	}

	directory := make(refdata.Directory, len(envelope.Data))
	for _, item := range envelope.Data {
		if item.ID == 0 || strings.TrimSpace(item.Name) == "" {
			continue
		}
		directory[strconv.FormatInt(item.ID, 10)] = strings.TrimSpace(item.Name)
	}
	return directory, nil
}
