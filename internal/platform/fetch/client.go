package fetch

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/maberrio/cornerscout/internal/platform/logging"
	"github.com/maberrio/cornerscout/internal/platform/resilience"
)

const (
	defaultTimeout     = 20 * time.Second
	defaultBackoffBase = 700 * time.Millisecond
	maxBodyBytes       = 6 << 20
	maxErrorBodyBytes  = 512
)

// ErrTransient marks failures worth retrying: transport errors and the
// retryable status codes. Only these count against the circuit breaker.
var ErrTransient = crerr.New("transient provider failure")

var credentialParamRegex = regexp.MustCompile(`(?i)(api_token|apikey|api_key|key)=[^&\s"']+`)

type Config struct {
	HTTPClient     *http.Client
	Timeout        time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	Token          string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client is the outbound HTTP GET path shared by every odds provider:
// bounded retry on {429,500,502,503,504} with exponential backoff, immediate
// failure on anything else, singleflight per URL, optional circuit breaker,
// and credential redaction in every logged value.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	backoffBase    time.Duration
	token          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	backoffBase := cfg.BackoffBase
	if backoffBase <= 0 {
		backoffBase = defaultBackoffBase
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		maxRetries:     maxRetries,
		backoffBase:    backoffBase,
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Get issues the request and returns the raw body and response headers.
// Concurrent calls for the same URL are collapsed into one request.
func (c *Client) Get(ctx context.Context, fullURL string, headers map[string]string) ([]byte, http.Header, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "provider circuit breaker rejected request", "state", c.breaker.State())
			return nil, nil, err
		}
	}

	type response struct {
		body   []byte
		header http.Header
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		body, header, reqErr := c.executeRequest(ctx, fullURL, headers)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, ErrTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		if reqErr != nil {
			return nil, reqErr
		}
		return response{body: body, header: header}, nil
	})
	if err != nil {
		return nil, nil, err
	}

	resp, ok := out.(response)
	if !ok {
		return nil, nil, crerr.Newf("unexpected response payload type %T", out)
	}
	return resp.body, resp.header, nil
}

// GetJSON fetches and decodes the body into target. A body that is not valid
// JSON fails immediately; it is never retried.
func (c *Client) GetJSON(ctx context.Context, fullURL string, headers map[string]string, target any) ([]byte, error) {
	raw, _, err := c.Get(ctx, fullURL, headers)
	if err != nil {
		return nil, err
	}
	if target != nil {
		if err := sonic.Unmarshal(raw, target); err != nil {
			return nil, crerr.Wrap(err, "decode provider payload")
		}
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string, headers map[string]string) ([]byte, http.Header, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("accept", "application/json")
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Wrapf(ErrTransient, "send request: %s", c.Redact(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			header := resp.Header
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(ErrTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, header, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(ErrTransient, "provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, nil, crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := c.backoffBase << attempt
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("provider request failed")
	}
	c.logger.WarnContext(ctx, "provider request failed", "url", c.Redact(fullURL), "error", lastErr)
	return nil, nil, lastErr
}

// Redact removes the configured token and any credential-looking query
// parameter from a value before it reaches logs or error messages.
func (c *Client) Redact(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return credentialParamRegex.ReplaceAllString(value, "$1=REDACTED")
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

func abbreviateBody(raw []byte) string {
	body := strings.TrimSpace(string(raw))
	if len(body) <= maxErrorBodyBytes {
		return body
	}
	return body[:maxErrorBodyBytes] + "...(truncated)"
}
