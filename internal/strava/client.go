// Package strava fetches recent running activities from the Strava API and
// compresses them to the shape the analyzer and recommender consume.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/joshdurbin/runcoach/internal/logging"
	"github.com/joshdurbin/runcoach/internal/models"
)

const (
	baseURL        = "https://www.strava.com/api/v3"
	requestTimeout = 30 * time.Second

	// MaxActivities bounds the recent window kept for analysis.
	MaxActivities = 15

	// Fetch a little more than we keep since non-run activities are
	// filtered out after the fact.
	perPage = 2 * MaxActivities
)

// Default retry settings
const (
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 30 * time.Second
)

// ErrUnauthorized indicates the API rejected the access token.
var ErrUnauthorized = fmt.Errorf("strava access token rejected")

// ErrRateLimited indicates the API returned a 429 after retries were exhausted.
var ErrRateLimited = fmt.Errorf("strava rate limited")

// APIActivity is a Strava activity as returned by the listing endpoint.
type APIActivity struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Distance       float64   `json:"distance"`     // meters
	MovingTime     int       `json:"moving_time"`  // seconds
	ElapsedTime    int       `json:"elapsed_time"` // seconds
	Type           string    `json:"type"`
	SportType      string    `json:"sport_type"`
	StartDateLocal time.Time `json:"start_date_local"`
	AverageSpeed   float64   `json:"average_speed"` // m/s
}

// IsRun reports whether the activity counts as a run.
func (a APIActivity) IsRun() bool {
	return a.Type == "Run" || a.Type == "VirtualRun"
}

// Compress maps an API activity to the minimal per-run attribute set.
func Compress(a APIActivity) models.Activity {
	local := a.StartDateLocal
	return models.Activity{
		Date:            local.Format("2006-01-02"),
		StartTime:       local.Format("15:04"),
		Weekday:         int(local.Weekday()),
		DurationMinutes: a.ElapsedTime / 60,
		StartHour:       local.Hour(),
		DistanceKm:      math.Round(a.Distance/1000*100) / 100,
		AvgSpeedKmh:     math.Round(a.AverageSpeed*3.6*100) / 100,
	}
}

// RetryConfig holds retry/backoff settings
type RetryConfig struct {
	MaxRetries int
	MinWait    time.Duration
	MaxWait    time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: defaultMaxRetries,
		MinWait:    defaultInitialBackoff,
		MaxWait:    defaultMaxBackoff,
	}
}

// Client is a Strava API client with automatic retry and backoff.
type Client struct {
	httpClient *retryablehttp.Client
	baseURL    string
}

// NewClient creates a new Strava API client with the default retry config.
func NewClient() *Client {
	return newClientWithConfig(baseURL, DefaultRetryConfig())
}

// NewClientWithRetryConfig creates a client with custom retry settings.
func NewClientWithRetryConfig(cfg RetryConfig) *Client {
	return newClientWithConfig(baseURL, cfg)
}

// NewClientWithBaseURL creates a client with a custom base URL (for testing).
func NewClientWithBaseURL(customBaseURL string) *Client {
	return newClientWithConfig(customBaseURL, DefaultRetryConfig())
}

// WithRetryConfig sets custom retry configuration (useful for testing).
func (c *Client) WithRetryConfig(cfg RetryConfig) *Client {
	c.httpClient.RetryMax = cfg.MaxRetries
	c.httpClient.RetryWaitMin = cfg.MinWait
	c.httpClient.RetryWaitMax = cfg.MaxWait
	return c
}

func newClientWithConfig(baseURL string, cfg RetryConfig) *Client {
	log := logging.Logger
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = cfg.MinWait
	client.RetryWaitMax = cfg.MaxWait
	client.HTTPClient.Timeout = requestTimeout
	client.Logger = &logging.LeveledLogger{}

	// Retry on 429 and 5xx and connection errors; auth and client errors
	// are never retryable at this layer.
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if err != nil {
			return true, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return true, nil
		}

		if resp.StatusCode >= 500 {
			return true, nil
		}

		return false, nil
	}

	// Honor Retry-After on 429s, exponential backoff otherwise.
	client.Backoff = func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					wait := time.Duration(seconds) * time.Second
					if wait > max {
						wait = max
					}
					log.Info().
						Dur("wait", wait).
						Int("attempt", attemptNum).
						Msg("rate limited, waiting for Retry-After header")
					return wait
				}
			}
		}

		wait := min * time.Duration(1<<uint(attemptNum))
		if wait > max {
			wait = max
		}
		return wait
	}

	client.RequestLogHook = func(logger retryablehttp.Logger, req *http.Request, retry int) {
		if retry > 0 {
			log.Info().
				Str("url", req.URL.Path).
				Int("attempt", retry+1).
				Msg("retrying request")
		}

		if logging.IsTraceEnabled() {
			log.Debug().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Str("headers", formatHeaders(req.Header)).
				Msg("request headers")
		}
	}

	client.ResponseLogHook = func(logger retryablehttp.Logger, resp *http.Response) {
		logRateLimitUsage(resp)

		if logging.IsTraceEnabled() {
			log.Debug().
				Int("status", resp.StatusCode).
				Str("url", resp.Request.URL.Path).
				Str("headers", formatHeaders(resp.Header)).
				Msg("response headers")
		}
	}

	return &Client{
		httpClient: client,
		baseURL:    baseURL,
	}
}

// RecentRuns fetches the athlete's recent activities, keeps only runs, and
// returns at most MaxActivities compressed entries, newest first.
func (c *Client) RecentRuns(ctx context.Context, accessToken string) ([]models.Activity, error) {
	log := logging.Logger

	url := fmt.Sprintf("%s/athlete/activities?per_page=%d", c.baseURL, perPage)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		// Retries exhausted
		return nil, ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var raw []APIActivity
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	runs := make([]models.Activity, 0, len(raw))
	for _, a := range raw {
		if !a.IsRun() {
			continue
		}
		runs = append(runs, Compress(a))
		if len(runs) == MaxActivities {
			break
		}
	}

	log.Debug().
		Int("fetched", len(raw)).
		Int("runs_kept", len(runs)).
		Msg("fetched recent activities")

	return runs, nil
}

// logRateLimitUsage surfaces Strava's rate limit headers at debug level so
// a -v run shows remaining quota.
func logRateLimitUsage(resp *http.Response) {
	usage := resp.Header.Get("X-RateLimit-Usage")
	limit := resp.Header.Get("X-RateLimit-Limit")
	if usage == "" && limit == "" {
		return
	}

	logging.Logger.Debug().
		Str("usage", usage).
		Str("limit", limit).
		Int("status", resp.StatusCode).
		Msg("strava rate limit")
}

// formatHeaders formats HTTP headers for logging, redacting sensitive values
func formatHeaders(headers http.Header) string {
	if len(headers) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("{")
	first := true
	for _, k := range keys {
		if !first {
			sb.WriteString(", ")
		}
		first = false

		value := strings.Join(headers[k], ", ")
		lowerKey := strings.ToLower(k)
		if lowerKey == "authorization" || lowerKey == "cookie" || lowerKey == "set-cookie" {
			value = "[REDACTED]"
		}

		sb.WriteString(fmt.Sprintf("%s: %q", k, value))
	}
	sb.WriteString("}")
	return sb.String()
}
