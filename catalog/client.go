package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/teranos/bomx/cache"
	"github.com/teranos/bomx/errors"
	"github.com/teranos/bomx/internal/httpclient"
)

// Config holds part catalog client configuration
type Config struct {
	Token             string
	BaseURL           string
	RequestsPerSecond float64
	MaxAttempts       int           // Retry ceiling for network/rate-limit failures
	SimilarPartsLimit int           // Candidate alternatives requested per lookup
	CacheTTL          time.Duration // 0 = cache entries never expire
	Cache             *cache.Cache  // Required: every lookup is keyed through the cache
	Logger            *zap.SugaredLogger
}

// Client queries the supplier catalog for part records. All lookups pass
// through the shared cache keyed by normalized MPN, so repeated and
// concurrent lookups for one part issue at most one outbound request per TTL
// window.
type Client struct {
	config     Config
	httpClient *httpclient.SaferClient
	limiter    *rate.Limiter
	logger     *zap.SugaredLogger
}

// cachedLookup wraps a lookup result for cache storage. Not-found is an
// ordinary, cacheable outcome; only transport failures bypass the cache.
type cachedLookup struct {
	Found bool        `json:"found"`
	Part  *PartRecord `json:"part,omitempty"`
}

// NewClient creates a catalog client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.nexar.com/graphql"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5.0
	}
	if cfg.SimilarPartsLimit <= 0 {
		cfg.SimilarPartsLimit = 10
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Client{
		config:     cfg,
		httpClient: httpclient.NewSaferClient(30 * time.Second),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		logger:     logger,
	}
}

// Lookup returns the catalog record for mpn. An MPN absent from the catalog
// yields errors.ErrNotFound, never a generic failure; callers treat that as
// an ordinary outcome and attach an item-level note. Network and rate-limit
// failures are retried with exponential backoff up to the attempt ceiling.
func (c *Client) Lookup(ctx context.Context, mpn string) (*PartRecord, error) {
	if strings.TrimSpace(mpn) == "" {
		return nil, errors.Wrap(errors.ErrInvalidRequest, "empty MPN")
	}

	normalized := cache.NormalizeMPN(mpn)
	key := cache.Fingerprint("catalog.lookup", normalized)

	raw, err := c.config.Cache.GetOrFetch(ctx, key, c.config.CacheTTL, func(ctx context.Context) ([]byte, error) {
		result, err := c.fetchPart(ctx, normalized)
		if err != nil {
			return nil, err
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, err
	}

	var result cachedLookup
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, errors.Wrap(err, "corrupt cache entry for catalog lookup")
	}

	if !result.Found {
		return nil, errors.NewNotFoundError("MPN %s not in catalog", normalized)
	}
	return result.Part, nil
}

// fetchPart performs the outbound GraphQL search with retries
func (c *Client) fetchPart(ctx context.Context, mpn string) (*cachedLookup, error) {
	body, err := json.Marshal(graphqlRequest{
		Query: searchMPNQuery,
		Variables: map[string]interface{}{
			"mpn":   mpn,
			"limit": c.config.SimilarPartsLimit,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal catalog query")
	}

	backoff := 500 * time.Millisecond
	var lastErr error

	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Debugw("retrying catalog lookup",
				"mpn", mpn, "attempt", attempt, "max_attempts", c.config.MaxAttempts, "backoff", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "catalog rate limiter")
		}

		result, err := c.doRequest(ctx, body)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, errors.Wrapf(err, "catalog lookup for %s", mpn)
		}
		c.logger.Warnw("catalog lookup failed",
			"mpn", mpn, "attempt", attempt, "error", err)
	}

	return nil, errors.Wrapf(
		errors.Wrap(errors.ErrServiceUnavailable, lastErr.Error()),
		"catalog lookup for %s failed after %d attempts", mpn, c.config.MaxAttempts)
}

// doRequest performs one GraphQL POST and decodes the response
func (c *Client) doRequest(ctx context.Context, body []byte) (*cachedLookup, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("token", c.config.Token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, retryableError(errors.Wrap(err, "catalog request failed"))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, retryableError(errors.Wrap(err, "failed to read catalog response"))
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, retryableError(errors.Newf("catalog returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf("catalog returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded graphqlResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, errors.Wrap(err, "failed to decode catalog response")
	}
	if len(decoded.Errors) > 0 {
		return nil, errors.Newf("catalog returned errors: %s", decoded.Errors[0].Message)
	}
	if decoded.Data == nil || len(decoded.Data.SupSearchMpn.Results) == 0 {
		return &cachedLookup{Found: false}, nil
	}

	part := decoded.Data.SupSearchMpn.Results[0].Part.toRecord()
	return &cachedLookup{Found: true, Part: part}, nil
}

// retryableErr marks transport-level failures worth retrying
type retryableErr struct {
	error
}

func retryableError(err error) error {
	return retryableErr{err}
}

func (e retryableErr) Unwrap() error {
	return e.error
}

// isRetryable reports whether the lookup failure is transient
func isRetryable(err error) bool {
	var r retryableErr
	if errors.As(err, &r) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// SetHTTPClient overrides the HTTP client. Only for tests talking to
// httptest servers on loopback.
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = httpclient.WrapClient(client)
}
