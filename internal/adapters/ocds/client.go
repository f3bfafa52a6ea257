package ocds

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
)

const (
	defaultUA         = "procpipe-extract"
	defaultTimeout    = 30 * time.Second
	defaultMaxRetry   = 3
	defaultRetryDelay = 2 * time.Second

	// maxBody caps a single package response; notices are a few hundred KB
	// at most, so anything larger is a broken endpoint, not data
	maxBody = 32 << 20
)

// Options configures the Client
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Client fetches OCDS release packages with bounded retries on
// transient failures
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	sleep func(time.Duration)
}

// NewClient creates a Client with sane defaults
func NewClient(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named("ocds"),
		sleep: time.Sleep,
	}
}

// FetchPackage GETs one package URI and decodes it. Transient transport
// failures and retryable statuses are retried up to MaxRetries with a
// fixed delay; a non-JSON body is a parse error and is not retried
func (c *Client) FetchPackage(ctx context.Context, uri string) (*Package, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pkg, err := c.fetchOnce(ctx, uri)
		if err == nil {
			return pkg, nil
		}
		lastErr = err

		if !perr.Retryable(err) || attempt == c.opts.MaxRetries {
			break
		}
		c.log.Warn().
			Str("uri", uri).
			Int("attempt", attempt).
			Err(err).
			Msg("ocds fetch failed, retrying")
		c.sleep(c.opts.RetryDelay)
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, uri string) (*Package, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeFetch, "ocds request %s", uri)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Wrap as a plain fetch error so Retryable classifies the root
		// cause; a DNS miss or bad URL must not burn the retry budget
		return nil, perr.Wrapf(err, perr.ErrorCodeFetch, "ocds get %s", uri)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := perr.FromHTTPStatus(resp.StatusCode, "ocds get "+uri); err != nil {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, err
	}

	var pkg Package
	dec := json.NewDecoder(io.LimitReader(resp.Body, maxBody))
	if err := dec.Decode(&pkg); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeParse, "ocds decode %s", uri)
	}
	return &pkg, nil
}
