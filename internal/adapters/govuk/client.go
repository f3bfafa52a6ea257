package govuk

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/PuerkitoBio/goquery"

	perr "github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/errors"
	"github.com/qmanhbeo/uk-procurement-data-pipeline/internal/platform/logger"
)

const (
	defaultUA         = "procpipe-scrape"
	defaultTimeout    = 60 * time.Second
	defaultDLTimeout  = 5 * time.Minute
	defaultMaxRetry   = 3
	defaultRetryDelay = 2 * time.Second
)

// Options configures the Client
type Options struct {
	UserAgent string

	// Timeout caps a page fetch; DownloadTimeout caps an archive download
	Timeout         time.Duration
	DownloadTimeout time.Duration

	MaxRetries int
	RetryDelay time.Duration
}

// Client fetches and parses portal pages and downloads archive files
type Client struct {
	pages *http.Client
	files *http.Client
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
	if o.DownloadTimeout <= 0 {
		o.DownloadTimeout = defaultDLTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = defaultRetryDelay
	}
	return &Client{
		pages: &http.Client{Timeout: o.Timeout},
		files: &http.Client{Timeout: o.DownloadTimeout},
		opts:  o,
		log:   *logger.Named("govuk"),
		sleep: time.Sleep,
	}
}

// GetPage fetches url and parses it as HTML, retrying transient failures
func (c *Client) GetPage(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := c.getOnce(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err

		if !perr.Retryable(err) || attempt == c.opts.MaxRetries {
			break
		}
		c.log.Warn().Str("url", url).Int("attempt", attempt).Err(err).Msg("govuk page fetch failed, retrying")
		c.sleep(c.opts.RetryDelay)
	}
	return nil, lastErr
}

func (c *Client) getOnce(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.get(ctx, c.pages, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeParse, "govuk parse %s", url)
	}
	return doc, nil
}

// Download streams url into destPath, creating parent directories. The
// file is written to a temp name and renamed on success so a dropped
// connection never leaves a truncated archive behind
func (c *Client) Download(ctx context.Context, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeWrite, "create dir %s", filepath.Dir(destPath))
	}

	resp, err := c.get(ctx, c.files, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	tmp := destPath + ".partial"
	f, err := os.Create(tmp)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeWrite, "create %s", tmp)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeFetch, "govuk download %s", url)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeWrite, "close %s", tmp)
	}
	if err := os.Rename(tmp, destPath); err != nil {
		_ = os.Remove(tmp)
		return perr.Wrapf(err, perr.ErrorCodeWrite, "rename %s", destPath)
	}
	return nil
}

func (c *Client) get(ctx context.Context, hc *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeFetch, "govuk request %s", url)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := hc.Do(req)
	if err != nil {
		// Plain fetch code so Retryable inspects the root cause instead
		// of treating every transport error as transient
		return nil, perr.Wrapf(err, perr.ErrorCodeFetch, "govuk get %s", url)
	}
	if err := perr.FromHTTPStatus(resp.StatusCode, "govuk get "+url); err != nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}
