package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pfrederiksen/du-scraper/internal/logger"
)

const (
	UserAgent = "du-scraper/1.0 (github.com/pfrederiksen/du-scraper)"
)

// Options configures a Client. The zero value is usable.
type Options struct {
	// UserAgent overrides the default User-Agent header
	UserAgent string
	// Timeout bounds each request; zero keeps the library default
	Timeout time.Duration
}

// FetchError reports a failed GET, either a transport error or a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client fetches pages over HTTP
type Client struct {
	rc *resty.Client
}

// New creates a new Client
func New(opts Options) *Client {
	ua := opts.UserAgent
	if ua == "" {
		ua = UserAgent
	}

	rc := resty.New().
		SetHeader("User-Agent", ua).
		SetLogger(restyLogger{})
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	return &Client{rc: rc}
}

// Fetch performs a single GET and returns the response body.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	logger.IncrCounter("fetch.requests")
	defer func() {
		logger.RecordTiming("fetch.duration", time.Since(start))
	}()

	res, err := c.rc.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		logger.IncrCounter("fetch.errors")
		return nil, &FetchError{URL: url, Err: err}
	}

	if !res.IsSuccess() {
		logger.IncrCounter("fetch.errors")
		return nil, &FetchError{URL: url, StatusCode: res.StatusCode()}
	}

	logger.Debug("Fetched page", logger.Fields{
		"url":    url,
		"status": res.StatusCode(),
		"bytes":  len(res.Body()),
	})

	return res.Body(), nil
}

// restyLogger routes resty's internal messages into the structured logger.
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	logger.Error("resty", nil, fmt.Errorf(format, v...))
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	logger.Warn(fmt.Sprintf(format, v...), logger.Fields{"component": "resty"})
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	logger.Debug(fmt.Sprintf(format, v...), logger.Fields{"component": "resty"})
}
