package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wonny/valuator/pkg/httputil"
	"github.com/wonny/valuator/pkg/logger"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Client talks to Yahoo Finance: the v8 chart API for daily bars and the
// quote pages for fundamentals.
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	chartBaseURL string
	statsBaseURL string
}

func NewClient(httpClient *httputil.Client, log *logger.Logger, chartBaseURL, statsBaseURL string) *Client {
	httpClient.WithHeader("User-Agent", defaultUserAgent)
	return &Client{
		httpClient:   httpClient,
		logger:       log.Component("yahoo"),
		chartBaseURL: chartBaseURL,
		statsBaseURL: statsBaseURL,
	}
}

// getJSON fetches a JSON endpoint into dest
func (c *Client) getJSON(ctx context.Context, base, path string, params url.Values, dest interface{}) error {
	fullURL := base + path
	if len(params) > 0 {
		fullURL = fmt.Sprintf("%s?%s", fullURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.httpClient.GetJSON(req, dest)
}

// getHTML fetches an HTML page
func (c *Client) getHTML(ctx context.Context, fullURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Get(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp, nil
}
