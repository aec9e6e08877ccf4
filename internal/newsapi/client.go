package newsapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsdesk/internal/model"
)

const (
	DefaultBaseURL  = "https://api.thenewsapi.com/v1/news/top"
	DefaultPageSize = 3
)

var ErrStatus = errors.New("unexpected status from news api")

// Getter performs a single GET and returns the response body.
// It is the seam tests use to replace the network.
type Getter interface {
	Get(ctx context.Context, rawURL string) ([]byte, error)
}

// HTTPGetter is the real Getter backed by net/http.
type HTTPGetter struct {
	client *http.Client
}

// NewHTTPGetter builds a Getter. A zero timeout leaves the transport default in place.
func NewHTTPGetter(timeout time.Duration) *HTTPGetter {
	return &HTTPGetter{client: &http.Client{Timeout: timeout}}
}

func (g *HTTPGetter) Get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting news api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// Client talks to the top-stories endpoint.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	getter   Getter
}

// NewClient wires a Client. An empty baseURL or a non-positive pageSize fall back to the defaults.
func NewClient(baseURL, token string, pageSize int, getter Getter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		baseURL:  baseURL,
		token:    token,
		pageSize: pageSize,
		getter:   getter,
	}
}

// TopURL builds the request URL for a selection. Parameters keep the order
// api_token, locale, categories, limit, page.
func (c *Client) TopURL(sel model.Selection) string {
	params := []struct{ name, value string }{
		{"api_token", c.token},
		{"locale", sel.Region},
		{"categories", sel.Category},
		{"limit", strconv.Itoa(c.pageSize)},
		{"page", strconv.Itoa(sel.Page)},
	}

	var b strings.Builder
	b.WriteString(c.baseURL)
	if strings.Contains(c.baseURL, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.name)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

// Top fetches and parses one page of top stories.
func (c *Client) Top(ctx context.Context, sel model.Selection) ([]model.Article, error) {
	body, err := c.getter.Get(ctx, c.TopURL(sel))
	if err != nil {
		return nil, err
	}
	return ParseTop(body)
}
