// Package cms reads blog content from the hosted Sanity dataset over its
// HTTP query API.
package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vukatravels/site/config"
	"github.com/vukatravels/site/models"
)

const defaultTimeout = 30 * time.Second

// Client runs GROQ queries against one project and dataset
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL overrides the query host, e.g. for a local test server
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the default http client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client for cfg. Without a read token the CDN host is
// used and only published documents are visible.
func NewClient(cfg config.CMSConfig, opts ...Option) *Client {
	host := "apicdn.sanity.io"
	if cfg.ReadToken != "" {
		host = "api.sanity.io"
	}

	c := &Client{
		baseURL: fmt.Sprintf("https://%s.%s/v%s/data/query/%s",
			cfg.ProjectID, host, cfg.APIVersion, cfg.Dataset),
		token:      cfg.ReadToken,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

// Query runs groq with params and decodes the result into out. Param values
// are JSON encoded as the API expects.
func (c *Client) Query(ctx context.Context, groq string, params map[string]interface{}, out interface{}) error {
	q := url.Values{}
	q.Set("query", groq)
	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode param %s: %w", name, err)
		}
		q.Set("$"+name, string(encoded))
	}
	if c.token != "" {
		q.Set("perspective", "drafts")
	} else {
		q.Set("perspective", "published")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build query request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to query cms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cms query returned status %d: %s", resp.StatusCode, body)
	}

	var qr queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return fmt.Errorf("failed to decode cms response: %w", err)
	}
	if len(qr.Result) == 0 {
		return nil
	}
	return json.Unmarshal(qr.Result, out)
}

// ListPosts returns published posts, newest first
func (c *Client) ListPosts(ctx context.Context) ([]models.PostSummary, error) {
	posts := []models.PostSummary{}
	if err := c.Query(ctx, postsQuery, nil, &posts); err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.PostSummary{}
	}
	return posts, nil
}

// GetPost returns the post with slug or models.ErrNotFound
func (c *Client) GetPost(ctx context.Context, slug string) (*models.Post, error) {
	var post *models.Post
	if err := c.Query(ctx, postBySlugQuery, map[string]interface{}{"slug": slug}, &post); err != nil {
		return nil, err
	}
	if post == nil {
		return nil, models.ErrNotFound
	}
	return post, nil
}
