// Package dataclient talks to the hosted data service: a PostgREST table API
// under /rest/v1 and a GoTrue auth API under /auth/v1.
package dataclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/martin5169/financial-dashboard/internal/domain"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/auth"
)

const (
	restPath = "/rest/v1"
	authPath = "/auth/v1"

	defaultAppName = "financial-dashboard"
	defaultTimeout = 15 * time.Second
)

// Observer receives one call per round trip. status is 0 when no response arrived.
type Observer interface {
	ObserveDataRequest(method, resource string, status int, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	URL        string
	APIKey     string
	AppName    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
}

// Client is the process-wide handle to the hosted data service. It is safe
// for concurrent use. Every call is a single request; nothing is retried or cached.
type Client struct {
	baseURL  *url.URL
	apiKey   string
	appName  string
	http     *http.Client
	observer Observer
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("data service URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("data service key is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse data service URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("data service URL must be http or https, got %q", cfg.URL)
	}

	if cfg.AppName == "" {
		cfg.AppName = defaultAppName
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:  base,
		apiKey:   cfg.APIKey,
		appName:  cfg.AppName,
		http:     httpClient,
		observer: cfg.Observer,
	}, nil
}

// From starts a query against table.
func (c *Client) From(table string) *Query {
	return &Query{client: c, table: table, method: http.MethodGet}
}

// Auth returns the identity API.
func (c *Client) Auth() *AuthClient {
	return &AuthClient{client: c}
}

// Ping checks that the table API answers and accepts the key.
func (c *Client) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodHead, restPath+"/", nil, nil)
	if err != nil {
		return err
	}
	return c.do(req, "ping", nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = encodeQuery(query)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	bearer := c.apiKey
	if token, ok := auth.AccessToken(ctx); ok && !guestScoped(ctx) {
		bearer = token
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("x-application-name", c.appName)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// do sends req and decodes a successful body into dest when dest is non-nil.
func (c *Client) do(req *http.Request, resource string, dest any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(req.Method, resource, 0, start)
		return fmt.Errorf("%s %s: %w", req.Method, resource, err)
	}
	defer resp.Body.Close()
	c.observe(req.Method, resource, resp.StatusCode, start)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", req.Method, resource, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return parseError(resp.StatusCode, data)
	}

	if dest == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", req.Method, resource, err)
	}

	return nil
}

func (c *Client) observe(method, resource string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveDataRequest(method, resource, status, time.Since(start))
	}
}

// encodeQuery encodes params keeping PostgREST operators readable.
func encodeQuery(params url.Values) string {
	encoded := params.Encode()
	return strings.NewReplacer("%2A", "*", "%2C", ",", "%28", "(", "%29", ")").Replace(encoded)
}

// guestScoped reports whether the caller has been resolved to the guest
// scope. Its token, if any, was rejected and must not reach the table API.
func guestScoped(ctx context.Context) bool {
	scope, ok := domain.ScopeFrom(ctx)
	return ok && scope.IsGuest()
}
