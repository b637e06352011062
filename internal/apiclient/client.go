// Package apiclient is a Go client for the record manager's REST API.
//
// Every response is an envelope whose code decides success: anything other
// than SUCCESS comes back as an *APIError, whatever the HTTP status was.
// Requests are not retried unless RetryMax is raised; a failed mutation
// should be resubmitted by the caller, not replayed.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-retryablehttp"
)

// codeSuccess is the envelope code of a successful response.
const codeSuccess = "SUCCESS"

// Config configures a Client. LoadConfig fills it from the environment.
type Config struct {
	// BaseURL is the server root (default: http://localhost:8080)
	BaseURL string `env:"CUTDESK_API_URL" envDefault:"http://localhost:8080"`

	// APIKey is sent as X-API-Key when set
	APIKey string `env:"CUTDESK_API_KEY"`

	// Role is sent as X-Role when set, narrowing the columns returned
	Role string `env:"CUTDESK_ROLE"`

	// RetryMax is the number of retries on connection errors and 5xx (default: 0)
	RetryMax int `env:"CUTDESK_API_RETRY_MAX" envDefault:"0"`

	// Timeout bounds each attempt (default: 30s)
	Timeout time.Duration `env:"CUTDESK_API_TIMEOUT" envDefault:"30s"`
}

// LoadConfig reads the client configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("apiclient config: %w", err)
	}
	return cfg, nil
}

// APIError is a non-SUCCESS envelope.
type APIError struct {
	Status  int               // HTTP status, informational only
	Code    string            // envelope code, e.g. NOT_FOUND
	Message string            // user-facing message
	Errors  map[string]string // per-field messages for VALIDATION_FAILED
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// IsCode reports whether err is an *APIError with the given code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

type envelope struct {
	Code    string            `json:"code"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Total   *int64            `json:"total"`
	Errors  map[string]string `json:"errors"`
}

// Client calls the REST API.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	apiKey  string
	role    string
}

// New builds a client. The cookie jar keeps any session cookie the server
// sets, the way a browser sends credentials.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = max(cfg.RetryMax, 0)
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.Logger = slog.Default()
	rc.HTTPClient.Jar = jar
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}
	// The envelope carries the outcome; only hand back the last response.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    rc.StandardClient(),
		baseURL: base,
		apiKey:  cfg.APIKey,
		role:    cfg.Role,
	}, nil
}

// WithRole returns a copy of c that views data as role.
func (c *Client) WithRole(role string) *Client {
	cp := *c
	cp.role = role
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*int64, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if c.role != "" {
		req.Header.Set("X-Role", c.role)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Code: "BAD_RESPONSE", Message: fmt.Sprintf("%s %s: undecodable response: %v", method, path, err)}
	}
	if env.Code != codeSuccess {
		return nil, &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message, Errors: env.Errors}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return env.Total, nil
}
