// Package mauticmail is the client façade for the upstream Mautic
// email-metrics REST API. Every method returns typed results decoded
// from the upstream {success, data, message} envelope.
package mauticmail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/devolta/mautic-metrics/internal/pkg/httpretry"
)

// Config holds the upstream API connection settings.
type Config struct {
	BaseURL    string
	APIKey     string
	UserID     string
	Timeout    time.Duration
	MaxRetries int
}

// Client is the metrics API client. All user-scoped requests hit
// /users/{userID}/... and carry the x-api-key header.
type Client struct {
	baseURL    string
	apiKey     string
	userID     string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a new metrics API client.
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		userID:  config.UserID,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: timeout,
		}, config.MaxRetries),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// UserID returns the configured upstream user id.
func (c *Client) UserID() string { return c.userID }

// Filters are the query filters accepted by the metrics endpoints.
// Zero values are omitted from the request.
type Filters struct {
	StartDate  string
	EndDate    string
	AccountID  string
	AccountIDs []string
	EmailID    string
	Search     string
	Page       int
	Limit      int
}

func (f Filters) values() url.Values {
	params := url.Values{}
	setParam(params, "startDate", f.StartDate)
	setParam(params, "endDate", f.EndDate)
	setParam(params, "accountId", f.AccountID)
	setParam(params, "emailId", f.EmailID)
	setParam(params, "search", f.Search)
	if len(f.AccountIDs) > 0 {
		for _, id := range f.AccountIDs {
			if cleanParamValue(id) != "" {
				params.Add("accountIds", id)
			}
		}
	}
	if f.Page > 0 {
		params.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	return params
}

// setParam adds a query parameter, dropping useless values.
func setParam(params url.Values, key, value string) {
	if v := cleanParamValue(value); v != "" {
		params.Set(key, v)
	}
}

// cleanParamValue maps empty and the literal strings "undefined" and
// "null" (serialized JS sentinels that leak out of dashboard clients)
// to the empty string so they never reach the wire.
func cleanParamValue(value string) string {
	switch value {
	case "", "undefined", "null":
		return ""
	}
	return value
}

// envelope is the upstream response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// userPath builds the user-scoped endpoint path. Requires a configured
// user id; callers check that before any request.
func (c *Client) userPath(endpoint string) string {
	return fmt.Sprintf("/users/%s%s", url.PathEscape(c.userID), endpoint)
}

// doRequest performs an authenticated request and unwraps the response
// envelope, returning the raw data payload.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, params url.Values, body interface{}) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL = reqURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Error bodies usually still carry the envelope message
		var env envelope
		if json.Unmarshal(respBody, &env) == nil && env.Message != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return env.Data, nil
}

// get performs a user-scoped GET and decodes the data payload into out.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if c.userID == "" {
		return ErrMissingUserID
	}
	data, err := c.doRequest(ctx, http.MethodGet, c.userPath(endpoint), params, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", endpoint, err)
	}
	return nil
}

// HealthCheck verifies the upstream API is reachable. Not user-scoped.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
	return err
}
