package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance_tracker/internal/domain"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://127.0.0.1:5000/api"

// DefaultTimeout applies to every request
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int    // HTTP status code
	Code    string // "error" field of the body
	Message string // "message" field of the body
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Code)
	}
	return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Code, e.Message)
}

// NewTransaction is the body of an add request
type NewTransaction struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Category    string  `json:"category,omitempty"`
}

// Client talks to the transactions API on behalf of a Session
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New creates a client. baseURL is normalized with NormalizeBaseURL.
func New(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: NormalizeBaseURL(baseURL),
		http:    &http.Client{Timeout: DefaultTimeout},
		session: session,
	}
}

// BaseURL returns the normalized base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeBaseURL appends /api when the URL lacks it and ends the result with a slash
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = DefaultBaseURL
	}
	if !strings.Contains(raw, "/api") {
		raw = strings.TrimSuffix(raw, "/") + "/api"
	}
	return strings.TrimSuffix(raw, "/") + "/"
}

// ListTransactions returns the signed-in user's transactions, newest first
func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := c.do(ctx, http.MethodGet, "transactions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// AddTransaction creates a transaction and returns it as stored
func (c *Client) AddTransaction(ctx context.Context, tx NewTransaction) (domain.Transaction, error) {
	var resp struct {
		Transaction domain.Transaction `json:"transaction"`
	}
	if err := c.do(ctx, http.MethodPost, "transactions", tx, &resp); err != nil {
		return domain.Transaction{}, err
	}
	return resp.Transaction, nil
}

// DeleteTransaction deletes the transaction id
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "transactions/"+url.PathEscape(id), nil, nil)
}

// Summary returns the signed-in user's totals
func (c *Client) Summary(ctx context.Context) (domain.Summary, error) {
	var resp struct {
		Summary domain.Summary `json:"summary"`
	}
	if err := c.do(ctx, http.MethodGet, "transactions/summary", nil, &resp); err != nil {
		return domain.Summary{}, err
	}
	return resp.Summary, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token, ok := c.session.Credential(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		logrus.WithField("path", path).Warn("Request sent without token (user not authenticated)")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&errBody) == nil {
			apiErr.Code, apiErr.Message = errBody.Error, errBody.Message
		}
		if apiErr.Code == "" {
			apiErr.Code = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
