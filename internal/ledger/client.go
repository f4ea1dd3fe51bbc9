// Package ledger talks to the remote ledger service that the capture
// pipeline feeds. It owns the network round-trip and is the only place
// where the loosely-typed API payload is coerced into core types.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ledgerdash/internal/auth"
	"ledgerdash/internal/core"
)

// FetchError reports a ledger request that did not complete with a 2xx
// response. Status is zero when the transport itself failed. The fetch
// is never retried here; the caller decides whether to re-issue.
type FetchError struct {
	Status int
	Op     string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("ledger %s failed: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("ledger %s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client is a thin HTTP client for the ledger API. The credential is
// passed per call rather than held on the client, so no request can
// slip past the expiry gate with a stale token.
type Client struct {
	baseURL string
	http    *http.Client
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithClock replaces the expiry-gate clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a ledger client for the given API base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPeriod reads the per-day transaction list for one subject and
// calendar period. The credential gates the call: an expired token
// refuses the fetch before any network traffic. A response that parses
// but is missing the daily_stats array degrades to an empty period
// rather than an error, so the dashboard shows "no data" instead of
// crashing.
func (c *Client) FetchPeriod(ctx context.Context, token string, month, year int) ([]core.DailyBucket, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}

	expired, err := auth.IsExpired(token, c.now())
	if err != nil {
		return nil, err
	}
	if expired {
		return nil, auth.ErrTokenExpired
	}

	subject, err := auth.DecodeSubject(token)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("phone_number", subject)
	query.Set("month", strconv.Itoa(month))
	query.Set("year", strconv.Itoa(year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/stats/daily?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build period request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Op: "fetch period", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &FetchError{Status: resp.StatusCode, Op: "fetch period"}
	}

	var payload periodResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &FetchError{Op: "fetch period", Err: fmt.Errorf("decode response: %w", err)}
	}

	rawDays, ok := payload.days()
	if !ok {
		slog.WarnContext(ctx, "Ledger response missing daily_stats array, treating period as empty",
			"month", month, "year", year)
		return []core.DailyBucket{}, nil
	}

	days := make([]core.DailyBucket, 0, len(rawDays))
	for _, raw := range rawDays {
		days = append(days, raw.normalize())
	}
	return days, nil
}

// DeleteTransaction removes one transaction from the ledger. The caller
// must re-fetch the affected period afterwards; aggregated totals are
// never patched in place.
func (c *Client) DeleteTransaction(ctx context.Context, token, id string) error {
	return c.mutate(ctx, token, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil, "delete transaction")
}

// UpdateItem is one line of a transaction update.
type UpdateItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Type     string  `json:"type"`
}

// UpdateRequest is the patch body the ledger service expects.
type UpdateRequest struct {
	Items []UpdateItem `json:"items"`
}

// UpdateTransaction patches one transaction. As with deletes, the
// affected period must be re-fetched afterwards.
func (c *Client) UpdateTransaction(ctx context.Context, token, id string, update UpdateRequest) error {
	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}
	return c.mutate(ctx, token, http.MethodPatch, "/transactions/"+url.PathEscape(id), body, "update transaction")
}

func (c *Client) mutate(ctx context.Context, token, method, path string, body []byte, op string) error {
	expired, err := auth.IsExpired(token, c.now())
	if err != nil {
		return err
	}
	if expired {
		return auth.ErrTokenExpired
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Status: resp.StatusCode, Op: op}
	}
	return nil
}
