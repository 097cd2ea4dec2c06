package jira

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pmtools/jiradates/internal/types"
)

// ErrMaxRetries marks a call abandoned after exhausting rate-limit retries.
var ErrMaxRetries = errors.New("max retries exceeded")

const (
	// minCallInterval is the minimum spacing between consecutive remote
	// calls, measured from the end of the previous call.
	minCallInterval = 200 * time.Millisecond

	// maxAttempts is the total number of tries for a rate-limited call.
	maxAttempts = 3

	// retryBaseDelay seeds the exponential backoff between retries.
	retryBaseDelay = time.Second

	apiPrefix = "/rest/api/3"
)

// Client is the gateway for all calls against the tracker's REST interface.
// It owns pacing and retry; callers never talk to the tracker directly.
type Client struct {
	baseURL string
	email   string
	token   string
	httpc   *http.Client
	sink    types.Sink

	mu       sync.Mutex
	lastCall time.Time

	// Injection points for tests.
	now   func() time.Time
	sleep func(time.Duration)
	timer backoff.Timer
}

// NewClient returns a gateway for the given tracker instance.
//
// TLS certificate verification is disabled deliberately: the tool targets
// internal deployments behind self-signed certificates. Do not reuse this
// transport for public endpoints.
func NewClient(baseURL, email, token string) *Client {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		email:   email,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second, Transport: transport},
		sink:    types.DiscardSink{},
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// SetSink routes the client's retry warnings to the given sink.
func (c *Client) SetSink(s types.Sink) {
	if s != nil {
		c.sink = s
	}
}

// BaseURL returns the tracker base URL the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Myself returns the authenticated user. Used as a connection test.
func (c *Client) Myself(ctx context.Context) (*User, error) {
	body, err := c.do(ctx, http.MethodGet, apiPrefix+"/myself", nil, nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("parse myself response: %w", err)
	}
	return &u, nil
}

// Issue fetches a single issue snapshot by key.
func (c *Client) Issue(ctx context.Context, key string) (*Issue, error) {
	body, err := c.do(ctx, http.MethodGet, apiPrefix+"/issue/"+url.PathEscape(key), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("get issue %s: %w", key, err)
	}
	var issue Issue
	if err := json.Unmarshal(body, &issue); err != nil {
		return nil, fmt.Errorf("parse issue %s: %w", key, err)
	}
	return &issue, nil
}

// Fields fetches the full field-definition list, in tracker order.
func (c *Client) Fields(ctx context.Context) ([]Field, error) {
	body, err := c.do(ctx, http.MethodGet, apiPrefix+"/field", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	var fields []Field
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("parse field list: %w", err)
	}
	return fields, nil
}

// Search runs a JQL query and returns one page of results.
func (c *Client) Search(ctx context.Context, jql string, startAt, maxResults int, fields string) (*SearchResult, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("startAt", fmt.Sprintf("%d", startAt))
	query.Set("maxResults", fmt.Sprintf("%d", maxResults))
	if fields != "" {
		query.Set("fields", fields)
	}

	body, err := c.do(ctx, http.MethodGet, apiPrefix+"/search", query, nil)
	if err != nil {
		return nil, fmt.Errorf("search issues: %w", err)
	}
	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return &result, nil
}

// UpdateField sets a single field on an issue. Each field update is an
// independent call; there is no multi-field atomicity.
func (c *Client) UpdateField(ctx context.Context, key, fieldID string, value any) error {
	payload := map[string]any{
		"fields": map[string]any{fieldID: value},
	}
	_, err := c.do(ctx, http.MethodPut, apiPrefix+"/issue/"+url.PathEscape(key), nil, payload)
	if err != nil {
		return fmt.Errorf("update %s on %s: %w", fieldID, key, err)
	}
	return nil
}

// do executes one remote call with pacing and rate-limit retry.
//
// Rate-limited failures (HTTP 429 or an error message mentioning rate
// limiting) are retried up to maxAttempts total with exponential backoff
// and jitter. Any other failure propagates immediately. Exhausting the
// retries yields an error matching ErrMaxRetries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	var out []byte

	op := func() error {
		c.pace()
		body, err := c.roundTrip(ctx, method, path, query, payload)
		c.markCallEnd()
		if err != nil {
			if isRateLimited(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		out = body
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.sink.Emit(types.Record{
			Kind: types.KindWarning,
			Text: fmt.Sprintf("Rate limited, waiting %.1fs before retry", wait.Seconds()),
		})
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(newRetryBackoff(), maxAttempts-1), ctx)
	if err := backoff.RetryNotifyWithTimer(op, bo, notify, c.timer); err != nil {
		if isRateLimited(err) {
			return nil, fmt.Errorf("%w (%d attempts): %v", ErrMaxRetries, maxAttempts, err)
		}
		return nil, err
	}
	return out, nil
}

// newRetryBackoff builds the retry schedule: 1s doubling per attempt with
// jitter. BackOff implementations are stateful; always return a fresh one.
func newRetryBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.5
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 0
	return bo
}

// pace blocks until minCallInterval has elapsed since the previous call
// ended.
func (c *Client) pace() {
	c.mu.Lock()
	last := c.lastCall
	c.mu.Unlock()

	if last.IsZero() {
		return
	}
	if wait := minCallInterval - c.now().Sub(last); wait > 0 {
		c.sleep(wait)
	}
}

func (c *Client) markCallEnd() {
	c.mu.Lock()
	c.lastCall = c.now()
	c.mu.Unlock()
}

// roundTrip performs a single HTTP exchange, no retry.
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       truncate(string(body), 300),
		}
	}
	return body, nil
}

// isRateLimited classifies an error as a transient rate-limit response.
func isRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests") ||
		strings.Contains(msg, "429")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
