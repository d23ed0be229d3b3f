// Package httpx is the shared outbound HTTP client for upstream APIs
// (ORCID, OpenAlex, Unpaywall). Rate-limited responses are retried with a
// bounded linear backoff.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"science-ecosystem/metrics"
)

// Policy controls how often and how long a request is retried.
type Policy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	RetryableStatuses []int
}

// DefaultPolicy retries 429 up to three attempts, waiting 1s then 2s.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		BaseDelay:         time.Second,
		MaxDelay:          5 * time.Second,
		RetryableStatuses: []int{http.StatusTooManyRequests},
	}
}

// StatusError is returned for any non-2xx answer. Attempts is the number of
// requests made, so a rate-limit failure shows how often it was retried.
type StatusError struct {
	URL        string
	StatusCode int
	Attempts   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s answered %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client wraps an *http.Client with the retry policy.
type Client struct {
	HTTP   *http.Client
	Policy Policy
	Logger *zap.Logger
	// NewTimer overrides the backoff timer; tests use it to skip sleeping.
	NewTimer func() backoff.Timer
}

// UserAgent is sent with every upstream request.
const UserAgent = "ScienceEcosystem/1.0 (+https://scienceecosystem.org)"

// userAgentTransport fügt jeder Anfrage einen User-Agent-Header hinzu.
type userAgentTransport struct {
	Transport http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", UserAgent)
	}
	return t.Transport.RoundTrip(req)
}

// New returns a client with a 30s request timeout.
func New(policy Policy, log *zap.Logger) *Client {
	return &Client{
		HTTP: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &userAgentTransport{Transport: http.DefaultTransport},
		},
		Policy: policy,
		Logger: log,
	}
}

// linearBackOff waits base * attempt, capped at max.
type linearBackOff struct {
	base, max time.Duration
	attempt   int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	d := b.base * time.Duration(b.attempt)
	if b.max > 0 && d > b.max {
		d = b.max
	}
	return d
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	attempts := c.Policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	lin := &linearBackOff{base: c.Policy.BaseDelay, max: c.Policy.MaxDelay}
	return backoff.WithContext(backoff.WithMaxRetries(lin, uint64(attempts-1)), ctx)
}

// Do sends the request built by newReq, rebuilding it for every attempt. On
// success the caller owns the response body.
func (c *Client) Do(ctx context.Context, newReq func(context.Context) (*http.Request, error)) (*http.Response, error) {
	var (
		resp     *http.Response
		attempts int
	)

	op := func() error {
		attempts++
		req, err := newReq(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		r, err := c.HTTP.Do(req)
		if err != nil {
			return backoff.Permanent(err)
		}
		if r.StatusCode >= 200 && r.StatusCode < 300 {
			resp = r
			return nil
		}
		_, _ = io.Copy(io.Discard, r.Body)
		r.Body.Close()

		se := &StatusError{URL: req.URL.Redacted(), StatusCode: r.StatusCode, Attempts: attempts}
		if slices.Contains(c.Policy.RetryableStatuses, r.StatusCode) {
			return se
		}
		return backoff.Permanent(se)
	}

	notify := func(err error, wait time.Duration) {
		var se *StatusError
		if errors.As(err, &se) {
			if u, perr := url.Parse(se.URL); perr == nil {
				metrics.UpstreamRetries.WithLabelValues(u.Host).Inc()
			}
		}
		if c.Logger != nil {
			c.Logger.Warn("Upstream rate limited, retrying", zap.Error(err), zap.Duration("wait", wait))
		}
	}

	var timer backoff.Timer
	if c.NewTimer != nil {
		timer = c.NewTimer()
	}
	if err := backoff.RetryNotifyWithTimer(op, c.backOff(ctx), notify, timer); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetJSON issues a GET and decodes a 2xx JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	resp, err := c.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		return req, nil
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}
