package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"salon-client/internal/domain"
	infraconfig "salon-client/internal/infrastructure/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const maxBodyBytes = 8 << 20

// TokenSource supplies the bearer token and refreshes it after a 401.
type TokenSource interface {
	AccessToken(ctx context.Context) string
	RefreshAccessToken(ctx context.Context) (bool, error)
}

// Request is one logical backend call. Retries bounds the number of extra
// attempts made after a 429; every other failure is returned at once.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	JSON      any
	Form      *Multipart
	Retries   int
	BaseDelay time.Duration
}

type Client struct {
	HTTP      *http.Client
	BaseURL   string
	Auth      TokenSource
	Timeout   time.Duration
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Log       *zap.Logger
	// Timer drives backoff waits; nil uses real timers.
	Timer backoff.Timer
}

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (e envelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (c *Client) DoJSON(ctx context.Context, r Request, out any) error {
	log := c.logger()
	body, contentType, err := encodeBody(r)
	if err != nil {
		return fmt.Errorf("%s %s: encode body: %w", r.Method, r.Path, err)
	}

	pol := &retryAfterBackOff{
		retries: r.Retries,
		base:    firstPositive(r.BaseDelay, c.BaseDelay, infraconfig.DefaultBackoffBase),
		max:     firstPositive(c.MaxDelay, infraconfig.DefaultBackoffCap),
	}
	op := func() error {
		raw, err := c.attempt(ctx, r, body, contentType)
		if err != nil {
			var rl *domain.RateLimitError
			if errors.As(err, &rl) {
				pol.retryAfter = rl.RetryAfter
				return err
			}
			return backoff.Permanent(err)
		}
		if err := decode(raw, out); err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	notify := func(err error, wait time.Duration) {
		log.Warn("httpx.retry", zap.String("method", r.Method), zap.String("path", r.Path),
			zap.Duration("wait", wait), zap.Error(err))
	}
	return backoff.RetryNotifyWithTimer(op, backoff.WithContext(pol, ctx), notify, c.Timer)
}

// attempt sends the request once, refreshing the token and resending once on 401.
func (c *Client) attempt(ctx context.Context, r Request, body []byte, contentType string) ([]byte, error) {
	status, header, raw, err := c.send(ctx, r, body, contentType)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized && c.Auth != nil {
		ok, rerr := c.Auth.RefreshAccessToken(ctx)
		if rerr != nil {
			c.logger().Warn("httpx.refresh_failed", zap.Error(rerr))
		}
		if ok {
			status, header, raw, err = c.send(ctx, r, body, contentType)
			if err != nil {
				return nil, err
			}
		}
	}
	switch {
	case status == http.StatusTooManyRequests:
		return nil, &domain.RateLimitError{RetryAfter: parseRetryAfter(header.Get("Retry-After"), time.Now())}
	case status < 200 || status > 299:
		var env envelope
		_ = json.Unmarshal(raw, &env)
		return nil, &domain.HTTPError{Status: status, Message: env.text()}
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, r Request, body []byte, contentType string) (int, http.Header, []byte, error) {
	timeout := firstPositive(c.Timeout, infraconfig.DefaultRequestTimeout)
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u, err := c.url(r)
	if err != nil {
		return 0, nil, nil, err
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(actx, r.Method, u, rd)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Auth != nil {
		if tok := c.Auth.AccessToken(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return 0, nil, nil, c.classify(ctx, actx, r, timeout, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, nil, c.classify(ctx, actx, r, timeout, err)
	}
	return resp.StatusCode, resp.Header, raw, nil
}

func (c *Client) logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

func (c *Client) classify(parent, actx context.Context, r Request, timeout time.Duration, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	var ne net.Error
	if errors.Is(actx.Err(), context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &domain.TimeoutError{Op: r.Method + " " + r.Path, Timeout: timeout}
	}
	return fmt.Errorf("%s %s: do request: %w", r.Method, r.Path, err)
}

func (c *Client) url(r Request) (string, error) {
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(r.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}
	return u.String(), nil
}

func decode(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && strings.EqualFold(env.Status, "error") {
		return &domain.APIError{Message: env.text()}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs * float64(time.Second))
	}
	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}
	return 0
}

// retryAfterBackOff waits min(Retry-After or base*2^n, max) and stops after
// retries waits.
type retryAfterBackOff struct {
	retries    int
	base       time.Duration
	max        time.Duration
	attempt    int
	retryAfter time.Duration
}

func (b *retryAfterBackOff) Reset() { b.attempt = 0 }

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	if b.attempt >= b.retries {
		return backoff.Stop
	}
	d := b.retryAfter
	if d <= 0 {
		d = b.base << b.attempt
	}
	if d > b.max || d <= 0 {
		d = b.max
	}
	b.attempt++
	return d
}

func firstPositive(ds ...time.Duration) time.Duration {
	for _, d := range ds {
		if d > 0 {
			return d
		}
	}
	return 0
}
