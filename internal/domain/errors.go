package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

// TimeoutError is returned when a backend call exceeded its deadline.
type TimeoutError struct {
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: timed out after %s", e.Op, e.Timeout)
}

// HTTPError is a non-2xx, non-429 response.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http status %d", e.Status)
	}
	return fmt.Sprintf("http status %d: %s", e.Status, e.Message)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}

// RateLimitError is a 429 after the retry budget was spent.
type RateLimitError struct {
	RetryAfter time.Duration // zero when the backend sent no Retry-After
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// APIError is a 2xx response whose body reports status "error".
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return "api error: " + e.Message }

// ValidationError is raised locally before any request is sent.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed on %s: %s", strings.Join(e.Fields, ","), e.Reason)
}

func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
