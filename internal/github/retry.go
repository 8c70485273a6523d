package github

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	gh "github.com/google/go-github/v68/github"
)

type retryPolicy struct {
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
}

var defaultRetry = retryPolicy{
	attempts: 4,
	delay:    time.Second,
	maxDelay: 30 * time.Second,
}

// do runs a read-only API call, retrying rate limits, server errors and
// transient network failures with exponential backoff and jitter.
func (c *Client) do(ctx context.Context, operation string, fn func() error) error {
	p := c.retry
	if p.attempts == 0 {
		p = defaultRetry
	}
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(p.attempts),
		retry.Delay(p.delay),
		retry.MaxDelay(p.maxDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.MaxJitter(p.delay/4+time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Info("Retry attempt", "component", "github", "operation", operation,
				"attempt", n+1, "max_attempts", p.attempts, "error", err)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
}

func retryable(err error) bool {
	if err == nil {
		return false
	}
	var rle *gh.RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	var arle *gh.AbuseRateLimitError
	if errors.As(err, &arle) {
		return true
	}
	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		code := er.Response.StatusCode
		return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var er *gh.ErrorResponse
	return errors.As(err, &er) && er.Response != nil && er.Response.StatusCode == http.StatusNotFound
}
