package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/naka-gawa/gitorg/internal/domain"
)

// httpStatusError is a non-2xx GraphQL response. The GraphQL client only
// reports such responses as text, so statusTransport converts them first.
type httpStatusError struct {
	StatusCode int
	Header     http.Header
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

type statusTransport struct {
	base http.RoundTripper
}

func (t *statusTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode < 300 {
		return resp, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return nil, &httpStatusError{StatusCode: resp.StatusCode, Header: resp.Header, Body: string(body)}
}

// classify maps a client error to one of the domain error kinds. org is the
// organization being fetched, or empty for account-level calls.
func classify(err error, org string) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &domain.RateLimitError{Reset: rateErr.Rate.Reset.Time, Err: err}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		var reset time.Time
		if abuseErr.RetryAfter != nil {
			reset = time.Now().Add(*abuseErr.RetryAfter)
		}
		return &domain.RateLimitError{Reset: reset, Err: err}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return classifyStatus(err, respErr.Response.StatusCode, respErr.Response.Header, org)
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return classifyStatus(err, statusErr.StatusCode, statusErr.Header, org)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.TransportError{Err: err}
	}
	return &domain.APIError{Err: err}
}

func classifyStatus(err error, status int, header http.Header, org string) error {
	switch {
	case status == http.StatusTooManyRequests,
		status == http.StatusForbidden && header.Get(headerRateRemaining) == "0":
		rate, _ := parseRate(header)
		return &domain.RateLimitError{Reset: rate.Reset, Err: err}
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return &domain.AuthError{Status: status, Err: err}
	case status == http.StatusNotFound && org != "":
		return &domain.NotFoundError{Org: org, Err: err}
	default:
		return &domain.APIError{Status: status, Err: err}
	}
}
