package gateway

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/naka-gawa/gitorg/internal/domain"
)

const (
	headerRateLimit     = "X-RateLimit-Limit"
	headerRateRemaining = "X-RateLimit-Remaining"
	headerRateReset     = "X-RateLimit-Reset"
	headerRateResource  = "X-RateLimit-Resource"
)

// quotaRecorder remembers the quota headers of the latest response that carried them.
type quotaRecorder struct {
	base   http.RoundTripper
	latest atomic.Pointer[domain.RateLimit]
}

func (q *quotaRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := q.base.RoundTrip(req)
	if resp != nil {
		if rate, ok := parseRate(resp.Header); ok {
			q.latest.Store(&rate)
		}
	}
	return resp, err
}

func (q *quotaRecorder) last() (domain.RateLimit, bool) {
	rate := q.latest.Load()
	if rate == nil {
		return domain.RateLimit{}, false
	}
	return *rate, true
}

func parseRate(h http.Header) (domain.RateLimit, bool) {
	remaining, err := strconv.Atoi(h.Get(headerRateRemaining))
	if err != nil {
		return domain.RateLimit{}, false
	}
	rate := domain.RateLimit{
		Resource:  h.Get(headerRateResource),
		Remaining: remaining,
	}
	if limit, err := strconv.Atoi(h.Get(headerRateLimit)); err == nil {
		rate.Limit = limit
	}
	if reset, err := strconv.ParseInt(h.Get(headerRateReset), 10, 64); err == nil {
		rate.Reset = time.Unix(reset, 0).UTC()
	}
	return rate, true
}
