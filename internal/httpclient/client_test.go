package httpclient

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStrategy(t *testing.T) {
	cases := []struct {
		status int
		want   RetryStrategy
	}{
		{http.StatusOK, NoRetry},
		{http.StatusTooManyRequests, SmartRetry},
		{http.StatusServiceUnavailable, SmartRetry},
		{http.StatusRequestTimeout, ConservativeRetry},
		{http.StatusInternalServerError, ConservativeRetry},
		{http.StatusBadRequest, NoRetry},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DefaultStrategy(c.status))
	}
}

func TestRetryableError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &RetryableError{StatusCode: 429, Message: "rate limited", RetryAfter: 2 * time.Second, Err: cause}
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "retry after")
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestParseOpenAIHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "5")
	h.Set("x-ratelimit-remaining-requests", "42")
	info := ParseOpenAIHeaders(h)
	assert.Equal(t, 5*time.Second, info.RetryAfter)
	assert.Equal(t, 42, info.RequestsRemaining)
}

func TestParseAnthropicHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("retry-after", "3")
	h.Set("anthropic-ratelimit-requests-remaining", "7")
	info := ParseAnthropicHeaders(h)
	assert.Equal(t, 3*time.Second, info.RetryAfter)
	assert.Equal(t, 7, info.RequestsRemaining)
}
