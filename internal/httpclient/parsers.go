// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpclient

import (
	"fmt"
	"net/http"
	"time"
)

// ParseOpenAIHeaders extracts rate-limit info from an OpenAI-shaped
// response.
func ParseOpenAIHeaders(h http.Header) RateLimitInfo {
	var info RateLimitInfo
	if v := h.Get("Retry-After"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			info.RetryAfter = d
		}
	}
	if v := h.Get("x-ratelimit-reset-requests"); v != "" {
		fmt.Sscanf(v, "%d", &info.ResetTime)
	}
	if v := h.Get("x-ratelimit-remaining-requests"); v != "" {
		fmt.Sscanf(v, "%d", &info.RequestsRemaining)
	}
	if v := h.Get("x-ratelimit-remaining-tokens"); v != "" {
		fmt.Sscanf(v, "%d", &info.TokensRemaining)
	}
	return info
}

// ParseAnthropicHeaders extracts rate-limit info from an
// Anthropic-shaped response.
func ParseAnthropicHeaders(h http.Header) RateLimitInfo {
	var info RateLimitInfo
	if v := h.Get("retry-after"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			info.RetryAfter = d
		}
	}
	if v := h.Get("anthropic-ratelimit-requests-reset"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			info.ResetTime = t.Unix()
		}
	}
	if v := h.Get("anthropic-ratelimit-requests-remaining"); v != "" {
		fmt.Sscanf(v, "%d", &info.RequestsRemaining)
	}
	return info
}
