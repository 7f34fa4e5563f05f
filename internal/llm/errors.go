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

package llm

import (
	"context"
	"errors"
	"net/http"

	"github.com/kadirpekel/agentry/internal/errs"
	"github.com/kadirpekel/agentry/internal/httpclient"
)

// ClassifyError converts a collaborator error an LlmClient
// implementation returned into the runtime's error taxonomy
// (spec.md §6: TransportError is retryable, InvalidResponse and Timeout
// are not). A *httpclient.RetryableError's status code decides whether
// it's a transient transport hiccup or a permanent one.
func ClassifyError(err error) *errs.Error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.Timeout, "llm call timed out", err)
	}

	var re *httpclient.RetryableError
	if errors.As(err, &re) {
		if isTransientStatus(re.StatusCode) {
			return errs.Wrap(errs.ActionFailureTransient, "llm transport error", err)
		}
		return errs.Wrap(errs.ActionFailurePermanent, "llm transport error", err)
	}

	return errs.Wrap(errs.ActionFailurePermanent, "llm invalid response", err)
}

// isTransientStatus mirrors httpclient.DefaultStrategy's retryable set:
// rate limiting, request timeouts (408) and transient server errors are
// worth retrying.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable,
		http.StatusRequestTimeout, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
