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

// Package errs defines the runtime's error taxonomy (spec.md §7). The
// core converts underlying collaborator errors (LLM transport failures,
// RAG errors, etc.) into one of the Kind values below at the boundary;
// no collaborator error type is ever stored directly in a PlanStep.
package errs

import (
	"errors"
	"fmt"
)

// Kind categorizes a runtime error for history recording and retry
// policy decisions. Never invent a new Kind for a collaborator-specific
// failure — map it onto one of these.
type Kind string

const (
	// InvalidInput: malformed agent, goal, or user input. Reported to
	// the caller on submit; never retried.
	InvalidInput Kind = "invalid_input"

	// PlanUnreachable: the reachability prune or A* exhaustion found no
	// plan. The process ends STUCK.
	PlanUnreachable Kind = "plan_unreachable"

	// ActionFailureTransient: a retryable action error. The planner
	// re-runs on the next tick after backoff.
	ActionFailureTransient Kind = "action_failure_transient"

	// ActionFailurePermanent: a non-retryable action error. The process
	// ends FAILED with the cause preserved.
	ActionFailurePermanent Kind = "action_failure_permanent"

	// Timeout: a per-action or per-process deadline was exceeded.
	// Per-action timeouts are reported as ActionFailurePermanent with
	// this Kind as the Cause's Kind; per-process timeouts end the
	// process FAILED directly.
	Timeout Kind = "timeout"

	// Cancelled: clean termination via the process cancellation flag.
	// History up to the cancellation point is preserved.
	Cancelled Kind = "cancelled"

	// InternalInvariant: a bug. Never swallowed — always surfaced
	// verbatim to the caller and logged at error level.
	InternalInvariant Kind = "internal_invariant"
)

// Error wraps an error with a taxonomy Kind and an optional underlying
// cause. PlanStep.ErrorKind stores only Kind; Cause is available for
// logging via errors.As/errors.Unwrap but never escapes into history.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, errs.New(errs.Timeout, "")).
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// New constructs an Error with no underlying cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an Error that records cause for diagnostics while
// pinning the taxonomy Kind that callers should actually act on.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// KindOf extracts the Kind from err, defaulting to InternalInvariant
// when err does not wrap an *Error — an unconverted collaborator error
// reaching this point is itself a bug per the §7 propagation policy.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalInvariant
}

// IsTransient reports whether err is (or wraps) an ActionFailureTransient,
// the only Kind the executor retries automatically.
func IsTransient(err error) bool {
	return KindOf(err) == ActionFailureTransient
}
