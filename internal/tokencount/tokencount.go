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

// Package tokencount estimates prompt token counts for LLM-backed action
// cost (SPEC_FULL.md §4.5 "LLM-backed action cost"). Adapted from the
// teacher's accurate-token-counting helper, trimmed to the cl100k_base
// encoding this runtime standardizes on for cost estimation (it never
// constructs an LLM client, so per-model encoding selection is
// unnecessary here).
package tokencount

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts tokens in prompt text using cl100k_base, caching
// the encoding the same way the teacher's TokenCounter caches per-model
// encodings.
type Counter struct {
	encoding *tiktoken.Tiktoken
	mu       sync.RWMutex
}

var (
	shared     *Counter
	sharedOnce sync.Once
	sharedErr  error
)

// Shared returns a process-wide Counter backed by cl100k_base, built
// once and reused across every action cost estimate.
func Shared() (*Counter, error) {
	sharedOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			sharedErr = err
			return
		}
		shared = &Counter{encoding: enc}
	})
	return shared, sharedErr
}

// Count returns the number of cl100k_base tokens in text.
func (c *Counter) Count(text string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.encoding.Encode(text, nil, nil))
}

// EstimateCost converts a token count into a cost using a
// cost-per-1000-tokens rate, the scaling factor SPEC_FULL.md's
// `executor.llm` action cost uses to produce the planner's
// `cost: () -> R>=0` contract.
func EstimateCost(tokens int, costPer1kTokens float64) float64 {
	return float64(tokens) / 1000.0 * costPer1kTokens
}
