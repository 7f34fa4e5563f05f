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

// Package rag declares the RagFacet contract (spec.md §6). The
// reference adapter living in internal/rag/mcprag calls an external MCP
// tool server to fulfill it; publishing an MCP server is out of scope.
package rag

import "context"

// SearchRequest is what a RagFacet.Search call takes.
type SearchRequest struct {
	Query               string
	TopK                int
	SimilarityThreshold float64
	Filters             map[string]any
}

// Result is one scored hit. ID is stable per underlying item so callers
// can dedup across repeated searches.
type Result struct {
	ID    string         `json:"id"`
	Item  map[string]any `json:"item"`
	Score float64        `json:"score"`
}

// RagFacet retrieves scored results for a query.
type RagFacet interface {
	Search(ctx context.Context, req SearchRequest) ([]Result, error)
}
