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

// Package auth validates bearer tokens on the HTTP transport and
// carries the resulting claims through request context. It has no
// dependency on internal/process, internal/platform or internal/server
// beyond the http.Handler chain: authentication is strictly a
// transport concern, never consulted by planning or execution.
package auth

import "context"

type contextKey string

const claimsContextKey contextKey = "agentry_auth_claims"

// Claims is the validated identity of the caller of an AgentPlatform
// HTTP operation.
type Claims struct {
	Subject  string         `json:"sub"`
	Email    string         `json:"email,omitempty"`
	Role     string         `json:"role,omitempty"`
	TenantID string         `json:"tenant_id,omitempty"`
	Custom   map[string]any `json:"-"`
}

// HasRole reports whether the claims carry exactly role.
func (c *Claims) HasRole(role string) bool {
	return c != nil && c.Role == role
}

// HasAnyRole reports whether the claims carry any of roles.
func (c *Claims) HasAnyRole(roles ...string) bool {
	if c == nil {
		return false
	}
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// ContextWithClaims returns a copy of ctx carrying claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts claims previously stored by Middleware, or
// nil if the request was never authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsContextKey).(*Claims)
	return claims
}

// TokenValidator validates a bearer token string and returns the
// claims it carries.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}
