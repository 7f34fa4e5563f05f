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

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// JWTValidatorConfig configures a JWTValidator.
type JWTValidatorConfig struct {
	JWKSURL         string
	Issuer          string
	Audience        string
	RefreshInterval time.Duration
}

func (c JWTValidatorConfig) withDefaults() JWTValidatorConfig {
	if c.RefreshInterval <= 0 {
		c.RefreshInterval = 15 * time.Minute
	}
	return c
}

// JWTValidator validates JWTs against a JWKS endpoint, auto-refreshing
// the key set so provider-side key rotation never requires a restart.
type JWTValidator struct {
	cfg   JWTValidatorConfig
	cache *jwk.Cache
}

// NewJWTValidator fetches cfg.JWKSURL once to validate configuration,
// then registers it for background auto-refresh.
func NewJWTValidator(cfg JWTValidatorConfig) (*JWTValidator, error) {
	cfg = cfg.withDefaults()
	if cfg.JWKSURL == "" {
		return nil, fmt.Errorf("auth: jwks_url is required")
	}

	ctx := context.Background()
	cache := jwk.NewCache(ctx)
	if err := cache.Register(cfg.JWKSURL, jwk.WithMinRefreshInterval(cfg.RefreshInterval)); err != nil {
		return nil, fmt.Errorf("auth: registering JWKS url: %w", err)
	}
	if _, err := cache.Refresh(ctx, cfg.JWKSURL); err != nil {
		return nil, fmt.Errorf("auth: fetching JWKS from %s: %w", cfg.JWKSURL, err)
	}

	return &JWTValidator{cfg: cfg, cache: cache}, nil
}

// ValidateToken verifies signature, expiry, issuer and audience, then
// extracts standard and custom claims.
func (v *JWTValidator) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	keyset, err := v.cache.Get(ctx, v.cfg.JWKSURL)
	if err != nil {
		return nil, fmt.Errorf("auth: fetching key set: %w", err)
	}

	opts := []jwt.ParseOption{jwt.WithKeySet(keyset), jwt.WithValidate(true)}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	token, err := jwt.Parse([]byte(tokenString), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}

	claims := &Claims{Subject: token.Subject(), Custom: make(map[string]any)}
	if v, ok := token.Get("email"); ok {
		if s, ok := v.(string); ok {
			claims.Email = s
		}
	}
	if v, ok := token.Get("role"); ok {
		if s, ok := v.(string); ok {
			claims.Role = s
		}
	}
	if v, ok := token.Get("tenant_id"); ok {
		if s, ok := v.(string); ok {
			claims.TenantID = s
		}
	}

	skip := map[string]bool{"sub": true, "email": true, "role": true, "tenant_id": true,
		"iss": true, "aud": true, "exp": true, "iat": true, "nbf": true}
	for it := token.Iterate(ctx); it.Next(ctx); {
		pair := it.Pair()
		key, _ := pair.Key.(string)
		if key != "" && !skip[key] {
			claims.Custom[key] = pair.Value
		}
	}

	return claims, nil
}

var _ TokenValidator = (*JWTValidator)(nil)
