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

import "github.com/kadirpekel/agentry/internal/config"

// NewValidatorFromConfig builds a JWTValidator from a ServerConfig, or
// returns (nil, nil) when no JWKS endpoint is configured — the server
// treats a nil validator as "auth disabled."
func NewValidatorFromConfig(cfg config.ServerConfig) (TokenValidator, error) {
	if cfg.JWKSURL == "" {
		return nil, nil
	}
	return NewJWTValidator(JWTValidatorConfig{
		JWKSURL: cfg.JWKSURL,
		Issuer:  cfg.AuthIssuer,
	})
}
