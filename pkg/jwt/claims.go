package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the bearer token claims. Subject names the caller
// (a person, a CLI host or a service).
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// ScopeWorkspace grants full access to the workspace API.
const ScopeWorkspace = "workspace"
