// Package auth implements bearer-token authentication and the ownership
// authorization rule. Token verification is a small state machine with one
// terminal outcome per rejection reason; every outcome is expressed as a
// taxonomy error so the transport layer never sees raw library failures.
package auth

import "github.com/velotrack/go-ride-backend/internal/domain"

// Principal is the authenticated caller extracted from a verified credential.
// It lives for exactly one request and is never persisted.
type Principal struct {
	ID   uint
	Role string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == domain.RoleAdmin }
