package auth

import (
	"errors"
	"fmt"
	"math"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/velotrack/go-ride-backend/internal/apierr"
)

// Authenticator verifies and issues HS256 bearer tokens. The signing secret
// is injected at construction; an empty secret puts the authenticator into a
// documented "unavailable" state in which every verification fails with
// authentication/service_unavailable instead of crashing.
//
// Authenticator is immutable after construction and safe for concurrent use.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthenticator builds an Authenticator from the given secret and token
// lifetime. secret may be empty; see Configured.
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &Authenticator{secret: key, ttl: ttl}
}

// Configured reports whether a verification secret is present.
func (a *Authenticator) Configured() bool { return len(a.secret) > 0 }

// Issue signs a token for the given user id and role, expiring after the
// configured TTL. It fails with service_unavailable when no secret is set.
func (a *Authenticator) Issue(userID uint, role string) (string, *apierr.Error) {
	if !a.Configured() {
		return "", errUnavailable()
	}
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"iat":    now.Unix(),
		"exp":    now.Add(a.ttl).Unix(),
	})
	signed, err := tok.SignedString(a.secret)
	if err != nil {
		return "", apierr.Internal("")
	}
	return signed, nil
}

// Verify runs the terminal-outcome state machine over one credential:
//
//  1. no secret                       -> authentication/service_unavailable
//  2. structural/signature failure    -> authentication/invalid_token
//  3. expired                         -> authentication/token_expired
//  4. claims missing integer userId
//     or string role                  -> authentication/malformed_token
//  5. anything unanticipated          -> internal
//
// On success it returns the Principal carried by the token. Header presence
// and format are checked upstream by the HTTP middleware, which owns the
// missing_auth_header and invalid_token_format outcomes.
func (a *Authenticator) Verify(tokenString string) (Principal, *apierr.Error) {
	if !a.Configured() {
		return Principal{}, errUnavailable()
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	switch {
	case err == nil:
		// fallthrough to payload shape checks
	case errors.Is(err, jwt.ErrTokenExpired):
		return Principal{}, apierr.Authentication(apierr.CodeTokenExpired, "Token has expired")
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return Principal{}, apierr.Authentication(apierr.CodeInvalidToken, "Invalid token")
	default:
		return Principal{}, apierr.Internal("Authentication error")
	}

	id, okID := integerClaim(claims["userId"])
	role, okRole := claims["role"].(string)
	if !okID || !okRole {
		return Principal{}, apierr.Authentication(apierr.CodeMalformedToken, "Token payload is invalid")
	}
	return Principal{ID: id, Role: role}, nil
}

// integerClaim extracts a non-negative integer identity from a decoded JSON
// claim value. JSON numbers arrive as float64; fractional or negative values
// are rejected the same way a missing claim is.
func integerClaim(v any) (uint, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, false
	}
	return uint(f), true
}

func errUnavailable() *apierr.Error {
	return apierr.Authentication(apierr.CodeServiceUnavailable, "Authentication temporarily unavailable")
}
