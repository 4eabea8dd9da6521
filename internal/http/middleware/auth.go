package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/velotrack/go-ride-backend/internal/apierr"
	"github.com/velotrack/go-ride-backend/internal/auth"
)

// principalKey is the Gin context key under which the authenticated caller
// is stored for the remainder of the request.
const principalKey = "principal"

// RequireAuth returns the bearer-token authentication middleware. It owns
// the first three outcomes of the verification state machine and delegates
// the rest to the Authenticator:
//
//  1. verification key unconfigured  -> authentication/service_unavailable (503)
//  2. missing Authorization header   -> authentication/missing_auth_header (401)
//  3. header without a non-empty
//     "<scheme> <token>" pair        -> authentication/invalid_token_format (401)
//  4. everything else                -> Authenticator.Verify
//
// The order is significant: availability before presence, presence before
// format, format before cryptography. On success the Principal is stored in
// the context; later stages therefore never see an unauthenticated request.
//
// Every rejection is logged with the caller's network origin and client-agent
// string. The log entry is operational telemetry only; it never changes the
// response.
func RequireAuth(a *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Configured() {
			abortAuth(c, apierr.Authentication(apierr.CodeServiceUnavailable,
				"Authentication temporarily unavailable"))
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			logAuthFailure(c, "missing authorization header")
			abortAuth(c, apierr.Authentication(apierr.CodeMissingAuthHeader,
				"Missing Authorization header (Bearer <token>)"))
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[1] == "" {
			logAuthFailure(c, "invalid token format")
			abortAuth(c, apierr.Authentication(apierr.CodeInvalidTokenFormat,
				"Token format invalid"))
			return
		}

		p, aerr := a.Verify(parts[1])
		if aerr != nil {
			logAuthFailure(c, aerr.Code)
			abortAuth(c, aerr)
			return
		}

		c.Set(principalKey, p)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated caller stored by RequireAuth.
// The bool is false on routes that did not pass through the middleware.
func PrincipalFrom(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

// abortAuth writes the error envelope with the status derived from the
// error itself and stops the chain.
func abortAuth(c *gin.Context, aerr *apierr.Error) {
	c.AbortWithStatusJSON(aerr.Status(), aerr.Wrap())
}

// logAuthFailure records a rejected credential with the caller's origin.
func logAuthFailure(c *gin.Context, reason string) {
	LoggerFrom(c).Warn().
		Str("reason", reason).
		Str("ip", c.ClientIP()).
		Str("user_agent", c.Request.UserAgent()).
		Time("at", time.Now().UTC()).
		Msg("auth failed")
}
