// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the standard response utilities used across all endpoints.
// Every failure, from any layer, is written through fail() as the structured
// error envelope, ensuring a single exhaustive response boundary: handlers
// never hand-roll JSON error bodies.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "error": {
//	    "type": "not_found",
//	    "code": "resource_not_found",
//	    "message": "Ride with ID 42 not found"
//	  }
//	}
//
// Example success response:
//
//	HTTP/1.1 200 OK
//	{ "id": 42, "name": "Morning commute", ... }
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velotrack/go-ride-backend/internal/apierr"
	"github.com/velotrack/go-ride-backend/internal/http/middleware"
)

// fail aborts the request with the structured error envelope derived from
// aerr. The HTTP status is computed from the error kind and code, never chosen
// by the caller, so the kind-to-status mapping stays in exactly one place.
//
// Server errors (>=500) are logged with the request-scoped logger before the
// response is written.
func fail(c *gin.Context, aerr *apierr.Error) {
	status := aerr.Status()
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("type", string(aerr.Kind)).
			Str("code", aerr.Code).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, aerr.Wrap())
}

// Fail is the exported variant of fail for use outside the package (router
// fallbacks such as NoRoute and NoMethod).
func Fail(c *gin.Context, aerr *apierr.Error) { fail(c, aerr) }

// ok writes a JSON success response with the given status and body.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an empty 204 response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
